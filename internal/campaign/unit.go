// Package campaign models a batch of independent DFT calculation directories
// and drives them through an external job scheduler. The filesystem is the
// only durable state store: every invocation reclassifies each unit from
// scratch, so the batch loop is safe to re-run after a crash or a partial
// completion.
package campaign

import (
	"fmt"
	"path/filepath"
)

// State classifies a calculation unit within a single invocation.
// Transitions are one-shot: a unit is classified once per run and never
// revisited.
type State int

const (
	StateUnclassified State = iota
	StateMissingInputs
	StateDipoleNotReady
	StateCompleted
	StateRunning
	StateSubmittable
	StateSubmitted
	StateSubmissionFailed
	StateSkipped
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUnclassified:
		return "unclassified"
	case StateMissingInputs:
		return "missing-inputs"
	case StateDipoleNotReady:
		return "dipole-not-ready"
	case StateCompleted:
		return "completed"
	case StateRunning:
		return "running"
	case StateSubmittable:
		return "submittable"
	case StateSubmitted:
		return "submitted"
	case StateSubmissionFailed:
		return "submission-failed"
	case StateSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// IsSkip reports whether the state is a non-fatal skip condition.
func (s State) IsSkip() bool {
	switch s {
	case StateMissingInputs, StateDipoleNotReady, StateCompleted, StateRunning, StateSkipped:
		return true
	}
	return false
}

// Unit represents one independent calculation directory (calc_<index>).
// Units are transient: they are rebuilt from the filesystem every invocation.
type Unit struct {
	Index int    // parsed from the directory name, leading zeros stripped
	Name  string // directory base name, e.g. "calc_0002"
	Path  string // absolute path to the unit's directory
	State State  // final classification for this invocation
}

// ArtifactPath returns the absolute path of a file inside the unit's directory.
func (u *Unit) ArtifactPath(name string) string {
	return filepath.Join(u.Path, name)
}

// Summary accumulates per-unit outcomes for one invocation.
// Invariant: Successful + Failed + Skipped == Total() at all times.
type Summary struct {
	Successful int // submitted (or dry-run reported)
	Failed     int // submission attempted and failed
	Skipped    int // missing inputs, dipole not ready, completed, or running
}

// Total returns the number of units processed so far.
func (s Summary) Total() int {
	return s.Successful + s.Failed + s.Skipped
}
