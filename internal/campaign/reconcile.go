package campaign

import (
	"path/filepath"
	"regexp"

	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/scheduler"
	"github.com/vaspflow/vaspflow/internal/utils"
)

var jobIDFromLogRe = regexp.MustCompile(`\d+`)

// Reconcile classifies a readiness-passing unit against prior run artifacts
// and live scheduler state. Returns StateCompleted, StateRunning, or
// StateSubmittable plus a diagnostic detail (the live job ID for Running).
//
// Completed is checked before Running: a directory whose output log carries
// the completion marker must never be resubmitted, even when a stray
// scheduler stdout log is still present.
func Reconcile(u *Unit, cfg *config.Config, sched scheduler.Scheduler) (State, string) {
	outputLog := u.ArtifactPath(cfg.OutputLog)
	if utils.FileExists(outputLog) && utils.FileContains(outputLog, cfg.CompletionMarker) {
		return StateCompleted, ""
	}

	for _, jobID := range SchedulerLogJobIDs(u.Path, cfg.SchedulerLogGlob) {
		if sched == nil {
			break
		}
		alive, err := sched.IsJobAlive(jobID)
		if err != nil {
			// An unreachable scheduler does not block submission, but the
			// operator should know a duplicate-submission risk existed.
			utils.PrintWarning("%s: liveness probe for job %s failed (%v); treating as not running",
				u.Name, jobID, err)
			continue
		}
		if alive {
			return StateRunning, jobID
		}
	}

	return StateSubmittable, ""
}

// SchedulerLogJobIDs returns the job IDs embedded in scheduler stdout logs
// (slurm-<jobid>.out) found in dir, in directory order.
func SchedulerLogJobIDs(dir string, glob string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return nil
	}

	var ids []string
	for _, m := range matches {
		if id := jobIDFromLogRe.FindString(filepath.Base(m)); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
