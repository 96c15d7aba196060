package campaign

import (
	"fmt"
	"os"

	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/scheduler"
	"github.com/vaspflow/vaspflow/internal/utils"
)

// SubmitUnit drives one submittable unit through the scheduler.
//
// In dry-run mode it only reports the intended submission. In live mode it
// first deletes stale run artifacts (a resubmitted calculation must not append
// to a previous OUTCAR or be confused by leftovers), then invokes the
// submission command with the unit's directory as working directory. All file
// operations use absolute paths; the process working directory is never
// changed.
//
// Returns StateSubmitted with the job ID, or StateSubmissionFailed with the
// raw scheduler output. Failures are local to the unit and never abort the
// batch.
func SubmitUnit(u *Unit, cfg *config.Config, sched scheduler.Scheduler, dryRun bool) (State, string) {
	scriptPath := u.ArtifactPath(cfg.JobScript)

	if dryRun {
		utils.PrintMessage("%s: would submit %s", u.Name, utils.StylePath(scriptPath))
		return StateSubmitted, "dry-run"
	}

	if sched == nil {
		return StateSubmissionFailed, "no scheduler available"
	}

	if err := clearStaleArtifacts(u, cfg); err != nil {
		return StateSubmissionFailed, fmt.Sprintf("failed to clear stale artifacts: %v", err)
	}

	jobID, err := sched.Submit(scriptPath, u.Path)
	if err != nil {
		return StateSubmissionFailed, err.Error()
	}

	return StateSubmitted, jobID
}

// clearStaleArtifacts removes leftovers of a previous run: the fixed artifact
// set plus every scheduler stdout log.
func clearStaleArtifacts(u *Unit, cfg *config.Config) error {
	for _, name := range cfg.StaleArtifacts {
		path := u.ArtifactPath(name)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		utils.PrintDebug("%s: removed stale %s", u.Name, name)
	}

	removed, err := utils.GlobRemove(u.Path, cfg.SchedulerLogGlob)
	if err != nil {
		return err
	}
	for _, name := range removed {
		utils.PrintDebug("%s: removed stale %s", u.Name, name)
	}
	return nil
}
