package campaign

import (
	"fmt"
	"time"

	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/scheduler"
	"github.com/vaspflow/vaspflow/internal/utils"
)

// Options is the immutable configuration of one batch invocation.
type Options struct {
	Root        string        // calculations directory
	Range       IndexRange    // optional inclusive index filter
	DryRun      bool          // report without side effects
	Delay       time.Duration // pause between live submissions
	BatchSize   int           // stop after this many submission attempts (0 = unlimited)
	CheckDipole bool          // require a resolved DIPOL tag
}

// Runner drives the ordered unit sequence through classification,
// reconciliation, and submission. Strictly sequential: submission order
// matches index order and the inter-submission delay protects the scheduler
// front-end from bursts.
type Runner struct {
	cfg   *config.Config
	sched scheduler.Scheduler
	opts  Options

	sleep func(time.Duration)
}

// NewRunner creates a Runner. sched may be nil in dry-run mode (liveness
// probes are then skipped and treated as not running).
func NewRunner(cfg *config.Config, sched scheduler.Scheduler, opts Options) *Runner {
	return &Runner{
		cfg:   cfg,
		sched: sched,
		opts:  opts,
		sleep: time.Sleep,
	}
}

// Classify runs the read-only part of the pipeline over every unit in range:
// discovery, readiness, and scheduler-state reconciliation. No side effects.
func (r *Runner) Classify() ([]*Unit, error) {
	units, err := Discover(r.opts.Root, r.opts.Range)
	if err != nil {
		return nil, err
	}

	for _, u := range units {
		state, _ := CheckReadiness(u, r.cfg, r.opts.CheckDipole)
		if state == StateSubmittable {
			state, _ = Reconcile(u, r.cfg, r.sched)
		}
		u.State = state
	}
	return units, nil
}

// Run executes the full batch loop and returns the outcome summary.
// Only discovery errors are returned; every per-unit problem is absorbed
// into the summary. The caller decides the process exit status from
// Summary.Failed.
func (r *Runner) Run() (Summary, error) {
	units, err := Discover(r.opts.Root, r.opts.Range)
	if err != nil {
		return Summary{}, err
	}

	utils.PrintMessage("Found %s calculation directories", utils.StyleNumber(len(units)))
	if r.opts.DryRun {
		utils.PrintNote("Dry-run mode: no files will be deleted, nothing will be submitted")
	}

	var summary Summary
	attempted := 0

	for i, u := range units {
		if r.opts.BatchSize > 0 && attempted >= r.opts.BatchSize {
			utils.PrintMessage("Batch limit of %s submissions reached, stopping",
				utils.StyleNumber(r.opts.BatchSize))
			utils.PrintHint("Resume with: %s", resumeCommand(r.opts.Root, u.Index, r.opts.Range))
			break
		}

		state, detail := CheckReadiness(u, r.cfg, r.opts.CheckDipole)
		if state == StateSubmittable {
			state, detail = Reconcile(u, r.cfg, r.sched)
		}

		if state != StateSubmittable {
			u.State = state
			summary.Skipped++
			r.reportSkip(u, detail)
			continue
		}

		attempted++
		u.State, detail = SubmitUnit(u, r.cfg, r.sched, r.opts.DryRun)

		switch u.State {
		case StateSubmitted:
			summary.Successful++
			if !r.opts.DryRun {
				utils.PrintSuccess("%s: submitted as job %s", u.Name, utils.StyleNumber(detail))
			}
		case StateSubmissionFailed:
			summary.Failed++
			utils.PrintError("%s: submission failed: %s", u.Name, detail)
		}

		// Rate-limit the scheduler front-end: pause only after a real
		// submission attempt, and only when further units remain.
		moreWork := i+1 < len(units) &&
			!(r.opts.BatchSize > 0 && attempted >= r.opts.BatchSize)
		if !r.opts.DryRun && r.opts.Delay > 0 && moreWork {
			r.sleep(r.opts.Delay)
		}
	}

	return summary, nil
}

// resumeCommand renders the submit invocation that continues a cut-off batch
// with the original scope: the next unprocessed index, plus the configured end
// bound when one was given.
func resumeCommand(root string, next int, rng IndexRange) string {
	if rng.HasEnd {
		return fmt.Sprintf("vaspflow submit %s %d %d", root, next, rng.End)
	}
	return fmt.Sprintf("vaspflow submit %s %d", root, next)
}

func (r *Runner) reportSkip(u *Unit, detail string) {
	switch u.State {
	case StateCompleted:
		utils.PrintMessage("%s: already completed, skipping", u.Name)
	case StateRunning:
		utils.PrintMessage("%s: already running (job %s), skipping", u.Name, utils.StyleNumber(detail))
	case StateMissingInputs:
		utils.PrintWarning("%s: %s, skipping", u.Name, detail)
	case StateDipoleNotReady:
		utils.PrintWarning("%s: %s, skipping", u.Name, detail)
	default:
		utils.PrintMessage("%s: skipped", u.Name)
	}
}
