package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaspflow/vaspflow/internal/campaign"
	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/scheduler"
	"github.com/vaspflow/vaspflow/internal/utils"
)

var (
	submitDryRun      bool
	submitDelay       int
	submitBatchSize   int
	submitCheckDipole bool
)

var submitCmd = &cobra.Command{
	Use:   "submit <calculations_dir> [start_index] [end_index]",
	Short: "Submit pending calculations to the scheduler",
	Long: `Submit every calculation directory under <calculations_dir> that is ready
and not already completed or running.

A directory named calc_<index> is submittable when all of its input files
(POSCAR, INCAR, KPOINTS, POTCAR, job.slurm) are present, its OUTCAR does not
carry the completion marker, and no scheduler job started from it is still
alive. Before each resubmission, stale output artifacts from a previous run
are deleted.

The optional start/end indices restrict the run to an inclusive index range.
Safe to re-run: already-submitted work is detected and skipped.`,
	Example: `  vaspflow submit ./calculations                 # Submit everything pending
  vaspflow submit ./calculations 0 49            # Only calc_0000 .. calc_0049
  vaspflow submit ./calculations --dry-run       # Preview without side effects
  vaspflow submit ./calculations --batch-size 20 # Stop after 20 submissions
  vaspflow submit ./calculations --check-dipol   # Require resolved DIPOL tags`,
	Args:         cobra.RangeArgs(1, 3),
	SilenceUsage: true, // Runtime errors should not show usage
	RunE:         runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "Report intended submissions without side effects")
	submitCmd.Flags().IntVar(&submitDelay, "delay", 1, "Seconds to wait between submissions")
	submitCmd.Flags().IntVar(&submitBatchSize, "batch-size", 0, "Stop after N submission attempts (0 = unlimited)")
	submitCmd.Flags().BoolVar(&submitCheckDipole, "check-dipol", false, "Skip calculations whose DIPOL tag is unresolved")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	opts, err := parseCampaignArgs(args)
	if err != nil {
		return err
	}
	if submitDelay < 0 {
		return fmt.Errorf("invalid --delay %d: must be >= 0", submitDelay)
	}
	if submitBatchSize < 0 {
		return fmt.Errorf("invalid --batch-size %d: must be >= 0 (0 = unlimited)", submitBatchSize)
	}

	opts.DryRun = submitDryRun
	opts.Delay = time.Duration(submitDelay) * time.Second
	opts.BatchSize = submitBatchSize
	opts.CheckDipole = submitCheckDipole

	sched := scheduler.ActiveScheduler()
	if sched == nil && !opts.DryRun {
		if scheduler.IsInsideJob() {
			return fmt.Errorf("%w; nested submission is disabled", scheduler.ErrAlreadyInJob)
		}
		if !config.Global.SubmitJob {
			return fmt.Errorf("%w: job submission is disabled (--local)", scheduler.ErrSchedulerNotAvailable)
		}
		return fmt.Errorf("no scheduler available: %w", scheduler.ErrSchedulerNotFound)
	}

	runner := campaign.NewRunner(&config.Global, sched, opts)
	summary, err := runner.Run()
	if err != nil {
		return err
	}

	printSummary("SUBMISSION SUMMARY", summary)
	if summary.Failed > 0 {
		return fmt.Errorf("%d submission(s) failed", summary.Failed)
	}
	if !opts.DryRun && summary.Successful > 0 {
		utils.PrintHint("Track progress with: vaspflow status %s", opts.Root)
		utils.PrintHint("When finished, extract energies with: vaspflow extract %s", opts.Root)
	}
	return nil
}

// parseCampaignArgs validates the positional <dir> [start] [end] arguments
// shared by the campaign commands.
func parseCampaignArgs(args []string) (campaign.Options, error) {
	var opts campaign.Options

	opts.Root = args[0]
	if !utils.DirExists(opts.Root) {
		return opts, fmt.Errorf("calculations directory not found: %s", opts.Root)
	}

	if len(args) >= 2 {
		start, err := strconv.Atoi(args[1])
		if err != nil {
			return opts, fmt.Errorf("invalid start index %q: %v", args[1], err)
		}
		opts.Range.Start = start
		opts.Range.HasStart = true
	}
	if len(args) >= 3 {
		end, err := strconv.Atoi(args[2])
		if err != nil {
			return opts, fmt.Errorf("invalid end index %q: %v", args[2], err)
		}
		opts.Range.End = end
		opts.Range.HasEnd = true
		if opts.Range.HasStart && opts.Range.End < opts.Range.Start {
			return opts, fmt.Errorf("end index %d is below start index %d", opts.Range.End, opts.Range.Start)
		}
	}

	return opts, nil
}

func printSummary(title string, summary campaign.Summary) {
	utils.PrintMessage("%s", utils.StyleTitle(title))
	utils.PrintMessage("Successful: %s", utils.StyleNumber(summary.Successful))
	utils.PrintMessage("Failed:     %s", utils.StyleNumber(summary.Failed))
	utils.PrintMessage("Skipped:    %s", utils.StyleNumber(summary.Skipped))
	utils.PrintMessage("Total:      %s", utils.StyleNumber(summary.Total()))
}
