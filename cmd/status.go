package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vaspflow/vaspflow/internal/campaign"
	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/scheduler"
	"github.com/vaspflow/vaspflow/internal/utils"
)

var statusCheckDipole bool

var statusCmd = &cobra.Command{
	Use:   "status <calculations_dir> [start_index] [end_index]",
	Short: "Classify calculations without submitting anything",
	Long: `Report the state of every calculation directory in the campaign:
missing inputs, dipole not ready, completed, running, or submittable.

Purely read-only; useful to preview what a submit run would do.`,
	Example: `  vaspflow status ./calculations
  vaspflow status ./calculations 0 49
  vaspflow status ./calculations --check-dipol`,
	Args:         cobra.RangeArgs(1, 3),
	SilenceUsage: true,
	RunE:         runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusCheckDipole, "check-dipol", false, "Also check DIPOL tag readiness")
}

func runStatus(cmd *cobra.Command, args []string) error {
	opts, err := parseCampaignArgs(args)
	if err != nil {
		return err
	}
	opts.CheckDipole = statusCheckDipole

	runner := campaign.NewRunner(&config.Global, scheduler.ActiveScheduler(), opts)
	units, err := runner.Classify()
	if err != nil {
		return err
	}

	counts := map[campaign.State]int{}
	for _, u := range units {
		counts[u.State]++
		switch u.State {
		case campaign.StateSubmittable:
			utils.PrintMessage("%s: %s", u.Name, utils.StyleSuccess(u.State.String()))
		case campaign.StateCompleted:
			utils.PrintMessage("%s: %s", u.Name, utils.StyleInfo(u.State.String()))
		case campaign.StateRunning:
			utils.PrintMessage("%s: %s", u.Name, utils.StyleNote(u.State.String()))
		default:
			utils.PrintMessage("%s: %s", u.Name, utils.StyleWarning(u.State.String()))
		}
	}

	utils.PrintMessage("%s", utils.StyleTitle("CAMPAIGN STATUS"))
	utils.PrintMessage("Total:         %s", utils.StyleNumber(len(units)))
	utils.PrintMessage("Submittable:   %s", utils.StyleNumber(counts[campaign.StateSubmittable]))
	utils.PrintMessage("Completed:     %s", utils.StyleNumber(counts[campaign.StateCompleted]))
	utils.PrintMessage("Running:       %s", utils.StyleNumber(counts[campaign.StateRunning]))
	utils.PrintMessage("Not ready:     %s", utils.StyleNumber(
		counts[campaign.StateMissingInputs]+counts[campaign.StateDipoleNotReady]))

	if counts[campaign.StateSubmittable] > 0 {
		utils.PrintHint("Submit pending work with: vaspflow submit %s", opts.Root)
	}
	return nil
}
