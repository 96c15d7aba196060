package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/scheduler"
	"github.com/vaspflow/vaspflow/internal/utils"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Display scheduler information",
	Long: `Display information about the detected job scheduler.

Shows scheduler type, binary path, version, and availability status.`,
	Example: `  vaspflow scheduler           # Show scheduler information`,
	Run:     runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) {
	// Try to detect scheduler
	sched, err := scheduler.DetectSchedulerWithBinary(config.Global.SchedulerBin)

	if err != nil {
		// If we're inside a scheduled job, show a concise message and exit
		if scheduler.IsInsideJob() {
			utils.PrintMessage("Scheduler Status: %s", utils.StyleWarning("Unavailable (inside job)"))
			utils.PrintMessage("")
			utils.PrintMessage("You are currently inside a scheduled job; job submission is disabled to prevent nested submissions.")
			return
		}

		// No scheduler found
		utils.PrintMessage("Scheduler Status: %s", utils.StyleError("Not Found"))
		utils.PrintMessage("")
		utils.PrintMessage("No job scheduler detected on this system.")
		utils.PrintMessage("Supported schedulers: SLURM")
		return
	}

	// Get scheduler info
	info := sched.GetInfo()

	// Display scheduler information (no [VF] prefix for structured output)
	fmt.Println("Scheduler Information:")
	fmt.Printf("  Type:      %s\n", utils.StyleInfo(info.Type))
	fmt.Printf("  Binary:    %s\n", utils.StylePath(info.Binary))

	if info.Version != "" {
		fmt.Printf("  Version:   %s\n", utils.StyleNumber(info.Version))
	}

	if info.InJob {
		fmt.Printf("  Status:    %s (inside job)\n", utils.StyleError("Unavailable"))
		fmt.Println()
		fmt.Println("You are currently inside a scheduled job (detected via environment).")
		fmt.Println("Job submission is disabled to prevent nested job submissions.")
		return
	} else if info.Available {
		fmt.Printf("  Status:    %s\n", utils.StyleSuccess("Available"))
		fmt.Println()
		fmt.Println("The scheduler is available and ready for job submission.")
	} else {
		fmt.Printf("  Status:    %s\n", utils.StyleError("Unavailable"))
		fmt.Println()
		fmt.Println("Scheduler detected but not available for job submission.")
	}
}
