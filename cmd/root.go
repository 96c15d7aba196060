package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/scheduler"
	"github.com/vaspflow/vaspflow/internal/utils"
)

var (
	debugMode    bool
	quietMode    bool
	localMode    bool
	schedulerBin string
)

var rootCmd = &cobra.Command{
	Use:           "vaspflow",
	Short:         "vaspflow: prepare, submit, and track batch DFT calculations on an HPC scheduler.",
	Version:       config.VERSION,
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Step 1: Load built-in defaults
		config.LoadDefaults()

		// Step 2: Initialize Viper (read config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintDebug("Error reading config file: %v", err)
		}

		// Step 3: Load resolved values from Viper into Global config
		config.LoadFromViper()

		// Step 4: Apply command-line flags (highest priority)
		if schedulerBin != "" {
			config.Global.SchedulerBin = schedulerBin
		}
		if debugMode {
			utils.DebugMode = true
			config.Global.Debug = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("vaspflow Version: %s", utils.StyleInfo(config.VERSION))
			if config.Global.SchedulerBin != "" {
				utils.PrintDebug("Scheduler Binary: %s", config.Global.SchedulerBin)
			}
		}
		if quietMode {
			utils.QuietMode = true
			config.Global.Quiet = true
		}
		if localMode {
			config.Global.SubmitJob = false
			utils.PrintDebug("Local mode enabled (job submission disabled)")
		}

		// Step 5: Initialize scheduler if job submission is enabled
		if config.Global.SubmitJob {
			sched, err := scheduler.DetectSchedulerWithBinary(config.Global.SchedulerBin)
			if err == nil && sched.IsAvailable() {
				scheduler.SetActiveScheduler(sched)
				utils.PrintDebug("Scheduler initialized and available")
			} else {
				if err != nil {
					utils.PrintDebug("Scheduler not available: %v", err)
				} else {
					utils.PrintDebug("Scheduler not available (already in a job)")
				}
			}
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().BoolVar(&localMode, "local", false, "Disable job submission (classification only)")
	rootCmd.PersistentFlags().StringVar(&schedulerBin, "scheduler-bin", "", "Path to the scheduler submission binary")
}
