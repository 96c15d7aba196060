package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (VASPFLOW_*)
// 3. User config file (~/.config/vaspflow/config.yaml)
// 4. System config file (/etc/vaspflow/config.yaml)
// 5. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	// Set config search paths (order matters)
	// User config (highest priority)
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(userConfigDir, "vaspflow"))
	}

	// Home directory fallback
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".vaspflow"))
	}

	// System-wide config (lower priority)
	viper.AddConfigPath("/etc/vaspflow")

	// Current directory (for development)
	viper.AddConfigPath(".")

	// Environment variables
	viper.SetEnvPrefix("VASPFLOW")
	viper.AutomaticEnv()

	// Set defaults (lowest priority)
	setDefaults()

	// Read config file (non-fatal if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults apply
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("scheduler_bin", "")
	viper.SetDefault("submit_job", true)

	viper.SetDefault("campaign.structure_file", "POSCAR")
	viper.SetDefault("campaign.parameter_file", "INCAR")
	viper.SetDefault("campaign.kpoints_file", "KPOINTS")
	viper.SetDefault("campaign.pseudo_file", "POTCAR")
	viper.SetDefault("campaign.job_script", "job.slurm")
	viper.SetDefault("campaign.output_log", "OUTCAR")
	viper.SetDefault("campaign.scheduler_log_glob", "slurm-*.out")
	viper.SetDefault("campaign.completion_marker", "Total CPU time used")
	viper.SetDefault("campaign.placeholder_token", "PLACEHOLDER")
	viper.SetDefault("campaign.stale_artifacts", []string{
		"OUTCAR", "OSZICAR", "CONTCAR", "WAVECAR", "CHGCAR", "vasprun.xml",
	})
}

// LoadFromViper copies resolved Viper values into the Global config.
func LoadFromViper() {
	Global.SchedulerBin = viper.GetString("scheduler_bin")
	Global.SubmitJob = viper.GetBool("submit_job")

	Global.StructureFile = viper.GetString("campaign.structure_file")
	Global.ParameterFile = viper.GetString("campaign.parameter_file")
	Global.KpointsFile = viper.GetString("campaign.kpoints_file")
	Global.PseudoFile = viper.GetString("campaign.pseudo_file")
	Global.JobScript = viper.GetString("campaign.job_script")
	Global.OutputLog = viper.GetString("campaign.output_log")
	Global.SchedulerLogGlob = viper.GetString("campaign.scheduler_log_glob")
	Global.CompletionMarker = viper.GetString("campaign.completion_marker")
	Global.PlaceholderToken = viper.GetString("campaign.placeholder_token")
	Global.StaleArtifacts = viper.GetStringSlice("campaign.stale_artifacts")
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".vaspflow", ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, "vaspflow", ConfigFilename+"."+ConfigType), nil
}
