package config

const VERSION = "0.3.1"

// Config holds global application settings
type Config struct {
	Debug     bool
	Quiet     bool
	SubmitJob bool
	Version   string

	// Scheduler
	SchedulerBin string // Preferred submission binary (empty = auto-detect)

	// Campaign layout
	StructureFile    string // POSCAR
	ParameterFile    string // INCAR
	KpointsFile      string // KPOINTS
	PseudoFile       string // POTCAR
	JobScript        string // job.slurm
	OutputLog        string // OUTCAR
	SchedulerLogGlob string // slurm-*.out

	// Reconciliation
	CompletionMarker string // text that marks a finished output log
	PlaceholderToken string // unresolved template token in parameter files

	// Stale artifacts removed before resubmission
	StaleArtifacts []string
}

// Global holds the singleton configuration instance
var Global Config

// LoadDefaults populates Global with the built-in campaign layout.
func LoadDefaults() {
	Global = Config{
		Debug:     false,
		Quiet:     false,
		SubmitJob: true,
		Version:   VERSION,

		SchedulerBin: "",

		StructureFile:    "POSCAR",
		ParameterFile:    "INCAR",
		KpointsFile:      "KPOINTS",
		PseudoFile:       "POTCAR",
		JobScript:        "job.slurm",
		OutputLog:        "OUTCAR",
		SchedulerLogGlob: "slurm-*.out",

		CompletionMarker: "Total CPU time used",
		PlaceholderToken: "PLACEHOLDER",

		StaleArtifacts: []string{
			"OUTCAR",
			"OSZICAR",
			"CONTCAR",
			"WAVECAR",
			"CHGCAR",
			"vasprun.xml",
		},
	}
}

// RequiredInputs returns the required input artifact filenames in check order.
// The order fixes which missing file is reported first, nothing else.
func (c *Config) RequiredInputs() []string {
	return []string{
		c.StructureFile,
		c.ParameterFile,
		c.KpointsFile,
		c.PseudoFile,
		c.JobScript,
	}
}
