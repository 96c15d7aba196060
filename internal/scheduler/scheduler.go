// Package scheduler provides a unified interface for HPC job schedulers
package scheduler

import (
	"os"
	"os/exec"
	"path/filepath"
)

// SchedulerType represents the type of job scheduler
type SchedulerType string

const (
	SchedulerUnknown SchedulerType = ""
	SchedulerSLURM   SchedulerType = "SLURM"
)

// SchedulerInfo holds information about the detected scheduler
type SchedulerInfo struct {
	Type      string // Scheduler type (e.g., "SLURM")
	Binary    string // Path to scheduler binary (e.g., "/usr/bin/sbatch")
	Version   string // Scheduler version (if available)
	InJob     bool   // Whether we're currently inside a scheduled job
	Available bool   // Whether scheduler is available for job submission
}

// Scheduler defines the interface for job schedulers
type Scheduler interface {
	// IsAvailable checks if the scheduler is available and we're not already in a job
	IsAvailable() bool

	// Submit submits a job script with workDir as the submission working directory.
	// Returns the job ID assigned by the scheduler.
	Submit(scriptPath string, workDir string) (string, error)

	// IsJobAlive queries the scheduler for the given job ID.
	// Returns true only when the scheduler positively reports the job as live.
	IsJobAlive(jobID string) (bool, error)

	// GetInfo returns information about the scheduler
	GetInfo() *SchedulerInfo
}

// DetectSchedulerWithBinary attempts to initialize a scheduler using a preferred binary path.
// If preferredBin is empty, detection falls back to scanning PATH by type.
// This function returns a Scheduler instance if the scheduler binary is present,
// regardless of availability; callers check IsAvailable themselves.
func DetectSchedulerWithBinary(preferredBin string) (Scheduler, error) {
	if preferredBin != "" {
		baseName := filepath.Base(preferredBin)
		switch baseName {
		case "sbatch", "squeue", "scontrol":
			return NewSlurmSchedulerWithBinary(preferredBin)
		default:
			// Default to SLURM for any other binary (e.g., a site wrapper)
			return NewSlurmSchedulerWithBinary(preferredBin)
		}
	}

	switch DetectType() {
	case SchedulerSLURM:
		return NewSlurmScheduler()
	}

	return nil, ErrSchedulerNotFound
}

// DetectType returns the type of scheduler available on the system without initializing it.
func DetectType() SchedulerType {
	if _, err := exec.LookPath("sbatch"); err == nil {
		return SchedulerSLURM
	}
	return SchedulerUnknown
}

// IsInsideJob checks if we're currently running inside a scheduler job.
// This is useful to avoid nested job submission.
func IsInsideJob() bool {
	if _, ok := os.LookupEnv("SLURM_JOB_ID"); ok {
		return true
	}
	if _, ok := os.LookupEnv("PBS_JOBID"); ok {
		return true
	}
	if _, ok := os.LookupEnv("LSB_JOBID"); ok {
		return true
	}
	return false
}
