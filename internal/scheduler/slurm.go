package scheduler

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// SlurmScheduler implements the Scheduler interface for SLURM
type SlurmScheduler struct {
	sbatchBin string
	squeueBin string
	jobIDRe   *regexp.Regexp
}

// NewSlurmScheduler creates a new SLURM scheduler instance using sbatch from PATH
func NewSlurmScheduler() (*SlurmScheduler, error) {
	return newSlurmSchedulerWithBinary("")
}

// NewSlurmSchedulerWithBinary creates a SLURM scheduler using an explicit sbatch path
func NewSlurmSchedulerWithBinary(sbatchBin string) (*SlurmScheduler, error) {
	return newSlurmSchedulerWithBinary(sbatchBin)
}

func newSlurmSchedulerWithBinary(sbatchBin string) (*SlurmScheduler, error) {
	binPath := sbatchBin
	if binPath == "" {
		var err error
		binPath, err = exec.LookPath("sbatch")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
		}
	} else {
		if absPath, err := filepath.Abs(binPath); err == nil {
			binPath = absPath
		}
		info, err := os.Stat(binPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrSchedulerNotFound, binPath)
		}
	}

	squeueBin, _ := exec.LookPath("squeue")

	return &SlurmScheduler{
		sbatchBin: binPath,
		squeueBin: squeueBin,
		// Submission wrappers reformat sbatch output, so accept the first
		// integer token rather than the full "Submitted batch job N" phrase.
		jobIDRe: regexp.MustCompile(`\d+`),
	}, nil
}

// IsAvailable checks if SLURM is available and we're not inside a SLURM job
func (s *SlurmScheduler) IsAvailable() bool {
	if s.sbatchBin == "" {
		return false
	}

	// Check if we're already inside a SLURM job
	_, inJob := os.LookupEnv("SLURM_JOB_ID")
	if inJob {
		return false
	}

	return true
}

// GetInfo returns information about the SLURM scheduler
func (s *SlurmScheduler) GetInfo() *SchedulerInfo {
	_, inJob := os.LookupEnv("SLURM_JOB_ID")
	available := s.IsAvailable()

	info := &SchedulerInfo{
		Type:      "SLURM",
		Binary:    s.sbatchBin,
		InJob:     inJob,
		Available: available,
	}

	// Try to get SLURM version
	if s.sbatchBin != "" {
		if version, err := s.getSlurmVersion(); err == nil {
			info.Version = version
		}
	}

	return info
}

// getSlurmVersion attempts to get the SLURM version
func (s *SlurmScheduler) getSlurmVersion() (string, error) {
	cmd := exec.Command(s.sbatchBin, "--version")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	// Parse version from output like "slurm 23.02.6"
	versionStr := strings.TrimSpace(string(output))
	parts := strings.Fields(versionStr)
	if len(parts) >= 2 {
		return parts[1], nil
	}

	return versionStr, nil
}

// Submit submits a SLURM job script and returns the assigned job ID.
// workDir becomes the working directory of the sbatch invocation, so the
// scheduler resolves relative input files and writes slurm-<id>.out there.
func (s *SlurmScheduler) Submit(scriptPath string, workDir string) (string, error) {
	cmd := exec.Command(s.sbatchBin, scriptPath)
	cmd.Dir = workDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", NewSubmissionError("SLURM", filepath.Base(scriptPath), string(output), err)
	}

	return s.parseJobID(string(output))
}

// parseJobID extracts the job ID from sbatch output ("Submitted batch job 12345").
func (s *SlurmScheduler) parseJobID(output string) (string, error) {
	jobID := s.jobIDRe.FindString(output)
	if jobID == "" {
		return "", fmt.Errorf("%w: %s", ErrJobIDParseFailed, strings.TrimSpace(output))
	}
	return jobID, nil
}

// IsJobAlive queries squeue for the given job ID.
// A job is live when squeue exits zero and reports a state for the ID.
// Query failures (unknown ID, scheduler unreachable) report not-live with the error.
func (s *SlurmScheduler) IsJobAlive(jobID string) (bool, error) {
	squeue := s.squeueBin
	if squeue == "" {
		return false, &QueryError{Scheduler: "SLURM", JobID: jobID, Err: ErrSchedulerNotFound}
	}

	cmd := exec.Command(squeue, "-h", "-j", jobID, "-o", "%T")
	output, err := cmd.Output()
	if err != nil {
		return false, &QueryError{Scheduler: "SLURM", JobID: jobID, Err: err}
	}

	// squeue exits zero with empty output once a job has left the queue
	return strings.TrimSpace(string(output)) != "", nil
}
