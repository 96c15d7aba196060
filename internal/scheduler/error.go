package scheduler

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrSchedulerNotAvailable indicates the scheduler is not available
	ErrSchedulerNotAvailable = errors.New("scheduler is not available")

	// ErrSchedulerNotFound indicates the scheduler binary was not found
	ErrSchedulerNotFound = errors.New("scheduler binary not found in PATH")

	// ErrAlreadyInJob indicates we're already inside a scheduler job
	ErrAlreadyInJob = errors.New("already inside a scheduler job")

	// ErrJobIDParseFailed indicates parsing job ID from output failed
	ErrJobIDParseFailed = errors.New("failed to parse job ID from scheduler output")
)

// SubmissionError represents a failed job submission
type SubmissionError struct {
	Scheduler string // Scheduler type
	Script    string // Script that was submitted
	Output    string // Raw command output
	Err       error  // Underlying error
}

func (e *SubmissionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s submission of %s failed: %v\n%s",
			e.Scheduler, e.Script, e.Err, e.Output)
	}
	return fmt.Sprintf("%s submission of %s failed: %v", e.Scheduler, e.Script, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// NewSubmissionError creates a SubmissionError
func NewSubmissionError(scheduler string, script string, output string, err error) *SubmissionError {
	return &SubmissionError{
		Scheduler: scheduler,
		Script:    script,
		Output:    output,
		Err:       err,
	}
}

// QueryError represents a failed job-state query
type QueryError struct {
	Scheduler string // Scheduler type
	JobID     string // Job ID that was queried
	Err       error  // Underlying error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s query for job %s failed: %v", e.Scheduler, e.JobID, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsSubmissionError checks if an error is a SubmissionError
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}
