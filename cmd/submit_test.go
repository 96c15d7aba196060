package cmd

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/scheduler"
)

// resetSubmitFlags pins the submit command's flag globals to their defaults
// for the duration of one test.
func resetSubmitFlags(t *testing.T) {
	t.Helper()
	prevDry, prevDelay, prevBatch := submitDryRun, submitDelay, submitBatchSize
	t.Cleanup(func() {
		submitDryRun, submitDelay, submitBatchSize = prevDry, prevDelay, prevBatch
	})
	submitDryRun, submitDelay, submitBatchSize = false, 1, 0
}

func TestParseCampaignArgs(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		args      []string
		wantErr   string
		wantStart int
		wantEnd   int
		hasStart  bool
		hasEnd    bool
	}{
		{
			name: "directory only",
			args: []string{dir},
		},
		{
			name:      "start index",
			args:      []string{dir, "5"},
			wantStart: 5,
			hasStart:  true,
		},
		{
			name:      "start and end",
			args:      []string{dir, "5", "20"},
			wantStart: 5,
			wantEnd:   20,
			hasStart:  true,
			hasEnd:    true,
		},
		{
			name:      "single-unit range",
			args:      []string{dir, "7", "7"},
			wantStart: 7,
			wantEnd:   7,
			hasStart:  true,
			hasEnd:    true,
		},
		{
			name:    "missing directory",
			args:    []string{dir + "/nope"},
			wantErr: "not found",
		},
		{
			name:    "non-numeric start",
			args:    []string{dir, "abc"},
			wantErr: "invalid start index",
		},
		{
			name:    "non-numeric end",
			args:    []string{dir, "1", "xyz"},
			wantErr: "invalid end index",
		},
		{
			name:    "inverted range",
			args:    []string{dir, "10", "5"},
			wantErr: "below start index",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseCampaignArgs(tt.args)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCampaignArgs: %v", err)
			}
			if opts.Range.HasStart != tt.hasStart || opts.Range.HasEnd != tt.hasEnd {
				t.Errorf("range bounds = %v/%v, want %v/%v",
					opts.Range.HasStart, opts.Range.HasEnd, tt.hasStart, tt.hasEnd)
			}
			if tt.hasStart && opts.Range.Start != tt.wantStart {
				t.Errorf("start = %d, want %d", opts.Range.Start, tt.wantStart)
			}
			if tt.hasEnd && opts.Range.End != tt.wantEnd {
				t.Errorf("end = %d, want %d", opts.Range.End, tt.wantEnd)
			}
		})
	}
}

func TestRunSubmitRefusesNestedSubmission(t *testing.T) {
	resetSubmitFlags(t)
	config.LoadDefaults()
	scheduler.ClearActiveScheduler()
	t.Cleanup(scheduler.ClearActiveScheduler)
	t.Setenv("SLURM_JOB_ID", "123")

	err := runSubmit(submitCmd, []string{t.TempDir()})
	if !errors.Is(err, scheduler.ErrAlreadyInJob) {
		t.Errorf("error = %v, want ErrAlreadyInJob", err)
	}
}

func TestRunSubmitLocalModeError(t *testing.T) {
	resetSubmitFlags(t)
	config.LoadDefaults()
	config.Global.SubmitJob = false
	scheduler.ClearActiveScheduler()
	t.Cleanup(scheduler.ClearActiveScheduler)
	for _, env := range []string{"SLURM_JOB_ID", "PBS_JOBID", "LSB_JOBID"} {
		os.Unsetenv(env)
	}

	err := runSubmit(submitCmd, []string{t.TempDir()})
	if !errors.Is(err, scheduler.ErrSchedulerNotAvailable) {
		t.Errorf("error = %v, want ErrSchedulerNotAvailable", err)
	}
}

func TestRunSubmitFlagValidation(t *testing.T) {
	tests := []struct {
		name    string
		delay   int
		batch   int
		wantErr string
	}{
		{"negative delay", -1, 0, "must be >= 0"},
		{"negative batch size", 1, -1, "must be >= 0 (0 = unlimited)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetSubmitFlags(t)
			submitDelay = tt.delay
			submitBatchSize = tt.batch

			err := runSubmit(submitCmd, []string{t.TempDir()})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSubmitCommandRegistered(t *testing.T) {
	for _, name := range []string{"submit", "status", "dipol", "extract", "setup", "scheduler", "sort-poscar"} {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("command %q not registered on the root command", name)
		}
	}
}
