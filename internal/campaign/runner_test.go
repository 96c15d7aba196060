package campaign

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// newTestCampaign builds a root with n fully-populated calc directories.
func newTestCampaign(t *testing.T, n int) string {
	t.Helper()
	root := t.TempDir()
	for i := 0; i < n; i++ {
		newTestUnit(t, root, unitName(i), i, allInputs("ENCUT = 520\n"))
	}
	return root
}

func unitName(i int) string {
	return fmt.Sprintf("calc_%04d", i)
}

func TestRunSubmitsAllInOrder(t *testing.T) {
	root := newTestCampaign(t, 5)
	sched := newFakeScheduler()

	runner := NewRunner(testConfig(), sched, Options{Root: root})
	summary, err := runner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"calc_0000", "calc_0001", "calc_0002", "calc_0003", "calc_0004"}
	if !reflect.DeepEqual(sched.submitted, want) {
		t.Errorf("submitted = %v, want %v", sched.submitted, want)
	}
	if summary.Successful != 5 || summary.Failed != 0 || summary.Skipped != 0 {
		t.Errorf("summary = %+v, want 5/0/0", summary)
	}
	if summary.Total() != 5 {
		t.Errorf("total = %d, want 5", summary.Total())
	}
}

func TestRunSkipsCompletedUnit(t *testing.T) {
	root := newTestCampaign(t, 5)
	writeFile(t, filepath.Join(root, "calc_0002", "OUTCAR"),
		"...\n Total CPU time used (sec):  42.0\n")

	sched := newFakeScheduler()
	runner := NewRunner(testConfig(), sched, Options{Root: root})
	summary, err := runner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"calc_0000", "calc_0001", "calc_0003", "calc_0004"}
	if !reflect.DeepEqual(sched.submitted, want) {
		t.Errorf("submitted = %v, want %v", sched.submitted, want)
	}
	if summary.Successful != 4 || summary.Skipped != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 4 successful / 1 skipped / 0 failed", summary)
	}
	if summary.Total() != 5 {
		t.Errorf("total = %d, want 5", summary.Total())
	}
}

func TestRunLocalFailureDoesNotAbortBatch(t *testing.T) {
	root := newTestCampaign(t, 3)
	sched := newFakeScheduler()
	sched.failFor["calc_0001"] = true

	runner := NewRunner(testConfig(), sched, Options{Root: root})
	summary, err := runner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"calc_0000", "calc_0002"}
	if !reflect.DeepEqual(sched.submitted, want) {
		t.Errorf("submitted = %v, want %v", sched.submitted, want)
	}
	if summary.Failed != 1 || summary.Successful != 2 {
		t.Errorf("summary = %+v, want 2 successful / 1 failed", summary)
	}
}

func TestRunBatchSizeCutoff(t *testing.T) {
	root := newTestCampaign(t, 5)
	sched := newFakeScheduler()

	runner := NewRunner(testConfig(), sched, Options{Root: root, BatchSize: 2})
	summary, err := runner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sched.submitted) != 2 {
		t.Errorf("submitted %d jobs, want exactly 2: %v", len(sched.submitted), sched.submitted)
	}
	// Remaining units are left unprocessed, not skipped
	if summary.Total() != 2 {
		t.Errorf("total = %d, want 2 (cutoff leaves the rest untouched)", summary.Total())
	}
}

func TestRunBatchSizeCountsOnlySubmissionAttempts(t *testing.T) {
	root := newTestCampaign(t, 4)
	// calc_0000 is completed; it must not consume a batch slot
	writeFile(t, filepath.Join(root, "calc_0000", "OUTCAR"),
		"Total CPU time used (sec): 1.0\n")

	sched := newFakeScheduler()
	runner := NewRunner(testConfig(), sched, Options{Root: root, BatchSize: 2})
	summary, err := runner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"calc_0001", "calc_0002"}
	if !reflect.DeepEqual(sched.submitted, want) {
		t.Errorf("submitted = %v, want %v", sched.submitted, want)
	}
	if summary.Skipped != 1 || summary.Successful != 2 {
		t.Errorf("summary = %+v, want 2 successful / 1 skipped", summary)
	}
}

func TestRunDryRunHasNoSideEffects(t *testing.T) {
	root := newTestCampaign(t, 2)
	// Stale artifacts that a live run would delete
	stale := filepath.Join(root, "calc_0000", "OUTCAR")
	writeFile(t, stale, "half-finished run\n")
	staleLog := filepath.Join(root, "calc_0000", "slurm-42.out")
	writeFile(t, staleLog, "old log\n")

	sched := newFakeScheduler()
	runner := NewRunner(testConfig(), sched, Options{Root: root, DryRun: true, Delay: time.Second})

	start := time.Now()
	summary, err := runner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sched.submitted) != 0 {
		t.Errorf("dry run submitted %v", sched.submitted)
	}
	if summary.Successful != 2 {
		t.Errorf("summary = %+v, want 2 successful (dry-run counts as success)", summary)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Errorf("dry run deleted %s", stale)
	}
	if _, err := os.Stat(staleLog); err != nil {
		t.Errorf("dry run deleted %s", staleLog)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("dry run applied the inter-submission delay (took %v)", elapsed)
	}
}

func TestRunDelayOnlyBetweenLiveSubmissions(t *testing.T) {
	root := newTestCampaign(t, 3)
	sched := newFakeScheduler()

	var slept []time.Duration
	runner := NewRunner(testConfig(), sched, Options{Root: root, Delay: 2 * time.Second})
	runner.sleep = func(d time.Duration) { slept = append(slept, d) }

	if _, err := runner.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Three submissions: a pause after the first and second, none after the last
	if len(slept) != 2 {
		t.Errorf("slept %d times (%v), want 2", len(slept), slept)
	}
}

func TestResumeCommandKeepsEndBound(t *testing.T) {
	bounded := IndexRange{End: 49, HasEnd: true}
	if got := resumeCommand("./calcs", 20, bounded); got != "vaspflow submit ./calcs 20 49" {
		t.Errorf("bounded resume = %q", got)
	}
	if got := resumeCommand("./calcs", 20, IndexRange{}); got != "vaspflow submit ./calcs 20" {
		t.Errorf("open resume = %q", got)
	}
}

func TestRunIdempotentAfterCompletion(t *testing.T) {
	root := newTestCampaign(t, 3)
	sched := newFakeScheduler()

	runner := NewRunner(testConfig(), sched, Options{Root: root})
	first, err := runner.Run()
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.Successful != 3 {
		t.Fatalf("first run summary = %+v, want 3 successful", first)
	}

	// The scheduler now owns the jobs: it writes its stdout logs and keeps
	// the jobs alive.
	for i, jobID := range []string{"1001", "1002", "1003"} {
		writeFile(t, filepath.Join(root, unitName(i), "slurm-"+jobID+".out"), "running\n")
		sched.alive[jobID] = true
	}

	second, err := NewRunner(testConfig(), sched, Options{Root: root}).Run()
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(sched.submitted) != 3 {
		t.Errorf("second run produced extra submissions: %v", sched.submitted)
	}
	if second.Skipped != 3 || second.Successful != 0 {
		t.Errorf("second run summary = %+v, want 3 skipped", second)
	}
}

func TestRunClearsStaleArtifactsBeforeSubmit(t *testing.T) {
	root := newTestCampaign(t, 1)
	unitDir := filepath.Join(root, "calc_0000")
	for _, name := range []string{"OUTCAR", "CONTCAR", "vasprun.xml", "slurm-9.out"} {
		writeFile(t, filepath.Join(unitDir, name), "stale\n")
	}

	sched := newFakeScheduler()
	if _, err := NewRunner(testConfig(), sched, Options{Root: root}).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, name := range []string{"OUTCAR", "CONTCAR", "vasprun.xml", "slurm-9.out"} {
		if _, err := os.Stat(filepath.Join(unitDir, name)); !os.IsNotExist(err) {
			t.Errorf("stale artifact %s survived submission", name)
		}
	}
	// Inputs must survive the cleanup
	for _, name := range []string{"POSCAR", "INCAR", "KPOINTS", "POTCAR", "job.slurm"} {
		if _, err := os.Stat(filepath.Join(unitDir, name)); err != nil {
			t.Errorf("input artifact %s was deleted", name)
		}
	}
}

func TestRunSkipsUnitsMissingInputs(t *testing.T) {
	root := t.TempDir()
	newTestUnit(t, root, "calc_0000", 0, allInputs("ENCUT = 520\n"))
	broken := allInputs("ENCUT = 520\n")
	delete(broken, "POTCAR")
	newTestUnit(t, root, "calc_0001", 1, broken)

	sched := newFakeScheduler()
	summary, err := NewRunner(testConfig(), sched, Options{Root: root}).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !reflect.DeepEqual(sched.submitted, []string{"calc_0000"}) {
		t.Errorf("submitted = %v, want only calc_0000", sched.submitted)
	}
	if summary.Skipped != 1 || summary.Successful != 1 {
		t.Errorf("summary = %+v, want 1 successful / 1 skipped", summary)
	}
}

func TestRunNoWorkFound(t *testing.T) {
	runner := NewRunner(testConfig(), newFakeScheduler(), Options{Root: t.TempDir()})
	if _, err := runner.Run(); err == nil {
		t.Error("Run on an empty root should fail with ErrNoWorkFound")
	}
}

func TestClassifyReportsStates(t *testing.T) {
	root := t.TempDir()

	ready := allInputs("ENCUT = 520\n")
	newTestUnit(t, root, "calc_0000", 0, ready)

	done := allInputs("ENCUT = 520\n")
	done["OUTCAR"] = "Total CPU time used (sec): 5.0\n"
	newTestUnit(t, root, "calc_0001", 1, done)

	running := allInputs("ENCUT = 520\n")
	running["slurm-300.out"] = ""
	newTestUnit(t, root, "calc_0002", 2, running)

	broken := allInputs("ENCUT = 520\n")
	delete(broken, "KPOINTS")
	newTestUnit(t, root, "calc_0003", 3, broken)

	sched := newFakeScheduler()
	sched.alive["300"] = true

	units, err := NewRunner(testConfig(), sched, Options{Root: root}).Classify()
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	wantStates := []State{StateSubmittable, StateCompleted, StateRunning, StateMissingInputs}
	for i, u := range units {
		if u.State != wantStates[i] {
			t.Errorf("%s: state = %v, want %v", u.Name, u.State, wantStates[i])
		}
	}
	if len(sched.submitted) != 0 {
		t.Errorf("Classify submitted jobs: %v", sched.submitted)
	}
}
