package scheduler

import "sync"

// The campaign commands share one scheduler instance, chosen during startup
// from the configured submission binary. Access is guarded; command bodies
// and test fixtures touch it from different goroutines.
var (
	activeScheduler Scheduler
	schedulerMu     sync.RWMutex
)

// SetActiveScheduler installs the scheduler used for submissions and
// liveness probes. Passing nil disables submission; classification and
// dry-run still work without one.
func SetActiveScheduler(s Scheduler) {
	schedulerMu.Lock()
	defer schedulerMu.Unlock()
	activeScheduler = s
}

// ActiveScheduler returns the installed scheduler, or nil when submission
// is disabled.
func ActiveScheduler() Scheduler {
	schedulerMu.RLock()
	defer schedulerMu.RUnlock()
	return activeScheduler
}

// ClearActiveScheduler removes the installed scheduler.
func ClearActiveScheduler() {
	SetActiveScheduler(nil)
}
