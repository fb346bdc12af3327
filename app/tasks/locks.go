package tasks

import "sync"

// StageLocks serializes pipeline stages: at most one run of a given
// stage/scope pair executes at a time. An on-demand API trigger that races
// with a scheduled run is rejected instead of queued.
type StageLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewStageLocks() *StageLocks {
	return &StageLocks{held: make(map[string]bool)}
}

// TryAcquire takes the lock for a stage/scope pair. It reports false when the
// pair is already running.
func (l *StageLocks) TryAcquire(stage TaskType, scope string) bool {
	key := string(stage) + "/" + scope
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false
	}
	l.held[key] = true
	return true
}

func (l *StageLocks) Release(stage TaskType, scope string) {
	key := string(stage) + "/" + scope
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
}
