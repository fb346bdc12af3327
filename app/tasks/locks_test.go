package tasks

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestStageLocks_TryAcquire(t *testing.T) {
	locks := NewStageLocks()

	if !locks.TryAcquire(TaskTypeAnnotateItems, "") {
		t.Fatal("First acquire should succeed")
	}
	if locks.TryAcquire(TaskTypeAnnotateItems, "") {
		t.Error("Second acquire of the same stage should fail")
	}

	locks.Release(TaskTypeAnnotateItems, "")

	if !locks.TryAcquire(TaskTypeAnnotateItems, "") {
		t.Error("Acquire after release should succeed")
	}
}

func TestStageLocks_ScopesAreIndependent(t *testing.T) {
	locks := NewStageLocks()

	if !locks.TryAcquire(TaskTypeAssembleDigest, "2026-03-14") {
		t.Fatal("First scope acquire should succeed")
	}
	if !locks.TryAcquire(TaskTypeAssembleDigest, "2026-03-15") {
		t.Error("Different scope should be acquirable concurrently")
	}
	if !locks.TryAcquire(TaskTypeAnnotateItems, "2026-03-14") {
		t.Error("Different stage with the same scope should be acquirable")
	}
}

func TestStageLocks_ConcurrentAcquire(t *testing.T) {
	locks := NewStageLocks()

	var acquired atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if locks.TryAcquire(TaskTypeRunPipeline, "") {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()

	if acquired.Load() != 1 {
		t.Errorf("Exactly one goroutine should win the lock, got %d", acquired.Load())
	}
}
