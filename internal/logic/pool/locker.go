package pool

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// allocationLock serializes allocations end-to-end. The critical section
// spans an I/O suspension point (the label patch), so a plain map mutex is
// not enough: the lock is held from warm-map removal until the patch outcome
// is applied, and released on every exit path.
type allocationLock struct {
	sem *semaphore.Weighted
}

func newAllocationLock() *allocationLock {
	return &allocationLock{
		sem: semaphore.NewWeighted(1),
	}
}

// Acquire blocks until the previous allocation finishes or ctx is done.
func (l *allocationLock) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire allocation lock: %w", err)
	}

	return nil
}

// Release must be deferred immediately after a successful Acquire.
func (l *allocationLock) Release() {
	l.sem.Release(1)
}
