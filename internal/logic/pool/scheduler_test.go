package pool_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sandboxlabs/warmpool-controller/internal/logic/pool"
)

type fakePrewarmer struct {
	mu    sync.Mutex
	calls []int
	fired chan struct{}
}

func newFakePrewarmer() *fakePrewarmer {
	return &fakePrewarmer{fired: make(chan struct{}, 16)}
}

func (f *fakePrewarmer) Prewarm(_ context.Context, count int) (int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, count)
	f.mu.Unlock()

	select {
	case f.fired <- struct{}{}:
	default:
	}

	return count, nil
}

func (f *fakePrewarmer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

type fakeCron struct {
	next time.Time
	err  error
}

func (f *fakeCron) NextAfter(_, _ string, after time.Time) (time.Time, error) {
	if f.err != nil {
		return time.Time{}, f.err
	}

	if !f.next.IsZero() {
		return f.next, nil
	}

	return after.Add(10 * time.Millisecond), nil
}

func TestPrewarmScheduler(t *testing.T) {
	t.Parallel()

	logger := slog.Default()

	t.Run("fires prewarm at the scheduled time", func(t *testing.T) {
		t.Parallel()

		prewarmer := newFakePrewarmer()
		sched := pool.NewPrewarmScheduler(logger, prewarmer, &fakeCron{}, "* * * * *", "", 4)

		ctx, cancel := context.WithCancel(t.Context())
		require.NoError(t, sched.Start(ctx))

		select {
		case <-prewarmer.fired:
		case <-time.After(2 * time.Second):
			t.Fatal("scheduled prewarm never fired")
		}

		cancel()
		require.NoError(t, sched.Shutdown(context.Background()))

		prewarmer.mu.Lock()
		defer prewarmer.mu.Unlock()
		require.Equal(t, 4, prewarmer.calls[0])
	})

	t.Run("stops on cron parse error", func(t *testing.T) {
		t.Parallel()

		prewarmer := newFakePrewarmer()
		cron := &fakeCron{err: errors.New("bad spec")}
		sched := pool.NewPrewarmScheduler(logger, prewarmer, cron, "bad", "", 1)

		require.NoError(t, sched.Start(t.Context()))

		// The loop exits on its own; Shutdown must not hang.
		require.NoError(t, sched.Shutdown(context.Background()))
		require.Zero(t, prewarmer.callCount())
	})

	t.Run("shutdown waits for the loop to exit", func(t *testing.T) {
		t.Parallel()

		prewarmer := newFakePrewarmer()
		cron := &fakeCron{next: time.Now().Add(time.Hour)}
		sched := pool.NewPrewarmScheduler(logger, prewarmer, cron, "0 0 * * *", "", 1)

		ctx, cancel := context.WithCancel(t.Context())
		require.NoError(t, sched.Start(ctx))

		cancel()
		require.NoError(t, sched.Shutdown(context.Background()))
		require.Zero(t, prewarmer.callCount())
	})
}
