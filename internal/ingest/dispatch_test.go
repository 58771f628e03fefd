package ingest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(4, 16, zaptest.NewLogger(t))
	d.Start(context.Background())

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		d.Enqueue(func(context.Context) {
			defer wg.Done()
			count.Add(1)
		})
	}
	wg.Wait()

	assert.Equal(t, int64(50), count.Load())
	assert.True(t, d.Drain(time.Second))
}

func TestDispatcherDrainWaitsForInflight(t *testing.T) {
	d := NewDispatcher(2, 8, zaptest.NewLogger(t))
	d.Start(context.Background())

	release := make(chan struct{})
	var done atomic.Bool
	d.Enqueue(func(context.Context) {
		<-release
		done.Store(true)
	})

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()

	require.True(t, d.Drain(time.Second))
	assert.True(t, done.Load(), "drain returned before the in-flight job finished")
}

func TestDispatcherJobsSurviveShutdownSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(1, 8, zaptest.NewLogger(t))
	d.Start(ctx)

	release := make(chan struct{})
	var sawCancel atomic.Bool
	d.Enqueue(func(jctx context.Context) {
		<-release
		sawCancel.Store(jctx.Err() != nil)
	})

	// Cancel the boot context (as a shutdown signal does) while the job is
	// still in flight, then let it finish and drain.
	cancel()
	close(release)

	require.True(t, d.Drain(time.Second))
	assert.False(t, sawCancel.Load(),
		"in-flight job context must stay live through shutdown so transactions run to commit")
}

func TestDispatcherDrainDeadline(t *testing.T) {
	d := NewDispatcher(1, 8, zaptest.NewLogger(t))
	d.Start(context.Background())

	block := make(chan struct{})
	defer close(block)
	d.Enqueue(func(context.Context) { <-block })

	assert.False(t, d.Drain(50*time.Millisecond))
}

func TestDispatcherRejectsAfterDrain(t *testing.T) {
	d := NewDispatcher(1, 8, zaptest.NewLogger(t))
	d.Start(context.Background())
	require.True(t, d.Drain(time.Second))

	// Must not panic on the closed queue.
	d.Enqueue(func(context.Context) { t.Error("job ran after drain") })
	time.Sleep(20 * time.Millisecond)
}

func TestDispatcherPanicIsFatal(t *testing.T) {
	d := NewDispatcher(2, 8, zaptest.NewLogger(t))
	d.Start(context.Background())

	d.Enqueue(func(context.Context) { panic("handler bug") })

	select {
	case err := <-d.Fatal():
		assert.ErrorContains(t, err, "handler bug")
	case <-time.After(time.Second):
		t.Fatal("panic never surfaced on the fatal channel")
	}

	// The surviving workers still drain.
	assert.True(t, d.Drain(time.Second))
}
