package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_RunsImmediatelyThenOnTick(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller("test", 10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, zerolog.Nop())

	require.True(t, p.Start(context.Background()))
	defer p.Stop()

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestPoller_StartTwiceIsRejected(t *testing.T) {
	p := NewPoller("test", time.Hour, func(ctx context.Context) error { return nil }, zerolog.Nop())

	require.True(t, p.Start(context.Background()))
	assert.False(t, p.Start(context.Background()))
	assert.True(t, p.Running())

	p.Stop()
	assert.False(t, p.Running())
}

func TestPoller_StopLeavesNoTicks(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller("test", 5*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	}, zerolog.Nop())

	p.Start(context.Background())
	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	p.Stop()

	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
}

func TestPoller_StopCancelsInFlightCycle(t *testing.T) {
	started := make(chan struct{})
	p := NewPoller("test", time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}, zerolog.Nop())

	p.Start(context.Background())
	<-started

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestPoller_RestartReseedsImmediateRun(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller("test", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, zerolog.Nop())

	p.Start(context.Background())
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	p.Stop()

	p.Start(context.Background())
	defer p.Stop()
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
}

func TestPool_StartStopAll(t *testing.T) {
	var a, b atomic.Int32
	pa := NewPoller("a", time.Hour, func(ctx context.Context) error { a.Add(1); return nil }, zerolog.Nop())
	pb := NewPoller("b", time.Hour, func(ctx context.Context) error { b.Add(1); return nil }, zerolog.Nop())

	pool := NewPool(zerolog.Nop(), pa, nil)
	pool.Add(pb)
	require.Equal(t, 2, pool.Len())

	pool.Start(context.Background())
	assert.Eventually(t, func() bool { return a.Load() == 1 && b.Load() == 1 }, time.Second, time.Millisecond)
	pool.Stop()

	assert.False(t, pa.Running())
	assert.False(t, pb.Running())
}
