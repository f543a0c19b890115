package workpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsValue(t *testing.T) {
	p := New(2)
	got, err := Run(context.Background(), p, func(ctx context.Context) (string, error) {
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", got)
}

func TestRunReturnsError(t *testing.T) {
	p := New(1)
	boom := errors.New("boom")
	_, err := Run(context.Background(), p, func(ctx context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	p := New(3)
	var running, peak int32

	var futures []*Future[int]
	for i := 0; i < 12; i++ {
		i := i
		futures = append(futures, Submit(context.Background(), p, func(ctx context.Context) (int, error) {
			n := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return i, nil
		}))
	}

	for i, f := range futures {
		got, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestSubmitHonoursCancelledContextWhileWaiting(t *testing.T) {
	p := New(1)
	block := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	first := Submit(context.Background(), p, func(ctx context.Context) (int, error) {
		wg.Done()
		<-block
		return 1, nil
	})
	wg.Wait()

	ctx, cancel := context.WithCancel(context.Background())
	second := Submit(ctx, p, func(ctx context.Context) (int, error) {
		t.Error("should not run")
		return 2, nil
	})
	cancel()

	_, err := second.Await(context.Background())
	assert.ErrorIs(t, err, context.Canceled)

	close(block)
	v, err := first.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestSubmitRecoversPanic(t *testing.T) {
	p := New(1)
	_, err := Run(context.Background(), p, func(ctx context.Context) (int, error) {
		panic("bad input")
	})
	assert.ErrorContains(t, err, "bad input")

	// the slot is released after a panic
	v, err := Run(context.Background(), p, func(ctx context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
