package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docucloud/internal/pkg/async"
)

func TestExecuteCollectsResultsByName(t *testing.T) {
	pool := async.NewPool(2)

	var ran int32
	boom := errors.New("boom")

	results := pool.Execute(context.Background(), []async.Task{
		{Name: "ok", Execute: func() error {
			atomic.AddInt32(&ran, 1)
			return nil
		}},
		{Name: "fails", Execute: func() error {
			atomic.AddInt32(&ran, 1)
			return boom
		}},
	})

	require.Len(t, results, 2)
	assert.EqualValues(t, 2, atomic.LoadInt32(&ran))
	assert.NoError(t, results["ok"].Err)
	assert.ErrorIs(t, results["fails"].Err, boom)
}

func TestExecuteRunsTasksConcurrently(t *testing.T) {
	pool := async.NewPool(2)

	first := make(chan struct{})
	second := make(chan struct{})

	done := make(chan map[string]async.Result, 1)
	go func() {
		done <- pool.Execute(context.Background(), []async.Task{
			{Name: "a", Execute: func() error {
				close(first)
				<-second
				return nil
			}},
			{Name: "b", Execute: func() error {
				<-first
				close(second)
				return nil
			}},
		})
	}()

	select {
	case results := <-done:
		assert.Len(t, results, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("tasks deadlocked, pool is not concurrent")
	}
}

func TestExecuteStopsOnCancelledContext(t *testing.T) {
	pool := async.NewPool(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Execute(ctx, []async.Task{
			{Name: "blocked", Execute: func() error {
				time.Sleep(time.Minute)
				return nil
			}},
			{Name: "queued", Execute: func() error { return nil }},
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Execute did not return after context cancellation")
	}
}
