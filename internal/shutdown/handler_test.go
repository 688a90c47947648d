package shutdown

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestShutdownRunsCleanupsOnceInReverse(t *testing.T) {
	h := New(context.Background())

	var order []int
	h.AddCleanup(func() { order = append(order, 1) })
	h.AddCleanup(func() { order = append(order, 2) })

	h.Shutdown()
	h.Shutdown()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("cleanup order = %v, want [2 1]", order)
	}
	if h.Context().Err() == nil {
		t.Error("context should be cancelled after Shutdown")
	}
}

func TestGoStopsOnShutdown(t *testing.T) {
	h := New(context.Background())

	var stopped atomic.Bool
	h.Go(func(ctx context.Context) {
		<-ctx.Done()
		stopped.Store(true)
	})

	h.Shutdown()

	done := make(chan struct{})
	go func() {
		h.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Shutdown")
	}
	if !stopped.Load() {
		t.Error("worker should observe cancellation")
	}
}

func TestParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := New(parent)
	h.Listen()

	cancel()
	select {
	case <-h.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("handler context should follow its parent")
	}
}
