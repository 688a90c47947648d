// Package shutdown cancels work and runs cleanups on SIGINT or SIGTERM.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler manages graceful shutdown
type Handler struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
	cleanupFns []func()
	mu         sync.Mutex
	signals    chan os.Signal
}

// New creates a new shutdown handler derived from parent.
func New(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	return &Handler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context is cancelled when shutdown starts.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// AddCleanup registers a cleanup function. Cleanups run in reverse order
// of registration.
func (h *Handler) AddCleanup(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanupFns = append(h.cleanupFns, fn)
}

// Listen triggers Shutdown on the first SIGINT or SIGTERM.
func (h *Handler) Listen() {
	h.signals = make(chan os.Signal, 1)
	signal.Notify(h.signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-h.signals:
			h.Shutdown()
		case <-h.ctx.Done():
		}
		signal.Stop(h.signals)
	}()
}

// Shutdown cancels the context and runs the cleanups once.
func (h *Handler) Shutdown() {
	h.once.Do(func() {
		h.cancel()

		h.mu.Lock()
		fns := h.cleanupFns
		h.cleanupFns = nil
		h.mu.Unlock()

		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	})
}

// Go runs fn in a goroutine tracked by Wait.
func (h *Handler) Go(fn func(ctx context.Context)) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		fn(h.ctx)
	}()
}

// Wait waits for all work started with Go to complete
func (h *Handler) Wait() {
	h.wg.Wait()
}
