// Package signal turns SIGINT and SIGTERM into context cancellation for a
// lifecycle run.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels its context on the first SIGINT or SIGTERM.
type Handler struct {
	ctx    context.Context //nolint:containedctx // the handler owns the run context
	cancel context.CancelFunc
	sigs   chan os.Signal
	stop   chan struct{}

	mu       sync.Mutex
	received os.Signal

	fireOnce sync.Once
	stopOnce sync.Once
}

// NewHandler starts listening for interrupt signals.
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	err := engine.Run(h.Context(), ...)
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:    ctx,
		cancel: cancel,
		sigs:   make(chan os.Signal, 1),
		stop:   make(chan struct{}),
	}
	signal.Notify(h.sigs, syscall.SIGINT, syscall.SIGTERM)
	go h.loop()
	return h
}

// Context returns the context cancelled on interruption.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Received returns the signal that interrupted the run, or nil.
func (h *Handler) Received() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// Stop stops listening and releases the context. It is idempotent.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigs)
		close(h.stop)
		h.cancel()
	})
}

func (h *Handler) fire(sig os.Signal) {
	h.fireOnce.Do(func() {
		h.mu.Lock()
		h.received = sig
		h.mu.Unlock()
		h.cancel()
	})
}

// loop ends after the first signal or Stop. Later signals are dropped by
// the buffered channel.
func (h *Handler) loop() {
	for {
		select {
		case <-h.stop:
			return
		case <-h.ctx.Done():
			return
		case sig := <-h.sigs:
			h.fire(sig)
		}
	}
}
