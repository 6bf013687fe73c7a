// Package binding is the surface the rest of the application uses to receive realtime
// events. A binding registers one listener while active and removes it on every exit
// path; it never tears down the shared connection.
package binding

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/service"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
)

// base holds the registration shared by both binding kinds. The registered listener
// is a stable trampoline that always calls the latest callback.
type base struct {
	connection service.ConnectionManager
	registry   service.SubscriptionRegistry
	logger     *logger.Logger

	callback atomic.Pointer[service.Listener]

	mu          sync.Mutex
	active      bool
	filter      *entity.Filter
	listening   bool
	stop        chan struct{} // closed when the current activation ends
	unsubscribe service.Unsubscribe
}

func newBase(connection service.ConnectionManager, registry service.SubscriptionRegistry, callback service.Listener, logger *logger.Logger) *base {
	b := &base{
		connection: connection,
		registry:   registry,
		logger:     logger,
	}
	b.SetCallback(callback)
	return b
}

// SetCallback replaces the function events are delivered to. The registration is
// kept, so no event is missed or delivered twice across the swap. Moving between a
// nil and a non-nil callback on an active binding adds or removes the listener.
func (b *base) SetCallback(callback service.Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if callback == nil {
		b.callback.Store(nil)
	} else {
		b.callback.Store(&callback)
	}
	if b.active {
		b.syncLocked()
	}
}

// IsActive reports whether the binding is between Activate and Deactivate
func (b *base) IsActive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

func (b *base) deliver(event entity.WebSocketEvent) {
	if cb := b.callback.Load(); cb != nil {
		(*cb)(event)
	}
}

// activate connects and registers with filter. listening reports whether the scope
// allows a listener at all. The returned channel is closed when this activation ends.
func (b *base) activate(filter *entity.Filter, listening bool) <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active {
		return b.stop
	}
	b.active = true
	b.filter = filter
	b.listening = listening
	b.stop = make(chan struct{})

	b.connection.Connect()
	b.syncLocked()
	b.logger.Debug("Binding activated", zap.Strings("types", filter.TypeNames()), zap.Bool("listening", b.unsubscribe != nil))
	return b.stop
}

// Deactivate unregisters the listener. It is safe to call more than once.
func (b *base) Deactivate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deactivateLocked()
}

func (b *base) deactivateLocked() {
	if !b.active {
		return
	}
	b.active = false
	close(b.stop)
	b.stop = nil
	b.removeLocked()
	b.logger.Debug("Binding deactivated")
}

// rebind swaps the registration for one with a new filter if the binding is active
func (b *base) rebind(filter *entity.Filter, listening bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active {
		return
	}
	b.removeLocked()
	b.filter = filter
	b.listening = listening
	b.syncLocked()
}

// syncLocked registers or removes the trampoline so that a listener exists exactly
// when the scope allows one and a callback is set.
func (b *base) syncLocked() {
	want := b.listening && b.callback.Load() != nil
	switch {
	case want && b.unsubscribe == nil:
		b.unsubscribe = b.registry.AddListener(b.deliver, b.filter)
	case !want && b.unsubscribe != nil:
		b.removeLocked()
	}
}

func (b *base) removeLocked() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

// bindContext ends the activation identified by stop once ctx is done. The goroutine
// exits early if that activation ends first, and never touches a later one.
func (b *base) bindContext(ctx context.Context, stop <-chan struct{}) {
	if ctx.Done() == nil || stop == nil {
		return
	}
	go func() {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.active && b.stop == stop {
				b.deactivateLocked()
			}
		case <-stop:
		}
	}()
}
