package realtime

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/service"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
)

type listenerEntry struct {
	id       string
	listener service.Listener
	filter   *entity.Filter
	active   atomic.Bool
}

// Registry is an ordered set of listeners. Dispatch walks a snapshot so listeners
// may add or remove listeners, including themselves, while being invoked.
type Registry struct {
	mu      sync.RWMutex
	entries []*listenerEntry
	logger  *logger.Logger

	panics atomic.Int64
}

// NewRegistry creates an empty subscription registry
func NewRegistry(logger *logger.Logger) *Registry {
	return &Registry{
		logger: logger.WithComponent("subscription-registry"),
	}
}

// AddListener registers listener with an optional filter. A nil or empty filter
// matches every event.
func (r *Registry) AddListener(listener service.Listener, filter *entity.Filter) service.Unsubscribe {
	entry := &listenerEntry{
		id:       uuid.NewString(),
		listener: listener,
		filter:   filter,
	}
	entry.active.Store(true)

	r.mu.Lock()
	r.entries = append(r.entries, entry)
	count := len(r.entries)
	r.mu.Unlock()

	r.logger.Debug("Listener added",
		zap.String("listener_id", entry.id),
		zap.Strings("types", filter.TypeNames()),
		zap.Int("listeners", count))

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(entry) })
	}
}

func (r *Registry) remove(entry *listenerEntry) {
	entry.active.Store(false)

	r.mu.Lock()
	for i, e := range r.entries {
		if e == entry {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			break
		}
	}
	count := len(r.entries)
	r.mu.Unlock()

	r.logger.Debug("Listener removed",
		zap.String("listener_id", entry.id),
		zap.Int("listeners", count))
}

// Dispatch invokes every matching listener in registration order
func (r *Registry) Dispatch(event entity.WebSocketEvent) {
	r.mu.RLock()
	snapshot := make([]*listenerEntry, len(r.entries))
	copy(snapshot, r.entries)
	r.mu.RUnlock()

	for _, entry := range snapshot {
		if !entry.active.Load() {
			continue
		}
		if !entry.filter.Matches(event) {
			continue
		}
		r.invoke(entry, event)
	}
}

func (r *Registry) invoke(entry *listenerEntry, event entity.WebSocketEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			r.panics.Add(1)
			r.logger.WithListener(entry.id).WithEvent(event).Error("Listener panicked",
				zap.String("panic", fmt.Sprint(rec)))
		}
	}()

	entry.listener(event)
}

// ListenerCount returns the number of registered listeners
func (r *Registry) ListenerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// PanicCount returns how many listener invocations panicked
func (r *Registry) PanicCount() int64 {
	return r.panics.Load()
}

func (r *Registry) fillStats(stats *entity.ConnectionStats) {
	stats.Listeners = r.ListenerCount()
	stats.ListenerPanics = r.PanicCount()
}
