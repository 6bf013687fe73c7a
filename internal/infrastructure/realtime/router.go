package realtime

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/service"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
	"github.com/valentine-ezugu/xflowapp-sub001/pkg/utils"
)

const maxLoggedFrame = 256

// statsFiller contributes counters to a connection stats snapshot
type statsFiller interface {
	fillStats(stats *entity.ConnectionStats)
}

// Router decodes inbound frames and hands well-formed events to the registry.
// Frames that do not decode are dropped and counted.
type Router struct {
	registry service.SubscriptionRegistry
	logger   *logger.Logger

	received    atomic.Int64
	dropped     atomic.Int64
	routed      atomic.Int64
	lastMessage atomic.Int64
}

// NewRouter creates a new event router
func NewRouter(registry service.SubscriptionRegistry, logger *logger.Logger) *Router {
	return &Router{
		registry: registry,
		logger:   logger.WithComponent("event-router"),
	}
}

// OnMessage handles one raw frame
func (r *Router) OnMessage(raw []byte) {
	r.received.Add(1)
	r.lastMessage.Store(time.Now().UnixNano())

	event, err := entity.DecodeEvent(raw)
	if err != nil {
		r.dropped.Add(1)
		r.logger.Debug("Dropping frame",
			zap.Error(err),
			zap.String("frame", utils.TruncateString(string(raw), maxLoggedFrame)))
		return
	}

	r.routed.Add(1)
	r.registry.Dispatch(event)
}

// FramesReceived returns the number of frames seen
func (r *Router) FramesReceived() int64 { return r.received.Load() }

// FramesDropped returns the number of frames that failed to decode
func (r *Router) FramesDropped() int64 { return r.dropped.Load() }

// EventsRouted returns the number of events handed to the registry
func (r *Router) EventsRouted() int64 { return r.routed.Load() }

func (r *Router) fillStats(stats *entity.ConnectionStats) {
	stats.FramesReceived = r.received.Load()
	stats.FramesDropped = r.dropped.Load()
	stats.EventsRouted = r.routed.Load()
	if ts := r.lastMessage.Load(); ts > 0 {
		stats.LastMessageTime = time.Unix(0, ts)
	}

	if filler, ok := r.registry.(statsFiller); ok {
		filler.fillStats(stats)
	} else {
		stats.Listeners = r.registry.ListenerCount()
	}
}
