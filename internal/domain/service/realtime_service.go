package service

import (
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
)

// ConnectionManager owns the single shared realtime connection
type ConnectionManager interface {
	// Connection management. None of these block on network I/O.
	Connect()
	Disconnect()
	Reconnect()
	IsConnected() bool
	State() entity.ConnectionState

	// Health checks
	GetConnectionStats() entity.ConnectionStats
}

// Listener receives dispatched events
type Listener func(event entity.WebSocketEvent)

// Unsubscribe removes exactly one listener. Calling it more than once is a no-op.
type Unsubscribe func()

// SubscriptionRegistry tracks listeners and fans events out to them
type SubscriptionRegistry interface {
	AddListener(listener Listener, filter *entity.Filter) Unsubscribe
	Dispatch(event entity.WebSocketEvent)
	ListenerCount() int
}

// FrameHandler consumes raw inbound frames in arrival order
type FrameHandler interface {
	OnMessage(raw []byte)
}
