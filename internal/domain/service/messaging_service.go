package service

import (
	"context"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
)

// EventPublisher defines the interface for relaying realtime events to other services
type EventPublisher interface {
	// Connect establishes connection to the messaging system
	Connect(ctx context.Context) error

	// Disconnect closes connection to the messaging system
	Disconnect() error

	// IsConnected checks if connected to the messaging system
	IsConnected() bool

	// PublishEvent publishes a single realtime event
	PublishEvent(ctx context.Context, event entity.WebSocketEvent) error

	// GetStreamInfo returns information about the message stream (if applicable)
	GetStreamInfo() (interface{}, error)
}
