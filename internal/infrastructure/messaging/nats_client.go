package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/config"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
	rterrors "github.com/valentine-ezugu/xflowapp-sub001/pkg/errors"
)

// RelayedEvent is the message body published for every realtime event
type RelayedEvent struct {
	Event      entity.WebSocketEvent `json:"event"`
	ReceivedAt time.Time             `json:"received_at"`
	RelayedAt  time.Time             `json:"relayed_at"`
}

// NATSClient relays realtime events to NATS JetStream and implements EventPublisher
type NATSClient struct {
	conn      *nats.Conn
	js        nats.JetStreamContext
	config    *config.NATSConfig
	logger    *logger.Logger
	mu        sync.RWMutex
	isRunning bool
}

// NewNATSClient creates a new NATS client
func NewNATSClient(cfg *config.NATSConfig, logger *logger.Logger) *NATSClient {
	return &NATSClient{
		config: cfg,
		logger: logger.WithComponent("nats-client"),
	}
}

// NewNATSEventPublisher creates a new NATS event publisher from main config
func NewNATSEventPublisher(cfg *config.Config, logger *logger.Logger) *NATSClient {
	return NewNATSClient(&cfg.NATS, logger)
}

// EventSubject returns the subject an event type is published on
func EventSubject(prefix string, eventType entity.EventType) string {
	return fmt.Sprintf("%s.events.%s", prefix, eventType)
}

// Connect connects to NATS server and sets up JetStream
func (n *NATSClient) Connect(ctx context.Context) error {
	if !n.config.Enabled {
		n.logger.Info("NATS is disabled, skipping connection")
		return nil
	}

	n.logger.Info("Connecting to NATS server", zap.String("url", n.config.URL))

	opts := []nats.Option{
		nats.Name("xflow-realtime"),
		nats.Timeout(n.config.ConnectTimeout),
		nats.ReconnectWait(n.config.ReconnectDelay),
		nats.MaxReconnects(n.config.ReconnectAttempts),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			n.logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			n.logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			n.logger.Info("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		n.logger.Error("Failed to connect to NATS", zap.Error(err))
		return rterrors.NewMessagingError("failed to connect to NATS", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		n.logger.Error("Failed to create JetStream context", zap.Error(err))
		return rterrors.NewMessagingError("failed to create JetStream context", err)
	}

	if err := n.setupStream(ctx, js); err != nil {
		conn.Close()
		return rterrors.NewMessagingError("failed to setup stream", err)
	}

	n.mu.Lock()
	n.conn = conn
	n.js = js
	n.isRunning = true
	n.mu.Unlock()

	n.logger.Info("Successfully connected to NATS and setup JetStream")
	return nil
}

// Disconnect disconnects from NATS server
func (n *NATSClient) Disconnect() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
		n.js = nil
	}
	n.isRunning = false
	n.logger.Info("Disconnected from NATS")
	return nil
}

// IsConnected checks if connected to NATS
func (n *NATSClient) IsConnected() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.isRunning && n.conn != nil && n.conn.IsConnected()
}

// streamManager is the part of the JetStream API used to provision the stream
type streamManager interface {
	StreamInfo(stream string, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	AddStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error)
}

// setupStream creates the JetStream stream if it does not exist
func (n *NATSClient) setupStream(ctx context.Context, streams streamManager) error {
	streamName := n.config.StreamName
	subject := fmt.Sprintf("%s.events.>", n.config.SubjectPrefix)

	stream, err := streams.StreamInfo(streamName, nats.Context(ctx))
	if err == nil {
		n.logger.Info("JetStream stream already exists",
			zap.String("stream", streamName),
			zap.Uint64("messages", stream.State.Msgs))
		return nil
	}

	n.logger.Info("Creating JetStream stream",
		zap.String("stream", streamName),
		zap.String("subject", subject))

	streamConfig := &nats.StreamConfig{
		Name:       streamName,
		Subjects:   []string{subject},
		Storage:    nats.FileStorage,
		Retention:  nats.LimitsPolicy,
		MaxMsgs:    1000000,
		MaxBytes:   1024 * 1024 * 1024,
		MaxAge:     24 * time.Hour,
		Duplicates: 5 * time.Minute,
	}

	if _, err := streams.AddStream(streamConfig, nats.Context(ctx)); err != nil {
		n.logger.Error("Failed to create stream", zap.Error(err))
		return err
	}

	n.logger.Info("Successfully created JetStream stream")
	return nil
}

// PublishEvent publishes one realtime event. The event id, when present, is the
// JetStream dedupe id so a replayed frame is stored once.
func (n *NATSClient) PublishEvent(ctx context.Context, event entity.WebSocketEvent) error {
	if !n.IsConnected() {
		if !n.config.Enabled {
			return nil
		}
		return rterrors.NewMessagingError("NATS client is not connected", nil)
	}

	data, err := encodeEvent(event, time.Now())
	if err != nil {
		n.logger.Error("Failed to marshal event", zap.Error(err))
		return rterrors.NewMessagingError("failed to marshal event", err)
	}

	if n.config.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.config.PublishTimeout)
		defer cancel()
	}

	subject := EventSubject(n.config.SubjectPrefix, event.Type)
	opts := []nats.PubOpt{nats.Context(ctx)}
	if event.ID != "" {
		opts = append(opts, nats.MsgId(event.ID))
	}

	n.mu.RLock()
	js := n.js
	n.mu.RUnlock()
	if js == nil {
		return rterrors.NewMessagingError("NATS client is not connected", nil)
	}

	if _, err := js.Publish(subject, data, opts...); err != nil {
		n.logger.WithEvent(event).Error("Failed to publish event", zap.Error(err))
		return rterrors.NewMessagingError("failed to publish event", err)
	}

	n.logger.WithEvent(event).Debug("Published event", zap.String("subject", subject))
	return nil
}

// GetStreamInfo returns information about the JetStream stream
func (n *NATSClient) GetStreamInfo() (interface{}, error) {
	if !n.IsConnected() {
		return nil, rterrors.NewMessagingError("NATS client is not connected", nil)
	}

	n.mu.RLock()
	js := n.js
	n.mu.RUnlock()
	return js.StreamInfo(n.config.StreamName)
}

func encodeEvent(event entity.WebSocketEvent, now time.Time) ([]byte, error) {
	return json.Marshal(RelayedEvent{
		Event:      event,
		ReceivedAt: event.ReceivedAt,
		RelayedAt:  now,
	})
}
