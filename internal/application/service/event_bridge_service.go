package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/application/binding"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/service"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
)

const (
	defaultQueueSize           = 1024
	defaultHealthCheckInterval = 30 * time.Second
)

// BridgeStats counts what the bridge did with the events it received
type BridgeStats struct {
	Received  int64 `json:"received"`
	Published int64 `json:"published"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

// EventBridgeService keeps the realtime connection up for the process and relays
// every event to the event publisher. Events are queued so a slow publisher never
// stalls delivery to other listeners; publish order follows arrival order.
type EventBridgeService struct {
	connection service.ConnectionManager
	publisher  service.EventPublisher
	binding    *binding.AppWide
	logger     *logger.Logger

	queue               chan entity.WebSocketEvent
	healthCheckInterval time.Duration

	isRunning bool
	stopChan  chan struct{}
	done      sync.WaitGroup
	mu        sync.RWMutex

	// closing is set once Stop begins; events handed over after that are dropped
	// instead of queued behind the final drain.
	gate    sync.RWMutex
	closing bool

	received  atomic.Int64
	published atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewEventBridgeService creates a new event bridge application service
func NewEventBridgeService(
	connection service.ConnectionManager,
	registry service.SubscriptionRegistry,
	publisher service.EventPublisher,
	logger *logger.Logger,
) *EventBridgeService {
	s := &EventBridgeService{
		connection:          connection,
		publisher:           publisher,
		logger:              logger.WithComponent("event-bridge"),
		queue:               make(chan entity.WebSocketEvent, defaultQueueSize),
		healthCheckInterval: defaultHealthCheckInterval,
	}
	s.binding = binding.NewAppWide(connection, registry, s.handleEvent, logger)
	return s
}

// Start connects the publisher and activates the app-wide binding
func (s *EventBridgeService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("event bridge service is already running")
	}

	s.logger.Info("Starting Event Bridge Service")

	if err := s.publisher.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect event publisher: %w", err)
	}

	s.stopChan = make(chan struct{})
	s.isRunning = true
	s.gate.Lock()
	s.closing = false
	s.gate.Unlock()

	s.done.Add(2)
	go s.publishWorker()
	go s.healthMonitor()

	s.binding.Activate()

	s.logger.Info("Event Bridge Service started successfully")
	return nil
}

// Stop deactivates the binding, drains queued events and disconnects the publisher.
// The realtime connection itself is closed by the application, not here.
func (s *EventBridgeService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	s.logger.Info("Stopping Event Bridge Service")

	s.binding.Deactivate()
	s.gate.Lock()
	s.closing = true
	s.gate.Unlock()
	close(s.stopChan)

	finished := make(chan struct{})
	go func() {
		s.done.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-ctx.Done():
		s.logger.Warn("Timed out draining event queue", zap.Int("pending", len(s.queue)))
	}

	if err := s.publisher.Disconnect(); err != nil {
		s.logger.Error("Failed to disconnect event publisher", zap.Error(err))
	}

	stats := s.Stats()
	s.logger.Info("Event Bridge Service stopped",
		zap.Int64("received", stats.Received),
		zap.Int64("published", stats.Published),
		zap.Int64("failed", stats.Failed),
		zap.Int64("dropped", stats.Dropped))
	return nil
}

// IsRunning checks if the service is running
func (s *EventBridgeService) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Stats returns the bridge counters
func (s *EventBridgeService) Stats() BridgeStats {
	return BridgeStats{
		Received:  s.received.Load(),
		Published: s.published.Load(),
		Failed:    s.failed.Load(),
		Dropped:   s.dropped.Load(),
	}
}

// handleEvent runs on the delivery goroutine and must not block
func (s *EventBridgeService) handleEvent(event entity.WebSocketEvent) {
	s.received.Add(1)

	s.gate.RLock()
	defer s.gate.RUnlock()
	if s.closing {
		s.dropped.Add(1)
		s.logger.WithEvent(event).Warn("Event bridge stopping, dropping event")
		return
	}

	select {
	case s.queue <- event:
	default:
		s.dropped.Add(1)
		s.logger.WithEvent(event).Warn("Event queue full, dropping event")
	}
}

// publishWorker publishes queued events in order
func (s *EventBridgeService) publishWorker() {
	defer s.done.Done()

	for {
		select {
		case event := <-s.queue:
			s.publish(event)
		case <-s.stopChan:
			for {
				select {
				case event := <-s.queue:
					s.publish(event)
				default:
					return
				}
			}
		}
	}
}

func (s *EventBridgeService) publish(event entity.WebSocketEvent) {
	if err := s.publisher.PublishEvent(context.Background(), event); err != nil {
		s.failed.Add(1)
		s.logger.WithEvent(event).Error("Failed to relay event", zap.Error(err))
		return
	}
	s.published.Add(1)
}

// healthMonitor monitors service health
func (s *EventBridgeService) healthMonitor() {
	defer s.done.Done()

	ticker := time.NewTicker(s.healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkHealth()
		case <-s.stopChan:
			return
		}
	}
}

// checkHealth logs the connection state. Reconnection is owned by the connection
// manager, so nothing is triggered from here.
func (s *EventBridgeService) checkHealth() {
	stats := s.connection.GetConnectionStats()
	if stats.State != entity.StateConnected {
		s.logger.Warn("Realtime connection is not connected",
			zap.Stringer("state", stats.State),
			zap.Int("retry", stats.RetryCount),
			zap.Duration("next_delay", stats.NextDelay),
			zap.String("last_error", stats.LastError))
		return
	}

	s.logger.Debug("Realtime connection healthy",
		zap.Int64("frames_received", stats.FramesReceived),
		zap.Int64("events_routed", stats.EventsRouted),
		zap.Int("listeners", stats.Listeners))
}
