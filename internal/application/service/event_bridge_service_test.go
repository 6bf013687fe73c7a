package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/realtime"
)

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
	mu        sync.Mutex
	published []string
}

func (m *MockEventPublisher) Connect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockEventPublisher) Disconnect() error {
	return m.Called().Error(0)
}

func (m *MockEventPublisher) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *MockEventPublisher) PublishEvent(ctx context.Context, event entity.WebSocketEvent) error {
	err := m.Called(ctx, event).Error(0)
	if err == nil {
		m.mu.Lock()
		m.published = append(m.published, event.ID)
		m.mu.Unlock()
	}
	return err
}

func (m *MockEventPublisher) GetStreamInfo() (interface{}, error) {
	args := m.Called()
	return args.Get(0), args.Error(1)
}

func (m *MockEventPublisher) publishedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.published))
	copy(out, m.published)
	return out
}

// MockConnectionManager is a mock implementation of ConnectionManager
type MockConnectionManager struct {
	mock.Mock
}

func (m *MockConnectionManager) Connect()    { m.Called() }
func (m *MockConnectionManager) Disconnect() { m.Called() }
func (m *MockConnectionManager) Reconnect()  { m.Called() }

func (m *MockConnectionManager) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *MockConnectionManager) State() entity.ConnectionState {
	return m.Called().Get(0).(entity.ConnectionState)
}

func (m *MockConnectionManager) GetConnectionStats() entity.ConnectionStats {
	return m.Called().Get(0).(entity.ConnectionStats)
}

func newBridgeFixture(t *testing.T) (*EventBridgeService, *MockConnectionManager, *MockEventPublisher, *realtime.Registry) {
	t.Helper()

	conn := new(MockConnectionManager)
	conn.On("Connect").Return()
	conn.On("GetConnectionStats").Return(entity.ConnectionStats{State: entity.StateConnected}).Maybe()

	publisher := new(MockEventPublisher)
	publisher.On("Connect", mock.Anything).Return(nil)
	publisher.On("Disconnect").Return(nil)

	registry := realtime.NewRegistry(logger.NewNop())
	bridge := NewEventBridgeService(conn, registry, publisher, logger.NewNop())

	return bridge, conn, publisher, registry
}

func TestEventBridgeService_StartStop(t *testing.T) {
	bridge, conn, publisher, registry := newBridgeFixture(t)
	ctx := context.Background()

	require.NoError(t, bridge.Start(ctx))
	assert.True(t, bridge.IsRunning())
	assert.Equal(t, 1, registry.ListenerCount())
	conn.AssertCalled(t, "Connect")

	assert.Error(t, bridge.Start(ctx))

	require.NoError(t, bridge.Stop(ctx))
	assert.False(t, bridge.IsRunning())
	assert.Equal(t, 0, registry.ListenerCount())
	publisher.AssertCalled(t, "Disconnect")
	conn.AssertNotCalled(t, "Disconnect")

	require.NoError(t, bridge.Stop(ctx))
}

func TestEventBridgeService_RelaysInOrder(t *testing.T) {
	bridge, _, publisher, registry := newBridgeFixture(t)
	publisher.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, bridge.Start(context.Background()))

	for _, id := range []string{"e1", "e2", "e3"} {
		registry.Dispatch(entity.WebSocketEvent{ID: id, Type: entity.EventBalanceChanged})
	}

	require.Eventually(t, func() bool { return len(publisher.publishedIDs()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"e1", "e2", "e3"}, publisher.publishedIDs())

	require.NoError(t, bridge.Stop(context.Background()))
	stats := bridge.Stats()
	assert.Equal(t, int64(3), stats.Received)
	assert.Equal(t, int64(3), stats.Published)
}

func TestEventBridgeService_PublishFailureIsCounted(t *testing.T) {
	bridge, _, publisher, registry := newBridgeFixture(t)
	publisher.On("PublishEvent", mock.Anything, mock.Anything).Return(errors.New("stream unavailable"))

	require.NoError(t, bridge.Start(context.Background()))
	registry.Dispatch(entity.WebSocketEvent{ID: "e1", Type: entity.EventBalanceChanged})
	require.NoError(t, bridge.Stop(context.Background()))

	stats := bridge.Stats()
	assert.Equal(t, int64(1), stats.Received)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(0), stats.Published)
}

func TestEventBridgeService_PublisherConnectError(t *testing.T) {
	conn := new(MockConnectionManager)
	publisher := new(MockEventPublisher)
	publisher.On("Connect", mock.Anything).Return(errors.New("no servers available"))

	registry := realtime.NewRegistry(logger.NewNop())
	bridge := NewEventBridgeService(conn, registry, publisher, logger.NewNop())

	err := bridge.Start(context.Background())
	require.Error(t, err)
	assert.False(t, bridge.IsRunning())
	assert.Equal(t, 0, registry.ListenerCount())
	conn.AssertNotCalled(t, "Connect")
}

func TestEventBridgeService_QueueFullDrops(t *testing.T) {
	bridge, _, _, _ := newBridgeFixture(t)
	bridge.queue = make(chan entity.WebSocketEvent, 1)

	bridge.handleEvent(entity.WebSocketEvent{ID: "e1"})
	bridge.handleEvent(entity.WebSocketEvent{ID: "e2"})

	stats := bridge.Stats()
	assert.Equal(t, int64(2), stats.Received)
	assert.Equal(t, int64(1), stats.Dropped)
}

func TestEventBridgeService_EventAfterStopIsDropped(t *testing.T) {
	bridge, _, publisher, _ := newBridgeFixture(t)
	ctx := context.Background()

	require.NoError(t, bridge.Start(ctx))
	require.NoError(t, bridge.Stop(ctx))

	// a delivery that was already in flight when the binding was deactivated
	bridge.handleEvent(entity.WebSocketEvent{ID: "late"})

	stats := bridge.Stats()
	assert.Equal(t, int64(1), stats.Received)
	assert.Equal(t, int64(1), stats.Dropped)
	assert.Equal(t, 0, len(bridge.queue))
	publisher.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
}

func TestEventBridgeService_RestartAcceptsEvents(t *testing.T) {
	bridge, _, publisher, registry := newBridgeFixture(t)
	publisher.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	require.NoError(t, bridge.Start(ctx))
	require.NoError(t, bridge.Stop(ctx))
	require.NoError(t, bridge.Start(ctx))
	defer bridge.Stop(ctx)

	registry.Dispatch(entity.WebSocketEvent{ID: "e1", Type: entity.EventBalanceChanged})

	require.Eventually(t, func() bool { return len(publisher.publishedIDs()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(0), bridge.Stats().Dropped)
}

func TestEventBridgeService_CheckHealth(t *testing.T) {
	conn := new(MockConnectionManager)
	conn.On("GetConnectionStats").Return(entity.ConnectionStats{State: entity.StateReconnecting, RetryCount: 2})

	bridge := NewEventBridgeService(conn, realtime.NewRegistry(logger.NewNop()), new(MockEventPublisher), logger.NewNop())
	bridge.checkHealth()

	conn.AssertCalled(t, "GetConnectionStats")
}
