package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
)

const (
	balanceFrame = `{"type":"balance-changed","eventId":"evt_1","payload":{"currency":"EUR","available":"10.00"}}`
	messageFrame = `{"type":"message-received","eventId":"evt_2","counterpartyId":7,"payload":{"messageId":"m1","senderId":7,"body":"hi"}}`
	onboardFrame = `{"type":"onboarding-updated","eventId":"evt_3","payload":{"step":"kyc","status":"approved"}}`
)

func TestRouter_RoutesInArrivalOrder(t *testing.T) {
	registry := NewRegistry(logger.NewNop())
	router := NewRouter(registry, logger.NewNop())

	var ids []string
	registry.AddListener(func(e entity.WebSocketEvent) { ids = append(ids, e.ID) }, nil)

	router.OnMessage([]byte(balanceFrame))
	router.OnMessage([]byte(messageFrame))
	router.OnMessage([]byte(onboardFrame))

	assert.Equal(t, []string{"evt_1", "evt_2", "evt_3"}, ids)
	assert.Equal(t, int64(3), router.FramesReceived())
	assert.Equal(t, int64(3), router.EventsRouted())
	assert.Equal(t, int64(0), router.FramesDropped())
}

func TestRouter_DropsMalformedFrames(t *testing.T) {
	registry := NewRegistry(logger.NewNop())
	router := NewRouter(registry, logger.NewNop())

	var got []entity.WebSocketEvent
	registry.AddListener(func(e entity.WebSocketEvent) { got = append(got, e) }, nil)

	frames := []string{
		`not json`,
		`{"type":"card-frozen","payload":{}}`,
		`{"type":"transaction-created","payload":{"status":"pending"}}`,
		balanceFrame,
	}
	for _, f := range frames {
		require.NotPanics(t, func() { router.OnMessage([]byte(f)) })
	}

	require.Len(t, got, 1)
	assert.Equal(t, entity.EventBalanceChanged, got[0].Type)
	assert.Equal(t, int64(4), router.FramesReceived())
	assert.Equal(t, int64(3), router.FramesDropped())
	assert.Equal(t, int64(1), router.EventsRouted())
}

func TestRouter_FillStats(t *testing.T) {
	registry := NewRegistry(logger.NewNop())
	router := NewRouter(registry, logger.NewNop())
	registry.AddListener(func(entity.WebSocketEvent) { panic("listener bug") }, nil)

	router.OnMessage([]byte(balanceFrame))
	router.OnMessage([]byte(`{}`))

	var stats entity.ConnectionStats
	router.fillStats(&stats)

	assert.Equal(t, int64(2), stats.FramesReceived)
	assert.Equal(t, int64(1), stats.FramesDropped)
	assert.Equal(t, int64(1), stats.EventsRouted)
	assert.Equal(t, 1, stats.Listeners)
	assert.Equal(t, int64(1), stats.ListenerPanics)
	assert.False(t, stats.LastMessageTime.IsZero())
}
