package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/valentine-ezugu/xflowapp-sub001/pkg/utils"
)

func TestFilter_Matches(t *testing.T) {
	address := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

	messageFrom42 := WebSocketEvent{Type: EventMessageReceived, CounterpartyID: utils.Int64Ptr(42)}
	balance := WebSocketEvent{Type: EventBalanceChanged}
	txToAddress := WebSocketEvent{Type: EventTransactionCreated, CounterpartyAddress: utils.StringPtr(address)}

	tests := []struct {
		name     string
		filter   *Filter
		event    WebSocketEvent
		expected bool
	}{
		{"nil filter matches all", nil, balance, true},
		{"empty filter matches all", &Filter{}, balance, true},
		{"type hit", NewTypeFilter(EventMessageReceived), messageFrom42, true},
		{"type miss", NewTypeFilter(EventMessageReceived), balance, false},
		{"id hit", NewCounterpartyFilter(utils.Int64Ptr(42), nil), messageFrom42, true},
		{"id miss", NewCounterpartyFilter(utils.Int64Ptr(7), nil), messageFrom42, false},
		{"id filter vs event without id", NewCounterpartyFilter(utils.Int64Ptr(42), nil), balance, false},
		{"address hit case-insensitive", NewCounterpartyFilter(nil, utils.StringPtr("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")), txToAddress, true},
		{"address miss", NewCounterpartyFilter(nil, utils.StringPtr("bob")), txToAddress, false},
		{"literal lowercase filter vs checksummed event", &Filter{CounterpartyAddress: utils.StringPtr("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")}, txToAddress, true},
		{
			"checksummed filter vs raw lowercase event",
			NewCounterpartyFilter(nil, utils.StringPtr(address)),
			WebSocketEvent{Type: EventTransactionCreated, CounterpartyAddress: utils.StringPtr("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")},
			true,
		},
		{"blank literal address never matches", &Filter{CounterpartyAddress: utils.StringPtr(" ")}, WebSocketEvent{Type: EventTransactionCreated, CounterpartyAddress: utils.StringPtr("")}, false},
		{"either key suffices", NewCounterpartyFilter(utils.Int64Ptr(99), utils.StringPtr(address)), txToAddress, true},
		{
			"union of types and counterparty",
			&Filter{Types: map[EventType]struct{}{EventBalanceChanged: {}}, CounterpartyID: utils.Int64Ptr(42)},
			messageFrom42,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter.Matches(tt.event))
		})
	}
}

func TestFilter_IsEmpty(t *testing.T) {
	var nilFilter *Filter
	assert.True(t, nilFilter.IsEmpty())
	assert.True(t, NewTypeFilter().IsEmpty())
	assert.True(t, NewCounterpartyFilter(nil, utils.StringPtr("  ")).IsEmpty())
	assert.False(t, NewTypeFilter(EventBalanceChanged).IsEmpty())
}

func TestConnectionState_String(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "reconnecting", StateReconnecting.String())
	assert.Equal(t, "unknown", ConnectionState(99).String())
}

func TestSession_IsActive(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	var nilSession *Session
	assert.False(t, nilSession.IsActive(now))
	assert.True(t, (&Session{Token: "t", Status: SessionStatusActive}).IsActive(now))
	assert.True(t, (&Session{Token: "t", Status: SessionStatusActive, ExpiresAt: &future}).IsActive(now))
	assert.False(t, (&Session{Token: "t", Status: SessionStatusActive, ExpiresAt: &past}).IsActive(now))
	assert.False(t, (&Session{Token: "t", Status: SessionStatusRevoked}).IsActive(now))
	assert.False(t, (&Session{Status: SessionStatusActive}).IsActive(now))
}
