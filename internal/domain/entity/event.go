package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	rterrors "github.com/valentine-ezugu/xflowapp-sub001/pkg/errors"
	"github.com/valentine-ezugu/xflowapp-sub001/pkg/utils"
)

// EventType is the discriminant of a realtime event
type EventType string

const (
	EventTransactionCreated EventType = "transaction-created"
	EventTransactionUpdated EventType = "transaction-updated"
	EventBalanceChanged     EventType = "balance-changed"
	EventMessageReceived    EventType = "message-received"
	EventOnboardingUpdated  EventType = "onboarding-updated"
)

// KnownEventTypes lists every event type the router accepts
var KnownEventTypes = []EventType{
	EventTransactionCreated,
	EventTransactionUpdated,
	EventBalanceChanged,
	EventMessageReceived,
	EventOnboardingUpdated,
}

// IsKnown reports whether t belongs to the closed set of event types
func (t EventType) IsKnown() bool {
	for _, known := range KnownEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Payload is the type-specific part of an event
type Payload interface {
	EventType() EventType
}

// TransactionPayload carries transaction-created and transaction-updated data
type TransactionPayload struct {
	TransactionID string    `json:"transactionId"`
	Reference     string    `json:"reference,omitempty"`
	Status        string    `json:"status"`
	Direction     string    `json:"direction,omitempty"` // "in" or "out"
	Amount        string    `json:"amount"`              // decimal string, never float
	Currency      string    `json:"currency"`
	Rail          string    `json:"rail,omitempty"` // "fiat" or "crypto"
	TxHash        string    `json:"txHash,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Kind is transaction-created or transaction-updated; set by the decoder.
	Kind EventType `json:"-"`
}

// EventType implements Payload
func (p TransactionPayload) EventType() EventType { return p.Kind }

// BalancePayload carries balance-changed data
type BalancePayload struct {
	AccountID string    `json:"accountId"`
	Currency  string    `json:"currency"`
	Available string    `json:"available"`
	Pending   string    `json:"pending,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EventType implements Payload
func (BalancePayload) EventType() EventType { return EventBalanceChanged }

// MessagePayload carries message-received data
type MessagePayload struct {
	MessageID      string    `json:"messageId"`
	ConversationID string    `json:"conversationId,omitempty"`
	SenderID       int64     `json:"senderId"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sentAt"`
}

// EventType implements Payload
func (MessagePayload) EventType() EventType { return EventMessageReceived }

// OnboardingPayload carries onboarding-updated data
type OnboardingPayload struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// EventType implements Payload
func (OnboardingPayload) EventType() EventType { return EventOnboardingUpdated }

// WebSocketEvent is one decoded inbound event. It is passed by value and not retained
// after dispatch.
type WebSocketEvent struct {
	ID                  string
	Type                EventType
	CounterpartyID      *int64
	CounterpartyAddress *string
	Payload             Payload
	ReceivedAt          time.Time
}

// envelope is the wire shape of an inbound frame
type envelope struct {
	Type                EventType       `json:"type"`
	EventID             string          `json:"eventId,omitempty"`
	CounterpartyID      *int64          `json:"counterpartyId"`
	CounterpartyAddress *string         `json:"counterpartyAddress"`
	Payload             json.RawMessage `json:"payload"`
}

// DecodeEvent decodes a raw frame into a WebSocketEvent. Frames with an unknown type,
// invalid JSON or a payload that does not fit the type are rejected.
func DecodeEvent(raw []byte) (WebSocketEvent, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return WebSocketEvent{}, rterrors.NewDecodeError("invalid envelope", err)
	}
	if env.Type == "" {
		return WebSocketEvent{}, rterrors.NewDecodeError("missing type", nil)
	}
	if !env.Type.IsKnown() {
		return WebSocketEvent{}, rterrors.NewDecodeError(fmt.Sprintf("unknown event type %q", env.Type), nil)
	}

	payload, err := decodePayload(env.Type, env.Payload)
	if err != nil {
		return WebSocketEvent{}, rterrors.NewDecodeError(fmt.Sprintf("invalid %s payload", env.Type), err)
	}

	return WebSocketEvent{
		ID:                  env.EventID,
		Type:                env.Type,
		CounterpartyID:      env.CounterpartyID,
		CounterpartyAddress: utils.NormalizeAddressPtr(env.CounterpartyAddress),
		Payload:             payload,
		ReceivedAt:          time.Now(),
	}, nil
}

func decodePayload(eventType EventType, raw json.RawMessage) (Payload, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("payload is required")
	}

	switch eventType {
	case EventTransactionCreated, EventTransactionUpdated:
		var p TransactionPayload
		if err := unmarshalObject(raw, &p); err != nil {
			return nil, err
		}
		if p.TransactionID == "" {
			return nil, fmt.Errorf("transactionId is required")
		}
		p.Kind = eventType
		return p, nil
	case EventBalanceChanged:
		var p BalancePayload
		if err := unmarshalObject(raw, &p); err != nil {
			return nil, err
		}
		if p.Currency == "" {
			return nil, fmt.Errorf("currency is required")
		}
		return p, nil
	case EventMessageReceived:
		var p MessagePayload
		if err := unmarshalObject(raw, &p); err != nil {
			return nil, err
		}
		if p.MessageID == "" {
			return nil, fmt.Errorf("messageId is required")
		}
		return p, nil
	case EventOnboardingUpdated:
		var p OnboardingPayload
		if err := unmarshalObject(raw, &p); err != nil {
			return nil, err
		}
		if p.Step == "" {
			return nil, fmt.Errorf("step is required")
		}
		return p, nil
	}

	return nil, fmt.Errorf("no payload decoder for %s", eventType)
}

// unmarshalObject requires a JSON object. Unknown fields are ignored.
func unmarshalObject(raw json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("payload must be an object")
	}
	return json.Unmarshal(trimmed, v)
}

// MarshalJSON renders the event in its wire shape
func (e WebSocketEvent) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{
		Type:                e.Type,
		EventID:             e.ID,
		CounterpartyID:      e.CounterpartyID,
		CounterpartyAddress: e.CounterpartyAddress,
		Payload:             payload,
	})
}
