package entity

import "time"

// ConnectionState is the state of the shared realtime connection
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

// String returns the string representation of a ConnectionState
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// MarshalText renders the state as its name in JSON and logs
func (s ConnectionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ConnectionStats is a point-in-time snapshot of the connection manager and router
type ConnectionStats struct {
	State           ConnectionState `json:"state"`
	RetryCount      int             `json:"retry_count"`
	NextDelay       time.Duration   `json:"next_delay"`
	ReconnectCount  int64           `json:"reconnect_count"`
	FramesReceived  int64           `json:"frames_received"`
	FramesDropped   int64           `json:"frames_dropped"`
	EventsRouted    int64           `json:"events_routed"`
	ListenerPanics  int64           `json:"listener_panics"`
	Listeners       int             `json:"listeners"`
	LastMessageTime time.Time       `json:"last_message_time"`
	ConnectedSince  time.Time       `json:"connected_since"`
	LastError       string          `json:"last_error,omitempty"`
}
