package config

import (
	"net/url"
	"time"

	rterrors "github.com/valentine-ezugu/xflowapp-sub001/pkg/errors"
)

// RealtimeConfig represents realtime connection configuration
type RealtimeConfig struct {
	// Connection settings
	URL              string        `mapstructure:"url"`               // WebSocket endpoint
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"` // Dial + upgrade timeout
	PingInterval     time.Duration `mapstructure:"ping_interval"`     // Keepalive ping interval
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`      // Max silence before the connection is considered dead
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`     // Control frame write deadline

	// Reconnect policy
	BaseDelay       time.Duration `mapstructure:"base_delay"`       // First reconnect delay
	MaxDelay        time.Duration `mapstructure:"max_delay"`        // Reconnect delay ceiling
	ReconnectJitter float64       `mapstructure:"reconnect_jitter"` // Randomization factor, 0 disables
}

// RealtimeDefaults returns the default realtime settings keyed by mapstructure name
func RealtimeDefaults() map[string]interface{} {
	return map[string]interface{}{
		"handshake_timeout": "15s",
		"ping_interval":     "25s",
		"read_timeout":      "60s",
		"write_timeout":     "10s",
		"base_delay":        "1s",
		"max_delay":         "30s",
		"reconnect_jitter":  0.0,
	}
}

// DefaultRealtimeConfig returns a RealtimeConfig for the given endpoint with default settings
func DefaultRealtimeConfig(endpoint string) RealtimeConfig {
	return RealtimeConfig{
		URL:              endpoint,
		HandshakeTimeout: 15 * time.Second,
		PingInterval:     25 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
		BaseDelay:        time.Second,
		MaxDelay:         30 * time.Second,
	}
}

// Validate checks the realtime settings
func (c RealtimeConfig) Validate() error {
	if c.URL == "" {
		return rterrors.NewConfigurationError("realtime.url is not configured", nil)
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return rterrors.NewConfigurationError("realtime.url is invalid", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return rterrors.NewConfigurationError("realtime.url must use ws or wss", nil)
	}
	if c.BaseDelay <= 0 {
		return rterrors.NewConfigurationError("realtime.base_delay must be positive", nil)
	}
	if c.MaxDelay < c.BaseDelay {
		return rterrors.NewConfigurationError("realtime.max_delay must not be below realtime.base_delay", nil)
	}
	if c.ReconnectJitter < 0 || c.ReconnectJitter >= 1 {
		return rterrors.NewConfigurationError("realtime.reconnect_jitter must be in [0, 1)", nil)
	}
	if c.PingInterval > 0 && c.ReadTimeout > 0 && c.ReadTimeout <= c.PingInterval {
		return rterrors.NewConfigurationError("realtime.read_timeout must exceed realtime.ping_interval", nil)
	}
	return nil
}
