package realtime

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/config"
	rterrors "github.com/valentine-ezugu/xflowapp-sub001/pkg/errors"
)

// Conn is one open transport connection. Close and Ping may be called concurrently
// with ReadMessage.
type Conn interface {
	ReadMessage() ([]byte, error)
	Ping(deadline time.Time) error
	Close() error
}

// Dialer opens transport connections
type Dialer interface {
	Dial(ctx context.Context, endpoint string, header http.Header) (Conn, error)
}

// GorillaDialer dials WebSocket connections with gorilla/websocket
type GorillaDialer struct {
	config *config.RealtimeConfig
}

// NewGorillaDialer creates a new WebSocket dialer
func NewGorillaDialer(cfg *config.RealtimeConfig) *GorillaDialer {
	return &GorillaDialer{config: cfg}
}

// Dial establishes WebSocket connection
func (d *GorillaDialer) Dial(ctx context.Context, endpoint string, header http.Header) (Conn, error) {
	if endpoint == "" {
		return nil, rterrors.NewConfigurationError("WebSocket URL is not configured", nil)
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.config.HandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial WebSocket (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to dial WebSocket: %w", err)
	}

	gc := &gorillaConn{
		conn:         conn,
		readTimeout:  d.config.ReadTimeout,
		writeTimeout: d.config.WriteTimeout,
	}
	gc.extendReadDeadline()
	conn.SetPongHandler(func(string) error {
		gc.extendReadDeadline()
		return nil
	})

	return gc, nil
}

type gorillaConn struct {
	conn         *websocket.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func (c *gorillaConn) extendReadDeadline() {
	if c.readTimeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
}

// ReadMessage blocks until the next text or binary frame arrives
func (c *gorillaConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	c.extendReadDeadline()
	return data, nil
}

// Ping sends a ping control frame
func (c *gorillaConn) Ping(deadline time.Time) error {
	return c.conn.WriteControl(websocket.PingMessage, nil, deadline)
}

// Close sends a normal closure frame and closes the socket
func (c *gorillaConn) Close() error {
	deadline := time.Now().Add(time.Second)
	if c.writeTimeout > 0 && c.writeTimeout < time.Second {
		deadline = time.Now().Add(c.writeTimeout)
	}
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect"),
		deadline,
	)
	return c.conn.Close()
}
