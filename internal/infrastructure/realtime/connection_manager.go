package realtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/service"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/config"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
	rterrors "github.com/valentine-ezugu/xflowapp-sub001/pkg/errors"
)

const defaultWriteTimeout = 10 * time.Second

// ConnectionManager owns the single realtime connection for the process. It opens
// the socket with the current session token, reconnects with exponential backoff
// after unexpected closes, and feeds every inbound frame to the frame handler on
// one goroutine so arrival order is kept.
//
// Each attempt runs under an epoch. Disconnect and Reconnect advance the epoch, so
// dial results, read errors and timers that belong to an older epoch are ignored.
type ConnectionManager struct {
	config   *config.RealtimeConfig
	dialer   Dialer
	sessions service.SessionProvider
	frames   service.FrameHandler
	logger   *logger.Logger

	mu             sync.Mutex
	state          entity.ConnectionState
	epoch          uint64
	conn           Conn
	cancelDial     context.CancelFunc
	cancelConn     context.CancelFunc
	timer          *time.Timer
	policy         *ReconnectPolicy
	nextDelay      time.Duration
	reconnectCount int64
	connectedSince time.Time
	lastErr        error
}

// NewConnectionManager creates a new connection manager in the Disconnected state
func NewConnectionManager(
	cfg *config.RealtimeConfig,
	dialer Dialer,
	sessions service.SessionProvider,
	frames service.FrameHandler,
	logger *logger.Logger,
) *ConnectionManager {
	return &ConnectionManager{
		config:   cfg,
		dialer:   dialer,
		sessions: sessions,
		frames:   frames,
		logger:   logger.WithComponent("connection-manager"),
		state:    entity.StateDisconnected,
		policy:   NewReconnectPolicy(cfg.BaseDelay, cfg.MaxDelay, cfg.ReconnectJitter),
	}
}

// Connect starts opening the connection unless one is open or opening already.
// It returns immediately; progress is visible through State.
func (m *ConnectionManager) Connect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == entity.StateConnected || m.state == entity.StateConnecting {
		return
	}

	m.startAttemptLocked()
}

// Disconnect closes the connection and cancels any pending reconnect
func (m *ConnectionManager) Disconnect() {
	m.mu.Lock()
	m.epoch++
	m.stopTimerLocked()
	m.cancelDialLocked()
	conn := m.detachConnLocked()
	m.policy.Reset()
	m.nextDelay = 0
	m.setStateLocked(entity.StateDisconnected)
	m.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	m.logger.Info("Disconnected")
}

// Reconnect drops the current connection and dials again right away, starting the
// backoff sequence over.
func (m *ConnectionManager) Reconnect() {
	m.mu.Lock()
	m.stopTimerLocked()
	m.cancelDialLocked()
	conn := m.detachConnLocked()
	m.policy.Reset()
	m.nextDelay = 0
	m.reconnectCount++
	m.startAttemptLocked()
	m.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	m.logger.Info("Manual reconnect requested")
}

// IsConnected reports whether the connection is open
func (m *ConnectionManager) IsConnected() bool {
	return m.State() == entity.StateConnected
}

// State returns the current connection state
func (m *ConnectionManager) State() entity.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// GetConnectionStats returns connection statistics
func (m *ConnectionManager) GetConnectionStats() entity.ConnectionStats {
	m.mu.Lock()
	stats := entity.ConnectionStats{
		State:          m.state,
		RetryCount:     m.policy.Retries(),
		NextDelay:      m.nextDelay,
		ReconnectCount: m.reconnectCount,
	}
	if m.state == entity.StateConnected {
		stats.ConnectedSince = m.connectedSince
	}
	if m.lastErr != nil {
		stats.LastError = m.lastErr.Error()
	}
	m.mu.Unlock()

	if filler, ok := m.frames.(statsFiller); ok {
		filler.fillStats(&stats)
	}
	return stats
}

func (m *ConnectionManager) startAttemptLocked() {
	m.stopTimerLocked()
	m.epoch++
	epoch := m.epoch

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if m.config.HandshakeTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), m.config.HandshakeTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	m.cancelDial = cancel
	m.setStateLocked(entity.StateConnecting)

	go m.attempt(ctx, epoch)
}

func (m *ConnectionManager) attempt(ctx context.Context, epoch uint64) {
	conn, err := m.open(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		if conn != nil {
			go conn.Close()
		}
		return
	}
	m.cancelDialLocked()

	if err != nil {
		m.lastErr = err
		if rterrors.IsCode(err, rterrors.ErrCodeNoSession) {
			m.logger.Warn("No active session, connection not opened", zap.Error(err))
		} else {
			m.logger.Error("Failed to connect", zap.Error(err))
		}
		m.scheduleReconnectLocked(entity.StateDisconnected)
		return
	}

	m.conn = conn
	m.policy.Reset()
	m.nextDelay = 0
	m.connectedSince = time.Now()
	m.lastErr = nil

	connCtx, cancel := context.WithCancel(context.Background())
	m.cancelConn = cancel
	m.setStateLocked(entity.StateConnected)
	m.logger.Info("Connected", zap.String("url", m.config.URL))

	go m.readLoop(conn, epoch)
	if m.config.PingInterval > 0 {
		go m.pingLoop(connCtx, conn)
	}
}

// open reads the session and dials. Without an active session no socket is opened.
func (m *ConnectionManager) open(ctx context.Context) (Conn, error) {
	session, err := m.sessions.CurrentSession(ctx)
	if err != nil {
		if rterrors.IsCode(err, rterrors.ErrCodeNoSession) {
			return nil, err
		}
		return nil, rterrors.NewSessionStoreError("failed to read session", err)
	}
	if !session.IsActive(time.Now()) {
		return nil, rterrors.NewNoSessionError("session is not active")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+session.Token)

	conn, err := m.dialer.Dial(ctx, m.config.URL, header)
	if err != nil {
		return nil, rterrors.NewTransportError("dial failed", err)
	}
	return conn, nil
}

// readLoop dispatches frames synchronously so arrival order is kept. Dispatch runs
// without the manager lock because listeners may call back into the manager. A
// frame whose dispatch started before Disconnect or Reconnect returned may finish
// delivering; every frame read after that point is discarded.
func (m *ConnectionManager) readLoop(conn Conn, epoch uint64) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Read loop panic", zap.Any("panic", r))
			m.handleConnectionLost(epoch, conn, fmt.Errorf("read loop panic: %v", r))
		}
	}()

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			m.handleConnectionLost(epoch, conn, err)
			return
		}
		if !m.isCurrent(epoch) {
			return
		}
		m.frames.OnMessage(data)
	}
}

func (m *ConnectionManager) pingLoop(ctx context.Context, conn Conn) {
	ticker := time.NewTicker(m.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			timeout := m.config.WriteTimeout
			if timeout <= 0 {
				timeout = defaultWriteTimeout
			}
			deadline := time.Now().Add(timeout)
			if err := conn.Ping(deadline); err != nil {
				m.logger.Warn("Ping failed, closing connection", zap.Error(err))
				conn.Close()
				return
			}
		}
	}
}

func (m *ConnectionManager) handleConnectionLost(epoch uint64, conn Conn, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		return
	}

	m.detachConnLocked()
	go conn.Close()

	m.lastErr = rterrors.NewTransportError("connection lost", err)
	m.logger.Warn("Connection lost", zap.Error(err))
	m.scheduleReconnectLocked(entity.StateReconnecting)
}

func (m *ConnectionManager) scheduleReconnectLocked(state entity.ConnectionState) {
	delay := m.policy.Next()
	m.nextDelay = delay
	m.setStateLocked(state)

	epoch := m.epoch
	m.timer = time.AfterFunc(delay, func() { m.fireReconnect(epoch) })

	m.logger.Info("Reconnect scheduled",
		zap.Duration("delay", delay),
		zap.Int("retry", m.policy.Retries()))
}

func (m *ConnectionManager) fireReconnect(epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch || m.timer == nil {
		return
	}
	m.timer = nil
	m.reconnectCount++
	m.startAttemptLocked()
}

func (m *ConnectionManager) isCurrent(epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return epoch == m.epoch
}

func (m *ConnectionManager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *ConnectionManager) cancelDialLocked() {
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
}

func (m *ConnectionManager) detachConnLocked() Conn {
	if m.cancelConn != nil {
		m.cancelConn()
		m.cancelConn = nil
	}
	conn := m.conn
	m.conn = nil
	return conn
}

func (m *ConnectionManager) setStateLocked(state entity.ConnectionState) {
	if m.state == state {
		return
	}
	m.logger.Debug("State changed",
		zap.Stringer("from", m.state),
		zap.Stringer("to", state))
	m.state = state
}
