// Package handlers provides the HTTP status endpoints of the realtime listener.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/service"
	"github.com/valentine-ezugu/xflowapp-sub001/pkg/utils"
)

// BridgeStatsFunc returns relay counters for the stats endpoint. It may be nil.
type BridgeStatsFunc func() interface{}

// StatusHandler handles health and stats requests.
type StatusHandler struct {
	connection  service.ConnectionManager
	bridgeStats BridgeStatsFunc
	startedAt   time.Time
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(connection service.ConnectionManager, bridgeStats BridgeStatsFunc) *StatusHandler {
	return &StatusHandler{
		connection:  connection,
		bridgeStats: bridgeStats,
		startedAt:   time.Now(),
	}
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
	Uptime string `json:"uptime"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Connection entity.ConnectionStats `json:"connection"`
	Bridge     interface{}            `json:"bridge,omitempty"`
}

// RegisterRoutes mounts the status routes on r.
func (h *StatusHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/healthz", h.Health)
	r.GET("/stats", h.Stats)
}

// Health handles GET /healthz. It answers 503 unless the connection is open.
func (h *StatusHandler) Health(c *gin.Context) {
	state := h.connection.State()
	resp := HealthResponse{
		Status: "ok",
		State:  state.String(),
		Uptime: utils.FormatDuration(time.Since(h.startedAt)),
	}

	if state != entity.StateConnected {
		resp.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Stats handles GET /stats.
func (h *StatusHandler) Stats(c *gin.Context) {
	resp := StatsResponse{
		Connection: h.connection.GetConnectionStats(),
	}
	if h.bridgeStats != nil {
		resp.Bridge = h.bridgeStats()
	}
	c.JSON(http.StatusOK, resp)
}

// NewRouter builds a gin engine with the status routes.
func NewRouter(h *StatusHandler, mode string) *gin.Engine {
	gin.SetMode(mode)
	r := gin.New()
	r.Use(gin.Recovery())
	h.RegisterRoutes(r)
	return r
}
