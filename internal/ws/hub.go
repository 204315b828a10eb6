// Package ws serves the WebSocket endpoint that streams telemetry events to
// connected frontend clients. Each connection gets its own session: clients
// subscribe to topics by name and receive every event published on them as a
// JSON text frame, while a single-byte binary heartbeat keeps the connection
// alive through proxies.
package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/Indomitable/opentelemetry-inspect/internal/pubsub"
)

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "otelinspect_ws_sessions_active",
		Help: "Number of WebSocket sessions currently connected.",
	})
	framesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otelinspect_ws_frames_sent_total",
		Help: "Total number of frames written to WebSocket clients.",
	}, []string{"type"})
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Hub upgrades incoming HTTP requests and runs one session per connection.
type Hub struct {
	manager *pubsub.Manager
	logger  *zap.Logger
}

// NewHub creates a Hub that serves events from the given subscription manager.
func NewHub(manager *pubsub.Manager, logger *zap.Logger) *Hub {
	return &Hub{manager: manager, logger: logger}
}

// HandleWebSocket upgrades the request and serves the session until the
// client disconnects. It blocks for the lifetime of the connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sessionsActive.Inc()
	defer sessionsActive.Dec()

	newSession(conn, h.manager, h.logger).run()
}
