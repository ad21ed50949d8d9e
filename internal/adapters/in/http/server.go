package http

import (
	"net/http"
	"time"

	"kitchen/internal/core/application/usecases/commands"
	"kitchen/internal/core/application/usecases/queries"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/ports"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	// Command handlers
	PlaceOrder       commands.PlaceOrderCommandHandler
	ClaimOrder       commands.ClaimOrderCommandHandler
	ReleaseOrder     commands.ReleaseOrderCommandHandler
	ServeOrder       commands.ServeOrderCommandHandler
	CancelOrder      commands.CancelOrderCommandHandler
	CompleteItem     commands.MarkItemCompletedCommandHandler
	OpenSession      commands.OpenSessionCommandHandler
	HeartbeatSession commands.HeartbeatSessionCommandHandler
	CloseSession     commands.CloseSessionCommandHandler

	// Query handlers
	GetOrder         queries.GetOrderQueryHandler
	GetPendingOrders queries.GetPendingOrdersQueryHandler
	ListSessions     queries.ListSessionsQueryHandler
}

// SessionKeeper heartbeats a session in the background until stop is called.
// onLost runs once if the session can no longer be kept alive.
type SessionKeeper interface {
	Keep(sessionID kernel.UUID, onLost func(error)) (stop func(), err error)
}

// Server wires the kitchen use cases to echo routes.
type Server struct {
	handlers Handlers
	notifier ports.Notifier
	keeper   SessionKeeper
	secret   []byte
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates the HTTP adapter. keeper may be nil, in which case the
// session_id parameter of the change feed is ignored.
func NewServer(
	handlers Handlers,
	notifier ports.Notifier,
	keeper SessionKeeper,
	jwtSecret []byte,
	logger zerolog.Logger,
) *Server {
	return &Server{
		handlers: handlers,
		notifier: notifier,
		keeper:   keeper,
		secret:   jwtSecret,
		logger:   logger,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
	}
}

// Register mounts every route on e. gatherer backs /metrics and may be nil.
func (s *Server) Register(e *echo.Echo, gatherer prometheus.Gatherer) {
	e.Validator = NewRequestValidator()
	e.Use(RequestLogger(s.logger))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api/v1", Authenticate(s.secret))

	api.POST("/orders", s.PlaceOrder)
	api.GET("/orders/pending", s.GetPendingOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.POST("/orders/:id/claim", s.ClaimOrder)
	api.POST("/orders/:id/release", s.ReleaseOrder)
	api.POST("/orders/:id/serve", s.ServeOrder)
	api.POST("/orders/:id/cancel", s.CancelOrder)
	api.POST("/items/:id/complete", s.CompleteItem)

	api.POST("/sessions", s.OpenSession)
	api.GET("/sessions", s.ListSessions)
	api.POST("/sessions/:id/heartbeat", s.Heartbeat)
	api.DELETE("/sessions/:id", s.CloseSession)

	api.GET("/ws/orders", s.OrderFeed)
}
