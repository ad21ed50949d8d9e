package http

import (
	"net/http"
	"time"

	"kitchen/internal/core/application/usecases/commands"
	"kitchen/internal/core/application/usecases/queries"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/session"

	"github.com/labstack/echo/v4"
)

type OpenSessionRequest struct {
	Station *string `json:"station" validate:"omitempty,max=32"`
}

type SessionResponse struct {
	ID            kernel.UUID `json:"id"`
	WorkerID      kernel.UUID `json:"workerId"`
	RestaurantID  kernel.UUID `json:"restaurantId"`
	Station       *string     `json:"station,omitempty"`
	Status        string      `json:"status"`
	LastHeartbeat time.Time   `json:"lastHeartbeat"`
}

type CloseSessionResponse struct {
	ReleasedOrders int `json:"releasedOrders"`
}

func toSessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		ID:            s.ID(),
		WorkerID:      s.WorkerID(),
		RestaurantID:  s.RestaurantID(),
		Station:       s.Station(),
		Status:        s.Status().String(),
		LastHeartbeat: s.LastHeartbeat(),
	}
}

// OpenSession handles POST /api/v1/sessions - logs the caller in at a station.
// A worker reopening reuses their existing session.
func (s *Server) OpenSession(c echo.Context) error {
	var req OpenSessionRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return errorResponse(c, http.StatusBadRequest, "invalid request body")
		}
		if err := c.Validate(&req); err != nil {
			return s.writeError(c, err, "failed to open session")
		}
	}

	identity := identityFrom(c)
	cmd, err := commands.NewOpenSessionCommand(identity.WorkerID, identity.RestaurantID, req.Station)
	if err != nil {
		return s.writeError(c, err, "failed to open session")
	}

	opened, err := s.handlers.OpenSession.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err, "failed to open session")
	}
	return c.JSON(http.StatusCreated, toSessionResponse(opened))
}

// ListSessions handles GET /api/v1/sessions.
func (s *Server) ListSessions(c echo.Context) error {
	query, err := queries.NewListSessionsQuery(identityFrom(c).RestaurantID)
	if err != nil {
		return s.writeError(c, err, "failed to list sessions")
	}

	sessions, err := s.handlers.ListSessions.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err, "failed to list sessions")
	}
	return c.JSON(http.StatusOK, sessions)
}

// Heartbeat handles POST /api/v1/sessions/:id/heartbeat. A session that already
// lapsed answers 410 and must be reopened.
func (s *Server) Heartbeat(c echo.Context) error {
	sessionID, err := pathUUID(c, "session id")
	if err != nil {
		return s.writeError(c, err, "failed to record heartbeat")
	}
	cmd, err := commands.NewHeartbeatSessionCommand(sessionID)
	if err != nil {
		return s.writeError(c, err, "failed to record heartbeat")
	}

	if err = s.handlers.HeartbeatSession.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeError(c, err, "failed to record heartbeat")
	}
	return c.NoContent(http.StatusNoContent)
}

// CloseSession handles DELETE /api/v1/sessions/:id - logout. Every claim of the
// caller is released.
func (s *Server) CloseSession(c echo.Context) error {
	sessionID, err := pathUUID(c, "session id")
	if err != nil {
		return s.writeError(c, err, "failed to close session")
	}
	workerID := identityFrom(c).WorkerID
	cmd, err := commands.NewCloseSessionCommand(sessionID, &workerID)
	if err != nil {
		return s.writeError(c, err, "failed to close session")
	}

	released, err := s.handlers.CloseSession.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err, "failed to close session")
	}
	return c.JSON(http.StatusOK, CloseSessionResponse{ReleasedOrders: released})
}
