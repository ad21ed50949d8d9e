package http

import (
	"context"
	"time"

	"kitchen/internal/core/application/usecases/queries"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/ports"
	"kitchen/internal/pkg/errs"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsReadLimit  = 512
)

// closeSessionLost tells the display its session lapsed and must be reopened.
const closeSessionLost = 4001

// OrderFeed handles GET /api/v1/ws/orders. Every change to an order or item of the
// caller's restaurant is pushed as a JSON event; displays re-fetch what they show.
// With ?session_id= the caller's own session is heartbeated for as long as the
// socket is open; anybody else's session answers 404.
func (s *Server) OrderFeed(c echo.Context) error {
	identity := identityFrom(c)

	var stopKeeping func()
	lost := make(chan error, 1)
	if raw := c.QueryParam("session_id"); raw != "" && s.keeper != nil {
		sessionID, err := kernel.UUIDFromString(raw)
		if err != nil {
			return s.writeError(c, errs.NewValueIsInvalidErrorWithCause("session id", err), "failed to open feed")
		}
		if err = s.ownSession(c.Request().Context(), identity, sessionID); err != nil {
			return s.writeError(c, err, "failed to open feed")
		}
		stopKeeping, err = s.keeper.Keep(sessionID, func(cause error) {
			select {
			case lost <- cause:
			default:
			}
		})
		if err != nil {
			return s.writeError(c, err, "failed to open feed")
		}
		defer stopKeeping()
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	restaurantID := identity.RestaurantID
	sub, err := s.notifier.Subscribe(ctx, ports.Filter{RestaurantID: &restaurantID})
	if err != nil {
		return s.writeError(c, err, "failed to subscribe to changes")
	}
	defer func() {
		_ = sub.Close()
	}()

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already answered the client.
		s.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	log := s.logger.With().
		Str("worker_id", identity.WorkerID.String()).
		Str("restaurant_id", restaurantID.String()).
		Logger()
	log.Debug().Msg("order feed connected")

	go readPump(conn, cancel)

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("order feed disconnected")
			return nil
		case cause := <-lost:
			log.Info().Err(cause).Msg("order feed session lost")
			writeClose(conn, closeSessionLost, "session expired")
			return nil
		case event, ok := <-sub.Events():
			if !ok {
				writeClose(conn, websocket.CloseGoingAway, "feed closed")
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err = conn.WriteJSON(event); err != nil {
				log.Debug().Err(err).Msg("order feed write failed")
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err = conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

// readPump drains client frames so pongs and close frames are processed. The
// feed is server to client only.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
}

// ownSession fails with ObjectNotFound unless the session is the caller's at the
// caller's restaurant.
func (s *Server) ownSession(ctx context.Context, identity Identity, sessionID kernel.UUID) error {
	query, err := queries.NewListSessionsQuery(identity.RestaurantID)
	if err != nil {
		return err
	}

	sessions, err := s.handlers.ListSessions.Handle(ctx, query)
	if err != nil {
		return err
	}
	for _, view := range sessions {
		if view.ID.IsEqual(sessionID) && view.WorkerID.IsEqual(identity.WorkerID) {
			return nil
		}
	}
	return errs.NewObjectNotFoundError("session", sessionID.String())
}
