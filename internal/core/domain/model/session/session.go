package session

import (
	"errors"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/errs"
)

const (
	// MaxStationLength bounds the optional station label ("grill", "bar", ...).
	MaxStationLength = 32

	// DefaultHeartbeatInterval is how often a kitchen device is expected to heartbeat.
	DefaultHeartbeatInterval = 30 * time.Second

	// DefaultLivenessWindow tolerates two missed heartbeats.
	DefaultLivenessWindow = 3 * DefaultHeartbeatInterval
)

var ErrSessionIsNotConstructed = errors.New("Session must be created via NewSession or RestoreSession")

// Session is a kitchen worker's presence at one restaurant. The id doubles as the
// session token handed to the device. There is at most one session per worker and
// restaurant; reopening reactivates the same row.
type Session struct {
	id            kernel.UUID
	workerID      kernel.UUID
	restaurantID  kernel.UUID
	station       *string
	status        Status
	lastHeartbeat time.Time
	createdAt     time.Time

	isConstructed bool
}

// NewSession creates an active session with its first heartbeat at now.
//
// Example:
//
//	station := "grill"
//	s, err := session.NewSession(kernel.NewUUID(), workerID, restaurantID, &station, time.Now())
func NewSession(id, workerID, restaurantID kernel.UUID, station *string, now time.Time) (*Session, error) {
	s := &Session{
		status:        Active,
		lastHeartbeat: now,
		createdAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		s.setID(id),
		s.setWorkerID(workerID),
		s.setRestaurantID(restaurantID),
		s.setStation(station),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// State carries persisted session fields into RestoreSession.
type State struct {
	ID            kernel.UUID
	WorkerID      kernel.UUID
	RestaurantID  kernel.UUID
	Station       *string
	Status        Status
	LastHeartbeat time.Time
	CreatedAt     time.Time
}

func RestoreSession(state State) (*Session, error) {
	s, err := NewSession(state.ID, state.WorkerID, state.RestaurantID, state.Station, state.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err = state.Status.Validate(); err != nil {
		return nil, err
	}

	s.status = state.Status
	s.lastHeartbeat = state.LastHeartbeat
	return s, nil
}

func (s *Session) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrSessionIsNotConstructed
	}
	return nil
}

func (s *Session) ID() kernel.UUID {
	return s.id
}

func (s *Session) WorkerID() kernel.UUID {
	return s.workerID
}

func (s *Session) RestaurantID() kernel.UUID {
	return s.restaurantID
}

func (s *Session) Station() *string {
	return s.station
}

func (s *Session) Status() Status {
	return s.status
}

func (s *Session) LastHeartbeat() time.Time {
	return s.lastHeartbeat
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// IsLive reports whether the session is active and heartbeated within window.
func (s *Session) IsLive(now time.Time, window time.Duration) bool {
	return s.status == Active && IsLive(s.lastHeartbeat, now, window)
}

// Reopen reactivates the session for the same worker and restaurant with its
// heartbeat at now. A nil station keeps the one already recorded.
func (s *Session) Reopen(station *string, now time.Time) error {
	if station != nil {
		if err := s.setStation(station); err != nil {
			return err
		}
	}
	s.status = Active
	s.lastHeartbeat = now
	return nil
}

// IsLive is the liveness rule on its own: now - lastHeartbeat <= window.
func IsLive(lastHeartbeat, now time.Time, window time.Duration) bool {
	return now.Sub(lastHeartbeat) <= window
}

func (s *Session) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Session) setWorkerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("worker id", err)
	}
	s.workerID = id
	return nil
}

func (s *Session) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("restaurant id", err)
	}
	s.restaurantID = id
	return nil
}

func (s *Session) setStation(station *string) error {
	if station == nil || *station == "" {
		s.station = nil
		return nil
	}
	if len(*station) > MaxStationLength {
		return errs.NewValueIsOutOfRangeError("station length", len(*station), 1, MaxStationLength)
	}
	value := *station
	s.station = &value
	return nil
}
