package room

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anitogether/server/pkg/randstr"
)

// ErrPermissionDenied marks a hoster-only operation attempted by a non-hoster.
// The controller treats it as a silent no-op rather than a client-visible
// error, since a command racing a hoster change is expected.
var ErrPermissionDenied = errors.New("permission denied")

const roomIDInitialLength = 5

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	// RoomExp is how long a room created through the HTTP surface may stay
	// empty before it is deleted.
	RoomExp time.Duration
}

// room is the live, mutable state. All access goes through the service mutex.
type room struct {
	roomID  string
	members []User
	titleID int
	episode string
	playing bool
}

func (r *room) memberIndex(sessionID uuid.UUID) int {
	for i, member := range r.members {
		if member.Conn.SessionID() == sessionID {
			return i
		}
	}

	return -1
}

func (r *room) memberByID(userID int) *User {
	for i := range r.members {
		if r.members[i].ID == userID {
			return &r.members[i]
		}
	}

	return nil
}

func (r *room) isHoster(sessionID uuid.UUID) bool {
	return len(r.members) > 0 && r.members[0].Conn.SessionID() == sessionID
}

func (r *room) memberIDs() []int {
	ids := make([]int, len(r.members))
	for i, member := range r.members {
		ids[i] = member.ID
	}

	return ids
}

// connsExcept snapshots every member's connection except the given session's.
func (r *room) connsExcept(sessionID uuid.UUID) []Sender {
	conns := make([]Sender, 0, len(r.members))
	for _, member := range r.members {
		if member.Conn.SessionID() != sessionID {
			conns = append(conns, member.Conn)
		}
	}

	return conns
}

type service struct {
	mu           sync.Mutex
	rooms        map[string]*room
	expiryTimers map[string]*time.Timer
	generator    iGenerator
	roomExp      time.Duration
	logger       *slog.Logger
}

func NewService(cfg *Config, logger *slog.Logger) *service {
	s := service{
		rooms:        make(map[string]*room),
		expiryTimers: make(map[string]*time.Timer),
		roomExp:      cfg.RoomExp,
		logger:       logger,
	}

	letterBytes := []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_")
	s.generator = randstr.New(letterBytes)

	return &s
}

// generateRoomID returns an id unused by any live room. It starts with short
// tokens and grows the length by one after 3 consecutive collisions, so ids
// stay minimal while generation always terminates.
// Must be called with s.mu held.
func (s *service) generateRoomID() string {
	length := roomIDInitialLength
	collisions := 0

	roomID := s.generator.GenerateRandomString(length)
	for {
		if _, exists := s.rooms[roomID]; !exists {
			return roomID
		}

		collisions++
		if collisions == 3 {
			length++
			collisions = 0
		}
		roomID = s.generator.GenerateRandomString(length)
	}
}

// scheduleExpiry arms the empty-room deletion timer.
// Must be called with s.mu held.
func (s *service) scheduleExpiry(roomID string) {
	if s.roomExp <= 0 {
		return
	}

	s.expiryTimers[roomID] = time.AfterFunc(s.roomExp, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.expiryTimers, roomID)

		// skip if already deleted or someone joined meanwhile
		r, exists := s.rooms[roomID]
		if !exists || len(r.members) > 0 {
			return
		}

		delete(s.rooms, roomID)
		s.logger.Debug("empty room expired", "room_id", roomID)
	})
}

// cancelExpiry disarms a pending empty-room deletion timer, if any.
// Must be called with s.mu held.
func (s *service) cancelExpiry(roomID string) {
	if timer, exists := s.expiryTimers[roomID]; exists {
		timer.Stop()
		delete(s.expiryTimers, roomID)
	}
}
