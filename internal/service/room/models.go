package room

import "github.com/google/uuid"

// Sender is one member's connection as the registry sees it: an opaque
// delivery destination plus a session id used as the identity key for
// membership and hoster checks.
type Sender interface {
	SessionID() uuid.UUID
	Send(data []byte) error
}

// User is one room member. Ids are small integers assigned in join order and
// never reused within a room's lifetime.
type User struct {
	ID   int
	Conn Sender
}

// RoomState is a read-only snapshot of a room.
type RoomState struct {
	RoomID  string
	TitleID int
	Episode string
	Playing bool
	Members []int
}
