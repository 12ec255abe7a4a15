package room

import (
	"context"

	"github.com/google/uuid"

	"github.com/anitogether/server/internal/protocol"
)

type CreateRoomParams struct {
	Conn    Sender
	TitleID int
	Episode string
}

type CreateRoomResponse struct {
	RoomID string
	Me     User
}

// CreateRoom allocates a room with the caller as its first member and hoster.
func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) CreateRoomResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := s.generateRoomID()
	me := User{ID: 0, Conn: params.Conn}
	s.rooms[roomID] = &room{
		roomID:  roomID,
		members: []User{me},
		titleID: params.TitleID,
		episode: params.Episode,
	}

	s.logger.DebugContext(ctx, "room created", "room_id", roomID, "title_id", params.TitleID)

	return CreateRoomResponse{RoomID: roomID, Me: me}
}

// CreateEmptyRoom allocates a memberless room for the HTTP surface. The room
// is deleted after the configured expiration unless someone joins first.
func (s *service) CreateEmptyRoom(ctx context.Context, titleID int, episode string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := s.generateRoomID()
	s.rooms[roomID] = &room{
		roomID:  roomID,
		titleID: titleID,
		episode: episode,
	}
	s.scheduleExpiry(roomID)

	s.logger.DebugContext(ctx, "empty room created", "room_id", roomID, "title_id", titleID)

	return roomID
}

func (s *service) GetRoom(ctx context.Context, roomID string) (RoomState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[roomID]
	if !exists {
		return RoomState{}, protocol.ErrRoomDoesNotExists
	}

	return RoomState{
		RoomID:  r.roomID,
		TitleID: r.titleID,
		Episode: r.episode,
		Playing: r.playing,
		Members: r.memberIDs(),
	}, nil
}

type JoinRoomParams struct {
	Conn   Sender
	RoomID string
}

type JoinRoomResponse struct {
	Me         User
	Members    []int
	TitleID    int
	Episode    string
	OtherConns []Sender
}

// JoinRoom appends the caller to the room's member list. The new member id is
// one past the last member's, so ids are never reused within a room.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[params.RoomID]
	if !exists {
		return JoinRoomResponse{}, protocol.ErrRoomDoesNotExists
	}

	userID := 0
	if len(r.members) > 0 {
		userID = r.members[len(r.members)-1].ID + 1
	}
	me := User{ID: userID, Conn: params.Conn}
	r.members = append(r.members, me)
	s.cancelExpiry(params.RoomID)

	s.logger.DebugContext(ctx, "member joined",
		"room_id", params.RoomID,
		"user_id", userID,
		"session_id", params.Conn.SessionID(),
	)

	return JoinRoomResponse{
		Me:         me,
		Members:    r.memberIDs(),
		TitleID:    r.titleID,
		Episode:    r.episode,
		OtherConns: r.connsExcept(params.Conn.SessionID()),
	}, nil
}

type LeaveRoomParams struct {
	SessionID uuid.UUID
	RoomID    string
}

type LeaveRoomResponse struct {
	LeftUserID int
	Conns      []Sender
	// NewHoster is the promoted member's connection when the departing member
	// was the hoster and the room is not empty.
	NewHoster   Sender
	RoomDeleted bool
}

// LeaveRoom removes the member owning the session from the room. When the
// last member leaves, the room is deleted as part of this call.
func (s *service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[params.RoomID]
	if !exists {
		return LeaveRoomResponse{}, protocol.ErrRoomDoesNotExists
	}

	i := r.memberIndex(params.SessionID)
	if i < 0 {
		return LeaveRoomResponse{}, protocol.ErrUserNotAMemberOfRoom
	}

	left := r.members[i]
	r.members = append(r.members[:i], r.members[i+1:]...)

	s.logger.DebugContext(ctx, "member left",
		"room_id", params.RoomID,
		"user_id", left.ID,
		"session_id", params.SessionID,
	)

	if len(r.members) == 0 {
		delete(s.rooms, params.RoomID)
		s.cancelExpiry(params.RoomID)
		s.logger.DebugContext(ctx, "room deleted", "room_id", params.RoomID)

		return LeaveRoomResponse{LeftUserID: left.ID, RoomDeleted: true}, nil
	}

	resp := LeaveRoomResponse{
		LeftUserID: left.ID,
		Conns:      r.connsExcept(params.SessionID),
	}
	if i == 0 {
		resp.NewHoster = r.members[0].Conn
		s.logger.DebugContext(ctx, "new hoster",
			"room_id", params.RoomID,
			"user_id", r.members[0].ID,
		)
	}

	return resp, nil
}

func (s *service) DeleteRoom(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[roomID]; !exists {
		return protocol.ErrRoomDoesNotExists
	}

	delete(s.rooms, roomID)
	s.cancelExpiry(roomID)
	s.logger.DebugContext(ctx, "room deleted", "room_id", roomID)

	return nil
}
