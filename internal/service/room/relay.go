package room

import (
	"context"

	"github.com/google/uuid"

	"github.com/anitogether/server/internal/protocol"
)

// RelayResponse routes a member's request to the hoster.
type RelayResponse struct {
	Hoster       Sender
	SenderUserID int
}

type RelayParams struct {
	SessionID uuid.UUID
	RoomID    string
}

// PlaybackTimeRequest resolves the sender and the hoster for a
// playback-time query. The request is relayed, not broadcast.
func (s *service) PlaybackTimeRequest(ctx context.Context, params *RelayParams) (RelayResponse, error) {
	return s.relayToHoster(ctx, params)
}

// PauseRequest resolves routing for a non-hoster's plea to pause.
func (s *service) PauseRequest(ctx context.Context, params *RelayParams) (RelayResponse, error) {
	return s.relayToHoster(ctx, params)
}

// RewindBackRequest resolves routing for a non-hoster's plea to rewind.
func (s *service) RewindBackRequest(ctx context.Context, params *RelayParams) (RelayResponse, error) {
	return s.relayToHoster(ctx, params)
}

func (s *service) relayToHoster(ctx context.Context, params *RelayParams) (RelayResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[params.RoomID]
	if !exists {
		return RelayResponse{}, protocol.ErrRoomDoesNotExists
	}

	i := r.memberIndex(params.SessionID)
	if i < 0 {
		return RelayResponse{}, protocol.ErrUserNotAMemberOfRoom
	}

	return RelayResponse{
		Hoster:       r.members[0].Conn,
		SenderUserID: r.members[i].ID,
	}, nil
}

type PlaybackTimeAnswerParams struct {
	SessionID    uuid.UUID
	RoomID       string
	TargetUserID int
}

type PlaybackTimeAnswerResponse struct {
	Target  Sender
	Playing bool
}

// PlaybackTimeAnswer routes the hoster's reply back to the member that asked,
// carrying the room's playing flag. Hoster-only.
func (s *service) PlaybackTimeAnswer(ctx context.Context, params *PlaybackTimeAnswerParams) (PlaybackTimeAnswerResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[params.RoomID]
	if !exists {
		return PlaybackTimeAnswerResponse{}, protocol.ErrRoomDoesNotExists
	}
	if !r.isHoster(params.SessionID) {
		return PlaybackTimeAnswerResponse{}, ErrPermissionDenied
	}

	target := r.memberByID(params.TargetUserID)
	if target == nil {
		return PlaybackTimeAnswerResponse{}, protocol.ErrUserNotAMemberOfRoom
	}

	return PlaybackTimeAnswerResponse{Target: target.Conn, Playing: r.playing}, nil
}
