package room

import (
	"context"

	"github.com/google/uuid"

	"github.com/anitogether/server/internal/protocol"
)

// BroadcastResponse carries the connections a playback event fans out to,
// snapshotted under the registry lock so the send happens outside it.
type BroadcastResponse struct {
	Conns []Sender
}

type PauseParams struct {
	SessionID uuid.UUID
	RoomID    string
}

// Pause stops playback. Hoster-only.
func (s *service) Pause(ctx context.Context, params *PauseParams) (BroadcastResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[params.RoomID]
	if !exists {
		return BroadcastResponse{}, protocol.ErrRoomDoesNotExists
	}
	if !r.isHoster(params.SessionID) {
		return BroadcastResponse{}, ErrPermissionDenied
	}

	r.playing = false
	s.logger.DebugContext(ctx, "paused", "room_id", params.RoomID)

	return BroadcastResponse{Conns: r.connsExcept(params.SessionID)}, nil
}

type PlayParams struct {
	SessionID uuid.UUID
	RoomID    string
}

// Play starts playback. Hoster-only.
func (s *service) Play(ctx context.Context, params *PlayParams) (BroadcastResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[params.RoomID]
	if !exists {
		return BroadcastResponse{}, protocol.ErrRoomDoesNotExists
	}
	if !r.isHoster(params.SessionID) {
		return BroadcastResponse{}, ErrPermissionDenied
	}

	r.playing = true
	s.logger.DebugContext(ctx, "playing", "room_id", params.RoomID)

	return BroadcastResponse{Conns: r.connsExcept(params.SessionID)}, nil
}

type SeekParams struct {
	SessionID uuid.UUID
	RoomID    string
}

// Seek jumps to a position. Playback stops until the next play. Hoster-only.
func (s *service) Seek(ctx context.Context, params *SeekParams) (BroadcastResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[params.RoomID]
	if !exists {
		return BroadcastResponse{}, protocol.ErrRoomDoesNotExists
	}
	if !r.isHoster(params.SessionID) {
		return BroadcastResponse{}, ErrPermissionDenied
	}

	r.playing = false
	s.logger.DebugContext(ctx, "seeking", "room_id", params.RoomID)

	return BroadcastResponse{Conns: r.connsExcept(params.SessionID)}, nil
}

type SetEpisodeParams struct {
	SessionID uuid.UUID
	RoomID    string
	Episode   string
}

// SetEpisode changes the room's current episode. Hoster-only.
func (s *service) SetEpisode(ctx context.Context, params *SetEpisodeParams) (BroadcastResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[params.RoomID]
	if !exists {
		return BroadcastResponse{}, protocol.ErrRoomDoesNotExists
	}
	if !r.isHoster(params.SessionID) {
		return BroadcastResponse{}, ErrPermissionDenied
	}

	r.episode = params.Episode
	s.logger.DebugContext(ctx, "episode set", "room_id", params.RoomID, "episode", params.Episode)

	return BroadcastResponse{Conns: r.connsExcept(params.SessionID)}, nil
}
