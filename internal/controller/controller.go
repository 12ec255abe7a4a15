package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/anitogether/server/internal/service/room"
	"github.com/anitogether/server/pkg/validator"
	"github.com/anitogether/server/pkg/version"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) room.CreateRoomResponse
	CreateEmptyRoom(ctx context.Context, titleID int, episode string) string
	GetRoom(context.Context, string) (room.RoomState, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	Pause(context.Context, *room.PauseParams) (room.BroadcastResponse, error)
	Play(context.Context, *room.PlayParams) (room.BroadcastResponse, error)
	Seek(context.Context, *room.SeekParams) (room.BroadcastResponse, error)
	SetEpisode(context.Context, *room.SetEpisodeParams) (room.BroadcastResponse, error)
	PlaybackTimeRequest(context.Context, *room.RelayParams) (room.RelayResponse, error)
	PlaybackTimeAnswer(context.Context, *room.PlaybackTimeAnswerParams) (room.PlaybackTimeAnswerResponse, error)
	PauseRequest(context.Context, *room.RelayParams) (room.RelayResponse, error)
	RewindBackRequest(context.Context, *room.RelayParams) (room.RelayResponse, error)
}

type Config struct {
	// CompatibleVersion is the lowest client version the HTTP surface accepts.
	CompatibleVersion version.Version
}

type controller struct {
	roomService       iRoomService
	upgrader          websocket.Upgrader
	validate          *validator.Validator
	compatibleVersion version.Version
	logger            *slog.Logger
}

func NewController(roomService iRoomService, cfg *Config, logger *slog.Logger) *controller {
	return &controller{
		roomService: roomService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:          validator.NewValidator(),
		compatibleVersion: cfg.CompatibleVersion,
		logger:            logger,
	}
}
