package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Command
	}{
		{
			name:    "create",
			message: `{"command":"create","title_id":99942,"episode":"3"}`,
			want:    CreateCommand{TitleID: 99942, Episode: "3"},
		},
		{
			name:    "join",
			message: `{"command":"join","room_id":"aB3x9"}`,
			want:    JoinCommand{RoomID: "aB3x9"},
		},
		{
			name:    "pause",
			message: `{"command":"pause"}`,
			want:    PauseCommand{},
		},
		{
			name:    "play",
			message: `{"command":"play","time":1700000000.5,"playback_time":42.25}`,
			want:    PlayCommand{Time: 1700000000.5, PlaybackTime: 42.25},
		},
		{
			name:    "seek",
			message: `{"command":"seek","time":1700000000.5,"playback_time":0}`,
			want:    SeekCommand{Time: 1700000000.5, PlaybackTime: 0},
		},
		{
			name:    "set_episode",
			message: `{"command":"set_episode","episode":"12"}`,
			want:    SetEpisodeCommand{Episode: "12"},
		},
		{
			name:    "playback_time_request",
			message: `{"command":"playback_time_request"}`,
			want:    PlaybackTimeRequestCommand{},
		},
		{
			name:    "playback_time_request_answer",
			message: `{"command":"playback_time_request_answer","time":10.5,"playback_time":33.1,"user_id":2}`,
			want:    PlaybackTimeRequestAnswerCommand{Time: 10.5, PlaybackTime: 33.1, UserID: 2},
		},
		{
			name:    "pause_request",
			message: `{"command":"pause_request"}`,
			want:    PauseRequestCommand{},
		},
		{
			name:    "rewind_back_request",
			message: `{"command":"rewind_back_request"}`,
			want:    RewindBackRequestCommand{},
		},
		{
			name:    "leave_room",
			message: `{"command":"leave_room"}`,
			want:    LeaveRoomCommand{},
		},
		{
			name:    "server_time_request",
			message: `{"command":"server_time_request","time":1700000123.75}`,
			want:    ServerTimeRequestCommand{Time: 1700000123.75},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, protoErr := DecodeCommand([]byte(tt.message))
			require.Nil(t, protoErr)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestDecodeCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    *Error
	}{
		{
			name:    "malformed json",
			message: `{"command":`,
			want:    ErrIncorrectMessage,
		},
		{
			name:    "json array",
			message: `["create"]`,
			want:    ErrIncorrectMessage,
		},
		{
			name:    "no command field",
			message: `{"room_id":"aB3x9"}`,
			want:    ErrIncorrectMessage,
		},
		{
			name:    "command is not a string",
			message: `{"command":5}`,
			want:    ErrIncorrectMessage,
		},
		{
			name:    "unknown command",
			message: `{"command":"destroy"}`,
			want:    ErrUnknownCommand,
		},
		{
			name:    "create without title_id",
			message: `{"command":"create","episode":"3"}`,
			want:    ErrParamNotPassed("title_id"),
		},
		{
			name:    "create without episode",
			message: `{"command":"create","title_id":99942}`,
			want:    ErrParamNotPassed("episode"),
		},
		{
			name:    "create with non-numeric title_id",
			message: `{"command":"create","title_id":"99942","episode":"3"}`,
			want:    ErrParamNotPassed("title_id"),
		},
		{
			name:    "join without room_id",
			message: `{"command":"join"}`,
			want:    ErrParamNotPassed("room_id"),
		},
		{
			name:    "play without time",
			message: `{"command":"play","playback_time":42.25}`,
			want:    ErrParamNotPassed("time"),
		},
		{
			name:    "play without playback_time",
			message: `{"command":"play","time":1700000000.5}`,
			want:    ErrParamNotPassed("playback_time"),
		},
		{
			name:    "play without both reports time first",
			message: `{"command":"play"}`,
			want:    ErrParamNotPassed("time"),
		},
		{
			name:    "seek without playback_time",
			message: `{"command":"seek","time":1700000000.5}`,
			want:    ErrParamNotPassed("playback_time"),
		},
		{
			name:    "set_episode without episode",
			message: `{"command":"set_episode"}`,
			want:    ErrParamNotPassed("episode"),
		},
		{
			name:    "answer without user_id",
			message: `{"command":"playback_time_request_answer","time":10.5,"playback_time":33.1}`,
			want:    ErrParamNotPassed("user_id"),
		},
		{
			name:    "server_time_request without time",
			message: `{"command":"server_time_request"}`,
			want:    ErrParamNotPassed("time"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, protoErr := DecodeCommand([]byte(tt.message))
			assert.Nil(t, cmd)
			require.NotNil(t, protoErr)
			assert.Equal(t, tt.want.Code, protoErr.Code)
			assert.Equal(t, tt.want.Message, protoErr.Message)
		})
	}
}

func TestEventWireFormat(t *testing.T) {
	tests := []struct {
		name  string
		event any
		want  string
	}{
		{
			name:  "init",
			event: NewInitEvent("aB3x9", 1, []int{0, 1}, 99942, "3"),
			want:  `{"type":"init","room_id":"aB3x9","me":1,"members":[0,1],"title_id":99942,"episode":"3"}`,
		},
		{
			name:  "join",
			event: NewJoinEvent(2),
			want:  `{"type":"join","user_id":2}`,
		},
		{
			name:  "pause",
			event: NewPauseEvent(),
			want:  `{"type":"pause"}`,
		},
		{
			name:  "play",
			event: NewPlayEvent(1700000000.5, 42.25),
			want:  `{"type":"play","time":1700000000.5,"playback_time":42.25}`,
		},
		{
			name:  "playback time answer",
			event: NewPlaybackTimeRequestAnswerEvent(10.5, 33.25, true),
			want:  `{"type":"playback_time_request_answer","time":10.5,"playback_time":33.25,"playing":true}`,
		},
		{
			name:  "pause request carries sender",
			event: NewPauseRequestEvent(3),
			want:  `{"type":"pause_request","sender":3}`,
		},
		{
			name:  "hoster promotion",
			event: NewHosterPromotionEvent(),
			want:  `{"type":"hoster_promotion"}`,
		},
		{
			name:  "server time answer",
			event: NewServerTimeRequestAnswerEvent(1700000123.75, 1700000124.5),
			want:  `{"type":"server_time_request_answer","client_time":1700000123.75,"server_time":1700000124.5}`,
		},
		{
			name:  "error",
			event: NewErrorEvent(ErrRoomDoesNotExists),
			want:  `{"type":"error","code":1,"message":"Room does not exist"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}
