package protocol

import "encoding/json"

// Command names accepted from clients.
const (
	CommandCreate                    = "create"
	CommandJoin                      = "join"
	CommandPause                     = "pause"
	CommandPlay                      = "play"
	CommandSeek                      = "seek"
	CommandSetEpisode                = "set_episode"
	CommandPlaybackTimeRequest       = "playback_time_request"
	CommandPlaybackTimeRequestAnswer = "playback_time_request_answer"
	CommandPauseRequest              = "pause_request"
	CommandRewindBackRequest         = "rewind_back_request"
	CommandLeaveRoom                 = "leave_room"
	CommandServerTimeRequest         = "server_time_request"
)

// Command is one fully decoded client message. The concrete type identifies
// the command, so dispatch is an exhaustive type switch rather than string
// matching.
type Command interface {
	isCommand()
}

type CreateCommand struct {
	TitleID int
	Episode string
}

type JoinCommand struct {
	RoomID string
}

type PauseCommand struct{}

type PlayCommand struct {
	Time         float64
	PlaybackTime float64
}

type SeekCommand struct {
	Time         float64
	PlaybackTime float64
}

type SetEpisodeCommand struct {
	Episode string
}

type PlaybackTimeRequestCommand struct{}

type PlaybackTimeRequestAnswerCommand struct {
	Time         float64
	PlaybackTime float64
	UserID       int
}

type PauseRequestCommand struct{}

type RewindBackRequestCommand struct{}

type LeaveRoomCommand struct{}

type ServerTimeRequestCommand struct {
	Time float64
}

func (CreateCommand) isCommand()                    {}
func (JoinCommand) isCommand()                      {}
func (PauseCommand) isCommand()                     {}
func (PlayCommand) isCommand()                      {}
func (SeekCommand) isCommand()                      {}
func (SetEpisodeCommand) isCommand()                {}
func (PlaybackTimeRequestCommand) isCommand()       {}
func (PlaybackTimeRequestAnswerCommand) isCommand() {}
func (PauseRequestCommand) isCommand()              {}
func (RewindBackRequestCommand) isCommand()         {}
func (LeaveRoomCommand) isCommand()                 {}
func (ServerTimeRequestCommand) isCommand()         {}

type envelope struct {
	Command *string `json:"command"`
}

// DecodeCommand parses one wire message into a Command. It returns
// ErrIncorrectMessage for malformed JSON, non-object messages and messages
// without a "command" field, ErrUnknownCommand for unrecognized command names
// and ErrParamNotPassed for missing required fields.
func DecodeCommand(data []byte) (Command, *Error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Command == nil {
		return nil, ErrIncorrectMessage
	}

	switch *env.Command {
	case CommandCreate:
		var p struct {
			TitleID *int    `json:"title_id"`
			Episode *string `json:"episode"`
		}
		json.Unmarshal(data, &p)
		if p.TitleID == nil {
			return nil, ErrParamNotPassed("title_id")
		}
		if p.Episode == nil {
			return nil, ErrParamNotPassed("episode")
		}
		return CreateCommand{TitleID: *p.TitleID, Episode: *p.Episode}, nil

	case CommandJoin:
		var p struct {
			RoomID string `json:"room_id"`
		}
		json.Unmarshal(data, &p)
		if p.RoomID == "" {
			return nil, ErrParamNotPassed("room_id")
		}
		return JoinCommand{RoomID: p.RoomID}, nil

	case CommandPause:
		return PauseCommand{}, nil

	case CommandPlay:
		p, perr := decodePlayback(data)
		if perr != nil {
			return nil, perr
		}
		return PlayCommand(p), nil

	case CommandSeek:
		p, perr := decodePlayback(data)
		if perr != nil {
			return nil, perr
		}
		return SeekCommand(p), nil

	case CommandSetEpisode:
		var p struct {
			Episode *string `json:"episode"`
		}
		json.Unmarshal(data, &p)
		if p.Episode == nil {
			return nil, ErrParamNotPassed("episode")
		}
		return SetEpisodeCommand{Episode: *p.Episode}, nil

	case CommandPlaybackTimeRequest:
		return PlaybackTimeRequestCommand{}, nil

	case CommandPlaybackTimeRequestAnswer:
		var p struct {
			Time         *float64 `json:"time"`
			PlaybackTime *float64 `json:"playback_time"`
			UserID       *int     `json:"user_id"`
		}
		json.Unmarshal(data, &p)
		if p.Time == nil {
			return nil, ErrParamNotPassed("time")
		}
		if p.PlaybackTime == nil {
			return nil, ErrParamNotPassed("playback_time")
		}
		if p.UserID == nil {
			return nil, ErrParamNotPassed("user_id")
		}
		return PlaybackTimeRequestAnswerCommand{
			Time:         *p.Time,
			PlaybackTime: *p.PlaybackTime,
			UserID:       *p.UserID,
		}, nil

	case CommandPauseRequest:
		return PauseRequestCommand{}, nil

	case CommandRewindBackRequest:
		return RewindBackRequestCommand{}, nil

	case CommandLeaveRoom:
		return LeaveRoomCommand{}, nil

	case CommandServerTimeRequest:
		var p struct {
			Time *float64 `json:"time"`
		}
		json.Unmarshal(data, &p)
		if p.Time == nil {
			return nil, ErrParamNotPassed("time")
		}
		return ServerTimeRequestCommand{Time: *p.Time}, nil

	default:
		return nil, ErrUnknownCommand
	}
}

type playbackPayload struct {
	Time         float64
	PlaybackTime float64
}

func decodePlayback(data []byte) (playbackPayload, *Error) {
	var p struct {
		Time         *float64 `json:"time"`
		PlaybackTime *float64 `json:"playback_time"`
	}
	json.Unmarshal(data, &p)
	if p.Time == nil {
		return playbackPayload{}, ErrParamNotPassed("time")
	}
	if p.PlaybackTime == nil {
		return playbackPayload{}, ErrParamNotPassed("playback_time")
	}

	return playbackPayload{Time: *p.Time, PlaybackTime: *p.PlaybackTime}, nil
}
