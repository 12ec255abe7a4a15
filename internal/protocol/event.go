package protocol

// Event types sent to clients.
const (
	EventInit                      = "init"
	EventJoin                      = "join"
	EventPause                     = "pause"
	EventPlay                      = "play"
	EventSeek                      = "seek"
	EventSetEpisode                = "set_episode"
	EventPlaybackTimeRequest       = "playback_time_request"
	EventPlaybackTimeRequestAnswer = "playback_time_request_answer"
	EventPauseRequest              = "pause_request"
	EventRewindBackRequest         = "rewind_back_request"
	EventLeaveRoom                 = "leave_room"
	EventHosterPromotion           = "hoster_promotion"
	EventServerTimeRequestAnswer   = "server_time_request_answer"
	EventError                     = "error"
)

// Every event is one flat JSON object with a "type" discriminator.

type InitEvent struct {
	Type    string `json:"type"`
	RoomID  string `json:"room_id"`
	Me      int    `json:"me"`
	Members []int  `json:"members"`
	TitleID int    `json:"title_id"`
	Episode string `json:"episode"`
}

func NewInitEvent(roomID string, me int, members []int, titleID int, episode string) InitEvent {
	return InitEvent{
		Type:    EventInit,
		RoomID:  roomID,
		Me:      me,
		Members: members,
		TitleID: titleID,
		Episode: episode,
	}
}

type JoinEvent struct {
	Type   string `json:"type"`
	UserID int    `json:"user_id"`
}

func NewJoinEvent(userID int) JoinEvent {
	return JoinEvent{Type: EventJoin, UserID: userID}
}

type PauseEvent struct {
	Type string `json:"type"`
}

func NewPauseEvent() PauseEvent {
	return PauseEvent{Type: EventPause}
}

type PlayEvent struct {
	Type         string  `json:"type"`
	Time         float64 `json:"time"`
	PlaybackTime float64 `json:"playback_time"`
}

func NewPlayEvent(time, playbackTime float64) PlayEvent {
	return PlayEvent{Type: EventPlay, Time: time, PlaybackTime: playbackTime}
}

type SeekEvent struct {
	Type         string  `json:"type"`
	Time         float64 `json:"time"`
	PlaybackTime float64 `json:"playback_time"`
}

func NewSeekEvent(time, playbackTime float64) SeekEvent {
	return SeekEvent{Type: EventSeek, Time: time, PlaybackTime: playbackTime}
}

type SetEpisodeEvent struct {
	Type    string `json:"type"`
	Episode string `json:"episode"`
}

func NewSetEpisodeEvent(episode string) SetEpisodeEvent {
	return SetEpisodeEvent{Type: EventSetEpisode, Episode: episode}
}

type PlaybackTimeRequestEvent struct {
	Type   string `json:"type"`
	UserID int    `json:"user_id"`
}

func NewPlaybackTimeRequestEvent(userID int) PlaybackTimeRequestEvent {
	return PlaybackTimeRequestEvent{Type: EventPlaybackTimeRequest, UserID: userID}
}

type PlaybackTimeRequestAnswerEvent struct {
	Type         string  `json:"type"`
	Time         float64 `json:"time"`
	PlaybackTime float64 `json:"playback_time"`
	Playing      bool    `json:"playing"`
}

func NewPlaybackTimeRequestAnswerEvent(time, playbackTime float64, playing bool) PlaybackTimeRequestAnswerEvent {
	return PlaybackTimeRequestAnswerEvent{
		Type:         EventPlaybackTimeRequestAnswer,
		Time:         time,
		PlaybackTime: playbackTime,
		Playing:      playing,
	}
}

type PauseRequestEvent struct {
	Type   string `json:"type"`
	Sender int    `json:"sender"`
}

func NewPauseRequestEvent(sender int) PauseRequestEvent {
	return PauseRequestEvent{Type: EventPauseRequest, Sender: sender}
}

type RewindBackRequestEvent struct {
	Type   string `json:"type"`
	Sender int    `json:"sender"`
}

func NewRewindBackRequestEvent(sender int) RewindBackRequestEvent {
	return RewindBackRequestEvent{Type: EventRewindBackRequest, Sender: sender}
}

type LeaveRoomEvent struct {
	Type   string `json:"type"`
	UserID int    `json:"user_id"`
}

func NewLeaveRoomEvent(userID int) LeaveRoomEvent {
	return LeaveRoomEvent{Type: EventLeaveRoom, UserID: userID}
}

type HosterPromotionEvent struct {
	Type string `json:"type"`
}

func NewHosterPromotionEvent() HosterPromotionEvent {
	return HosterPromotionEvent{Type: EventHosterPromotion}
}

type ServerTimeRequestAnswerEvent struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"client_time"`
	ServerTime float64 `json:"server_time"`
}

func NewServerTimeRequestAnswerEvent(clientTime, serverTime float64) ServerTimeRequestAnswerEvent {
	return ServerTimeRequestAnswerEvent{
		Type:       EventServerTimeRequestAnswer,
		ClientTime: clientTime,
		ServerTime: serverTime,
	}
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorEvent(err *Error) ErrorEvent {
	return ErrorEvent{Type: EventError, Code: err.Code, Message: err.Message}
}
