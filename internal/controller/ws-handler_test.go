package controller

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anitogether/server/internal/service/room"
	"github.com/anitogether/server/pkg/version"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	roomService := room.NewService(&room.Config{RoomExp: time.Minute}, slog.Default())
	c := NewController(roomService, &Config{
		CompatibleVersion: version.Version{Major: 1},
	}, slog.Default())

	srv := httptest.NewServer(c.GetMux())
	t.Cleanup(srv.Close)

	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func sendCommand(t *testing.T, conn *websocket.Conn, command map[string]any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(command))
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event map[string]any
	require.NoError(t, json.Unmarshal(data, &event))

	return event
}

func createRoomWS(t *testing.T, srv *httptest.Server) (*websocket.Conn, string) {
	t.Helper()

	conn := dialWS(t, srv)
	sendCommand(t, conn, map[string]any{"command": "create", "title_id": 99942, "episode": "3"})

	event := readEvent(t, conn)
	require.Equal(t, "init", event["type"])
	require.Equal(t, float64(0), event["me"])

	return conn, event["room_id"].(string)
}

func TestCreateAndJoin(t *testing.T) {
	srv := newTestServer(t)

	hoster, roomID := createRoomWS(t, srv)
	assert.Len(t, roomID, 5)

	member := dialWS(t, srv)
	sendCommand(t, member, map[string]any{"command": "join", "room_id": roomID})

	init := readEvent(t, member)
	assert.Equal(t, "init", init["type"])
	assert.Equal(t, roomID, init["room_id"])
	assert.Equal(t, float64(1), init["me"])
	assert.Equal(t, []any{float64(0), float64(1)}, init["members"])
	assert.Equal(t, float64(99942), init["title_id"])
	assert.Equal(t, "3", init["episode"])

	join := readEvent(t, hoster)
	assert.Equal(t, "join", join["type"])
	assert.Equal(t, float64(1), join["user_id"])
}

func TestJoinUnknownRoom(t *testing.T) {
	srv := newTestServer(t)

	conn := dialWS(t, srv)
	sendCommand(t, conn, map[string]any{"command": "join", "room_id": "nope1"})

	event := readEvent(t, conn)
	assert.Equal(t, "error", event["type"])
	assert.Equal(t, float64(1), event["code"])
	assert.Equal(t, "Room does not exist", event["message"])

	// the connection is closed after a failed handshake
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestPlayerBroadcasts(t *testing.T) {
	srv := newTestServer(t)

	hoster, roomID := createRoomWS(t, srv)
	member := dialWS(t, srv)
	sendCommand(t, member, map[string]any{"command": "join", "room_id": roomID})
	readEvent(t, member) // init
	readEvent(t, hoster) // join

	// hoster plays: the other member hears it, the hoster does not get an echo
	sendCommand(t, hoster, map[string]any{"command": "play", "time": 100.5, "playback_time": 42.25})
	play := readEvent(t, member)
	assert.Equal(t, "play", play["type"])
	assert.Equal(t, 100.5, play["time"])
	assert.Equal(t, 42.25, play["playback_time"])

	sendCommand(t, hoster, map[string]any{"command": "seek", "time": 101.0, "playback_time": 10.0})
	seek := readEvent(t, member)
	assert.Equal(t, "seek", seek["type"])

	sendCommand(t, hoster, map[string]any{"command": "pause"})
	pause := readEvent(t, member)
	assert.Equal(t, "pause", pause["type"])

	// non-hoster play is silently ignored: the next event the member sees is
	// the hoster's set_episode
	sendCommand(t, member, map[string]any{"command": "play", "time": 1.0, "playback_time": 2.0})
	sendCommand(t, hoster, map[string]any{"command": "set_episode", "episode": "4"})
	setEpisode := readEvent(t, member)
	assert.Equal(t, "set_episode", setEpisode["type"])
	assert.Equal(t, "4", setEpisode["episode"])
}

func TestPlaybackTimeRelay(t *testing.T) {
	srv := newTestServer(t)

	hoster, roomID := createRoomWS(t, srv)
	member := dialWS(t, srv)
	sendCommand(t, member, map[string]any{"command": "join", "room_id": roomID})
	readEvent(t, member) // init
	readEvent(t, hoster) // join

	// member asks, the hoster gets the request with the asker's id
	sendCommand(t, member, map[string]any{"command": "playback_time_request"})
	request := readEvent(t, hoster)
	require.Equal(t, "playback_time_request", request["type"])
	assert.Equal(t, float64(1), request["user_id"])

	// hoster answers, the asker gets the answer with the playing flag
	sendCommand(t, hoster, map[string]any{
		"command":       "playback_time_request_answer",
		"time":          100.5,
		"playback_time": 42.25,
		"user_id":       1,
	})
	answer := readEvent(t, member)
	assert.Equal(t, "playback_time_request_answer", answer["type"])
	assert.Equal(t, 100.5, answer["time"])
	assert.Equal(t, 42.25, answer["playback_time"])
	assert.Equal(t, false, answer["playing"])
}

func TestPauseRequestRelay(t *testing.T) {
	srv := newTestServer(t)

	hoster, roomID := createRoomWS(t, srv)
	member := dialWS(t, srv)
	sendCommand(t, member, map[string]any{"command": "join", "room_id": roomID})
	readEvent(t, member) // init
	readEvent(t, hoster) // join

	sendCommand(t, member, map[string]any{"command": "pause_request"})
	request := readEvent(t, hoster)
	assert.Equal(t, "pause_request", request["type"])
	assert.Equal(t, float64(1), request["sender"])

	sendCommand(t, member, map[string]any{"command": "rewind_back_request"})
	request = readEvent(t, hoster)
	assert.Equal(t, "rewind_back_request", request["type"])
	assert.Equal(t, float64(1), request["sender"])
}

func TestServerTimeRequest(t *testing.T) {
	srv := newTestServer(t)

	conn, _ := createRoomWS(t, srv)

	sendCommand(t, conn, map[string]any{"command": "server_time_request", "time": 1700000123.75})
	answer := readEvent(t, conn)
	assert.Equal(t, "server_time_request_answer", answer["type"])
	assert.Equal(t, 1700000123.75, answer["client_time"])
	assert.Greater(t, answer["server_time"], float64(0))
}

func TestHosterPromotionOnLeave(t *testing.T) {
	srv := newTestServer(t)

	hoster, roomID := createRoomWS(t, srv)
	member := dialWS(t, srv)
	sendCommand(t, member, map[string]any{"command": "join", "room_id": roomID})
	readEvent(t, member) // init
	readEvent(t, hoster) // join

	sendCommand(t, hoster, map[string]any{"command": "leave_room"})

	first := readEvent(t, member)
	second := readEvent(t, member)
	types := []string{first["type"].(string), second["type"].(string)}
	assert.ElementsMatch(t, []string{"leave_room", "hoster_promotion"}, types)

	// the promoted member holds hoster rights and the session stays alive
	sendCommand(t, member, map[string]any{"command": "play", "time": 1.0, "playback_time": 2.0})
	sendCommand(t, member, map[string]any{"command": "server_time_request", "time": 1.0})
	answer := readEvent(t, member)
	assert.Equal(t, "server_time_request_answer", answer["type"])
}

func TestDisconnectBroadcastsLeave(t *testing.T) {
	srv := newTestServer(t)

	hoster, roomID := createRoomWS(t, srv)
	member := dialWS(t, srv)
	sendCommand(t, member, map[string]any{"command": "join", "room_id": roomID})
	readEvent(t, member) // init
	readEvent(t, hoster) // join

	// dropping the socket without leave_room still announces the departure
	member.Close()

	leave := readEvent(t, hoster)
	assert.Equal(t, "leave_room", leave["type"])
	assert.Equal(t, float64(1), leave["user_id"])
}

func TestProtocolErrors(t *testing.T) {
	srv := newTestServer(t)

	conn, _ := createRoomWS(t, srv)

	// unknown command inside a room keeps the session alive
	sendCommand(t, conn, map[string]any{"command": "destroy"})
	event := readEvent(t, conn)
	assert.Equal(t, "error", event["type"])
	assert.Equal(t, float64(3), event["code"])

	// malformed message
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"command":`)))
	event = readEvent(t, conn)
	assert.Equal(t, "error", event["type"])
	assert.Equal(t, float64(4), event["code"])

	// missing param
	sendCommand(t, conn, map[string]any{"command": "play", "time": 1.0})
	event = readEvent(t, conn)
	assert.Equal(t, "error", event["type"])
	assert.Equal(t, float64(5), event["code"])
	assert.Equal(t, "playback_time not passed", event["message"])

	// the session is still usable
	sendCommand(t, conn, map[string]any{"command": "server_time_request", "time": 1.0})
	event = readEvent(t, conn)
	assert.Equal(t, "server_time_request_answer", event["type"])
}

func TestHandshakeRejectsNonRoomCommand(t *testing.T) {
	srv := newTestServer(t)

	conn := dialWS(t, srv)
	sendCommand(t, conn, map[string]any{"command": "pause"})

	event := readEvent(t, conn)
	assert.Equal(t, "error", event["type"])
	assert.Equal(t, float64(3), event["code"])

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection must be closed after a failed handshake")
}
