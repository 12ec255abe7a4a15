package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/anitogether/server/internal/protocol"
	"github.com/anitogether/server/internal/service/room"
	"github.com/anitogether/server/pkg/ctxlogger"
)

// wsConn wraps a gorilla connection as a room.Sender. The mutex serializes
// writes: broadcasts from other sessions race with this session's own replies
// and gorilla conns allow only one concurrent writer.
type wsConn struct {
	id   uuid.UUID
	conn *websocket.Conn
	mu   sync.Mutex
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{id: uuid.New(), conn: conn}
}

func (c *wsConn) SessionID() uuid.UUID {
	return c.id
}

func (c *wsConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// session is one connection's protocol state. It is owned by the reading
// goroutine; only conn is shared (through room broadcasts).
type session struct {
	conn   room.Sender
	roomID string
	// left guards the leave sequence: the explicit leave_room branch and the
	// connection-lifetime cleanup must not both run it.
	left bool
}

func (c *controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	ws := newWSConn(conn)
	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("session_id", ws.id.String()))
	c.logger.DebugContext(ctx, "client connected")
	defer c.logger.DebugContext(ctx, "client disconnected")

	// The handshake is single-shot: the first message must create or join a
	// room, anything else drops the connection.
	_, data, err := conn.ReadMessage()
	if err != nil {
		return
	}

	cmd, protoErr := protocol.DecodeCommand(data)
	if protoErr != nil {
		c.sendError(ctx, ws, protoErr)
		return
	}

	sess := &session{conn: ws}
	switch cmd := cmd.(type) {
	case protocol.JoinCommand:
		if !c.handleJoin(ctx, sess, cmd) {
			return
		}
	case protocol.CreateCommand:
		c.handleCreate(ctx, sess, cmd)
	default:
		c.sendError(ctx, ws, protocol.ErrUnknownCommand)
		return
	}
	defer c.leave(ctx, sess)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.DebugContext(ctx, "read failed", "error", err)
			}
			return
		}

		cmd, protoErr := protocol.DecodeCommand(data)
		if protoErr != nil {
			c.sendError(ctx, sess.conn, protoErr)
			continue
		}

		if closed := c.dispatch(ctx, sess, cmd); closed {
			return
		}
	}
}

func (c *controller) handleJoin(ctx context.Context, sess *session, cmd protocol.JoinCommand) bool {
	resp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		Conn:   sess.conn,
		RoomID: cmd.RoomID,
	})
	if err != nil {
		c.sendServiceError(ctx, sess.conn, err)
		return false
	}
	sess.roomID = cmd.RoomID

	c.send(ctx, sess.conn, protocol.NewInitEvent(cmd.RoomID, resp.Me.ID, resp.Members, resp.TitleID, resp.Episode))
	c.broadcast(ctx, resp.OtherConns, protocol.NewJoinEvent(resp.Me.ID))

	return true
}

func (c *controller) handleCreate(ctx context.Context, sess *session, cmd protocol.CreateCommand) {
	resp := c.roomService.CreateRoom(ctx, &room.CreateRoomParams{
		Conn:    sess.conn,
		TitleID: cmd.TitleID,
		Episode: cmd.Episode,
	})
	sess.roomID = resp.RoomID

	c.send(ctx, sess.conn, protocol.NewInitEvent(resp.RoomID, resp.Me.ID, []int{resp.Me.ID}, cmd.TitleID, cmd.Episode))
}

// dispatch handles one in-room command. It reports whether the session is
// done and the connection should close.
func (c *controller) dispatch(ctx context.Context, sess *session, cmd protocol.Command) bool {
	switch cmd := cmd.(type) {
	case protocol.PauseCommand:
		resp, err := c.roomService.Pause(ctx, &room.PauseParams{
			SessionID: sess.conn.SessionID(),
			RoomID:    sess.roomID,
		})
		if err != nil {
			c.sendServiceError(ctx, sess.conn, err)
			return false
		}
		c.broadcast(ctx, resp.Conns, protocol.NewPauseEvent())

	case protocol.PlayCommand:
		resp, err := c.roomService.Play(ctx, &room.PlayParams{
			SessionID: sess.conn.SessionID(),
			RoomID:    sess.roomID,
		})
		if err != nil {
			c.sendServiceError(ctx, sess.conn, err)
			return false
		}
		c.broadcast(ctx, resp.Conns, protocol.NewPlayEvent(cmd.Time, cmd.PlaybackTime))

	case protocol.SeekCommand:
		resp, err := c.roomService.Seek(ctx, &room.SeekParams{
			SessionID: sess.conn.SessionID(),
			RoomID:    sess.roomID,
		})
		if err != nil {
			c.sendServiceError(ctx, sess.conn, err)
			return false
		}
		c.broadcast(ctx, resp.Conns, protocol.NewSeekEvent(cmd.Time, cmd.PlaybackTime))

	case protocol.SetEpisodeCommand:
		resp, err := c.roomService.SetEpisode(ctx, &room.SetEpisodeParams{
			SessionID: sess.conn.SessionID(),
			RoomID:    sess.roomID,
			Episode:   cmd.Episode,
		})
		if err != nil {
			c.sendServiceError(ctx, sess.conn, err)
			return false
		}
		c.broadcast(ctx, resp.Conns, protocol.NewSetEpisodeEvent(cmd.Episode))

	case protocol.PlaybackTimeRequestCommand:
		resp, err := c.roomService.PlaybackTimeRequest(ctx, &room.RelayParams{
			SessionID: sess.conn.SessionID(),
			RoomID:    sess.roomID,
		})
		if err != nil {
			c.sendServiceError(ctx, sess.conn, err)
			return false
		}
		c.send(ctx, resp.Hoster, protocol.NewPlaybackTimeRequestEvent(resp.SenderUserID))

	case protocol.PlaybackTimeRequestAnswerCommand:
		resp, err := c.roomService.PlaybackTimeAnswer(ctx, &room.PlaybackTimeAnswerParams{
			SessionID:    sess.conn.SessionID(),
			RoomID:       sess.roomID,
			TargetUserID: cmd.UserID,
		})
		if err != nil {
			c.sendServiceError(ctx, sess.conn, err)
			return false
		}
		c.send(ctx, resp.Target, protocol.NewPlaybackTimeRequestAnswerEvent(cmd.Time, cmd.PlaybackTime, resp.Playing))

	case protocol.PauseRequestCommand:
		resp, err := c.roomService.PauseRequest(ctx, &room.RelayParams{
			SessionID: sess.conn.SessionID(),
			RoomID:    sess.roomID,
		})
		if err != nil {
			c.sendServiceError(ctx, sess.conn, err)
			return false
		}
		c.send(ctx, resp.Hoster, protocol.NewPauseRequestEvent(resp.SenderUserID))

	case protocol.RewindBackRequestCommand:
		resp, err := c.roomService.RewindBackRequest(ctx, &room.RelayParams{
			SessionID: sess.conn.SessionID(),
			RoomID:    sess.roomID,
		})
		if err != nil {
			c.sendServiceError(ctx, sess.conn, err)
			return false
		}
		c.send(ctx, resp.Hoster, protocol.NewRewindBackRequestEvent(resp.SenderUserID))

	case protocol.ServerTimeRequestCommand:
		serverTime := float64(time.Now().UnixNano()) / float64(time.Second)
		c.send(ctx, sess.conn, protocol.NewServerTimeRequestAnswerEvent(cmd.Time, serverTime))

	case protocol.LeaveRoomCommand:
		c.leave(ctx, sess)
		return true

	default:
		// join/create inside a room
		c.sendError(ctx, sess.conn, protocol.ErrUnknownCommand)
	}

	return false
}

// leave runs the leave sequence exactly once per session.
func (c *controller) leave(ctx context.Context, sess *session) {
	if sess.left {
		return
	}
	sess.left = true

	resp, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		SessionID: sess.conn.SessionID(),
		RoomID:    sess.roomID,
	})
	if err != nil {
		c.logger.DebugContext(ctx, "failed to leave room", "room_id", sess.roomID, "error", err)
		return
	}

	c.broadcast(ctx, resp.Conns, protocol.NewLeaveRoomEvent(resp.LeftUserID))
	if resp.NewHoster != nil {
		c.send(ctx, resp.NewHoster, protocol.NewHosterPromotionEvent())
	}
}

func (c *controller) send(ctx context.Context, conn room.Sender, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to marshal event", "error", err)
		return
	}

	if err := conn.Send(data); err != nil {
		c.logger.DebugContext(ctx, "failed to send event", "error", err)
	}
}

// broadcast fans an event out to every connection. A failed recipient never
// aborts delivery to the rest.
func (c *controller) broadcast(ctx context.Context, conns []room.Sender, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to marshal event", "error", err)
		return
	}

	for _, conn := range conns {
		if err := conn.Send(data); err != nil {
			c.logger.DebugContext(ctx, "failed to send event", "error", err)
		}
	}
}

func (c *controller) sendError(ctx context.Context, conn room.Sender, protoErr *protocol.Error) {
	c.logger.DebugContext(ctx, "client error", "code", protoErr.Code, "message", protoErr.Message)
	c.send(ctx, conn, protocol.NewErrorEvent(protoErr))
}

// sendServiceError reports a registry failure to the client. Unauthorized
// hoster-only commands are dropped silently: a command racing a hoster change
// is expected and should not surface as a failure.
func (c *controller) sendServiceError(ctx context.Context, conn room.Sender, err error) {
	if errors.Is(err, room.ErrPermissionDenied) {
		c.logger.DebugContext(ctx, "hoster-only command ignored")
		return
	}

	if protoErr, ok := protocol.AsError(err); ok {
		c.sendError(ctx, conn, protoErr)
		return
	}

	c.logger.WarnContext(ctx, "unexpected service error", "error", err)
}
