package controller

import (
	"net/http"
	"strconv"

	"github.com/anitogether/server/internal/protocol"
	"github.com/anitogether/server/pkg/rest"
	"github.com/anitogether/server/pkg/version"
)

// The legacy HTTP surface predates the websocket protocol and answers every
// request with 200 and a {"status": "ok"|"fail"} JSON envelope; failures
// reuse the protocol error codes.

func (c *controller) writeOK(w http.ResponseWriter, data rest.Envelope) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	data["status"] = "ok"
	rest.WriteJSON(w, http.StatusOK, data)
}

func (c *controller) writeFail(w http.ResponseWriter, err *protocol.Error) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"status":  "fail",
		"code":    err.Code,
		"message": err.Message,
	})
}

// checkVersion gates legacy requests on the client's protocol version.
func (c *controller) checkVersion(r *http.Request) *protocol.Error {
	clientVersion, err := version.Parse(r.URL.Query().Get("version"))
	if err != nil || clientVersion.Less(c.compatibleVersion) {
		return protocol.ErrNotCompatibleVersion
	}

	return nil
}

type createRoomRequest struct {
	TitleID string `json:"title_id" validate:"required"`
	Episode string `json:"episode" validate:"required"`
}

func (c *controller) createRoom(w http.ResponseWriter, r *http.Request) {
	if verr := c.checkVersion(r); verr != nil {
		c.logger.DebugContext(r.Context(), "incompatible client version",
			"version", r.URL.Query().Get("version"),
		)
		c.writeFail(w, verr)
		return
	}

	req := createRoomRequest{
		TitleID: r.URL.Query().Get("title_id"),
		Episode: r.URL.Query().Get("episode"),
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		c.writeFail(w, protocol.ErrParamNotPassed(validationErrors[0].Field))
		return
	}

	titleID, err := strconv.Atoi(req.TitleID)
	if err != nil {
		c.writeFail(w, protocol.ErrParamNotPassed("title_id"))
		return
	}

	roomID := c.roomService.CreateEmptyRoom(r.Context(), titleID, req.Episode)

	c.writeOK(w, rest.Envelope{
		"room_id":  roomID,
		"title_id": titleID,
		"episode":  req.Episode,
	})
}

type getRoomRequest struct {
	RoomID string `json:"room_id" validate:"required"`
}

func (c *controller) getRoom(w http.ResponseWriter, r *http.Request) {
	if verr := c.checkVersion(r); verr != nil {
		c.logger.DebugContext(r.Context(), "incompatible client version",
			"version", r.URL.Query().Get("version"),
		)
		c.writeFail(w, verr)
		return
	}

	req := getRoomRequest{RoomID: r.URL.Query().Get("room_id")}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		c.writeFail(w, protocol.ErrParamNotPassed(validationErrors[0].Field))
		return
	}

	roomState, err := c.roomService.GetRoom(r.Context(), req.RoomID)
	if err != nil {
		if protoErr, ok := protocol.AsError(err); ok {
			c.writeFail(w, protoErr)
			return
		}
		c.logger.WarnContext(r.Context(), "failed to get room", "error", err)
		c.writeFail(w, protocol.ErrRoomDoesNotExists)
		return
	}

	c.writeOK(w, rest.Envelope{
		"room_id":  roomState.RoomID,
		"title_id": roomState.TitleID,
		"episode":  roomState.Episode,
	})
}
