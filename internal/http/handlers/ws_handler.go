// README: Websocket endpoint joining the caller to their realtime rooms.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"motorpool/internal/http/middleware"
	"motorpool/internal/realtime"
)

type WSHandler struct {
	hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Subscribe upgrades the connection and joins the caller's user room, plus
// their department room when the token carries one.
func (h *WSHandler) Subscribe(c *gin.Context) {
	actor := middleware.Actor(c)
	rooms := []string{realtime.UserRoom(actor.UserID)}
	if actor.DepartmentID != "" {
		rooms = append(rooms, realtime.DepartmentRoom(actor.DepartmentID))
	}
	if err := h.hub.Serve(c.Writer, c.Request, rooms); err != nil {
		writeError(c, http.StatusBadRequest, "websocket upgrade failed")
	}
}
