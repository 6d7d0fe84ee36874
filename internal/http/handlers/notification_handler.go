// README: Notification handlers (per-user inbox).
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"motorpool/internal/http/middleware"
	"motorpool/internal/modules/notification"
)

type NotificationHandler struct {
	notifications *notification.Service
}

func NewNotificationHandler(svc *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: svc}
}

// ListMine returns the caller's notifications, newest first.
func (h *NotificationHandler) ListMine(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	actor := middleware.Actor(c)
	items, err := h.notifications.ListByUser(c.Request.Context(), actor.UserID, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"notifications": items})
}
