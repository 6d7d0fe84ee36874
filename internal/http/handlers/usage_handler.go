// README: Usage report handlers (monthly per-vehicle aggregates).
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"motorpool/internal/modules/usage"
)

type UsageHandler struct {
	usage *usage.Service
}

func NewUsageHandler(svc *usage.Service) *UsageHandler {
	return &UsageHandler{usage: svc}
}

func periodParams(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 3000 {
		writeError(c, http.StatusBadRequest, "invalid year")
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(c, http.StatusBadRequest, "invalid month")
		return 0, 0, false
	}
	return year, month, true
}

func (h *UsageHandler) Period(c *gin.Context) {
	year, month, ok := periodParams(c)
	if !ok {
		return
	}
	rows, err := h.usage.Period(c.Request.Context(), year, month)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"usage": rows})
}

// Recompute rebuilds a period's aggregates from the completed rides. Safe to
// run repeatedly.
func (h *UsageHandler) Recompute(c *gin.Context) {
	year, month, ok := periodParams(c)
	if !ok {
		return
	}
	if err := h.usage.Recompute(c.Request.Context(), year, month); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
