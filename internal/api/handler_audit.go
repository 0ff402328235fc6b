package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListAudit handles GET /api/audit.
func (h *Handler) ListAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.audit.List(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
