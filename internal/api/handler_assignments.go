package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment-tracker-backend/internal/audit"
	"equipment-tracker-backend/internal/mw"
	"equipment-tracker-backend/internal/notification"
	"equipment-tracker-backend/internal/store"
)

// ListAssignments handles GET /api/equipment/:id/assignments. Pass active=1
// to restrict to open checkouts; each row carries its overdue flag.
func (h *Handler) ListAssignments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	activeOnly := c.Query("active") == "1" || c.Query("active") == "true"
	views, err := h.store.ListAssignments(c.Request.Context(), id, activeOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// CreateAssignment handles POST /api/equipment/:id/assignments.
func (h *Handler) CreateAssignment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input store.AssignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.EquipmentID = id

	assignment, err := h.store.Assign(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.audit.Record(c.Request.Context(), "assignment.create", audit.SeverityInfo, mw.ActorID(c),
		"assigned %d unit(s) of equipment %d to user %d", assignment.Quantity, assignment.EquipmentID, assignment.UserID)
	c.JSON(http.StatusCreated, assignment)
}

// ReturnAssignment handles POST /api/assignments/:id/return.
func (h *Handler) ReturnAssignment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input store.ReturnInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.store.ReturnAssignment(c.Request.Context(), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if result.BecameAvailable {
		h.pool.Dispatch(notification.Job{Kind: notification.KindAvailable, EquipmentID: result.Equipment.ID})
	}

	h.audit.Record(c.Request.Context(), "assignment.return", audit.SeverityInfo, mw.ActorID(c),
		"returned %d unit(s) of %s (%s)", result.Assignment.Quantity, result.Equipment.Name, result.Equipment.EquipmentCode)
	c.JSON(http.StatusOK, gin.H{
		"assignment": result.Assignment,
		"equipment":  toEquipmentResponse(result.Equipment),
	})
}
