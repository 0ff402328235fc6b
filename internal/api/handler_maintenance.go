package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment-tracker-backend/internal/audit"
	"equipment-tracker-backend/internal/mw"
	"equipment-tracker-backend/internal/notification"
	"equipment-tracker-backend/internal/store"
)

// ListMaintenance handles GET /api/equipment/:id/maintenance.
func (h *Handler) ListMaintenance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	records, err := h.store.ListMaintenance(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// RecordMaintenance handles POST /api/equipment/:id/maintenance.
func (h *Handler) RecordMaintenance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input store.MaintenanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.EquipmentID = id

	result, err := h.store.RecordMaintenance(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	severity := audit.SeverityInfo
	if result.Record.MarkAsUnderMaintenance || input.MarkAsDamaged {
		severity = audit.SeverityWarning
	}
	h.audit.Record(c.Request.Context(), "maintenance.record", severity, mw.ActorID(c),
		"%s on %s (%s) by %s", result.Record.Type, result.Equipment.Name, result.Equipment.EquipmentCode, result.Record.PerformedBy)
	c.JSON(http.StatusCreated, gin.H{
		"record":    result.Record,
		"equipment": toEquipmentResponse(result.Equipment),
	})
}

// CompleteMaintenance handles POST /api/equipment/:id/maintenance/complete.
func (h *Handler) CompleteMaintenance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.store.CompleteMaintenance(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if result.BecameAvailable {
		h.pool.Dispatch(notification.Job{Kind: notification.KindAvailable, EquipmentID: result.Equipment.ID})
	}

	h.audit.Record(c.Request.Context(), "maintenance.complete", audit.SeverityInfo, mw.ActorID(c),
		"completed maintenance on %s (%s), restored %d unit(s)", result.Equipment.Name, result.Equipment.EquipmentCode, result.Restored)
	c.JSON(http.StatusOK, toEquipmentResponse(result.Equipment))
}
