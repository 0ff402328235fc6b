package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"equipment-tracker-backend/internal/apperr"
	"equipment-tracker-backend/internal/audit"
	"equipment-tracker-backend/internal/model"
	"equipment-tracker-backend/internal/mw"
	"equipment-tracker-backend/internal/status"
	"equipment-tracker-backend/internal/store"
)

// equipmentResponse is an equipment item together with its display
// projection.
type equipmentResponse struct {
	model.Equipment
	Display status.Projection `json:"display"`
}

func toEquipmentResponse(eq model.Equipment) equipmentResponse {
	return equipmentResponse{Equipment: eq, Display: status.Project(eq)}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// ListEquipment handles GET /api/equipment.
func (h *Handler) ListEquipment(c *gin.Context) {
	q := store.ListQuery{
		Category: c.Query("category"),
		Status:   model.Status(c.Query("status")),
		Location: c.Query("location"),
		Search:   c.Query("search"),
		SortBy:   store.SortKey(c.DefaultQuery("sort_by", string(store.SortByName))),
		Desc:     c.Query("order") == "desc",
	}

	items, err := h.store.ListEquipment(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}

	responses := make([]equipmentResponse, 0, len(items))
	for _, eq := range items {
		responses = append(responses, toEquipmentResponse(eq))
	}
	c.JSON(http.StatusOK, responses)
}

// GetEquipment handles GET /api/equipment/:id.
func (h *Handler) GetEquipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	eq, err := h.store.GetEquipment(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEquipmentResponse(*eq))
}

// CreateEquipment handles POST /api/equipment.
func (h *Handler) CreateEquipment(c *gin.Context) {
	var input store.CreateEquipmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eq, err := h.store.CreateEquipment(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.audit.Record(c.Request.Context(), "equipment.create", audit.SeverityInfo, mw.ActorID(c),
		"registered %s (%s), %d units", eq.Name, eq.EquipmentCode, eq.Quantity)
	c.JSON(http.StatusCreated, toEquipmentResponse(*eq))
}

// UpdateEquipment handles PUT /api/equipment/:id.
func (h *Handler) UpdateEquipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patch store.EquipmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eq, err := h.store.UpdateEquipment(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.audit.Record(c.Request.Context(), "equipment.update", audit.SeverityInfo, mw.ActorID(c),
		"updated %s (%s)", eq.Name, eq.EquipmentCode)
	c.JSON(http.StatusOK, toEquipmentResponse(*eq))
}

type deleteEquipmentRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// DeleteEquipment handles DELETE /api/equipment/:id. Deletion is destructive
// and requires the operator to re-submit their credentials.
func (h *Handler) DeleteEquipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req deleteEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "re-authentication credentials are required"})
		return
	}

	if _, err := h.verifier.VerifyCredentials(c.Request.Context(), req.Email, req.Password); err != nil {
		h.audit.Record(c.Request.Context(), "equipment.delete", audit.SeverityWarning, mw.ActorID(c),
			"re-authentication failed for equipment %d", id)
		h.respondError(c, apperr.ErrAuthenticationFailed)
		return
	}

	eq, err := h.store.GetEquipment(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.store.DeleteEquipment(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	h.audit.Record(c.Request.Context(), "equipment.delete", audit.SeverityCritical, mw.ActorID(c),
		"deleted %s (%s)", eq.Name, eq.EquipmentCode)
	c.Status(http.StatusNoContent)
}
