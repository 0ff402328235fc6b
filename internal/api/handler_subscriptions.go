package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"equipment-tracker-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint            string  `json:"endpoint" binding:"required"`
	P256DH              string  `json:"p256dh" binding:"required"`
	Auth                string  `json:"auth" binding:"required"`
	SubscribedEquipment []int64 `json:"subscribed_equipment"`
}

// PutSubscription creates or replaces a push subscription and the set of
// equipment items it watches.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}

	err := h.store.DB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&subscription).Error; err != nil {
			return err
		}

		var items []model.Equipment
		if len(req.SubscribedEquipment) > 0 {
			if err := tx.Find(&items, req.SubscribedEquipment).Error; err != nil {
				return err
			}
		}

		return tx.Model(&subscription).Association("Equipment").Replace(&items)
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes a push subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.DB().WithContext(c.Request.Context()).
		Delete(&model.PushSubscription{Endpoint: req.Endpoint}).Error; err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam extracts a query value without URL decoding; push endpoints
// contain characters that round-trip badly through decoding.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription returns the equipment ids a subscription watches.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	var subscription model.PushSubscription
	if err := h.store.DB().WithContext(c.Request.Context()).
		Preload("Equipment").
		First(&subscription, "endpoint = ?", raw).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		} else {
			h.respondError(c, err)
		}
		return
	}

	ids := make([]int64, len(subscription.Equipment))
	for i, eq := range subscription.Equipment {
		ids[i] = eq.ID
	}
	c.JSON(http.StatusOK, gin.H{"subscribed_equipment": ids})
}
