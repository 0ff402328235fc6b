package api

import (
	"errors"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"equipment-tracker-backend/internal/apperr"
	"equipment-tracker-backend/internal/audit"
	"equipment-tracker-backend/internal/auth"
	"equipment-tracker-backend/internal/notification"
	"equipment-tracker-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	tokens   *auth.TokenService
	verifier *auth.Verifier
	audit    *audit.Recorder
	pool     *notification.WorkerPool
	webpush  *webpush.Options
	logger   *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	s store.Store,
	tokens *auth.TokenService,
	verifier *auth.Verifier,
	auditRec *audit.Recorder,
	pool *notification.WorkerPool,
	webpushOptions *webpush.Options,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		store:    s,
		tokens:   tokens,
		verifier: verifier,
		audit:    auditRec,
		pool:     pool,
		webpush:  webpushOptions,
		logger:   logger,
	}
}

// respondError maps a core error to its HTTP status. Invariant violations
// are data corruption and get logged loudly regardless of the response.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperr.StatusCode(err)
	if errors.Is(err, apperr.ErrInvariantViolation) {
		h.logger.Error("ledger invariant violated", zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else if status >= 500 {
		h.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
