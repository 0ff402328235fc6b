// Package audit appends structured audit entries for every mutating action.
// The sink is best-effort: a failed append is logged and swallowed so it can
// never block the operation it describes.
package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"equipment-tracker-backend/internal/model"
)

// Severity levels for audit entries.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Recorder writes audit entries to the database and mirrors them to the log.
type Recorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRecorder creates an audit recorder.
func NewRecorder(db *gorm.DB, logger *zap.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// Record appends one audit entry. Failures are logged, never returned.
func (r *Recorder) Record(ctx context.Context, action, severity string, actorID *int64, format string, args ...any) {
	entry := model.AuditEntry{
		Action:      action,
		Description: fmt.Sprintf(format, args...),
		Severity:    severity,
		ActorID:     actorID,
	}

	fields := []zap.Field{
		zap.String("action", action),
		zap.String("severity", severity),
		zap.String("description", entry.Description),
	}
	if actorID != nil {
		fields = append(fields, zap.Int64("actor_id", *actorID))
	}
	r.logger.Info("audit", fields...)

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		r.logger.Error("failed to append audit entry", zap.String("action", action), zap.Error(err))
	}
}

// List returns the most recent audit entries, newest first.
func (r *Recorder) List(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []model.AuditEntry
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
