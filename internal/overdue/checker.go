// Package overdue periodically sweeps active assignments whose due date has
// passed and dispatches push notifications to the item's subscribers.
package overdue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"equipment-tracker-backend/config"
	"equipment-tracker-backend/internal/model"
	"equipment-tracker-backend/internal/notification"
)

// Checker runs the periodic overdue sweep.
type Checker struct {
	cfg    *config.Config
	db     *gorm.DB
	pool   *notification.WorkerPool
	logger *zap.Logger
}

// NewChecker creates a checker.
func NewChecker(cfg *config.Config, db *gorm.DB, pool *notification.WorkerPool, logger *zap.Logger) *Checker {
	return &Checker{cfg: cfg, db: db, pool: pool, logger: logger}
}

// Run starts the sweep loop. It returns when the context is cancelled.
func (c *Checker) Run(ctx context.Context) {
	if !c.cfg.Overdue.Enabled {
		c.logger.Info("overdue checker is disabled, not starting")
		return
	}
	c.logger.Info("starting overdue checker", zap.Duration("interval", c.cfg.Overdue.Interval))

	if err := c.SweepOnce(ctx); err != nil {
		c.logger.Error("overdue sweep failed", zap.Error(err))
	}

	timer := time.NewTimer(c.cfg.Overdue.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("overdue checker shutting down")
			return
		case <-timer.C:
			if err := c.SweepOnce(ctx); err != nil {
				c.logger.Error("overdue sweep failed", zap.Error(err))
			}
			timer.Reset(c.cfg.Overdue.Interval)
		}
	}
}

// SweepOnce finds active assignments past their due date that have not been
// flagged since the last interval, marks them, and dispatches one overdue
// notification each.
func (c *Checker) SweepOnce(ctx context.Context) error {
	now := time.Now().UTC()
	cutoff := now.Add(-c.cfg.Overdue.Interval)

	var due []model.Assignment
	err := c.db.WithContext(ctx).
		Where("returned_at IS NULL AND due_date IS NOT NULL AND due_date < ?", now).
		Where("overdue_notified_at IS NULL OR overdue_notified_at < ?", cutoff).
		Find(&due).Error
	if err != nil {
		return fmt.Errorf("failed to query overdue assignments: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	c.logger.Info("dispatching overdue notifications", zap.Int("count", len(due)))
	for _, a := range due {
		if err := c.db.WithContext(ctx).Model(&model.Assignment{}).
			Where("id = ?", a.ID).
			Update("overdue_notified_at", now).Error; err != nil {
			c.logger.Error("failed to mark assignment overdue-notified", zap.Int64("assignment_id", a.ID), zap.Error(err))
			continue
		}
		c.pool.Dispatch(notification.Job{Kind: notification.KindOverdue, EquipmentID: a.EquipmentID})
	}
	return nil
}
