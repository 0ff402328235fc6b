package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"equipment-tracker-backend/internal/model"
)

// JobKind distinguishes the events subscribers can be notified about.
type JobKind string

const (
	KindAvailable JobKind = "available"
	KindOverdue   JobKind = "overdue"
)

// Job is one notification task for the worker pool.
type Job struct {
	Kind        JobKind
	EquipmentID int64
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// webPushSender is the real Sender backed by the webpush library.
type webPushSender struct{}

func (s *webPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans notification jobs out to a fixed set of workers. Pushes
// are fire-and-forget: a failed push never surfaces to the operation that
// triggered it.
type WorkerPool struct {
	size    int
	jobs    chan Job
	db      *gorm.DB
	webpush *webpush.Options
	logger  *zap.Logger
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size),
		db:      db,
		webpush: webpushOptions,
		logger:  logger,
		sender:  &webPushSender{},
	}
}

// SetSender overrides the push transport; used by tests.
func (wp *WorkerPool) SetSender(s Sender) {
	wp.sender = s
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("notification worker started", zap.Int("worker", id))
	for {
		select {
		case job := <-wp.jobs:
			wp.notifySubscribers(ctx, job)
		case <-ctx.Done():
			wp.logger.Debug("notification worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a job for the worker pool.
func (wp *WorkerPool) Dispatch(job Job) {
	wp.jobs <- job
}

// notifySubscribers fetches the item's subscriptions and pushes one message
// to each.
func (wp *WorkerPool) notifySubscribers(ctx context.Context, job Job) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_equipment_mapping sem ON sem.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sem.equipment_id = ?", job.EquipmentID).
		Find(&subscriptions).Error
	if err != nil {
		wp.logger.Error("failed to fetch subscriptions", zap.Int64("equipment_id", job.EquipmentID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label := fmt.Sprintf("#%d", job.EquipmentID)
	var eq model.Equipment
	if err := wp.db.WithContext(ctx).
		Select("name", "equipment_code").
		First(&eq, job.EquipmentID).Error; err != nil {
		wp.logger.Warn("failed to fetch equipment for notification", zap.Int64("equipment_id", job.EquipmentID), zap.Error(err))
	} else if eq.Name != "" {
		label = fmt.Sprintf("%s (%s)", eq.Name, eq.EquipmentCode)
	}

	var message string
	switch job.Kind {
	case KindOverdue:
		message = fmt.Sprintf("An assignment of %s is overdue.", label)
	default:
		message = fmt.Sprintf("%s is available again.", label)
	}

	wp.logger.Info("sending notifications",
		zap.Int("count", len(subscriptions)),
		zap.Int64("equipment_id", job.EquipmentID),
		zap.String("kind", string(job.Kind)))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification pushes a single message; a 410 response removes the dead
// subscription.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Error("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.logger.Info("deleting expired subscription", zap.String("endpoint", sub.Endpoint))
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			wp.logger.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
