package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/pkg/metrics"
	"github.com/jaypeewhat/ThriftStore/realtime"
	"github.com/jaypeewhat/ThriftStore/repository"
)

// Notifier delivers side-effect notifications. Failures are logged, never returned:
// the state change that caused the notification has already committed.
type Notifier interface {
	Notify(ctx context.Context, n *entity.Notification)
}

const (
	DefaultFeedLimit = 20
	maxFeedLimit     = 100
)

type NotificationService struct {
	repo      *repository.NotificationRepository
	pub       realtime.Publisher
	log       logger.Logger
	feedLimit int
}

func NewNotificationService(db *gorm.DB, pub realtime.Publisher, log logger.Logger, feedLimit int) *NotificationService {
	if feedLimit <= 0 {
		feedLimit = DefaultFeedLimit
	}
	return &NotificationService{
		repo:      repository.NewNotificationRepository(db),
		pub:       pub,
		log:       log,
		feedLimit: feedLimit,
	}
}

// Emit stores the notification and announces it on the change feed.
func (s *NotificationService) Emit(ctx context.Context, n *entity.Notification) error {
	if n.UserID == "" || !n.Type.Valid() {
		return apperr.Invalid("notification", "recipient and known type required")
	}
	n.IsRead = false
	if err := s.repo.Create(ctx, n); err != nil {
		metrics.NotificationsEmitted.WithLabelValues(string(n.Type), "error").Inc()
		return fmt.Errorf("insert notification: %w", err)
	}
	metrics.NotificationsEmitted.WithLabelValues(string(n.Type), "ok").Inc()

	if err := s.pub.Publish(ctx, realtime.NotificationEvent(realtime.Insert, *n)); err != nil {
		s.log.Warnf(ctx, "publish notification %s failed: %v", n.ID, err)
	}
	return nil
}

func (s *NotificationService) Notify(ctx context.Context, n *entity.Notification) {
	if err := s.Emit(ctx, n); err != nil {
		s.log.Errorf(ctx, "notify %s (%s) failed: %v", n.UserID, n.Type, err)
	}
}

func (s *NotificationService) Recent(ctx context.Context, userID string, limit int) ([]entity.Notification, error) {
	if limit <= 0 {
		limit = s.feedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	return s.repo.Recent(ctx, userID, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead is idempotent for the recipient and NotFound for anyone else.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	affected, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		n, err := s.repo.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && n.UserID != userID) {
			return apperr.ErrNotFound
		}
		return err
	}

	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Warnf(ctx, "reload notification %s: %v", id, err)
		return nil
	}
	if err := s.pub.Publish(ctx, realtime.NotificationEvent(realtime.Update, *n)); err != nil {
		s.log.Warnf(ctx, "publish notification update %s failed: %v", id, err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	changed, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, n := range changed {
		if err := s.pub.Publish(ctx, realtime.NotificationEvent(realtime.Update, n)); err != nil {
			s.log.Warnf(ctx, "publish notification update %s failed: %v", n.ID, err)
		}
	}
	return len(changed), nil
}
