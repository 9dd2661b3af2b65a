package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

// Recent returns the newest `limit` notifications for the user.
func (r *NotificationRepository) Recent(ctx context.Context, userID string, limit int) ([]entity.Notification, error) {
	var out []entity.Notification
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*entity.Notification, error) {
	var n entity.Notification
	if err := r.DB.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkRead is scoped to the recipient; other users' rows are never touched.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// MarkAllRead returns the rows it flipped so callers can announce them.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) ([]entity.Notification, error) {
	var changed []entity.Notification
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND is_read = ?", userID, false).Find(&changed).Error; err != nil {
			return err
		}
		if len(changed) == 0 {
			return nil
		}
		ids := make([]string, len(changed))
		for i := range changed {
			ids[i] = changed[i].ID
			changed[i].IsRead = true
		}
		return tx.Model(&entity.Notification{}).Where("id IN ?", ids).Update("is_read", true).Error
	})
	return changed, err
}
