package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db}
}

// FindMessagesByOrder returns the whole thread, oldest first.
func (r *ChatRepository) FindMessagesByOrder(ctx context.Context, orderID string) ([]entity.Message, error) {
	var msgs []entity.Message
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").Order("id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *ChatRepository) CreateMessage(ctx context.Context, msg *entity.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// MarkRead flags every unread message addressed to receiverID in the thread.
func (r *ChatRepository) MarkRead(ctx context.Context, orderID, receiverID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("order_id = ? AND receiver_id = ? AND is_read = ?", orderID, receiverID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *ChatRepository) UnreadCount(ctx context.Context, receiverID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Count(&n).Error
	return n, err
}
