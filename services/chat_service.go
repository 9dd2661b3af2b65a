package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/realtime"
	"github.com/jaypeewhat/ThriftStore/repository"
)

const maxMessageLen = 2000

type ChatService struct {
	repo     *repository.ChatRepository
	orders   *repository.OrderRepository
	users    *repository.UserRepository
	db       *gorm.DB
	pub      realtime.Publisher
	notifier Notifier
	log      logger.Logger
}

func NewChatService(db *gorm.DB, pub realtime.Publisher, notifier Notifier, log logger.Logger) *ChatService {
	return &ChatService{
		repo:     repository.NewChatRepository(db),
		orders:   repository.NewOrderRepository(db),
		users:    repository.NewUserRepository(db),
		db:       db,
		pub:      pub,
		notifier: notifier,
		log:      log,
	}
}

// OrderFor returns the order if userID is one of its two parties.
func (s *ChatService) OrderFor(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	o, err := s.orders.GetOrder(s.db.WithContext(ctx), orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.PartyOf(userID) == "" {
		return nil, apperr.ErrForbidden
	}
	return o, nil
}

// History returns the thread oldest first.
func (s *ChatService) History(ctx context.Context, userID, orderID string) ([]entity.Message, error) {
	if _, err := s.OrderFor(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.repo.FindMessagesByOrder(ctx, orderID)
}

func (s *ChatService) MarkThreadRead(ctx context.Context, userID, orderID string) (int64, error) {
	if _, err := s.OrderFor(ctx, userID, orderID); err != nil {
		return 0, err
	}
	return s.repo.MarkRead(ctx, orderID, userID)
}

func (s *ChatService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// Send stores a message from one party to the other and notifies the receiver.
func (s *ChatService) Send(ctx context.Context, senderID, orderID, content string) (*entity.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.ErrEmptyMessage
	}
	if len([]rune(content)) > maxMessageLen {
		return nil, apperr.Invalid("content", "message too long")
	}
	ctx = logger.WithOrderID(logger.WithUserID(ctx, senderID), orderID)

	o, err := s.OrderFor(ctx, senderID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == entity.StatusCancelled {
		return nil, apperr.ErrChatClosed
	}

	msg := &entity.Message{
		OrderID:    o.ID,
		SenderID:   senderID,
		ReceiverID: o.PartyOf(senderID),
		Content:    content,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.pub.Publish(ctx, realtime.MessageEvent(realtime.Insert, *msg)); err != nil {
		s.log.Warnf(ctx, "publish message %s failed: %v", msg.ID, err)
	}
	s.notifier.Notify(ctx, messageNotification(msg.ReceiverID, s.senderName(ctx, o, senderID), o, content))
	return msg, nil
}

func (s *ChatService) senderName(ctx context.Context, o *entity.Order, senderID string) string {
	p, err := s.users.FindByID(ctx, senderID)
	if err == nil {
		return p.DisplayName()
	}
	s.log.Warnf(ctx, "load sender profile: %v", err)
	if senderID == o.SellerID {
		return "Seller"
	}
	return "Buyer"
}
