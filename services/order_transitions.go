package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/pkg/metrics"
	"github.com/jaypeewhat/ThriftStore/realtime"
)

// sellerMoves lists what AdvanceStatus accepts from each state.
var sellerMoves = map[entity.OrderStatus][]entity.OrderStatus{
	entity.StatusPending:   {entity.StatusConfirmed, entity.StatusCancelled},
	entity.StatusConfirmed: {entity.StatusShipped, entity.StatusCancelled},
	entity.StatusShipped:   {entity.StatusDelivered},
}

func CanAdvance(from, to entity.OrderStatus) bool {
	for _, s := range sellerMoves[from] {
		if s == to {
			return true
		}
	}
	return false
}

func CanRequestCancel(from entity.OrderStatus) bool {
	return from == entity.StatusPending || from == entity.StatusConfirmed
}

type party int

const (
	asSeller party = iota
	asBuyer
)

type move struct {
	actorID string
	actor   party
	to      entity.OrderStatus
	allowed func(from entity.OrderStatus) bool
	notice  func(o *entity.Order) *entity.Notification
}

// ----- Seller actions -----

func (s *OrderService) AdvanceStatus(ctx context.Context, sellerID, orderID string, to entity.OrderStatus) (*entity.Order, error) {
	if !to.Valid() {
		return nil, apperr.Invalid("status", "unknown status")
	}
	return s.apply(ctx, orderID, move{
		actorID: sellerID,
		actor:   asSeller,
		to:      to,
		allowed: func(from entity.OrderStatus) bool { return CanAdvance(from, to) },
		notice:  statusNotification,
	})
}

// ResolveCancellation answers a buyer's request. Rejecting puts the order back to confirmed.
func (s *OrderService) ResolveCancellation(ctx context.Context, sellerID, orderID string, approve bool) (*entity.Order, error) {
	to := entity.StatusConfirmed
	if approve {
		to = entity.StatusCancelled
	}
	return s.apply(ctx, orderID, move{
		actorID: sellerID,
		actor:   asSeller,
		to:      to,
		allowed: func(from entity.OrderStatus) bool { return from == entity.StatusCancelRequested },
		notice:  cancelResolvedNotification,
	})
}

// SetDeliveryDate records the promised date while the order is confirmed. No notification is sent.
func (s *OrderService) SetDeliveryDate(ctx context.Context, sellerID, orderID string, date time.Time) (*entity.Order, error) {
	if date.IsZero() {
		return nil, apperr.Invalid("delivery_date", "required")
	}
	ctx = logger.WithOrderID(ctx, orderID)

	var order *entity.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.loadFor(tx, orderID, sellerID, asSeller)
		if err != nil {
			return err
		}
		if o.Status != entity.StatusConfirmed {
			return &apperr.InvalidTransitionError{From: o.Status, To: o.Status}
		}
		affected, err := s.Repo.SetDeliveryDateGuard(tx, o.ID, entity.StatusConfirmed, date)
		if err != nil {
			return err
		}
		if affected == 0 {
			return s.staleError(tx, o.ID, o.Status)
		}
		o.DeliveryDate = &date
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishOrder(ctx, realtime.Update, *order)
	return order, nil
}

// ----- Buyer actions -----

func (s *OrderService) RequestCancellation(ctx context.Context, buyerID, orderID string) (*entity.Order, error) {
	return s.apply(ctx, orderID, move{
		actorID: buyerID,
		actor:   asBuyer,
		to:      entity.StatusCancelRequested,
		allowed: CanRequestCancel,
		notice:  cancelRequestNotification,
	})
}

// ----- Engine -----

// apply runs one guarded transition. The status write and any inventory restore
// commit together; the notification follows best effort.
func (s *OrderService) apply(ctx context.Context, orderID string, m move) (*entity.Order, error) {
	ctx = logger.WithOrderID(ctx, orderID)

	var (
		order *entity.Order
		from  entity.OrderStatus
		noop  bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.loadFor(tx, orderID, m.actorID, m.actor)
		if err != nil {
			return err
		}
		from = o.Status

		// cancelling twice is harmless
		if from == entity.StatusCancelled && m.to == entity.StatusCancelled {
			noop = true
			order = o
			return nil
		}
		if !m.allowed(from) {
			return &apperr.InvalidTransitionError{From: from, To: m.to}
		}

		affected, err := s.Repo.UpdateStatusGuard(tx, o.ID, from, m.to)
		if err != nil {
			return err
		}
		if affected == 0 {
			return s.staleError(tx, o.ID, m.to)
		}
		if m.to == entity.StatusCancelled {
			restored, err := s.Inventory.Restore(tx, o.ProductID)
			if err != nil {
				return err
			}
			if !restored {
				s.log.Warnf(ctx, "product %s was already available when order was cancelled", o.ProductID)
			}
		}
		o.Status = m.to
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	if noop {
		return order, nil
	}

	metrics.OrderTransitions.WithLabelValues(string(from), string(m.to)).Inc()
	s.log.Infof(ctx, "order %s: %s -> %s", order.ID, from, m.to)
	s.publishOrder(ctx, realtime.Update, *order)
	if n := m.notice(order); n != nil {
		s.Notifier.Notify(ctx, n)
	}
	return order, nil
}

func (s *OrderService) loadFor(tx *gorm.DB, orderID, actorID string, p party) (*entity.Order, error) {
	o, err := s.Repo.GetOrder(tx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	owner := o.SellerID
	if p == asBuyer {
		owner = o.BuyerID
	}
	if owner != actorID {
		return nil, apperr.ErrForbidden
	}
	return o, nil
}

// staleError reports the state that beat us to the row.
func (s *OrderService) staleError(tx *gorm.DB, orderID string, to entity.OrderStatus) error {
	cur, err := s.Repo.GetOrder(tx, orderID)
	if err != nil {
		return err
	}
	return &apperr.InvalidTransitionError{From: cur.Status, To: to}
}
