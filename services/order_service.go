package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/pkg/metrics"
	"github.com/jaypeewhat/ThriftStore/realtime"
	"github.com/jaypeewhat/ThriftStore/repository"
)

type OrderService struct {
	DB        *gorm.DB
	Repo      *repository.OrderRepository
	Products  *repository.ProductRepository
	Carts     *repository.CartRepository
	Users     *repository.UserRepository
	Inventory *InventoryGuard
	Notifier  Notifier
	Pub       realtime.Publisher
	log       logger.Logger
}

func NewOrderService(db *gorm.DB, notifier Notifier, pub realtime.Publisher, log logger.Logger) *OrderService {
	products := repository.NewProductRepository(db)
	return &OrderService{
		DB:        db,
		Repo:      repository.NewOrderRepository(db),
		Products:  products,
		Carts:     repository.NewCartRepository(db),
		Users:     repository.NewUserRepository(db),
		Inventory: NewInventoryGuard(products),
		Notifier:  notifier,
		Pub:       pub,
		log:       log,
	}
}

// ---------------- DTO ----------------

type CheckoutInput struct {
	DeliveryMethod entity.DeliveryMethod `json:"delivery_method" binding:"required,oneof=delivery pickup"`
	Phone          string                `json:"phone" binding:"required"`
	Address        string                `json:"address"`
	City           string                `json:"city"`
	PostalCode     string                `json:"postal_code"`
	Notes          string                `json:"notes"`
	SaveAddress    bool                  `json:"save_address"`
}

func (in *CheckoutInput) normalize() error {
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.Notes = strings.TrimSpace(in.Notes)

	if !in.DeliveryMethod.Valid() {
		return apperr.Invalid("delivery_method", "must be delivery or pickup")
	}
	if in.Phone == "" {
		return apperr.Invalid("phone", "required")
	}
	if in.DeliveryMethod == entity.DeliveryShip && (in.Address == "" || in.City == "" || in.PostalCode == "") {
		return apperr.Invalid("address", "address, city and postal code are required for delivery")
	}
	return nil
}

func (in *CheckoutInput) shippingAddress() string {
	if in.DeliveryMethod == entity.DeliveryPickup {
		return entity.PickupAddress
	}
	return fmt.Sprintf("%s, %s, %s", in.Address, in.City, in.PostalCode)
}

// ---------------- Checkout ----------------

// Checkout turns the buyer's whole cart into pending orders, or nothing at all.
// Lines whose product is gone are pruned from the cart and reported in an *apperr.UnavailableError.
func (s *OrderService) Checkout(ctx context.Context, buyerID string, in CheckoutInput) ([]entity.Order, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	ctx = logger.WithUserID(ctx, buyerID)

	var created []entity.Order
	var unavailable []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := s.Carts.GetCartWithItems(tx, buyerID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return apperr.ErrEmptyCart
		}

		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.ProductID
		}
		bad, err := s.Inventory.Unavailable(tx, ids)
		if err != nil {
			return err
		}
		if len(bad) > 0 {
			unavailable = bad
			return &apperr.UnavailableError{Products: bad}
		}

		orders := make([]entity.Order, 0, len(items))
		for _, it := range items {
			orders = append(orders, entity.Order{
				BuyerID:         buyerID,
				SellerID:        it.Product.SellerID,
				ProductID:       it.ProductID,
				TotalAmount:     it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
				Status:          entity.StatusPending,
				ShippingAddress: in.shippingAddress(),
				Phone:           in.Phone,
				Notes:           in.Notes,
				DeliveryMethod:  in.DeliveryMethod,
				PaymentMethod:   in.DeliveryMethod.Payment(),
			})
		}
		if err := s.Repo.CreateOrders(tx, orders); err != nil {
			return fmt.Errorf("insert orders: %w", err)
		}

		if err := s.Inventory.MarkSold(tx, ids); err != nil {
			var ue *apperr.UnavailableError
			if errors.As(err, &ue) {
				unavailable = ue.Products
				return err
			}
			return fmt.Errorf("mark products sold: %w", err)
		}

		if err := s.Carts.ClearCart(tx, buyerID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if in.SaveAddress {
			if err := s.Users.SaveContact(tx, buyerID, in.Phone, in.Address, in.City, in.PostalCode); err != nil {
				return fmt.Errorf("save contact: %w", err)
			}
		}

		for i := range orders {
			orders[i].Product = items[i].Product
		}
		created = orders
		return nil
	})
	if err != nil {
		if len(unavailable) > 0 {
			metrics.CheckoutRejections.Inc()
			s.pruneCart(ctx, buyerID, unavailable)
		}
		return nil, err
	}

	s.announceCheckout(ctx, created)
	return created, nil
}

func (s *OrderService) pruneCart(ctx context.Context, buyerID string, productIDs []string) {
	if err := s.Carts.RemoveProducts(s.DB.WithContext(ctx), buyerID, productIDs); err != nil {
		s.log.Errorf(ctx, "prune unavailable cart lines failed: %v", err)
		return
	}
	s.log.Infof(ctx, "pruned %d unavailable cart lines", len(productIDs))
}

// announceCheckout sends one notification per seller and one order event per order.
func (s *OrderService) announceCheckout(ctx context.Context, orders []entity.Order) {
	bySeller := make(map[string][]entity.Order)
	var sellers []string
	for _, o := range orders {
		metrics.OrderTransitions.WithLabelValues("", string(o.Status)).Inc()
		s.publishOrder(ctx, realtime.Insert, o)
		if _, seen := bySeller[o.SellerID]; !seen {
			sellers = append(sellers, o.SellerID)
		}
		bySeller[o.SellerID] = append(bySeller[o.SellerID], o)
	}
	for _, sellerID := range sellers {
		s.Notifier.Notify(ctx, newOrderNotification(sellerID, bySeller[sellerID]))
	}
}

func (s *OrderService) publishOrder(ctx context.Context, t realtime.EventType, o entity.Order) {
	if err := s.Pub.Publish(ctx, realtime.OrderEvent(t, o)); err != nil {
		s.log.Warnf(ctx, "publish order %s failed: %v", o.ID, err)
	}
}

// ---------------- Reads ----------------

func (s *OrderService) ListForBuyer(ctx context.Context, buyerID string) ([]entity.Order, error) {
	return s.Repo.ListForBuyer(ctx, buyerID)
}

func (s *OrderService) ListForSeller(ctx context.Context, sellerID string, status entity.OrderStatus) ([]entity.Order, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Invalid("status", "unknown status")
	}
	return s.Repo.ListForSeller(ctx, sellerID, status)
}

// Detail is visible to the two parties of the order only.
func (s *OrderService) Detail(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	o, err := s.Repo.GetDetail(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.PartyOf(userID) == "" {
		return nil, apperr.ErrNotFound
	}
	return o, nil
}

func (s *OrderService) SellerStats(ctx context.Context, sellerID string) (*repository.SellerStats, error) {
	return s.Repo.SellerStats(ctx, sellerID)
}
