package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/configs"
	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/realtime"
)

type fixture struct {
	ctx      context.Context
	db       *gorm.DB
	broker   *realtime.MemoryBroker
	notes    *NotificationService
	orders   *OrderService
	chat     *ChatService
	ratings  *RatingService
	carts    *CartService
	products *ProductService
	auth     *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := configs.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := logger.NewNop()
	broker := realtime.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })

	notes := NewNotificationService(db, broker, log, DefaultFeedLimit)
	return &fixture{
		ctx:      context.Background(),
		db:       db,
		broker:   broker,
		notes:    notes,
		orders:   NewOrderService(db, notes, broker, log),
		chat:     NewChatService(db, broker, notes, log),
		ratings:  NewRatingService(db, notes, log),
		carts:    NewCartService(db),
		products: NewProductService(db),
		auth:     NewAuthService(db, "test-secret", time.Hour),
	}
}

func (f *fixture) profile(t *testing.T, role, name string) *entity.Profile {
	t.Helper()
	p := &entity.Profile{Email: name + "@example.com", FullName: name, Role: role}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) product(t *testing.T, seller *entity.Profile, title, price string) *entity.Product {
	t.Helper()
	p, err := f.products.Create(f.ctx, seller.ID, CreateProductInput{
		Title: title,
		Price: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) addToCart(t *testing.T, buyer *entity.Profile, p *entity.Product) {
	t.Helper()
	_, err := f.carts.Add(f.ctx, buyer.ID, p.ID)
	require.NoError(t, err)
}

// placeOrder writes an order straight into the given state, holding the product when the state does.
func (f *fixture) placeOrder(t *testing.T, buyer, seller *entity.Profile, title string, status entity.OrderStatus) *entity.Order {
	t.Helper()
	p := f.product(t, seller, title, "500")
	if status.Holds() {
		require.NoError(t, f.db.Model(&entity.Product{}).Where("id = ?", p.ID).Update("is_available", false).Error)
	}
	o := &entity.Order{
		BuyerID:         buyer.ID,
		SellerID:        seller.ID,
		ProductID:       p.ID,
		TotalAmount:     p.Price,
		Status:          status,
		ShippingAddress: "123 Rizal St, Manila, 1000",
		Phone:           "09170000000",
		DeliveryMethod:  entity.DeliveryShip,
		PaymentMethod:   entity.PaymentCOD,
	}
	require.NoError(t, f.db.Create(o).Error)
	return o
}

func (f *fixture) available(t *testing.T, productID string) bool {
	t.Helper()
	var p entity.Product
	require.NoError(t, f.db.First(&p, "id = ?", productID).Error)
	return p.IsAvailable
}

func (f *fixture) status(t *testing.T, orderID string) entity.OrderStatus {
	t.Helper()
	var o entity.Order
	require.NoError(t, f.db.First(&o, "id = ?", orderID).Error)
	return o.Status
}

func (f *fixture) inbox(t *testing.T, userID string) []entity.Notification {
	t.Helper()
	var out []entity.Notification
	require.NoError(t, f.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error)
	return out
}

func (f *fixture) cart(t *testing.T, userID string) []entity.CartItem {
	t.Helper()
	items, err := f.carts.List(f.ctx, userID)
	require.NoError(t, err)
	return items
}
