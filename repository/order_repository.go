package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jaypeewhat/ThriftStore/entity"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// ---------------- Orders (write) ----------------

// CreateOrders inserts one checkout batch; must run inside the checkout transaction.
func (r *OrderRepository) CreateOrders(tx *gorm.DB, orders []entity.Order) error {
	return tx.Omit(clause.Associations).Create(&orders).Error
}

// UpdateStatusGuard moves the order only if it is still in `from`.
// Zero rows affected means the order moved on or does not exist.
func (r *OrderRepository) UpdateStatusGuard(tx *gorm.DB, orderID string, from, to entity.OrderStatus) (int64, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

// SetDeliveryDateGuard writes the date only while the order sits in `status`.
func (r *OrderRepository) SetDeliveryDateGuard(tx *gorm.DB, orderID string, status entity.OrderStatus, date time.Time) (int64, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND status = ?", orderID, status).
		Updates(map[string]any{"delivery_date": date, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

// ---------------- Orders (read) ----------------

func (r *OrderRepository) GetOrder(tx *gorm.DB, orderID string) (*entity.Order, error) {
	var o entity.Order
	if err := tx.Preload("Product").First(&o, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetDetail loads both parties for the order page.
func (r *OrderRepository) GetDetail(ctx context.Context, orderID string) (*entity.Order, error) {
	var o entity.Order
	err := r.DB.WithContext(ctx).
		Preload("Product").Preload("Buyer").Preload("Seller").
		First(&o, "id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListForBuyer(ctx context.Context, buyerID string) ([]entity.Order, error) {
	var out []entity.Order
	err := r.DB.WithContext(ctx).
		Preload("Product").Preload("Seller").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *OrderRepository) ListForSeller(ctx context.Context, sellerID string, status entity.OrderStatus) ([]entity.Order, error) {
	var out []entity.Order
	q := r.DB.WithContext(ctx).
		Preload("Product").Preload("Buyer").
		Where("seller_id = ?", sellerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

type SellerStats struct {
	Revenue        decimal.Decimal `json:"revenue"`
	DeliveredCount int64           `json:"delivered_count"`
	OpenCount      int64           `json:"open_count"`
	PendingCancel  int64           `json:"pending_cancel_count"`
	ActiveListings int64           `json:"active_listings"`
}

// SellerStats sums revenue in Go so mysql and sqlite agree on decimal handling.
func (r *OrderRepository) SellerStats(ctx context.Context, sellerID string) (*SellerStats, error) {
	db := r.DB.WithContext(ctx)
	out := &SellerStats{Revenue: decimal.Zero}

	var delivered []decimal.Decimal
	if err := db.Model(&entity.Order{}).
		Where("seller_id = ? AND status = ?", sellerID, entity.StatusDelivered).
		Pluck("total_amount", &delivered).Error; err != nil {
		return nil, err
	}
	for _, amt := range delivered {
		out.Revenue = out.Revenue.Add(amt)
	}
	out.DeliveredCount = int64(len(delivered))

	if err := db.Model(&entity.Order{}).
		Where("seller_id = ? AND status IN ?", sellerID,
			[]entity.OrderStatus{entity.StatusPending, entity.StatusConfirmed, entity.StatusShipped}).
		Count(&out.OpenCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.Order{}).
		Where("seller_id = ? AND status = ?", sellerID, entity.StatusCancelRequested).
		Count(&out.PendingCancel).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.Product{}).
		Where("seller_id = ? AND is_available = ?", sellerID, true).
		Count(&out.ActiveListings).Error; err != nil {
		return nil, err
	}
	return out, nil
}
