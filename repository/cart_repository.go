package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
)

type CartRepository struct {
	DB *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{DB: db}
}

// GetCartWithItems returns the buyer's lines with their products, oldest first.
func (r *CartRepository) GetCartWithItems(tx *gorm.DB, userID string) ([]entity.CartItem, error) {
	var items []entity.CartItem
	err := tx.Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// AddItem fails with gorm.ErrDuplicatedKey when the product is already in the cart.
func (r *CartRepository) AddItem(ctx context.Context, item *entity.CartItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *CartRepository) RemoveItem(ctx context.Context, userID, productID string) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&entity.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *CartRepository) RemoveProducts(tx *gorm.DB, userID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	return tx.Where("user_id = ? AND product_id IN ?", userID, productIDs).Delete(&entity.CartItem{}).Error
}

func (r *CartRepository) ClearCart(tx *gorm.DB, userID string) error {
	return tx.Where("user_id = ?", userID).Delete(&entity.CartItem{}).Error
}
