package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{DB: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	if err := r.DB.WithContext(ctx).Preload("Seller").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]entity.Product, error) {
	var out []entity.Product
	err := r.DB.WithContext(ctx).Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// ---------------- Inventory ----------------

// FindUnavailable returns the ids among productIDs that are sold or missing.
func (r *ProductRepository) FindUnavailable(tx *gorm.DB, productIDs []string) ([]string, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var available []string
	if err := tx.Model(&entity.Product{}).
		Where("id IN ? AND is_available = ?", productIDs, true).
		Pluck("id", &available).Error; err != nil {
		return nil, err
	}
	ok := make(map[string]struct{}, len(available))
	for _, id := range available {
		ok[id] = struct{}{}
	}
	var out []string
	for _, id := range productIDs {
		if _, found := ok[id]; !found {
			out = append(out, id)
		}
	}
	return out, nil
}

// MarkSold flips available products to sold in one statement.
func (r *ProductRepository) MarkSold(tx *gorm.DB, productIDs []string) (int64, error) {
	res := tx.Model(&entity.Product{}).
		Where("id IN ? AND is_available = ?", productIDs, true).
		Update("is_available", false)
	return res.RowsAffected, res.Error
}

// Restore puts a sold product back on the market. Zero rows means it was already available.
func (r *ProductRepository) Restore(tx *gorm.DB, productID string) (int64, error) {
	res := tx.Model(&entity.Product{}).
		Where("id = ? AND is_available = ?", productID, false).
		Update("is_available", true)
	return res.RowsAffected, res.Error
}
