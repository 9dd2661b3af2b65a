package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
)

type RatingRepository struct {
	DB *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{DB: db}
}

// Create fails with gorm.ErrDuplicatedKey on a second rating for the same order.
func (r *RatingRepository) Create(ctx context.Context, rt *entity.Rating) error {
	return r.DB.WithContext(ctx).Create(rt).Error
}

func (r *RatingRepository) ListForSeller(ctx context.Context, sellerID string) ([]entity.Rating, error) {
	var out []entity.Rating
	err := r.DB.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
