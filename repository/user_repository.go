package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
)

// UserRepository owns the profiles table.
type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	var p entity.Profile
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	var p entity.Profile
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Create fails with gorm.ErrDuplicatedKey when the email is taken.
func (r *UserRepository) Create(ctx context.Context, p *entity.Profile) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

// SaveContact copies checkout contact details back onto the profile.
func (r *UserRepository) SaveContact(tx *gorm.DB, userID, phone, address, city, postal string) error {
	return tx.Model(&entity.Profile{}).Where("id = ?", userID).
		Updates(map[string]any{
			"phone":       phone,
			"address":     address,
			"city":        city,
			"postal_code": postal,
		}).Error
}

func (r *UserRepository) SetSuspended(ctx context.Context, userID string, suspended bool) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&entity.Profile{}).
		Where("id = ?", userID).
		Update("is_suspended", suspended)
	return res.RowsAffected, res.Error
}

func (r *UserRepository) List(ctx context.Context, role string) ([]entity.Profile, error) {
	var out []entity.Profile
	q := r.DB.WithContext(ctx)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}
