package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/repository"
)

type CartService struct {
	db       *gorm.DB
	carts    *repository.CartRepository
	products *repository.ProductRepository
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{
		db:       db,
		carts:    repository.NewCartRepository(db),
		products: repository.NewProductRepository(db),
	}
}

func (s *CartService) List(ctx context.Context, userID string) ([]entity.CartItem, error) {
	return s.carts.GetCartWithItems(s.db.WithContext(ctx), userID)
}

// Add puts one unit of an available listing in the cart. Adding it twice is a conflict.
func (s *CartService) Add(ctx context.Context, userID, productID string) (*entity.CartItem, error) {
	p, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.SellerID == userID {
		return nil, apperr.ErrOwnProduct
	}
	if !p.IsAvailable {
		return nil, &apperr.UnavailableError{Products: []string{p.ID}}
	}

	item := &entity.CartItem{UserID: userID, ProductID: productID, Quantity: 1}
	if err := s.carts.AddItem(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrAlreadyInCart
		}
		return nil, err
	}
	item.Product = p
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID string) error {
	n, err := s.carts.RemoveItem(ctx, userID, productID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
