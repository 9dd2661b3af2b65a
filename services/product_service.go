package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/repository"
)

type ProductService struct {
	repo *repository.ProductRepository
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{repo: repository.NewProductRepository(db)}
}

type CreateProductInput struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Category    string          `json:"category"`
	Size        string          `json:"size"`
	Condition   string          `json:"condition"`
}

func (s *ProductService) Create(ctx context.Context, sellerID string, in CreateProductInput) (*entity.Product, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperr.Invalid("title", "required")
	}
	if !in.Price.IsPositive() {
		return nil, apperr.Invalid("price", "must be positive")
	}
	p := &entity.Product{
		SellerID:    sellerID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Round(2),
		Category:    in.Category,
		Size:        in.Size,
		Condition:   in.Condition,
		IsAvailable: true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	return p, err
}

func (s *ProductService) ListBySeller(ctx context.Context, sellerID string) ([]entity.Product, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}
