package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/repository"
)

type RatingService struct {
	repo     *repository.RatingRepository
	orders   *repository.OrderRepository
	db       *gorm.DB
	notifier Notifier
	log      logger.Logger
}

func NewRatingService(db *gorm.DB, notifier Notifier, log logger.Logger) *RatingService {
	return &RatingService{
		repo:     repository.NewRatingRepository(db),
		orders:   repository.NewOrderRepository(db),
		db:       db,
		notifier: notifier,
		log:      log,
	}
}

type SellerRatings struct {
	Average float64         `json:"average"`
	Count   int             `json:"count"`
	Ratings []entity.Rating `json:"ratings"`
}

// Create rates a delivered order once.
func (s *RatingService) Create(ctx context.Context, buyerID, orderID string, rating int, review string) (*entity.Rating, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.ErrInvalidRating
	}
	review = strings.TrimSpace(review)

	o, err := s.orders.GetOrder(s.db.WithContext(ctx), orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, apperr.ErrForbidden
	}
	if o.Status != entity.StatusDelivered {
		return nil, apperr.ErrOrderNotDelivered
	}

	r := &entity.Rating{
		OrderID:  o.ID,
		BuyerID:  buyerID,
		SellerID: o.SellerID,
		Rating:   rating,
		Review:   review,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrAlreadyRated
		}
		return nil, err
	}
	s.notifier.Notify(ctx, ratingNotification(o.SellerID, rating, review))
	return r, nil
}

func (s *RatingService) ForSeller(ctx context.Context, sellerID string) (*SellerRatings, error) {
	list, err := s.repo.ListForSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	out := &SellerRatings{Count: len(list), Ratings: list}
	if len(list) > 0 {
		sum := 0
		for _, r := range list {
			sum += r.Rating
		}
		out.Average = float64(sum) / float64(len(list))
	}
	return out, nil
}
