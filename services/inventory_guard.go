package services

import (
	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/pkg/metrics"
	"github.com/jaypeewhat/ThriftStore/repository"
)

// InventoryGuard keeps products.is_available in step with live orders.
// Every method runs on the caller's transaction.
type InventoryGuard struct {
	products *repository.ProductRepository
}

func NewInventoryGuard(products *repository.ProductRepository) *InventoryGuard {
	return &InventoryGuard{products: products}
}

func (g *InventoryGuard) Unavailable(tx *gorm.DB, productIDs []string) ([]string, error) {
	return g.products.FindUnavailable(tx, productIDs)
}

// MarkSold takes every product off the market or reports the ones another buyer got first.
// Each flip is conditional on is_available, so two checkouts cannot both win a product.
func (g *InventoryGuard) MarkSold(tx *gorm.DB, productIDs []string) error {
	var lost []string
	for _, id := range productIDs {
		n, err := g.products.MarkSold(tx, []string{id})
		if err != nil {
			return err
		}
		if n == 0 {
			lost = append(lost, id)
		}
	}
	if len(lost) > 0 {
		return &apperr.UnavailableError{Products: lost}
	}
	return nil
}

// Restore returns the product to the market; false means it was already available.
func (g *InventoryGuard) Restore(tx *gorm.DB, productID string) (bool, error) {
	n, err := g.products.Restore(tx, productID)
	if err != nil {
		return false, err
	}
	if n > 0 {
		metrics.InventoryRestores.Inc()
	}
	return n > 0, nil
}
