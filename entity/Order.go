package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	Base
	BuyerID   string   `gorm:"type:varchar(36);index;not null" json:"buyer_id"`
	Buyer     *Profile `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	SellerID  string   `gorm:"type:varchar(36);index;not null" json:"seller_id"`
	Seller    *Profile `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	ProductID string   `gorm:"type:varchar(36);index;not null" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	// frozen at creation
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`

	Status          OrderStatus    `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	ShippingAddress string         `json:"shipping_address"`
	Phone           string         `json:"phone"`
	Notes           string         `json:"notes,omitempty"`
	DeliveryMethod  DeliveryMethod `gorm:"type:varchar(10);not null" json:"delivery_method"`
	PaymentMethod   PaymentMethod  `gorm:"type:varchar(5);not null" json:"payment_method"`
	DeliveryDate    *time.Time     `json:"delivery_date"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// PartyOf returns the other party of the order, or "" when userID is not a party.
func (o *Order) PartyOf(userID string) string {
	switch userID {
	case o.BuyerID:
		return o.SellerID
	case o.SellerID:
		return o.BuyerID
	}
	return ""
}

func (o *Order) ProductTitle() string {
	if o.Product == nil {
		return "your item"
	}
	return o.Product.Title
}
