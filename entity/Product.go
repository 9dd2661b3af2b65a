package entity

import "github.com/shopspring/decimal"

type Product struct {
	Base
	SellerID    string          `gorm:"type:varchar(36);index;not null" json:"seller_id"`
	Seller      *Profile        `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Category    string          `json:"category"`
	Size        string          `json:"size"`
	Condition   string          `json:"condition"`

	// false while a live order holds the item
	IsAvailable bool `gorm:"not null;default:true;index" json:"is_available"`
}
