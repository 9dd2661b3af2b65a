package entity

type Rating struct {
	Base
	OrderID  string `gorm:"type:varchar(36);uniqueIndex;not null" json:"order_id"`
	BuyerID  string `gorm:"type:varchar(36);not null" json:"buyer_id"`
	SellerID string `gorm:"type:varchar(36);index;not null" json:"seller_id"`
	Rating   int    `gorm:"not null" json:"rating"`
	Review   string `json:"review,omitempty"`
}
