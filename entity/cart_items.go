package entity

type CartItem struct {
	Base
	UserID    string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int      `gorm:"not null;default:1" json:"quantity"`
}
