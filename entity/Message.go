package entity

type Message struct {
	Base
	OrderID    string `gorm:"type:varchar(36);index;not null" json:"order_id"`
	SenderID   string `gorm:"type:varchar(36);not null" json:"sender_id"`
	ReceiverID string `gorm:"type:varchar(36);index;not null" json:"receiver_id"`
	Content    string `gorm:"not null" json:"content"`
	IsRead     bool   `gorm:"not null;default:false" json:"is_read"`
}
