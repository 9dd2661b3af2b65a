package entity

type NotificationType string

const (
	NotifyOrder         NotificationType = "order"
	NotifyMessage       NotificationType = "message"
	NotifyStatusChange  NotificationType = "status_change"
	NotifyCancelRequest NotificationType = "cancel_request"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotifyOrder, NotifyMessage, NotifyStatusChange, NotifyCancelRequest:
		return true
	}
	return false
}

type Notification struct {
	Base
	UserID  string           `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Type    NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Title   string           `gorm:"not null" json:"title"`
	Message string           `gorm:"not null" json:"message"`
	Link    string           `json:"link,omitempty"`
	IsRead  bool             `gorm:"not null;default:false" json:"is_read"`
}
