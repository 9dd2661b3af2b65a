package entity

type OrderStatus string

const (
	StatusPending         OrderStatus = "pending"
	StatusConfirmed       OrderStatus = "confirmed"
	StatusShipped         OrderStatus = "shipped"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"
	StatusCancelRequested OrderStatus = "cancel_requested"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled, StatusCancelRequested:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Holds reports whether an order in this state keeps its product off the market.
func (s OrderStatus) Holds() bool {
	return s != StatusCancelled
}
