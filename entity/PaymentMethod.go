package entity

type DeliveryMethod string

const (
	DeliveryShip   DeliveryMethod = "delivery"
	DeliveryPickup DeliveryMethod = "pickup"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryShip || m == DeliveryPickup
}

// PaymentMethod is derived from the delivery method; there is no payment processing.
type PaymentMethod string

const (
	PaymentCOD PaymentMethod = "cod" // cash on delivery
	PaymentCOP PaymentMethod = "cop" // cash on pickup
)

func (m DeliveryMethod) Payment() PaymentMethod {
	if m == DeliveryPickup {
		return PaymentCOP
	}
	return PaymentCOD
}

const PickupAddress = "For Pickup"
