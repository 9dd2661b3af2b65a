package entity

import "time"

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

type Profile struct {
	Base
	Email      string `gorm:"uniqueIndex;not null" json:"email"`
	Password   string `json:"-"`
	FullName   string `json:"full_name"`
	Role       string `gorm:"not null;default:buyer;index" json:"role"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	StoreName  string `json:"store_name,omitempty"`

	// admins flip this; every session resume re-checks it
	IsSuspended bool      `gorm:"not null;default:false" json:"is_suspended"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName is what other parties see in notifications.
func (p *Profile) DisplayName() string {
	if p.StoreName != "" && p.Role == RoleSeller {
		return p.StoreName
	}
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}
