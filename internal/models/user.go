package models

import "time"

// Role gates which operations a user may perform.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleStoreOwner Role = "store_owner"
	RoleCustomer   Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStoreOwner, RoleCustomer:
		return true
	}
	return false
}

// User represents an account of the platform.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" gorm:"type:varchar(60);not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"` // never serialized
	Address      *string   `json:"address" gorm:"type:varchar(400)"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:customer;index;check:role IN ('admin', 'store_owner', 'customer')"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserView is a User as returned by the user directory. Rating is the mean
// aggregate rating of the stores the user owns and is only set for store owners.
type UserView struct {
	User
	Rating *float64 `json:"rating,omitempty"`
}
