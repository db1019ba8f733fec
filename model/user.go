// Package model defines database models
package model

import "time"

const (
	RoleFree = "Free"
	RolePaid = "Paid"
)

type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:Free" json:"role"`
	ProfileImage *string `json:"profile_image,omitempty"`

	// Pointer on purpose. Accounts created before verification was
	// introduced have a NULL here and must be treated as verified
	// so they don't get locked out.
	Verified *bool `json:"verified,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsVerified treats a missing verification flag as verified
func (u *User) IsVerified() bool {
	return u.Verified == nil || *u.Verified
}
