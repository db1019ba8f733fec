package model

import "time"

const (
	PurposeVerification  = "verification"
	PurposePasswordReset = "password_reset"
)

// OTPCode is a one-shot numeric passcode tied to an email address and
// a purpose. Multiple outstanding rows per email are allowed, only the
// newest matching one can be consumed.
type OTPCode struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Email     string `gorm:"index;not null"`
	Code      string `gorm:"not null"`
	Purpose   string `gorm:"not null"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
	Used      bool
	UsedAt    *time.Time
}
