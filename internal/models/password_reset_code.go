package models

import "time"

// PasswordResetCode stores an outstanding reset code for an email address.
// Only the SHA-256 digest of the code is persisted; consuming a code deletes
// the row, so existence plus an unexpired ExpiresAt is the whole validity rule.
type PasswordResetCode struct {
	BaseModel

	Email     string    `gorm:"not null;index:idx_reset_email_code" json:"email"`
	CodeHash  string    `gorm:"not null;index:idx_reset_email_code" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

// Valid reports whether the code is still claimable at the given instant.
func (c *PasswordResetCode) Valid(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}
