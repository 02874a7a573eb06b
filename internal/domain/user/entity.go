package user

import (
	"time"

	"github.com/google/uuid"
)

// Media points at a file held by the object store.
type Media struct {
	PublicID  string
	SecureURL string
}

func (m Media) IsZero() bool {
	return m.PublicID == "" && m.SecureURL == ""
}

// MediaKind is the top-level content type an upload must have.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Subscription mirrors the payment gateway subscription bound to a user.
type Subscription struct {
	ID     string
	Status string
}

// User represents a user entity in the domain
type User struct {
	ID               uuid.UUID
	Name             string
	Email            string
	PasswordHash     string `json:"-"`
	Avatar           Media
	Role             Role
	Subscription     Subscription
	ResetTokenHash   *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SetPasswordReset records a pending reset. Hash and expiry always travel together.
func (u *User) SetPasswordReset(tokenHash string, expiresAt time.Time) {
	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpiry = &expiresAt
}

func (u *User) ClearPasswordReset() {
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
}

func (u *User) HasPendingReset() bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiry != nil
}

// ResetValidAt reports whether the pending reset, if any, is still usable at now.
func (u *User) ResetValidAt(now time.Time) bool {
	return u.HasPendingReset() && now.Before(*u.ResetTokenExpiry)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
