package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the credential store. Implementations return ErrUserNotFound for
// missing records and ErrUserAlreadyExists when the unique email index rejects a write.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	// ConsumeResetToken stores passwordHash on the user whose pending reset hash
	// equals tokenHash and whose reset expiry is after now, clearing the reset in
	// the same conditional write. At most one caller wins per token; the others
	// get ErrUserNotFound.
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*User, error)
	Save(ctx context.Context, user *User) error
	// ClearExpiredResets drops pending resets that expired before now.
	ClearExpiredResets(ctx context.Context, now time.Time) (int64, error)
}
