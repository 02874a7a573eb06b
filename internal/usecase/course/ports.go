package course

import (
	"context"
	"io"

	"lms-backend/internal/domain/user"
)

// MediaStorage stores lecture media. It has the same shape as the user
// package's storage port so one implementation serves both.
type MediaStorage interface {
	Upload(ctx context.Context, kind user.MediaKind, file io.ReadSeeker) (user.Media, error)
	Delete(ctx context.Context, publicID string) error
}
