package user

import (
	"context"
	"io"

	domainUser "lms-backend/internal/domain/user"
)

//go:generate mockgen -destination=../../mocks/mock_email_sender.go -package=mocks lms-backend/internal/usecase/user EmailSender
//go:generate mockgen -destination=../../mocks/mock_media_storage.go -package=mocks lms-backend/internal/usecase/user MediaStorage

// EmailSender delivers transactional mail.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// MediaStorage stores uploaded files and hands back where they live.
type MediaStorage interface {
	Upload(ctx context.Context, kind domainUser.MediaKind, file io.ReadSeeker) (domainUser.Media, error)
	Delete(ctx context.Context, publicID string) error
}
