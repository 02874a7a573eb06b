package course

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for course repository operations
type Repository interface {
	Create(ctx context.Context, course *Course) error
	// List returns every course without its lectures.
	List(ctx context.Context) ([]*Course, error)
	GetByID(ctx context.Context, courseID uuid.UUID) (*Course, error)
	AddLecture(ctx context.Context, courseID uuid.UUID, lecture *Lecture) (*Course, error)
	RemoveLecture(ctx context.Context, courseID, lectureID uuid.UUID) (*Lecture, error)
}
