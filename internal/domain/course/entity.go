package course

import (
	"time"

	"github.com/google/uuid"
	"lms-backend/internal/domain/user"
)

// Lecture is a single piece of course content.
type Lecture struct {
	ID          uuid.UUID
	Title       string
	Description string
	Media       user.Media
}

// Course represents a course entity in the domain
type Course struct {
	ID               uuid.UUID
	Title            string
	Description      string
	Category         string
	CreatedBy        string
	Thumbnail        user.Media
	Lectures         []Lecture
	NumberOfLectures int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AddLecture appends l and keeps NumberOfLectures in step with Lectures.
func (c *Course) AddLecture(l Lecture) {
	c.Lectures = append(c.Lectures, l)
	c.NumberOfLectures = len(c.Lectures)
}

// RemoveLecture deletes the lecture with the given id and returns it.
func (c *Course) RemoveLecture(lectureID uuid.UUID) (Lecture, error) {
	for i, l := range c.Lectures {
		if l.ID == lectureID {
			c.Lectures = append(c.Lectures[:i], c.Lectures[i+1:]...)
			c.NumberOfLectures = len(c.Lectures)
			return l, nil
		}
	}
	return Lecture{}, ErrLectureNotFound
}
