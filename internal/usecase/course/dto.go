package course

import (
	"time"

	"github.com/google/uuid"
	domainCourse "lms-backend/internal/domain/course"
	"lms-backend/internal/domain/user"
)

type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=8,max=60"`
	Description string `json:"description" validate:"required,min=8,max=200"`
	Category    string `json:"category" validate:"required"`
	CreatedBy   string `json:"createdBy" validate:"required"`
}

type AddLectureRequest struct {
	Title       string `json:"title" form:"title" validate:"required"`
	Description string `json:"description" form:"description" validate:"required"`
}

type MediaResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

type LectureResponse struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Lecture     MediaResponse `json:"lecture"`
}

type CourseResponse struct {
	ID               uuid.UUID         `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Category         string            `json:"category"`
	CreatedBy        string            `json:"createdBy"`
	Thumbnail        MediaResponse     `json:"thumbnail"`
	Lectures         []LectureResponse `json:"lectures,omitempty"`
	NumberOfLectures int               `json:"numberOfLectures"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func toMediaResponse(m user.Media) MediaResponse {
	return MediaResponse{PublicID: m.PublicID, SecureURL: m.SecureURL}
}

func ToLectureResponses(lectures []domainCourse.Lecture) []LectureResponse {
	out := make([]LectureResponse, 0, len(lectures))
	for _, l := range lectures {
		out = append(out, LectureResponse{
			ID:          l.ID,
			Title:       l.Title,
			Description: l.Description,
			Lecture:     toMediaResponse(l.Media),
		})
	}
	return out
}

func ToCourseResponse(c *domainCourse.Course) *CourseResponse {
	if c == nil {
		return nil
	}
	resp := &CourseResponse{
		ID:               c.ID,
		Title:            c.Title,
		Description:      c.Description,
		Category:         c.Category,
		CreatedBy:        c.CreatedBy,
		Thumbnail:        toMediaResponse(c.Thumbnail),
		NumberOfLectures: c.NumberOfLectures,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	if len(c.Lectures) > 0 {
		resp.Lectures = ToLectureResponses(c.Lectures)
	}
	return resp
}
