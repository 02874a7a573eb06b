package course

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	domainCourse "lms-backend/internal/domain/course"
	"lms-backend/internal/domain/user"
	"lms-backend/internal/events"
	"lms-backend/internal/logger"
	appErrors "lms-backend/pkg/errors"
	"lms-backend/pkg/utils"
)

const (
	msgNoCourse            = "No course found"
	msgCourseNotFound      = "Invalid course id or course not found."
	msgCourseNotFoundByID  = "Invalid ID or Course does not exist."
	msgLectureNotFound     = "Lecture does not exist."
	msgLectureFields       = "Title and Description are required"
	msgFileNotUploaded     = "File not uploaded, please try again"
	msgCourseCreateFailure = "Course could not be created, please try again"
)

// Service implements course and lecture use cases
type Service struct {
	courseRepo domainCourse.Repository
	media      MediaStorage
	publisher  events.Publisher
}

func NewService(courseRepo domainCourse.Repository, media MediaStorage, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		courseRepo: courseRepo,
		media:      media,
		publisher:  publisher,
	}
}

func (s *Service) List(ctx context.Context) ([]*CourseResponse, error) {
	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	if len(courses) == 0 {
		return nil, appErrors.NotFound(msgNoCourse)
	}

	out := make([]*CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, ToCourseResponse(c))
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, req *CreateCourseRequest) (*CourseResponse, error) {
	req.Title = utils.SanitizeString(req.Title)
	req.Description = utils.SanitizeText(req.Description)
	req.Category = utils.SanitizeString(req.Category)
	req.CreatedBy = utils.SanitizeString(req.CreatedBy)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(utils.ValidationMessage(err, "Invalid input"))
	}

	c := &domainCourse.Course{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		CreatedBy:   req.CreatedBy,
	}
	if err := s.courseRepo.Create(ctx, c); err != nil {
		return nil, appErrors.Upstream(msgCourseCreateFailure, err)
	}

	logger.Info("Course created",
		zap.String("course_id", c.ID.String()),
		zap.String("title", c.Title),
		zap.String("event", "course_created"),
	)

	return ToCourseResponse(c), nil
}

func (s *Service) GetLectures(ctx context.Context, courseID string) ([]LectureResponse, error) {
	id, err := uuid.Parse(courseID)
	if err != nil {
		return nil, appErrors.NotFound(msgCourseNotFound)
	}

	c, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainCourse.ErrCourseNotFound) {
			return nil, appErrors.NotFound(msgCourseNotFound)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return ToLectureResponses(c.Lectures), nil
}

// AddLecture appends a lecture to the course, uploading file as its video when
// one is given.
func (s *Service) AddLecture(ctx context.Context, courseID string, req *AddLectureRequest, file io.ReadSeeker) (*CourseResponse, error) {
	req.Title = utils.SanitizeString(req.Title)
	req.Description = utils.SanitizeText(req.Description)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(msgLectureFields)
	}

	id, err := uuid.Parse(courseID)
	if err != nil {
		return nil, appErrors.Validation(msgCourseNotFound)
	}
	if _, err := s.courseRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, domainCourse.ErrCourseNotFound) {
			return nil, appErrors.Validation(msgCourseNotFound)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	lecture := &domainCourse.Lecture{
		Title:       req.Title,
		Description: req.Description,
	}

	if file != nil {
		media, err := s.media.Upload(ctx, user.MediaVideo, file)
		if err != nil {
			logger.Warn("Lecture upload failed",
				zap.String("course_id", id.String()),
				zap.Error(err),
			)
			return nil, appErrors.Validation(msgFileNotUploaded)
		}
		lecture.Media = media
	}

	updated, err := s.courseRepo.AddLecture(ctx, id, lecture)
	if err != nil {
		s.deleteMedia(ctx, lecture.Media)
		if errors.Is(err, domainCourse.ErrCourseNotFound) {
			return nil, appErrors.Validation(msgCourseNotFound)
		}
		return nil, fmt.Errorf("failed to add lecture: %w", err)
	}

	logger.Info("Course lecture added",
		zap.String("course_id", id.String()),
		zap.String("lecture_id", lecture.ID.String()),
		zap.Int("number_of_lectures", updated.NumberOfLectures),
		zap.String("event", "lecture_added"),
	)
	s.publisher.Publish(ctx, events.LectureAdded, map[string]string{
		"course_id":  id.String(),
		"lecture_id": lecture.ID.String(),
	})

	return ToCourseResponse(updated), nil
}

func (s *Service) RemoveLecture(ctx context.Context, courseID, lectureID string) error {
	cid, err := uuid.Parse(courseID)
	if err != nil {
		return appErrors.NotFound(msgCourseNotFoundByID)
	}
	lid, err := uuid.Parse(lectureID)
	if err != nil {
		return appErrors.NotFound(msgLectureNotFound)
	}

	removed, err := s.courseRepo.RemoveLecture(ctx, cid, lid)
	switch {
	case errors.Is(err, domainCourse.ErrCourseNotFound):
		return appErrors.NotFound(msgCourseNotFoundByID)
	case errors.Is(err, domainCourse.ErrLectureNotFound):
		return appErrors.NotFound(msgLectureNotFound)
	case err != nil:
		return fmt.Errorf("failed to remove lecture: %w", err)
	}

	s.deleteMedia(ctx, removed.Media)

	logger.Info("Course lecture removed",
		zap.String("course_id", cid.String()),
		zap.String("lecture_id", lid.String()),
		zap.String("event", "lecture_removed"),
	)
	s.publisher.Publish(ctx, events.LectureRemoved, map[string]string{
		"course_id":  cid.String(),
		"lecture_id": lid.String(),
	})

	return nil
}

func (s *Service) deleteMedia(ctx context.Context, m user.Media) {
	if m.PublicID == "" {
		return
	}
	if err := s.media.Delete(ctx, m.PublicID); err != nil {
		logger.Warn("Failed to delete lecture media",
			zap.String("public_id", m.PublicID),
			zap.Error(err),
		)
	}
}
