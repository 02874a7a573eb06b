package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"lms-backend/internal/domain/course"
	"lms-backend/internal/domain/user"
	"lms-backend/internal/infrastructure/database/postgres/models"
)

// CourseRepository implements the course.Repository interface on gorm.
// Lectures live in their own table and number_of_lectures is kept in the same
// transaction as every lecture insert or delete.
type CourseRepository struct {
	db *DB
}

func NewCourseRepository(db *DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, c *course.Course) error {
	now := time.Now()
	c.ID = uuid.New()
	c.Lectures = nil
	c.NumberOfLectures = 0
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := r.db.DB.WithContext(ctx).Omit("Lectures").Create(toCourseModel(c)).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

func (r *CourseRepository) List(ctx context.Context) ([]*course.Course, error) {
	var dbModels []models.CourseModel
	if err := r.db.DB.WithContext(ctx).Order("created_at ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	courses := make([]*course.Course, len(dbModels))
	for i := range dbModels {
		courses[i] = toCourseEntity(&dbModels[i])
	}

	return courses, nil
}

func (r *CourseRepository) GetByID(ctx context.Context, courseID uuid.UUID) (*course.Course, error) {
	return getCourse(r.db.DB.WithContext(ctx), courseID)
}

func (r *CourseRepository) AddLecture(ctx context.Context, courseID uuid.UUID, l *course.Lecture) (*course.Course, error) {
	var updated *course.Course

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCourse(tx, courseID); err != nil {
			return err
		}

		l.ID = uuid.New()
		if err := tx.Create(toLectureModel(courseID, l)).Error; err != nil {
			return fmt.Errorf("failed to add lecture: %w", err)
		}
		if err := bumpLectureCount(tx, courseID, 1); err != nil {
			return err
		}

		c, err := getCourse(tx, courseID)
		if err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *CourseRepository) RemoveLecture(ctx context.Context, courseID, lectureID uuid.UUID) (*course.Lecture, error) {
	var removed *course.Lecture

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCourse(tx, courseID); err != nil {
			return err
		}

		var dbLecture models.LectureModel
		err := tx.Where("id = ? AND course_id = ?", lectureID, courseID).First(&dbLecture).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return course.ErrLectureNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get lecture: %w", err)
		}

		if err := tx.Delete(&models.LectureModel{}, "id = ?", lectureID).Error; err != nil {
			return fmt.Errorf("failed to remove lecture: %w", err)
		}
		if err := bumpLectureCount(tx, courseID, -1); err != nil {
			return err
		}

		l := toLectureEntity(&dbLecture)
		removed = &l
		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

func lockCourse(tx *gorm.DB, courseID uuid.UUID) error {
	var dbModel models.CourseModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&dbModel, "id = ?", courseID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return course.ErrCourseNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get course: %w", err)
	}
	return nil
}

func bumpLectureCount(tx *gorm.DB, courseID uuid.UUID, delta int) error {
	err := tx.Model(&models.CourseModel{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"number_of_lectures": gorm.Expr("number_of_lectures + ?", delta),
			"updated_at":         time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update lecture count: %w", err)
	}
	return nil
}

func getCourse(db *gorm.DB, courseID uuid.UUID) (*course.Course, error) {
	var dbModel models.CourseModel
	err := db.
		Preload("Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&dbModel, "id = ?", courseID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, course.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return toCourseEntity(&dbModel), nil
}

func toCourseModel(c *course.Course) *models.CourseModel {
	return &models.CourseModel{
		ID:                c.ID,
		Title:             c.Title,
		Description:       c.Description,
		Category:          c.Category,
		CreatedBy:         c.CreatedBy,
		ThumbnailPublicID: c.Thumbnail.PublicID,
		ThumbnailURL:      c.Thumbnail.SecureURL,
		NumberOfLectures:  c.NumberOfLectures,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func toCourseEntity(m *models.CourseModel) *course.Course {
	c := &course.Course{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		CreatedBy:   m.CreatedBy,
		Thumbnail: user.Media{
			PublicID:  m.ThumbnailPublicID,
			SecureURL: m.ThumbnailURL,
		},
		NumberOfLectures: m.NumberOfLectures,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	for i := range m.Lectures {
		c.Lectures = append(c.Lectures, toLectureEntity(&m.Lectures[i]))
	}
	return c
}

func toLectureModel(courseID uuid.UUID, l *course.Lecture) *models.LectureModel {
	return &models.LectureModel{
		ID:            l.ID,
		CourseID:      courseID,
		Title:         l.Title,
		Description:   l.Description,
		MediaPublicID: l.Media.PublicID,
		MediaURL:      l.Media.SecureURL,
		CreatedAt:     time.Now(),
	}
}

func toLectureEntity(m *models.LectureModel) course.Lecture {
	return course.Lecture{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Media: user.Media{
			PublicID:  m.MediaPublicID,
			SecureURL: m.MediaURL,
		},
	}
}
