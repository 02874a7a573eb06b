package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"lms-backend/internal/domain/course"
)

type CourseRepository struct {
	mu      sync.RWMutex
	courses map[uuid.UUID]*course.Course
}

func NewCourseRepository() *CourseRepository {
	return &CourseRepository{courses: make(map[uuid.UUID]*course.Course)}
}

func (r *CourseRepository) Create(_ context.Context, c *course.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	c.ID = uuid.New()
	c.NumberOfLectures = len(c.Lectures)
	c.CreatedAt = now
	c.UpdatedAt = now
	r.courses[c.ID] = cloneCourse(c)
	return nil
}

func (r *CourseRepository) List(_ context.Context) ([]*course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*course.Course, 0, len(r.courses))
	for _, c := range r.courses {
		cc := cloneCourse(c)
		cc.Lectures = nil
		out = append(out, cc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *CourseRepository) GetByID(_ context.Context, courseID uuid.UUID) (*course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.courses[courseID]
	if !ok {
		return nil, course.ErrCourseNotFound
	}
	return cloneCourse(c), nil
}

func (r *CourseRepository) AddLecture(_ context.Context, courseID uuid.UUID, l *course.Lecture) (*course.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.courses[courseID]
	if !ok {
		return nil, course.ErrCourseNotFound
	}

	l.ID = uuid.New()
	c.AddLecture(*l)
	c.UpdatedAt = time.Now()
	return cloneCourse(c), nil
}

func (r *CourseRepository) RemoveLecture(_ context.Context, courseID, lectureID uuid.UUID) (*course.Lecture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.courses[courseID]
	if !ok {
		return nil, course.ErrCourseNotFound
	}

	removed, err := c.RemoveLecture(lectureID)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now()
	return &removed, nil
}

func cloneCourse(c *course.Course) *course.Course {
	cc := *c
	cc.Lectures = append([]course.Lecture(nil), c.Lectures...)
	return &cc
}
