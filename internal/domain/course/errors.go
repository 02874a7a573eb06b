package course

import "errors"

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrLectureNotFound = errors.New("lecture not found")
)
