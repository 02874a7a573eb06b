package course

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourse_LectureCountFollowsLectures(t *testing.T) {
	c := &Course{}
	first := Lecture{ID: uuid.New(), Title: "intro"}
	second := Lecture{ID: uuid.New(), Title: "setup"}

	c.AddLecture(first)
	c.AddLecture(second)
	assert.Equal(t, 2, c.NumberOfLectures)

	removed, err := c.RemoveLecture(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, removed.ID)
	assert.Equal(t, 1, c.NumberOfLectures)
	assert.Equal(t, second.ID, c.Lectures[0].ID)

	_, err = c.RemoveLecture(first.ID)
	assert.ErrorIs(t, err, ErrLectureNotFound)
	assert.Equal(t, 1, c.NumberOfLectures)
}
