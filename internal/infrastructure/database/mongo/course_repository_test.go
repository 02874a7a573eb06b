package mongo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestCourseDocument_BSONLayout(t *testing.T) {
	lectureID := uuid.New()
	doc := courseDocument{
		ID:    uuid.New().String(),
		Title: "Go basics",
		Lectures: []lectureDocument{{
			ID:    lectureID.String(),
			Title: "intro",
			Media: mediaDocument{PublicID: "lms/abc", SecureURL: "https://cdn/abc"},
		}},
		NumberOfLectures: 1,
	}

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var generic bson.M
	require.NoError(t, bson.Unmarshal(raw, &generic))
	assert.Equal(t, doc.ID, generic["_id"])
	assert.EqualValues(t, 1, generic["number_of_lectures"])

	c, err := toCourseEntity(&doc)
	require.NoError(t, err)
	require.Len(t, c.Lectures, 1)
	assert.Equal(t, lectureID, c.Lectures[0].ID)
	assert.Equal(t, "https://cdn/abc", c.Lectures[0].Media.SecureURL)
}

func TestFindLecture(t *testing.T) {
	lectures := []lectureDocument{{ID: "a"}, {ID: "b", Title: "second"}}

	got, ok := findLecture(lectures, "b")
	assert.True(t, ok)
	assert.Equal(t, "second", got.Title)

	_, ok = findLecture(lectures, "c")
	assert.False(t, ok)
}

func TestToCourseEntity_BadID(t *testing.T) {
	_, err := toCourseEntity(&courseDocument{ID: "not-a-uuid"})
	assert.Error(t, err)
}
