package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	raw, err := encode(UserRegistered, map[string]string{"email": "a@x.com"}, at)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "users/registered", got["type"])
	assert.Equal(t, "2026-01-02T02:04:05Z", got["occurred_at"])
	assert.Equal(t, map[string]any{"email": "a@x.com"}, got["data"])
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "lms/users/registered", Topic("lms", UserRegistered))
	assert.Equal(t, "users/registered", Topic("", UserRegistered))
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NotPanics(t, func() { p.Publish(context.Background(), LectureAdded, nil) })
}
