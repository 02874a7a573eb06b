// Package events publishes domain events. Delivery is best effort: failures
// are logged and never reach the caller.
package events

import (
	"context"
	"encoding/json"
	"time"
)

const (
	UserRegistered         = "users/registered"
	PasswordResetRequested = "users/password_reset_requested"
	PasswordResetCompleted = "users/password_reset_completed"
	LectureAdded           = "courses/lecture_added"
	LectureRemoved         = "courses/lecture_removed"
	SubscriptionCreated    = "payments/subscription_created"
)

//go:generate mockgen -destination=../mocks/mock_publisher.go -package=mocks lms-backend/internal/events Publisher

type Publisher interface {
	Publish(ctx context.Context, name string, data any)
}

// Envelope is the JSON document written for every event.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func encode(name string, data any, now time.Time) ([]byte, error) {
	return json.Marshal(Envelope{Type: name, OccurredAt: now.UTC(), Data: data})
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) {}
