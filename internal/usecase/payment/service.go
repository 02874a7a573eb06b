package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	domainUser "lms-backend/internal/domain/user"
	"lms-backend/internal/events"
	"lms-backend/internal/logger"
	appErrors "lms-backend/pkg/errors"
)

//go:generate mockgen -destination=../../mocks/mock_payment_gateway.go -package=mocks lms-backend/internal/usecase/payment Gateway

// Gateway creates subscriptions with the payment provider.
type Gateway interface {
	CreateSubscription(ctx context.Context) (domainUser.Subscription, error)
}

type Service struct {
	userRepo  domainUser.Repository
	gateway   Gateway
	publisher events.Publisher
}

func NewService(userRepo domainUser.Repository, gateway Gateway, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		userRepo:  userRepo,
		gateway:   gateway,
		publisher: publisher,
	}
}

// Subscribe starts a subscription for the user and records it on the account.
// It returns the gateway's subscription id.
func (s *Service) Subscribe(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return "", appErrors.Unauthenticated(appErrors.ErrUnauthenticated)
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsAdmin() {
		return "", appErrors.Validation("Admin cannot buy subscription")
	}

	sub, err := s.gateway.CreateSubscription(ctx)
	if err != nil {
		logger.Error("Subscription could not be created",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "subscription_failed"),
			zap.Error(err),
		)
		return "", appErrors.Upstream("Something went wrong, please try again.", err)
	}

	user.Subscription = sub
	if err := s.userRepo.Save(ctx, user); err != nil {
		return "", fmt.Errorf("failed to save subscription: %w", err)
	}

	logger.Info("User subscribed",
		zap.String("user_id", user.ID.String()),
		zap.String("subscription_id", sub.ID),
		zap.String("event", "subscription_created"),
	)
	s.publisher.Publish(ctx, events.SubscriptionCreated, map[string]string{
		"user_id":         user.ID.String(),
		"subscription_id": sub.ID,
	})

	return sub.ID, nil
}
