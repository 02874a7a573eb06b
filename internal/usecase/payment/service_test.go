package payment_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	domainUser "lms-backend/internal/domain/user"
	"lms-backend/internal/events"
	"lms-backend/internal/infrastructure/database/memory"
	"lms-backend/internal/mocks"
	"lms-backend/internal/usecase/payment"
	appErrors "lms-backend/pkg/errors"
)

func seedUser(t *testing.T, repo *memory.UserRepository, email string, role domainUser.Role) *domainUser.User {
	t.Helper()
	u := &domainUser.User{Name: "some one", Email: email, PasswordHash: "h", Role: role}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestSubscribe(t *testing.T) {
	repo := memory.NewUserRepository()
	gateway := mocks.NewMockGateway(gomock.NewController(t))
	svc := payment.NewService(repo, gateway, events.NoopPublisher{})
	u := seedUser(t, repo, "alice@x.com", domainUser.RoleUser)

	gateway.EXPECT().CreateSubscription(gomock.Any()).
		Return(domainUser.Subscription{ID: "sub_1", Status: "created"}, nil)

	id, err := svc.Subscribe(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "sub_1", id)

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, domainUser.Subscription{ID: "sub_1", Status: "created"}, stored.Subscription)
}

func TestSubscribe_AdminRejected(t *testing.T) {
	repo := memory.NewUserRepository()
	svc := payment.NewService(repo, mocks.NewMockGateway(gomock.NewController(t)), nil)
	admin := seedUser(t, repo, "root@x.com", domainUser.RoleAdmin)

	_, err := svc.Subscribe(context.Background(), admin.ID)
	appErr, ok := appErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode())
	assert.Equal(t, "Admin cannot buy subscription", appErr.Message)
}

func TestSubscribe_GatewayFailure(t *testing.T) {
	repo := memory.NewUserRepository()
	gateway := mocks.NewMockGateway(gomock.NewController(t))
	svc := payment.NewService(repo, gateway, nil)
	u := seedUser(t, repo, "alice@x.com", domainUser.RoleUser)

	gateway.EXPECT().CreateSubscription(gomock.Any()).Return(domainUser.Subscription{}, errors.New("boom"))

	_, err := svc.Subscribe(context.Background(), u.ID)
	appErr, ok := appErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode())

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Subscription.ID)
}

func TestSubscribe_UnknownUser(t *testing.T) {
	svc := payment.NewService(memory.NewUserRepository(), mocks.NewMockGateway(gomock.NewController(t)), nil)

	_, err := svc.Subscribe(context.Background(), uuid.New())
	appErr, ok := appErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode())
}
