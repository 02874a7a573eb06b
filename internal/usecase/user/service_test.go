package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"lms-backend/internal/auth"
	"lms-backend/internal/config"
	domainUser "lms-backend/internal/domain/user"
	"lms-backend/internal/events"
	"lms-backend/internal/infrastructure/database/memory"
	"lms-backend/internal/mocks"
	userUsecase "lms-backend/internal/usecase/user"
	appErrors "lms-backend/pkg/errors"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

type fixture struct {
	svc     *userUsecase.Service
	repo    *memory.UserRepository
	mailer  *mocks.MockEmailSender
	media   *mocks.MockMediaStorage
	issuer  *auth.TokenIssuer
	clock   *testClock
	lastURL string
}

var resetLink = regexp.MustCompile(`/reset-password/([0-9a-f]{40})`)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	cfg := &config.Config{
		Server: config.ServerConfig{FrontendURL: "http://localhost:5173/"},
		JWT:    config.JWTConfig{Secret: "test-secret", Expiry: time.Hour},
	}

	f := &fixture{
		repo:   memory.NewUserRepository(),
		mailer: mocks.NewMockEmailSender(ctrl),
		media:  mocks.NewMockMediaStorage(ctrl),
		issuer: auth.NewTokenIssuer(cfg.JWT.Secret),
		clock:  clock,
	}
	f.svc = userUsecase.NewService(
		f.repo,
		auth.NewPasswordHasher(bcrypt.MinCost),
		f.issuer,
		auth.NewResetTokenGenerator(15*time.Minute).WithClock(clock.Now),
		f.mailer,
		f.media,
		events.NoopPublisher{},
		cfg,
	)
	return f
}

func (f *fixture) register(t *testing.T, name, email, password string) *userUsecase.AuthResponse {
	t.Helper()
	resp, err := f.svc.Register(context.Background(), &userUsecase.RegisterRequest{
		Name: name, Email: email, Password: password,
	})
	require.NoError(t, err)
	return resp
}

// requestReset runs forgot-password with a mailer that records the link and
// returns the plaintext token from it.
func (f *fixture) requestReset(t *testing.T, email string) string {
	t.Helper()
	f.mailer.EXPECT().
		Send(gomock.Any(), email, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, body string) error {
			m := resetLink.FindStringSubmatch(body)
			require.Len(t, m, 2)
			f.lastURL = m[0]
			return nil
		})

	_, err := f.svc.ForgotPassword(context.Background(), &userUsecase.ForgotPasswordRequest{Email: email})
	require.NoError(t, err)
	return resetLink.FindStringSubmatch(f.lastURL)[1]
}

func requireAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	appErr, ok := appErrors.As(err)
	require.True(t, ok, "expected *AppError, got %v", err)
	assert.Equal(t, status, appErr.StatusCode())
	assert.Equal(t, message, appErr.Message)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	resp := f.register(t, "  Alice Wonder ", "Alice@X.com", "secret123")
	assert.Equal(t, "alice wonder", resp.User.Name)
	assert.Equal(t, "alice@x.com", resp.User.Email)
	assert.Equal(t, "USER", resp.User.Role)

	raw, err := json.Marshal(resp.User)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "secret123")

	claims, err := f.issuer.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, domainUser.RoleUser, claims.Role)

	stored, err := f.repo.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice wonder", "alice@x.com", "secret123")

	_, err := f.svc.Register(context.Background(), &userUsecase.RegisterRequest{
		Name: "alice again", Email: "ALICE@x.com", Password: "secret123",
	})
	requireAppError(t, err, http.StatusConflict, "Email already exists")
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), &userUsecase.RegisterRequest{Email: "a@x.com", Password: "secret123"})
	requireAppError(t, err, http.StatusBadRequest, "All fields are required")

	_, err = f.svc.Register(context.Background(), &userUsecase.RegisterRequest{Name: "bob", Email: "b@x.com", Password: "secret123"})
	requireAppError(t, err, http.StatusBadRequest, "Name must be at least 5 characters")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	registered := f.register(t, "alice wonder", "alice@x.com", "secret123")

	resp, err := f.svc.Login(context.Background(), &userUsecase.LoginRequest{Email: "ALICE@x.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	_, err = f.svc.Login(context.Background(), &userUsecase.LoginRequest{Email: "alice@x.com", Password: "wrong-pass"})
	requireAppError(t, err, http.StatusUnauthorized, "Email or Password do not match or user does not exist")

	_, err = f.svc.Login(context.Background(), &userUsecase.LoginRequest{Email: "nobody@x.com", Password: "secret123"})
	requireAppError(t, err, http.StatusUnauthorized, "Email or Password do not match or user does not exist")
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ForgotPassword(context.Background(), &userUsecase.ForgotPasswordRequest{Email: "nobody@x.com"})
	requireAppError(t, err, http.StatusBadRequest, "Email not registered")
}

func TestForgotPassword_StoresHashOnly(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice wonder", "alice@x.com", "secret123")

	plaintext := f.requestReset(t, "alice@x.com")
	assert.Equal(t, "/reset-password/"+plaintext, f.lastURL)

	stored, err := f.repo.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	require.True(t, stored.HasPendingReset())
	assert.NotEmpty(t, *stored.ResetTokenHash)
	assert.NotEqual(t, plaintext, *stored.ResetTokenHash)
	assert.True(t, stored.ResetTokenExpiry.After(f.clock.now))
}

func TestForgotPassword_EmailFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice wonder", "alice@x.com", "secret123")

	f.mailer.EXPECT().
		Send(gomock.Any(), "alice@x.com", gomock.Any(), gomock.Any()).
		Return(errors.New("smtp down"))

	_, err := f.svc.ForgotPassword(context.Background(), &userUsecase.ForgotPasswordRequest{Email: "alice@x.com"})
	requireAppError(t, err, http.StatusInternalServerError, "Something went wrong, please try again.")

	stored, err := f.repo.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.False(t, stored.HasPendingReset())
	assert.Nil(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiry)
}

func TestResetPassword_SingleUse(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice wonder", "alice@x.com", "secret123")
	token := f.requestReset(t, "alice@x.com")

	err := f.svc.ResetPassword(context.Background(), token, &userUsecase.ResetPasswordRequest{Password: "newsecret1"})
	require.NoError(t, err)

	stored, err := f.repo.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.False(t, stored.HasPendingReset())

	_, err = f.svc.Login(context.Background(), &userUsecase.LoginRequest{Email: "alice@x.com", Password: "newsecret1"})
	require.NoError(t, err)

	err = f.svc.ResetPassword(context.Background(), token, &userUsecase.ResetPasswordRequest{Password: "another12"})
	requireAppError(t, err, http.StatusBadRequest, "Token is invalid or expired, please try again")
}

func TestResetPassword_ConcurrentConsumeSucceedsOnce(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice wonder", "alice@x.com", "secret123")
	token := f.requestReset(t, "alice@x.com")

	const attempts = 8
	var wg sync.WaitGroup
	var succeeded, rejected atomic.Int32
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.svc.ResetPassword(context.Background(), token, &userUsecase.ResetPasswordRequest{Password: "newsecret1"})
			if err == nil {
				succeeded.Add(1)
				return
			}
			if appErr, ok := appErrors.As(err); ok && appErr.StatusCode() == http.StatusBadRequest {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(attempts-1), rejected.Load())
}

func TestResetPassword_Expired(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice wonder", "alice@x.com", "secret123")
	token := f.requestReset(t, "alice@x.com")

	f.clock.now = f.clock.now.Add(16 * time.Minute)

	err := f.svc.ResetPassword(context.Background(), token, &userUsecase.ResetPasswordRequest{Password: "newsecret1"})
	requireAppError(t, err, http.StatusBadRequest, "Token is invalid or expired, please try again")

	_, err = f.svc.Login(context.Background(), &userUsecase.LoginRequest{Email: "alice@x.com", Password: "secret123"})
	assert.NoError(t, err, "old password must still work")
}

func TestResetPassword_UnknownToken(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ResetPassword(context.Background(), "deadbeef", &userUsecase.ResetPasswordRequest{Password: "newsecret1"})
	requireAppError(t, err, http.StatusBadRequest, "Token is invalid or expired, please try again")
}

func TestResetPassword_LatestRequestWins(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice wonder", "alice@x.com", "secret123")
	first := f.requestReset(t, "alice@x.com")
	second := f.requestReset(t, "alice@x.com")

	err := f.svc.ResetPassword(context.Background(), first, &userUsecase.ResetPasswordRequest{Password: "newsecret1"})
	requireAppError(t, err, http.StatusBadRequest, "Token is invalid or expired, please try again")

	require.NoError(t, f.svc.ResetPassword(context.Background(), second, &userUsecase.ResetPasswordRequest{Password: "newsecret1"}))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	resp := f.register(t, "alice wonder", "alice@x.com", "secret123")

	err := f.svc.ChangePassword(context.Background(), resp.User.ID, &userUsecase.ChangePasswordRequest{
		OldPassword: "not-it", NewPassword: "newsecret1",
	})
	requireAppError(t, err, http.StatusBadRequest, "Invalid old password")

	err = f.svc.ChangePassword(context.Background(), resp.User.ID, &userUsecase.ChangePasswordRequest{
		OldPassword: "secret123", NewPassword: "newsecret1",
	})
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), &userUsecase.LoginRequest{Email: "alice@x.com", Password: "newsecret1"})
	assert.NoError(t, err)
}

func TestChangePassword_DropsPendingReset(t *testing.T) {
	f := newFixture(t)
	resp := f.register(t, "alice wonder", "alice@x.com", "secret123")
	token := f.requestReset(t, "alice@x.com")

	err := f.svc.ChangePassword(context.Background(), resp.User.ID, &userUsecase.ChangePasswordRequest{
		OldPassword: "secret123", NewPassword: "newsecret1",
	})
	require.NoError(t, err)

	stored, err := f.repo.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.False(t, stored.HasPendingReset())

	err = f.svc.ResetPassword(context.Background(), token, &userUsecase.ResetPasswordRequest{Password: "another12"})
	requireAppError(t, err, http.StatusBadRequest, "Token is invalid or expired, please try again")
}

func TestGetProfile_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetProfile(context.Background(), uuid.New())
	requireAppError(t, err, http.StatusNotFound, "User does not exist")
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice wonder", "alice@x.com", "secret123")
	bob := f.register(t, "bob builder", "bob@x.com", "secret123")

	name := "Alice Liddell"
	_, err := f.svc.UpdateProfile(context.Background(), bob.User.ID, domainUser.RoleUser, alice.User.ID,
		&userUsecase.UpdateProfileRequest{Name: &name}, nil)
	requireAppError(t, err, http.StatusForbidden, "You do not have permission to access this route")

	role := "admin"
	_, err = f.svc.UpdateProfile(context.Background(), alice.User.ID, domainUser.RoleUser, alice.User.ID,
		&userUsecase.UpdateProfileRequest{Role: &role}, nil)
	requireAppError(t, err, http.StatusForbidden, "You do not have permission to access this route")

	first := domainUser.Media{PublicID: "lms/one.png", SecureURL: "https://cdn/lms/one.png"}
	second := domainUser.Media{PublicID: "lms/two.png", SecureURL: "https://cdn/lms/two.png"}
	gomock.InOrder(
		f.media.EXPECT().Upload(gomock.Any(), domainUser.MediaImage, gomock.Any()).Return(first, nil),
		f.media.EXPECT().Upload(gomock.Any(), domainUser.MediaImage, gomock.Any()).Return(second, nil),
		f.media.EXPECT().Delete(gomock.Any(), "lms/one.png").Return(nil),
	)

	updated, err := f.svc.UpdateProfile(context.Background(), alice.User.ID, domainUser.RoleUser, alice.User.ID,
		&userUsecase.UpdateProfileRequest{Name: &name}, bytes.NewReader([]byte("img")))
	require.NoError(t, err)
	assert.Equal(t, "alice liddell", updated.Name)
	assert.Equal(t, "https://cdn/lms/one.png", updated.Avatar.SecureURL)

	updated, err = f.svc.UpdateProfile(context.Background(), alice.User.ID, domainUser.RoleUser, alice.User.ID,
		&userUsecase.UpdateProfileRequest{}, bytes.NewReader([]byte("img")))
	require.NoError(t, err)
	assert.Equal(t, "lms/two.png", updated.Avatar.PublicID)

	updated, err = f.svc.UpdateProfile(context.Background(), bob.User.ID, domainUser.RoleAdmin, alice.User.ID,
		&userUsecase.UpdateProfileRequest{Role: &role}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", updated.Role)
}

func TestUpdateProfile_UploadFailure(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice wonder", "alice@x.com", "secret123")

	f.media.EXPECT().Upload(gomock.Any(), domainUser.MediaImage, gomock.Any()).
		Return(domainUser.Media{}, errors.New("unsupported media type"))

	_, err := f.svc.UpdateProfile(context.Background(), alice.User.ID, domainUser.RoleUser, alice.User.ID,
		&userUsecase.UpdateProfileRequest{}, bytes.NewReader([]byte("not an image")))
	requireAppError(t, err, http.StatusBadRequest, "File not uploaded, please try again")
}

func TestRegister_PublishesEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "s", Expiry: time.Hour}}
	svc := userUsecase.NewService(
		memory.NewUserRepository(),
		auth.NewPasswordHasher(bcrypt.MinCost),
		auth.NewTokenIssuer(cfg.JWT.Secret),
		auth.NewResetTokenGenerator(15*time.Minute),
		mocks.NewMockEmailSender(ctrl),
		mocks.NewMockMediaStorage(ctrl),
		publisher,
		cfg,
	)

	publisher.EXPECT().Publish(gomock.Any(), events.UserRegistered, gomock.Any()).Times(1)

	_, err := svc.Register(context.Background(), &userUsecase.RegisterRequest{
		Name: "alice wonder", Email: "alice@x.com", Password: "secret123",
	})
	require.NoError(t, err)
}
