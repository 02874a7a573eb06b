package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"lms-backend/internal/auth"
	"lms-backend/internal/config"
	domainUser "lms-backend/internal/domain/user"
	"lms-backend/internal/events"
	"lms-backend/internal/logger"
	appErrors "lms-backend/pkg/errors"
	"lms-backend/pkg/utils"
)

const (
	msgEmailExists        = "Email already exists"
	msgRegistrationFailed = "User registration failed, please try again later"
	msgEmailNotRegistered = "Email not registered"
	msgSomethingWentWrong = "Something went wrong, please try again."
	msgUserNotFound       = "User does not exist"
	msgInvalidOldPassword = "Invalid old password"
	msgFileNotUploaded    = "File not uploaded, please try again"
)

// Service implements user use cases
type Service struct {
	userRepo  domainUser.Repository
	hasher    *auth.PasswordHasher
	issuer    *auth.TokenIssuer
	resets    *auth.ResetTokenGenerator
	mailer    EmailSender
	media     MediaStorage
	publisher events.Publisher
	config    *config.Config
}

// NewService creates a new user service
func NewService(
	userRepo domainUser.Repository,
	hasher *auth.PasswordHasher,
	issuer *auth.TokenIssuer,
	resets *auth.ResetTokenGenerator,
	mailer EmailSender,
	media MediaStorage,
	publisher events.Publisher,
	cfg *config.Config,
) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		userRepo:  userRepo,
		hasher:    hasher,
		issuer:    issuer,
		resets:    resets,
		mailer:    mailer,
		media:     media,
		publisher: publisher,
		config:    cfg,
	}
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Name = utils.SanitizeName(req.Name)
	req.Email = utils.SanitizeEmail(req.Email)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(utils.ValidationMessage(err, "Invalid input"))
	}

	// Check if user already exists
	existingUser, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domainUser.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		logger.Warn("Registration attempt with existing email",
			zap.String("email", req.Email),
			zap.String("event", "registration_failed_duplicate_email"),
		)
		return nil, appErrors.Conflict(msgEmailExists)
	}

	user := &domainUser.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  domainUser.RoleUser,
	}
	if err := s.hashAndSetPassword(user, req.Password); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			return nil, appErrors.Conflict(msgEmailExists)
		}
		return nil, appErrors.Upstream(msgRegistrationFailed, err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	logger.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", user.Role.String()),
		zap.String("event", "user_registered"),
	)
	s.publisher.Publish(ctx, events.UserRegistered, map[string]string{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})

	return &AuthResponse{User: ToUserResponse(user), Token: token}, nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = utils.SanitizeEmail(req.Email)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(utils.ValidationMessage(err, "Invalid input"))
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Warn("Login attempt with non-existent email",
				zap.String("email", req.Email),
				zap.String("event", "user_not_found"),
			)
			return nil, appErrors.Unauthenticated(appErrors.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		logger.Warn("Login attempt with invalid password",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.Unauthenticated(appErrors.ErrInvalidCredentials)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()),
		zap.String("event", "login_success"),
	)

	return &AuthResponse{User: ToUserResponse(user), Token: token}, nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// ForgotPassword stores a pending reset for the account and mails the link. The
// pending reset is cleared again when the mail cannot be delivered. It returns
// the address the link was sent to.
func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) (string, error) {
	req.Email = utils.SanitizeEmail(req.Email)

	if err := utils.ValidateStruct(req); err != nil {
		if strings.TrimSpace(req.Email) == "" {
			return "", appErrors.Validation("Email is required")
		}
		return "", appErrors.Validation(utils.ValidationMessage(err, "Invalid input"))
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Info("Password reset requested for non-existent email",
				zap.String("email", req.Email),
				zap.String("event", "password_reset_requested_non_existent_email"),
			)
			return "", appErrors.Validation(msgEmailNotRegistered)
		}
		return "", fmt.Errorf("failed to retrieve user: %w", err)
	}

	resetToken, err := s.resets.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	user.SetPasswordReset(resetToken.Hash, resetToken.ExpiresAt)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	logger.Info("Password reset token generated",
		zap.String("user_id", user.ID.String()),
		zap.Time("expires_at", resetToken.ExpiresAt),
		zap.String("event", "password_reset_token_generated"),
	)

	resetURL := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(s.config.Server.FrontendURL, "/"), resetToken.Plaintext)
	if err := s.mailer.Send(ctx, user.Email, resetPasswordSubject, resetPasswordBody(resetURL)); err != nil {
		s.rollbackReset(ctx, user)
		return "", appErrors.Upstream(msgSomethingWentWrong, err)
	}

	s.publisher.Publish(ctx, events.PasswordResetRequested, map[string]string{
		"user_id": user.ID.String(),
	})

	return user.Email, nil
}

func (s *Service) rollbackReset(ctx context.Context, user *domainUser.User) {
	user.ClearPasswordReset()
	if err := s.userRepo.Save(ctx, user); err != nil {
		logger.Error("Failed to roll back password reset",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "password_reset_rollback_failed"),
			zap.Error(err),
		)
		return
	}

	logger.Warn("Password reset rolled back after email failure",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "password_reset_rolled_back"),
	)
}

// ResetPassword consumes a reset token. The store swaps in the new password and
// clears the pending reset in one conditional write, so a token works at most once
// even under concurrent requests.
func (s *Service) ResetPassword(ctx context.Context, resetToken string, req *ResetPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.Validation(utils.ValidationMessage(err, "Invalid input"))
	}

	invalid := appErrors.Validation(appErrors.ErrInvalidResetToken.Error())
	if resetToken == "" {
		return invalid
	}

	passwordHash, err := s.hashPassword(req.Password)
	if err != nil {
		return err
	}

	user, err := s.userRepo.ConsumeResetToken(ctx, s.resets.Hash(resetToken), s.resets.Now(), passwordHash)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Warn("Password reset attempt with invalid token",
				zap.String("event", "password_reset_failed_invalid_token"),
			)
			return invalid
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	logger.Info("Password reset successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "password_reset_success"),
	)
	s.publisher.Publish(ctx, events.PasswordResetCompleted, map[string]string{
		"user_id": user.ID.String(),
	})

	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.Validation(utils.ValidationMessage(err, "Invalid input"))
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(req.OldPassword, user.PasswordHash) {
		logger.Warn("Password change attempt with invalid old password",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "password_change_failed_invalid_old_password"),
		)
		return appErrors.Validation(msgInvalidOldPassword)
	}

	user.ClearPasswordReset()
	if err := s.hashAndSetPassword(user, req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	logger.Info("Password changed successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "password_change_success"),
	)

	return nil
}

// UpdateProfile changes name, role or avatar of targetID on behalf of the
// caller. Callers may update themselves; admins may update anyone.
func (s *Service) UpdateProfile(
	ctx context.Context,
	actorID uuid.UUID,
	actorRole domainUser.Role,
	targetID uuid.UUID,
	req *UpdateProfileRequest,
	avatar io.ReadSeeker,
) (*UserResponse, error) {
	if actorID != targetID && actorRole != domainUser.RoleAdmin {
		return nil, appErrors.Forbidden(appErrors.ErrForbidden.Error())
	}
	if req.Role != nil && actorRole != domainUser.RoleAdmin {
		return nil, appErrors.Forbidden(appErrors.ErrForbidden.Error())
	}

	if req.Name != nil {
		name := utils.SanitizeName(*req.Name)
		req.Name = &name
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(utils.ValidationMessage(err, "Invalid input"))
	}

	user, err := s.getUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		role, err := domainUser.ParseRole(*req.Role)
		if err != nil {
			return nil, appErrors.Validation("Role must be USER or ADMIN")
		}
		user.Role = role
	}

	var previous domainUser.Media
	if avatar != nil {
		uploaded, err := s.media.Upload(ctx, domainUser.MediaImage, avatar)
		if err != nil {
			logger.Warn("Avatar upload failed",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
			return nil, appErrors.Validation(msgFileNotUploaded)
		}
		previous = user.Avatar
		user.Avatar = uploaded
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	if !previous.IsZero() {
		if err := s.media.Delete(ctx, previous.PublicID); err != nil {
			logger.Warn("Failed to delete previous avatar",
				zap.String("user_id", user.ID.String()),
				zap.String("public_id", previous.PublicID),
				zap.Error(err),
			)
		}
	}

	logger.Info("User details updated",
		zap.String("user_id", user.ID.String()),
		zap.String("actor_id", actorID.String()),
		zap.String("event", "user_updated"),
	)

	return ToUserResponse(user), nil
}

func (s *Service) getUser(ctx context.Context, userID uuid.UUID) (*domainUser.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.NotFound(msgUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// hashPassword is the only place a plaintext password turns into a stored hash.
func (s *Service) hashPassword(plaintext string) (string, error) {
	hashed, err := s.hasher.Hash(plaintext)
	if err != nil {
		return "", appErrors.Validation("Password must not exceed 72 characters")
	}
	return hashed, nil
}

func (s *Service) hashAndSetPassword(user *domainUser.User, plaintext string) error {
	hashed, err := s.hashPassword(plaintext)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return nil
}

func (s *Service) issueToken(user *domainUser.User) (string, error) {
	token, err := s.issuer.Issue(auth.ClaimsFor(user), s.config.JWT.Expiry)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}
