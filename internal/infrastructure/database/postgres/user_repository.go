package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"lms-backend/internal/domain/user"
	"lms-backend/internal/infrastructure/database/postgres/models"
)

const uniqueViolation = "23505"

// UserRepository implements the user.Repository interface on gorm
type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	now := time.Now()
	u.ID = uuid.New()
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now

	dbModel := toUserModel(u)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if isDuplicateKey(err) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var dbModel models.UserModel
	err := r.db.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	var dbModel models.UserModel
	err := r.db.DB.WithContext(ctx).First(&dbModel, "id = ?", userID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

// ConsumeResetToken is a single UPDATE ... RETURNING guarded by the reset
// columns, so concurrent consumers of one token cannot both match.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*user.User, error) {
	var dbModel models.UserModel
	result := r.db.DB.WithContext(ctx).Model(&dbModel).
		Clauses(clause.Returning{}).
		Where("reset_token_hash = ? AND reset_token_expiry > ?", tokenHash, now).
		Updates(map[string]interface{}{
			"password_hash":      passwordHash,
			"reset_token_hash":   nil,
			"reset_token_expiry": nil,
			"updated_at":         time.Now(),
		})

	if result.Error != nil {
		return nil, fmt.Errorf("failed to consume reset token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, user.ErrUserNotFound
	}

	return toUserEntity(&dbModel), nil
}

// Save writes every mutable column, including nil reset fields.
func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	u.Email = strings.ToLower(u.Email)
	u.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"name":                u.Name,
			"email":               u.Email,
			"password_hash":       u.PasswordHash,
			"avatar_public_id":    u.Avatar.PublicID,
			"avatar_secure_url":   u.Avatar.SecureURL,
			"role":                u.Role.String(),
			"subscription_id":     u.Subscription.ID,
			"subscription_status": u.Subscription.Status,
			"reset_token_hash":    u.ResetTokenHash,
			"reset_token_expiry":  u.ResetTokenExpiry,
			"updated_at":          u.UpdatedAt,
		})

	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) ClearExpiredResets(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).Model(&models.UserModel{}).
		Where("reset_token_expiry IS NOT NULL AND reset_token_expiry <= ?", now).
		Updates(map[string]interface{}{
			"reset_token_hash":   nil,
			"reset_token_expiry": nil,
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear expired resets: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}

func toUserModel(u *user.User) *models.UserModel {
	return &models.UserModel{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		AvatarPublicID:     u.Avatar.PublicID,
		AvatarSecureURL:    u.Avatar.SecureURL,
		Role:               u.Role.String(),
		SubscriptionID:     u.Subscription.ID,
		SubscriptionStatus: u.Subscription.Status,
		ResetTokenHash:     u.ResetTokenHash,
		ResetTokenExpiry:   u.ResetTokenExpiry,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func toUserEntity(m *models.UserModel) *user.User {
	return &user.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Avatar: user.Media{
			PublicID:  m.AvatarPublicID,
			SecureURL: m.AvatarSecureURL,
		},
		Role: user.Role(m.Role),
		Subscription: user.Subscription{
			ID:     m.SubscriptionID,
			Status: m.SubscriptionStatus,
		},
		ResetTokenHash:   m.ResetTokenHash,
		ResetTokenExpiry: m.ResetTokenExpiry,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
