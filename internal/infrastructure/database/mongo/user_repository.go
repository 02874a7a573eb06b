package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"lms-backend/internal/domain/user"
)

type mediaDocument struct {
	PublicID  string `bson:"public_id"`
	SecureURL string `bson:"secure_url"`
}

type subscriptionDocument struct {
	ID     string `bson:"id"`
	Status string `bson:"status"`
}

type userDocument struct {
	ID               string               `bson:"_id"`
	Name             string               `bson:"name"`
	Email            string               `bson:"email"`
	PasswordHash     string               `bson:"password_hash"`
	Avatar           mediaDocument        `bson:"avatar"`
	Role             string               `bson:"role"`
	Subscription     subscriptionDocument `bson:"subscription"`
	ResetTokenHash   *string              `bson:"reset_token_hash"`
	ResetTokenExpiry *time.Time           `bson:"reset_token_expiry"`
	CreatedAt        time.Time            `bson:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at"`
}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(s *Store) *UserRepository {
	return &UserRepository{coll: s.db.Collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	now := time.Now()
	u.ID = uuid.New()
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, toUserDocument(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	return r.findOne(ctx, bson.M{"_id": userID.String()})
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*user.User, error) {
	filter := bson.M{
		"reset_token_hash":   tokenHash,
		"reset_token_expiry": bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{
		"password_hash":      passwordHash,
		"reset_token_hash":   nil,
		"reset_token_expiry": nil,
		"updated_at":         time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}
	return toUserEntity(&doc)
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	u.Email = strings.ToLower(u.Email)
	u.UpdatedAt = time.Now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.ID.String()}, toUserDocument(u))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ClearExpiredResets(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"reset_token_expiry": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"reset_token_hash": nil, "reset_token_expiry": nil}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired resets: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*user.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toUserEntity(&doc)
}

func toUserDocument(u *user.User) *userDocument {
	return &userDocument{
		ID:               u.ID.String(),
		Name:             u.Name,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Avatar:           mediaDocument{PublicID: u.Avatar.PublicID, SecureURL: u.Avatar.SecureURL},
		Role:             u.Role.String(),
		Subscription:     subscriptionDocument{ID: u.Subscription.ID, Status: u.Subscription.Status},
		ResetTokenHash:   u.ResetTokenHash,
		ResetTokenExpiry: u.ResetTokenExpiry,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func toUserEntity(d *userDocument) (*user.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", d.ID, err)
	}
	return &user.User{
		ID:               id,
		Name:             d.Name,
		Email:            d.Email,
		PasswordHash:     d.PasswordHash,
		Avatar:           user.Media{PublicID: d.Avatar.PublicID, SecureURL: d.Avatar.SecureURL},
		Role:             user.Role(d.Role),
		Subscription:     user.Subscription{ID: d.Subscription.ID, Status: d.Subscription.Status},
		ResetTokenHash:   d.ResetTokenHash,
		ResetTokenExpiry: d.ResetTokenExpiry,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}, nil
}
