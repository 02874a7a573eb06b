package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"lms-backend/internal/domain/user"
)

// UserRepository keeps users in process memory. It is used when DB_DRIVER=memory
// and by tests.
type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]*user.User)}
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(u.Email)
	for _, existing := range r.users {
		if existing.Email == email {
			return user.ErrUserAlreadyExists
		}
	}

	now := time.Now()
	u.ID = uuid.New()
	u.Email = email
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = cloneUser(u)

	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *UserRepository) GetByID(_ context.Context, userID uuid.UUID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) ConsumeResetToken(_ context.Context, tokenHash string, now time.Time, passwordHash string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash && u.ResetValidAt(now) {
			u.PasswordHash = passwordHash
			u.ClearPasswordReset()
			u.UpdatedAt = time.Now()
			return cloneUser(u), nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *UserRepository) Save(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	for id, existing := range r.users {
		if id != u.ID && existing.Email == u.Email {
			return user.ErrUserAlreadyExists
		}
	}

	u.UpdatedAt = time.Now()
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepository) ClearExpiredResets(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared int64
	for _, u := range r.users {
		if u.HasPendingReset() && !u.ResetValidAt(now) {
			u.ClearPasswordReset()
			cleared++
		}
	}
	return cleared, nil
}

// Ping satisfies the health check.
func (r *UserRepository) Ping(context.Context) error {
	return nil
}

func cloneUser(u *user.User) *user.User {
	c := *u
	if u.ResetTokenHash != nil {
		h := *u.ResetTokenHash
		c.ResetTokenHash = &h
	}
	if u.ResetTokenExpiry != nil {
		e := *u.ResetTokenExpiry
		c.ResetTokenExpiry = &e
	}
	return &c
}
