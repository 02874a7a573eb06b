package user

import (
	"time"

	"github.com/google/uuid"
	domainUser "lms-backend/internal/domain/user"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=5,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// UpdateProfileRequest carries the optional fields of a profile update. Only an
// admin may change Role.
type UpdateProfileRequest struct {
	Name *string `json:"name" form:"name" validate:"omitempty,min=5,max=50"`
	Role *string `json:"role" form:"role" validate:"omitempty,user_role"`
}

type MediaResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

type SubscriptionResponse struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
}

type UserResponse struct {
	ID           uuid.UUID            `json:"id"`
	Name         string               `json:"name"`
	Email        string               `json:"email"`
	Avatar       MediaResponse        `json:"avatar"`
	Role         string               `json:"role"`
	Subscription SubscriptionResponse `json:"subscription"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// AuthResponse is returned by register and login. Token goes into the session
// cookie, never into the body.
type AuthResponse struct {
	User  *UserResponse
	Token string
}

func ToUserResponse(u *domainUser.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Avatar: MediaResponse{
			PublicID:  u.Avatar.PublicID,
			SecureURL: u.Avatar.SecureURL,
		},
		Role: u.Role.String(),
		Subscription: SubscriptionResponse{
			ID:     u.Subscription.ID,
			Status: u.Subscription.Status,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
