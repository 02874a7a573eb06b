package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"lms-backend/internal/domain/user"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// SubscriptionClaim is the subscription snapshot embedded in a session token.
type SubscriptionClaim struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
}

// Claims is the payload of a session token.
type Claims struct {
	UserID       uuid.UUID         `json:"id"`
	Role         user.Role         `json:"role"`
	Subscription SubscriptionClaim `json:"subscription"`
	jwt.RegisteredClaims
}

// ClaimsFor snapshots the fields of u that go into a session token.
func ClaimsFor(u *user.User) Claims {
	return Claims{
		UserID: u.ID,
		Role:   u.Role,
		Subscription: SubscriptionClaim{
			ID:     u.Subscription.ID,
			Status: u.Subscription.Status,
		},
	}
}

// TokenIssuer issues and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	i.now = now
	return i
}

func (i *TokenIssuer) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := i.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify returns ErrTokenExpired for a correctly signed token past its expiry and
// ErrTokenInvalid for anything else that fails.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
