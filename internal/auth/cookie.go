package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"lms-backend/internal/config"
)

const (
	DefaultCookieName = "token"
	SessionCookieTTL  = 7 * 24 * time.Hour
)

// CookiePolicy decides how the session token travels between client and server.
type CookiePolicy struct {
	Name     string
	Path     string
	MaxAge   time.Duration
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

func NewCookiePolicy(cfg *config.Config) *CookiePolicy {
	name := cfg.Auth.CookieName
	if name == "" {
		name = DefaultCookieName
	}

	return &CookiePolicy{
		Name:     name,
		Path:     "/",
		MaxAge:   SessionCookieTTL,
		Secure:   cfg.IsProduction(),
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Attach sets the session cookie carrying token.
func (p *CookiePolicy) Attach(c *gin.Context, token string) {
	c.SetSameSite(p.SameSite)
	c.SetCookie(p.Name, token, int(p.MaxAge.Seconds()), p.Path, "", p.Secure, p.HTTPOnly)
}

// Clear overwrites the session cookie with an empty, already expired one.
func (p *CookiePolicy) Clear(c *gin.Context) {
	c.SetSameSite(p.SameSite)
	// gin turns a negative max age into Max-Age=0
	c.SetCookie(p.Name, "", -1, p.Path, "", p.Secure, p.HTTPOnly)
}

// Token reads the session token from the request; empty when absent.
func (p *CookiePolicy) Token(c *gin.Context) string {
	token, err := c.Cookie(p.Name)
	if err != nil {
		return ""
	}
	return token
}
