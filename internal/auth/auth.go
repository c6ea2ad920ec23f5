package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenGenerator issues and checks access tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID, role string) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims identifies the caller. Role is informational; routes are not gated by it.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret []byte
	AccessTokenTTL    time.Duration
	Issuer            string
}

// LoginResponse carries the token and where the client should navigate next.
type LoginResponse struct {
	AccessToken         string    `json:"access_token"`
	TokenType           string    `json:"token_type"`
	ExpiresAt           time.Time `json:"expires_at"`
	UserID              string    `json:"user_id"`
	Role                string    `json:"role"`
	Redirect            string    `json:"redirect"`
	ForcePasswordChange bool      `json:"force_password_change"`
}
