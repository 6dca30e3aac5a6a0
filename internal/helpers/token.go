package helpers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid or expired token")

type TokenValidator interface {
	Validate(tokenStr string) (*CustomClaims, error)
}

// JWKSValidator verifies Supabase access tokens against the project's
// published signing keys, refreshed in the background.
type JWKSValidator struct {
	jwks *keyfunc.JWKS
}

func JWKSURL(supabaseURL string) string {
	return strings.TrimRight(supabaseURL, "/") + "/auth/v1/.well-known/jwks.json"
}

func NewJWKSValidator(supabaseURL string, logger *slog.Logger) (*JWKSValidator, error) {
	if supabaseURL == "" {
		return nil, errors.New("SUPABASE_URL not set")
	}
	jwks, err := keyfunc.Get(JWKSURL(supabaseURL), keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("JWKS refresh failed", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}
	return &JWKSValidator{jwks: jwks}, nil
}

// NewKeyfuncValidator wraps an already built key set.
func NewKeyfuncValidator(jwks *keyfunc.JWKS) *JWKSValidator {
	return &JWKSValidator{jwks: jwks}
}

func (v *JWKSValidator) Validate(tokenStr string) (*CustomClaims, error) {
	return parseClaims(tokenStr, v.jwks.Keyfunc)
}

func (v *JWKSValidator) Close() {
	v.jwks.EndBackground()
}

func parseClaims(tokenStr string, kf jwt.Keyfunc) (*CustomClaims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, kf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
