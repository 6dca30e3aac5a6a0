package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/entcal/internal/helpers"
	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/supabase-community/gotrue-go/types"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	ClaimsKey          = "user"

	refreshCookieMaxAge = 3600 * 24 * 30 // 30 days
)

var errNoToken = errors.New("no access token")

// ProfileLoader is the part of the user service the auth middleware needs.
type ProfileLoader interface {
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	GetProfile(ctx context.Context, userID, accessToken string) (*models.User, error)
}

// Auth resolves the caller from the access_token cookie or a bearer header,
// refreshing an expired token through the refresh_token cookie.
type Auth struct {
	validator    helpers.TokenValidator
	profiles     ProfileLoader
	logger       *slog.Logger
	isProduction bool
}

func NewAuth(validator helpers.TokenValidator, profiles ProfileLoader, logger *slog.Logger, isProduction bool) *Auth {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auth{
		validator:    validator,
		profiles:     profiles,
		logger:       logger,
		isProduction: isProduction,
	}
}

// RequireAuth rejects anonymous callers with 401.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.authenticate(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized access",
				"error":   err.Error(),
			})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when the caller is signed in and otherwise
// lets the request through as public.
func (a *Auth) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.authenticate(c)
		if err == nil {
			c.Set(ClaimsKey, claims)
		} else if !errors.Is(err, errNoToken) {
			a.logger.Debug("Ignoring invalid credentials on public route", "error", err)
		}
		c.Next()
	}
}

func (a *Auth) authenticate(c *gin.Context) (*helpers.EnhancedClaims, error) {
	token := accessToken(c)
	refresh, _ := c.Cookie(RefreshTokenCookie)
	if token == "" && refresh == "" {
		return nil, errNoToken
	}

	var (
		claims *helpers.CustomClaims
		err    error
	)
	if token != "" {
		claims, err = a.validator.Validate(token)
	} else {
		err = errNoToken
	}
	if err != nil {
		if refresh == "" {
			return nil, err
		}
		token, err = a.refresh(c, refresh)
		if err != nil {
			return nil, err
		}
		claims, err = a.validator.Validate(token)
		if err != nil {
			return nil, errors.New("refreshed token validation failed")
		}
	}

	enhanced := &helpers.EnhancedClaims{
		CustomClaims: claims,
		Role:         models.RolePublic,
		UserID:       claims.Subject,
		Email:        claims.Email,
		AccessToken:  token,
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		a.logger.Error("Invalid user ID in token", "user_id", claims.Subject, "error", err)
		return enhanced, nil
	}

	user, err := a.profiles.GetProfile(c.Request.Context(), claims.Subject, token)
	if err != nil {
		a.logger.Info("Profile not found, using default role", "user_id", claims.Subject, "error", err)
		return enhanced, nil
	}
	enhanced.Role = user.EffectiveRole()
	enhanced.SubscriptionTier = user.SubscriptionTier
	if user.Email != "" {
		enhanced.Email = user.Email
	}
	if user.FullName != nil {
		enhanced.FullName = *user.FullName
	}
	return enhanced, nil
}

func (a *Auth) refresh(c *gin.Context, refreshToken string) (string, error) {
	resp, err := a.profiles.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		a.logger.Error("Token refresh failed", "error", err)
		return "", errors.New("token expired and refresh failed")
	}
	if resp == nil || resp.AccessToken == "" {
		return "", errors.New("invalid refresh response")
	}

	a.logger.Info("Token refreshed successfully",
		"user_id", resp.User.ID,
		"expires_in", resp.ExpiresIn,
	)
	c.SetCookie(AccessTokenCookie, resp.AccessToken, resp.ExpiresIn, "/", "", a.isProduction, true)
	c.SetCookie(RefreshTokenCookie, resp.RefreshToken, refreshCookieMaxAge, "/", "", a.isProduction, true)
	return resp.AccessToken, nil
}

func accessToken(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// Claims returns the caller set by RequireAuth or OptionalAuth.
func Claims(c *gin.Context) (*helpers.EnhancedClaims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*helpers.EnhancedClaims)
	return claims, ok && claims != nil
}
