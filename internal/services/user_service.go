package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/supabase-community/gotrue-go/types"
)

type UserService struct {
	userRepo models.UserRepo
}

func NewUserService(userRepo models.UserRepo) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

func (us *UserService) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}
	resp, err := us.userRepo.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return resp, nil
}

func (us *UserService) GetProfile(ctx context.Context, userID, accessToken string) (*models.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrInvalidInput)
	}
	return us.userRepo.GetUser(ctx, userID, accessToken)
}

func (us *UserService) UpdateProfile(ctx context.Context, viewer Viewer, update models.ProfileUpdate) (*models.User, error) {
	update.FullName = strings.TrimSpace(update.FullName)
	if err := models.Validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return us.userRepo.UpdateUser(ctx, viewer.UserID, map[string]interface{}{
		"full_name":  update.FullName,
		"updated_at": time.Now(),
	}, viewer.AccessToken)
}

// BecomeOrganizer promotes a public user. Organizers and admins are
// returned unchanged.
func (us *UserService) BecomeOrganizer(ctx context.Context, viewer Viewer) (*models.User, error) {
	user, err := us.userRepo.GetUser(ctx, viewer.UserID, viewer.AccessToken)
	if err != nil {
		return nil, err
	}
	if user.EffectiveRole() != models.RolePublic {
		return user, nil
	}
	return us.userRepo.UpdateUser(ctx, viewer.UserID, map[string]interface{}{
		"role":       models.RoleOrganizer,
		"updated_at": time.Now(),
	}, viewer.AccessToken)
}

func (us *UserService) ListUsers(ctx context.Context, viewer Viewer) ([]models.User, error) {
	if !viewer.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	users, err := us.userRepo.ListUsers(ctx, viewer.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (us *UserService) UpdateUser(ctx context.Context, viewer Viewer, id string, update models.UserAdminUpdate) (*models.User, error) {
	if !viewer.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	if update.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", models.ErrInvalidInput)
	}
	if err := models.Validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	fields := update.Record()
	fields["updated_at"] = time.Now()
	return us.userRepo.UpdateUser(ctx, id, fields, viewer.AccessToken)
}
