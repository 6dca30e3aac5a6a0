package models

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/postgrest-go"
)

const userSelect = "id,email,full_name,role,subscription_tier,created_at,updated_at"

type UserRepo interface {
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	GetUser(ctx context.Context, id string, accessToken string) (*User, error)
	ListUsers(ctx context.Context, accessToken string) ([]User, error)
	UpdateUser(ctx context.Context, id string, fields map[string]interface{}, accessToken string) (*User, error)
}

func decodeUsers(raw []byte) ([]User, error) {
	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user rows: %w", err)
	}
	return users, nil
}

func (su *SupabaseRepo) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	resp, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return resp, nil
}

func (su *SupabaseRepo) GetUser(ctx context.Context, id string, accessToken string) (*User, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	raw, status, err := client.From(UsersTable).
		Select(userSelect, "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%w", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	users, err := decodeUsers(raw)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrProfileNotFound
	}
	if len(users) > 1 {
		return nil, fmt.Errorf("multiple users found for ID %s", id)
	}
	return &users[0], nil
}

// ListUsers returns every row the token may read, newest first.
func (su *SupabaseRepo) ListUsers(ctx context.Context, accessToken string) ([]User, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	raw, _, err := client.From(UsersTable).
		Select(userSelect, "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return decodeUsers(raw)
}

func (su *SupabaseRepo) UpdateUser(ctx context.Context, id string, fields map[string]interface{}, accessToken string) (*User, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	raw, count, err := client.From(UsersTable).
		Update(fields, "representation", "exact").
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if count == 0 {
		return nil, ErrProfileNotFound
	}

	users, err := decodeUsers(raw)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("no user data returned after update")
	}
	return &users[0], nil
}
