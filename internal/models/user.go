package models

import (
	"time"
)

type Role string

const (
	RolePublic    Role = "public"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePublic, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

const (
	TierFree    = "free"
	TierPremium = "premium"
)

// User is a row of the users table. Auth identities live in Supabase Auth;
// this row only carries what the calendar needs.
type User struct {
	ID               string    `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	FullName         *string   `db:"full_name" json:"full_name"`
	Role             Role      `db:"role" json:"role"`
	SubscriptionTier string    `db:"subscription_tier" json:"subscription_tier"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// EffectiveRole maps an empty role to public.
func (u *User) EffectiveRole() Role {
	if u == nil || u.Role == "" {
		return RolePublic
	}
	return u.Role
}

type ProfileUpdate struct {
	FullName string `json:"full_name" validate:"required,min=1,max=120"`
}

type UserAdminUpdate struct {
	Role             *string `json:"role,omitempty" validate:"omitempty,oneof=public organizer admin"`
	SubscriptionTier *string `json:"subscription_tier,omitempty" validate:"omitempty,oneof=free premium"`
}

func (u UserAdminUpdate) IsEmpty() bool {
	return u.Role == nil && u.SubscriptionTier == nil
}

func (u UserAdminUpdate) Record() map[string]interface{} {
	rec := map[string]interface{}{}
	if u.Role != nil {
		rec["role"] = *u.Role
	}
	if u.SubscriptionTier != nil {
		rec["subscription_tier"] = *u.SubscriptionTier
	}
	return rec
}
