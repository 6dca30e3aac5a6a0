package helpers

import (
	"github.com/joshua-takyi/entcal/internal/models"
)

// EnhancedClaims is the verified token plus the caller's users row.
type EnhancedClaims struct {
	*CustomClaims
	Role             models.Role `json:"role"`
	UserID           string      `json:"id"`
	Email            string      `json:"email,omitempty"`
	FullName         string      `json:"full_name,omitempty"`
	SubscriptionTier string      `json:"subscription_tier,omitempty"`
	AccessToken      string      `json:"-"`
}

func (ec *EnhancedClaims) IsAdmin() bool {
	return ec != nil && ec.Role == models.RoleAdmin
}

// IsOrganizer is true for organizers and admins, who may both submit events.
func (ec *EnhancedClaims) IsOrganizer() bool {
	return ec != nil && (ec.Role == models.RoleOrganizer || ec.Role == models.RoleAdmin)
}

func (ec *EnhancedClaims) HasRole(role models.Role) bool {
	return ec != nil && ec.Role == role
}

func (ec *EnhancedClaims) IsOwner(userID string) bool {
	return ec != nil && userID != "" && ec.UserID == userID
}

func (ec *EnhancedClaims) GetSafeRole() models.Role {
	if ec == nil || ec.Role == "" {
		return models.RolePublic
	}
	return ec.Role
}
