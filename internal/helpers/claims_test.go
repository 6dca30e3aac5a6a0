package helpers

import (
	"testing"

	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestEnhancedClaims_Roles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		claims        *EnhancedClaims
		wantAdmin     bool
		wantOrganizer bool
		wantSafeRole  models.Role
	}{
		{name: "nil", claims: nil, wantSafeRole: models.RolePublic},
		{name: "empty role", claims: &EnhancedClaims{}, wantSafeRole: models.RolePublic},
		{name: "public", claims: &EnhancedClaims{Role: models.RolePublic}, wantSafeRole: models.RolePublic},
		{name: "organizer", claims: &EnhancedClaims{Role: models.RoleOrganizer}, wantOrganizer: true, wantSafeRole: models.RoleOrganizer},
		{name: "admin", claims: &EnhancedClaims{Role: models.RoleAdmin}, wantAdmin: true, wantOrganizer: true, wantSafeRole: models.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantAdmin, tt.claims.IsAdmin())
			assert.Equal(t, tt.wantOrganizer, tt.claims.IsOrganizer())
			assert.Equal(t, tt.wantSafeRole, tt.claims.GetSafeRole())
		})
	}
}

func TestEnhancedClaims_IsOwner(t *testing.T) {
	t.Parallel()

	c := &EnhancedClaims{UserID: "u1", Role: models.RoleOrganizer}
	assert.True(t, c.IsOwner("u1"))
	assert.False(t, c.IsOwner("u2"))
	assert.False(t, c.IsOwner(""))
	assert.True(t, c.HasRole(models.RoleOrganizer))
	assert.False(t, c.HasRole(models.RoleAdmin))
}

func TestResponses(t *testing.T) {
	t.Parallel()

	ok := SuccessResponse([]string{"a"}, "done")
	assert.True(t, ok.Success)
	assert.Equal(t, "done", ok.Message)

	bad := ErrorResponse("nope")
	assert.False(t, bad.Success)
	assert.Equal(t, "nope", bad.Error)

	page := PaginatedResponse([]int{1, 2}, 1, 2, 10)
	assert.Equal(t, 10, page.Total)
}
