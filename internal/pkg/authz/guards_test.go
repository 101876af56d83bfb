package authz

import (
	"testing"

	"compliancehub-service/internal/domain/identity"

	"github.com/stretchr/testify/assert"
)

func userWith(roles ...string) *identity.User {
	return &identity.User{ID: "u1", Roles: roles}
}

func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		name string
		user *identity.User
		ask  []string
		want bool
	}{
		{"nil user", nil, []string{RoleAdmin}, false},
		{"empty roles", userWith(), []string{RoleAdmin}, false},
		{"empty ask", userWith(RoleAdmin), nil, false},
		{"direct match", userWith(RoleAdmin), []string{RoleAdmin}, true},
		{"match in set", userWith(RoleUser, RoleTestReviewer), []string{RoleAdmin, RoleTestReviewer}, true},
		{"no overlap", userWith(RoleUser), []string{RoleAdmin, RoleSystemAdmin}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAnyRole(tt.user, tt.ask...))
		})
	}
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin(userWith(RoleAdmin)))
	assert.True(t, IsAdmin(userWith(RoleSystemAdmin)))
	assert.False(t, IsAdmin(userWith(RoleUser)))
	assert.False(t, IsAdmin(nil))
}

func TestIsComplianceOfficer(t *testing.T) {
	assert.True(t, IsComplianceOfficer(userWith(RoleComplianceOfficer)))
	assert.True(t, IsComplianceOfficer(userWith(RoleQualityManager)))
	assert.False(t, IsComplianceOfficer(userWith(RoleAdmin)))
}

func TestCanManageProject(t *testing.T) {
	assert.True(t, CanManageProject(userWith(RoleAdmin)))
	assert.True(t, CanManageProject(userWith(RoleProjectManager)))
	assert.True(t, CanManageProject(userWith(RoleTechnicalLead)))
	assert.False(t, CanManageProject(userWith(RoleTestReviewer)))
	assert.False(t, CanManageProject(userWith(RoleUser)))
}

func TestCanReviewTests(t *testing.T) {
	assert.True(t, CanReviewTests(userWith(RoleTestReviewer)))
	assert.True(t, CanReviewTests(userWith(RoleQualityManager)))
	assert.True(t, CanReviewTests(userWith(RoleComplianceOfficer)))
	assert.True(t, CanReviewTests(userWith(RoleAdmin)))
	assert.False(t, CanReviewTests(userWith(RoleProjectManager)))
}

func TestCanApproveRequirements(t *testing.T) {
	assert.True(t, CanApproveRequirements(userWith(RoleAdmin)))
	assert.True(t, CanApproveRequirements(userWith(RoleQualityManager)))
	assert.True(t, CanApproveRequirements(userWith(RoleComplianceOfficer)))
	assert.False(t, CanApproveRequirements(userWith(RoleTestReviewer)))
	assert.False(t, CanApproveRequirements(userWith(RoleTechnicalLead)))
}

// Guards read claims only; calling one must never mutate the user.
func TestGuardsDoNotMutate(t *testing.T) {
	u := userWith(RoleUser, RoleTestReviewer)
	before := make([]string, len(u.Roles))
	copy(before, u.Roles)

	HasAnyRole(u, RoleAdmin)
	CanReviewTests(u)
	IsAdmin(u)

	assert.Equal(t, before, u.Roles)
}
