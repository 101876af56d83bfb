// internal/pkg/authz/guards.go
package authz

import "compliancehub-service/internal/domain/identity"

// Role tags carried in verified token claims.
const (
	RoleUser              = "user"
	RoleAdmin             = "admin"
	RoleSystemAdmin       = "system_admin"
	RoleComplianceOfficer = "compliance_officer"
	RoleQualityManager    = "quality_manager"
	RoleProjectManager    = "project_manager"
	RoleTechnicalLead     = "technical_lead"
	RoleTestReviewer      = "test_reviewer"
)

// HasAnyRole reports whether the user's roles intersect the given set.
// Total over every role set, including nil and empty.
func HasAnyRole(user *identity.User, roles ...string) bool {
	if user == nil {
		return false
	}
	for _, have := range user.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// IsAdmin checks if user is an admin (including system admin)
func IsAdmin(user *identity.User) bool {
	return HasAnyRole(user, RoleAdmin, RoleSystemAdmin)
}

// IsComplianceOfficer checks if user holds a compliance oversight role
func IsComplianceOfficer(user *identity.User) bool {
	return HasAnyRole(user, RoleComplianceOfficer, RoleQualityManager)
}

// CanManageProject checks if user may create, configure, or archive projects
func CanManageProject(user *identity.User) bool {
	return HasAnyRole(user, RoleAdmin, RoleProjectManager, RoleTechnicalLead)
}

// CanReviewTests checks if user may record test review verdicts
func CanReviewTests(user *identity.User) bool {
	return HasAnyRole(user, RoleAdmin, RoleQualityManager, RoleTestReviewer, RoleComplianceOfficer)
}

// CanApproveRequirements checks if user may approve regulatory requirements
func CanApproveRequirements(user *identity.User) bool {
	return HasAnyRole(user, RoleAdmin, RoleQualityManager, RoleComplianceOfficer)
}
