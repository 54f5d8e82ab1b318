// internal/app/system/authz/permissions.go
package authz

import "github.com/dalemusser/taskflow/internal/domain/models"

// PermissionsFor maps a member role to its fixed capability set.
//
// The result is a snapshot: it is stored on the member record at
// assignment time and re-derived only when the role changes. Unknown
// roles fall back to the member capability set.
func PermissionsFor(role string) models.Permissions {
	switch role {
	case models.RoleOwner, models.RoleAdmin:
		return models.Permissions{CanEdit: true, CanDelete: true, CanInvite: true}
	case models.RoleViewer:
		return models.Permissions{CanEdit: false, CanDelete: false, CanInvite: false}
	default: // member, and anything unrecognized
		return models.Permissions{CanEdit: true, CanDelete: false, CanInvite: false}
	}
}
