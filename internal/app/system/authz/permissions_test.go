package authz

import (
	"testing"

	"github.com/dalemusser/taskflow/internal/domain/models"
)

func TestPermissionsFor(t *testing.T) {
	tests := []struct {
		role string
		want models.Permissions
	}{
		{models.RoleOwner, models.Permissions{CanEdit: true, CanDelete: true, CanInvite: true}},
		{models.RoleAdmin, models.Permissions{CanEdit: true, CanDelete: true, CanInvite: true}},
		{models.RoleMember, models.Permissions{CanEdit: true}},
		{models.RoleViewer, models.Permissions{}},
		// Unknown roles get the member capability set.
		{"stranger", models.Permissions{CanEdit: true}},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := PermissionsFor(tt.role); got != tt.want {
				t.Errorf("PermissionsFor(%q) = %+v, want %+v", tt.role, got, tt.want)
			}
		})
	}
}

func TestPermissionsForIsPure(t *testing.T) {
	a := PermissionsFor(models.RoleAdmin)
	b := PermissionsFor(models.RoleAdmin)
	if a != b {
		t.Errorf("repeated calls disagree: %+v vs %+v", a, b)
	}
}
