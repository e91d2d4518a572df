// AngelaMos | 2026
// rbac_test.go

package middleware

import (
	"testing"
)

func TestRolePermissionMatrix(t *testing.T) {
	tests := []struct {
		role string
		perm Permission
		want bool
	}{
		{RoleAdmin, PermUserManage, true},
		{RoleAdmin, PermNarrative, true},

		{RoleAnalyst, PermReviewCreate, true},
		{RoleAnalyst, PermReviewInput, true},
		{RoleAnalyst, PermExport, true},
		{RoleAnalyst, PermUserManage, false},
		{RoleAnalyst, PermNarrative, false},

		{RoleCEO, PermReviewView, true},
		{RoleCEO, PermNarrative, true},
		{RoleCEO, PermExport, true},
		{RoleCEO, PermReviewCreate, false},
		{RoleCEO, PermReviewInput, false},
		{RoleCEO, PermUserManage, false},
	}

	for _, tt := range tests {
		if got := RoleHasPermission(tt.role, tt.perm); got != tt.want {
			t.Fatalf(
				"RoleHasPermission(%s, %s) = %v, want %v",
				tt.role, tt.perm, got, tt.want,
			)
		}
	}
}

func TestUnknownRoleHasNoPermissions(t *testing.T) {
	if RoleHasPermission("superuser", PermReviewView) {
		t.Fatal("unknown roles must not resolve permissions")
	}
	if ValidRole("superuser") {
		t.Fatal("superuser is not a valid role")
	}
	if !ValidRole(RoleCEO) {
		t.Fatal("ceo should be a valid role")
	}
}
