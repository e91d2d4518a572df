// AngelaMos | 2026
// rbac.go

package middleware

import (
	"net/http"

	"github.com/angelamos/stratiq/internal/core"
)

const (
	RoleCEO     = "ceo"
	RoleAnalyst = "analyst"
	RoleAdmin   = "admin"
)

// Permission names an operation a role may perform. Roles form a
// closed enum; access is a static lookup, not per-handler role checks.
type Permission string

const (
	PermReviewCreate  Permission = "review:create"
	PermReviewInput   Permission = "review:input"
	PermReviewView    Permission = "review:view"
	PermBenchmarkView Permission = "benchmark:view"
	PermSWOTView      Permission = "swot:view"
	PermNarrative     Permission = "narrative:request"
	PermExport        Permission = "export:create"
	PermUserManage    Permission = "user:manage"
)

// Analysts run assessments end to end; CEOs consume dashboards,
// narratives and exports; admins can do everything.
var rolePermissions = map[string]map[Permission]struct{}{
	RoleAdmin: permSet(
		PermReviewCreate, PermReviewInput, PermReviewView,
		PermBenchmarkView, PermSWOTView, PermNarrative,
		PermExport, PermUserManage,
	),
	RoleAnalyst: permSet(
		PermReviewCreate, PermReviewInput, PermReviewView,
		PermBenchmarkView, PermSWOTView, PermExport,
	),
	RoleCEO: permSet(
		PermReviewView, PermBenchmarkView, PermSWOTView,
		PermNarrative, PermExport,
	),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

func RoleHasPermission(role string, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[perm]
	return ok
}

func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

func RequirePermission(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetUserRole(r.Context())

			if role == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if !RoleHasPermission(role, perm) {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
