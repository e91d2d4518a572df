// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Name         string     `db:"name"`
	Role         string     `db:"role"`
	IsActive     bool       `db:"is_active"`
	TokenVersion int        `db:"token_version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Accounts register inactive and stay that way until an admin approves
// them. Inactive accounts cannot log in.
const (
	RoleCEO     = "ceo"
	RoleAnalyst = "analyst"
	RoleAdmin   = "admin"
)

func ValidRole(role string) bool {
	return role == RoleCEO || role == RoleAnalyst || role == RoleAdmin
}
