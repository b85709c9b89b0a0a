// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID            string     `db:"id"`
	Email         string     `db:"email"`
	Username      string     `db:"username"`
	PasswordHash  string     `db:"password_hash"`
	FirstName     string     `db:"first_name"`
	LastName      string     `db:"last_name"`
	Role          string     `db:"role"`
	Status        string     `db:"status"`
	EmailVerified bool       `db:"email_verified"`
	LastLoginAt   *time.Time `db:"last_login_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusSuspended = "SUSPENDED"
)

func validRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

func validStatus(status string) bool {
	switch status {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}
