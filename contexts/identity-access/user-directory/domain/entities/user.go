package entities

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// User is a directory record. Password is an opaque value held for the
// upstream identity provider; this service never verifies it.
type User struct {
	UserID    string
	Username  string
	Email     string
	Password  string
	Role      string
	CreatedAt time.Time
}
