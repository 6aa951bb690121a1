package model

import (
	"time"
)

const (
	RoleCreator   = "creator"
	RoleContestee = "contestee"
)

// ValidRole reports whether role is one the service knows how to gate on.
func ValidRole(role string) bool {
	return role == RoleCreator || role == RoleContestee
}

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Identity is the caller resolved from a verified credential. It is passed
// explicitly into every service operation that gates on role.
type Identity struct {
	UserID string
	Role   string
}
