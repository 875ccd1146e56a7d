package domain

import "time"

// Role is the coarse access tier attached to a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the persisted player account.
type User struct {
	ID            string
	Name          string
	Phone         string
	PasswordHash  string
	Role          Role
	QuizCompleted bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Identity returns the read-only view of u handed to request handlers.
// The password hash is intentionally absent.
func (u *User) Identity() Identity {
	role := u.Role
	if role == "" {
		role = RoleUser
	}
	return Identity{
		ID:            u.ID,
		Name:          u.Name,
		Phone:         u.Phone,
		Role:          role,
		QuizCompleted: u.QuizCompleted,
		CreatedAt:     u.CreatedAt,
	}
}
