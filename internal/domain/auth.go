package domain

import "time"

// Identity is the canonical authenticated caller resolved from a token.
type Identity struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Role          Role      `json:"role"`
	QuizCompleted bool      `json:"quizCompleted"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsAdmin reports whether the identity carries the administrative role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
