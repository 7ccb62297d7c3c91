package domain

import "time"

// Role determines what a user is allowed to do. Approvers and admins review
// submitted articles and receive cross-cutting notifications.
type Role string

const (
	RoleUser     Role = "user"
	RoleApprover Role = "approver"
	RoleAdmin    Role = "admin"
)

// CanReview reports whether the role may approve or reject articles and
// subscribe to the notification stream.
func (r Role) CanReview() bool {
	return r == RoleApprover || r == RoleAdmin
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleApprover, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// Identity is the authenticated principal derived from a validated bearer
// token. It carries only what the realtime layer needs: who the caller is
// and what they may see.
type Identity struct {
	UserID int64
	Role   Role
}
