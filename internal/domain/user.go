package domain

import "time"

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// UserProfile is the per-identity row carrying role and approval status.
// It is the sole authority for access decisions; admins never need
// approval, regular users do.
type UserProfile struct {
	ID         string
	Email      string
	Role       UserRole
	IsApproved bool
	CreatedAt  time.Time
}

// IsAdmin reports whether the profile grants the admin role. A nil
// profile grants nothing.
func (p *UserProfile) IsAdmin() bool {
	return p != nil && p.Role == UserRoleAdmin
}

// Approved reports whether the profile has been approved by an admin.
func (p *UserProfile) Approved() bool {
	return p != nil && p.IsApproved
}

// Session is the opaque token handed to a client after sign-in, together
// with its expiry. The token itself carries the user identity.
type Session struct {
	Token     string
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Identity is the immutable {id, email} pair sourced from a session.
type Identity struct {
	ID    string
	Email string
}
