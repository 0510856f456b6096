package domain

import "time"

// Role slugs seeded by migrations.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleClient  = "client"
)

// Role is a named permission group.
type Role struct {
	ID          int64
	Name        string
	Slug        string
	Description string
}

// User is an account. PasswordHash is a bcrypt hash and never leaves the service layer.
type User struct {
	ID           int64
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	ImageID      *int64
	Image        *Image
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleSlugs returns the slugs of the user's roles.
func (u *User) RoleSlugs() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Slug)
	}
	return out
}

// UserFilter holds substring filters. Provided filters are OR-combined.
type UserFilter struct {
	Name    string
	Surname string
	Email   string
}

// PartialUserUpdate carries optional fields to update a user.
// A nil Roles slice leaves the role set untouched.
type PartialUserUpdate struct {
	ID           int64
	Name         *string
	Surname      *string
	Email        *string
	PasswordHash *string
	ImageID      *int64
	Roles        []string
}

// TokenType distinguishes refresh tokens from password reset tokens.
type TokenType string

// Token types.
const (
	TokenRefresh       TokenType = "refresh"
	TokenPasswordReset TokenType = "password_reset"
)

// Token is an opaque server-side token bound to a user.
type Token struct {
	ID        int64
	UserID    int64
	Token     string
	Type      TokenType
	IsRevoked bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Active reports whether the token can still be used at now.
func (t *Token) Active(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ExpiresAt)
}
