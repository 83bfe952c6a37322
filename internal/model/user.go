package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role controls access to the admin surface.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
}

// User represents a stored user with authentication material.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user may use the admin surface.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
