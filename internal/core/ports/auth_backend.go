package ports

import (
	"context"

	"github.com/elobenin/rental-portal/internal/core/domain"
)

// LoginInput is what the login form submits.
type LoginInput struct {
	Email    string      `json:"email" validate:"required"`
	Password string      `json:"password" validate:"required"`
	Role     domain.Role `json:"role,omitempty"`
}

// RegisterInput is what the registration form submits.
type RegisterInput struct {
	Email           string      `json:"email" validate:"required"`
	Password        string      `json:"password" validate:"required"`
	ConfirmPassword string      `json:"confirmPassword"`
	DisplayName     string      `json:"displayName,omitempty" validate:"max=120"`
	Role            domain.Role `json:"role,omitempty"`
}

// AuthBackend is the authority that issues and updates sessions. The
// simulated implementation stands in for a real network client.
type AuthBackend interface {
	Login(ctx context.Context, in LoginInput) (*domain.UserSession, error)
	Register(ctx context.Context, in RegisterInput) (*domain.UserSession, error)
	UpdateProfile(ctx context.Context, current domain.UserSession, update domain.ProfileUpdate) (*domain.UserSession, error)
	ChangeRole(ctx context.Context, current domain.UserSession, role domain.Role) (*domain.UserSession, error)
	// Revalidate returns domain.ErrSessionRejected when the backend
	// definitively refuses the session.
	Revalidate(ctx context.Context, current domain.UserSession) (*domain.UserSession, error)
	Logout(ctx context.Context, current domain.UserSession) error
}
