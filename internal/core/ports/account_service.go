package ports

import (
	"context"

	"github.com/elobenin/rental-portal/internal/core/domain"
)

// Claims are the facts carried by a validated bearer token.
type Claims struct {
	AccountID string
	Role      domain.Role
	TokenID   string
	ExpiresAt int64
}

// AccountService is the directory behind the portal API.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.UserSession, error)
	Login(ctx context.Context, in LoginInput) (*domain.UserSession, error)
	Session(ctx context.Context, accountID, token string) (*domain.UserSession, error)
	UpdateProfile(ctx context.Context, accountID, token string, update domain.ProfileUpdate) (*domain.UserSession, error)
	// ChangeRole re-issues the token, since the role is part of its claims.
	ChangeRole(ctx context.Context, claims Claims, role domain.Role) (*domain.UserSession, error)
	Logout(ctx context.Context, claims Claims) error
	ParseToken(ctx context.Context, token string) (Claims, error)
}
