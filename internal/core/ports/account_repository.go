package ports

import (
	"context"
	"time"

	"github.com/elobenin/rental-portal/internal/core/domain"
)

// AccountRepository defines persistence operations for directory accounts.
// Emails are passed already normalised.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// Update replaces the stored account. Returns domain.ErrAccountNotFound
	// when id is unknown.
	Update(ctx context.Context, account *domain.Account) error
}

// TokenRevoker tracks bearer tokens invalidated by logout.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
