package ports

import (
	"context"

	"github.com/elobenin/rental-portal/internal/core/domain"
)

// SessionStore persists the single current-session record.
type SessionStore interface {
	// Load returns nil, nil when no usable record exists, including when the
	// stored record is corrupt.
	Load(ctx context.Context) (*domain.UserSession, error)
	Save(ctx context.Context, session *domain.UserSession) error
	Clear(ctx context.Context) error
}
