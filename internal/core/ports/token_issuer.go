package ports

import "github.com/elobenin/rental-portal/internal/core/domain"

// TokenIssuer signs and verifies bearer tokens. Parse reports any invalid
// token as domain.ErrSessionRejected.
type TokenIssuer interface {
	Issue(accountID string, role domain.Role) (string, error)
	Parse(token string) (Claims, error)
}
