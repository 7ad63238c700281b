package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// NormalizeEmail trims and case-folds an email so it can serve as a lookup key.
func NormalizeEmail(email string) string {
	// A Caser is stateful and must not be shared across goroutines.
	return cases.Fold().String(strings.TrimSpace(email))
}

// Account is the server-side directory entry behind a UserSession.
type Account struct {
	UserSession
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session returns the client-facing record for the account, carrying token.
func (a *Account) Session(token string) *UserSession {
	s := a.UserSession
	s.Token = token
	return &s
}
