// Package backend provides ports.AuthBackend transports: a simulated
// authority for offline use and an HTTP client for the portal API.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/core/ports"
)

// emailNamespace derives stable login ids from emails.
var emailNamespace = uuid.MustParse("6f1c2d2e-6a55-4c8e-9d0b-5b1e4f0c7a11")

// SimulatedOptions tunes the simulated backend.
type SimulatedOptions struct {
	// AuthDelay is the latency of login and registration.
	AuthDelay time.Duration
	// UpdateDelay is the latency of profile and role changes.
	UpdateDelay time.Duration
	// Fail, when set, is consulted before every operation and its error
	// returned as the operation's failure.
	Fail func(op string) error
}

// Simulated accepts any non-empty credential pair after a fixed delay. It
// keeps no directory; login synthesises a session from the email alone.
type Simulated struct {
	tokens ports.TokenIssuer
	opts   SimulatedOptions
}

// NewSimulated returns a simulated backend signing tokens with tokens.
func NewSimulated(tokens ports.TokenIssuer, opts SimulatedOptions) *Simulated {
	return &Simulated{tokens: tokens, opts: opts}
}

func (s *Simulated) Login(ctx context.Context, in ports.LoginInput) (*domain.UserSession, error) {
	if err := s.wait(ctx, "login", s.opts.AuthDelay); err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrMissingCredentials
	}
	role := in.Role
	if role == "" {
		role = domain.RoleNone
	}
	session := &domain.UserSession{
		ID:          uuid.NewSHA1(emailNamespace, []byte(email)).String(),
		Email:       email,
		DisplayName: localPart(email),
		Role:        role,
	}
	return s.sign(session)
}

func (s *Simulated) Register(ctx context.Context, in ports.RegisterInput) (*domain.UserSession, error) {
	if err := s.wait(ctx, "register", s.opts.AuthDelay); err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrMissingCredentials
	}
	if in.Password != in.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = localPart(email)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleNone
	}
	session := &domain.UserSession{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: name,
		Role:        role,
	}
	return s.sign(session)
}

func (s *Simulated) UpdateProfile(ctx context.Context, current domain.UserSession, update domain.ProfileUpdate) (*domain.UserSession, error) {
	if err := s.wait(ctx, "update_profile", s.opts.UpdateDelay); err != nil {
		return nil, err
	}
	if update.Email != nil {
		normalized := domain.NormalizeEmail(*update.Email)
		update.Email = &normalized
	}
	updated := update.ApplyTo(current)
	return &updated, nil
}

func (s *Simulated) ChangeRole(ctx context.Context, current domain.UserSession, role domain.Role) (*domain.UserSession, error) {
	if err := s.wait(ctx, "change_role", s.opts.UpdateDelay); err != nil {
		return nil, err
	}
	current.Role = role
	return s.sign(&current)
}

// Revalidate checks the token the session was issued with. Sessions without
// a token predate tokens and are accepted as they are.
func (s *Simulated) Revalidate(ctx context.Context, current domain.UserSession) (*domain.UserSession, error) {
	if err := s.wait(ctx, "revalidate", 0); err != nil {
		return nil, err
	}
	if current.Token == "" {
		return &current, nil
	}
	claims, err := s.tokens.Parse(current.Token)
	if err != nil {
		return nil, err
	}
	if claims.AccountID != current.ID {
		return nil, fmt.Errorf("%w: token issued to another account", domain.ErrSessionRejected)
	}
	return &current, nil
}

func (s *Simulated) Logout(ctx context.Context, _ domain.UserSession) error {
	return s.wait(ctx, "logout", 0)
}

func (s *Simulated) sign(session *domain.UserSession) (*domain.UserSession, error) {
	token, err := s.tokens.Issue(session.ID, session.Role)
	if err != nil {
		return nil, err
	}
	session.Token = token
	return session, nil
}

// wait blocks for d or until ctx ends, then applies failure injection.
func (s *Simulated) wait(ctx context.Context, op string, d time.Duration) error {
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if s.opts.Fail != nil {
		if err := s.opts.Fail(op); err != nil {
			return err
		}
	}
	return nil
}

func localPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return email
	}
	return local
}

// ErrUnavailable is what failure injection typically returns.
var ErrUnavailable = errors.New("backend unavailable")
