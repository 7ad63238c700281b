package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/core/ports"
	"github.com/elobenin/rental-portal/internal/pkg/metrics"
	"github.com/elobenin/rental-portal/internal/pkg/validation"
)

// LifecycleOptions tunes a SessionLifecycle.
type LifecycleOptions struct {
	// OperationTimeout bounds each backend call. Zero means no bound beyond
	// the caller's context.
	OperationTimeout time.Duration
	// RevalidateOnStart asks the backend to confirm a restored session
	// instead of trusting the stored record.
	RevalidateOnStart bool
	// OnTransition, when set, is called after every state change.
	OnTransition func(from, to domain.LifecycleState)
}

// SessionLifecycle owns the client's single current session and the state
// machine around it. Operations run one at a time; reads never wait for an
// operation in flight.
type SessionLifecycle struct {
	store    ports.SessionStore
	backend  ports.AuthBackend
	opts     LifecycleOptions
	log      zerolog.Logger
	validate *validation.Validator

	opMu sync.Mutex

	mu      sync.RWMutex
	state   domain.LifecycleState
	current *domain.UserSession
}

// NewSessionLifecycle returns a lifecycle in the anonymous state. Call Start
// to adopt a persisted session.
func NewSessionLifecycle(store ports.SessionStore, backend ports.AuthBackend, log zerolog.Logger, opts LifecycleOptions) *SessionLifecycle {
	return &SessionLifecycle{
		store:    store,
		backend:  backend,
		opts:     opts,
		log:      log,
		validate: validation.New(),
		state:    domain.StateAnonymous,
	}
}

// State returns the current lifecycle state.
func (l *SessionLifecycle) State() domain.LifecycleState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Current returns a copy of the current session, or nil when anonymous.
func (l *SessionLifecycle) Current() *domain.UserSession {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current.Clone()
}

// IsAuthenticated reports whether a session is current.
func (l *SessionLifecycle) IsAuthenticated() bool {
	return l.State() == domain.StateAuthenticated
}

// Capabilities resolves the current role. Anonymous users get an empty set.
func (l *SessionLifecycle) Capabilities() domain.CapabilitySet {
	cur := l.Current()
	if cur == nil {
		return domain.CapabilitySet{}
	}
	return domain.Resolve(cur.Role)
}

// Start loads the persisted session, if any. A found record is adopted
// without re-checking unless RevalidateOnStart is set.
func (l *SessionLifecycle) Start(ctx context.Context) error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if st := l.State(); st != domain.StateAnonymous {
		return fmt.Errorf("start: %w (already %s)", domain.ErrInvalidTransition, st)
	}

	session, err := l.store.Load(ctx)
	if err != nil {
		l.record("restore", err)
		return domain.OperationFailed("restore", err)
	}
	if session == nil {
		l.log.Debug().Msg("no stored session")
		return nil
	}

	if err := l.transition(domain.StateRestoring, nil); err != nil {
		return err
	}

	if l.opts.RevalidateOnStart {
		fresh, rejected := l.revalidate(ctx, session)
		if rejected {
			// A failed clear leaves the record on the medium.
			if err := l.store.Clear(ctx); err != nil {
				l.log.Warn().Err(err).Msg("failed to clear rejected session")
				l.record("restore", err)
				if terr := l.transition(domain.StateAnonymous, nil); terr != nil {
					return terr
				}
				return domain.OperationFailed("restore", err)
			}
			l.record("restore", domain.ErrSessionRejected)
			return l.transition(domain.StateAnonymous, nil)
		}
		session = fresh
	}

	l.record("restore", nil)
	l.log.Info().Str("session_id", session.ID).Str("role", string(session.Role)).Msg("session restored")
	return l.transition(domain.StateAuthenticated, session)
}

// revalidate asks the backend about a restored session. It returns the
// session to adopt, or rejected=true when the backend refused it. Transport
// failures fall back to the stored record.
func (l *SessionLifecycle) revalidate(ctx context.Context, stored *domain.UserSession) (*domain.UserSession, bool) {
	opCtx, cancel := l.opContext(ctx)
	defer cancel()

	fresh, err := l.backend.Revalidate(opCtx, *stored)
	switch {
	case errors.Is(err, domain.ErrSessionRejected):
		l.log.Info().Str("session_id", stored.ID).Msg("stored session rejected by backend")
		return nil, true
	case err != nil:
		l.log.Warn().Err(err).Str("session_id", stored.ID).Msg("revalidation unavailable, trusting stored session")
		return stored, false
	case !fresh.Valid() || fresh.ID != stored.ID:
		l.log.Warn().Str("session_id", stored.ID).Msg("backend returned a different identity, trusting stored session")
		return stored, false
	}

	if fresh.Token == "" {
		fresh.Token = stored.Token
	}
	if *fresh != *stored {
		if err := l.store.Save(ctx, fresh); err != nil {
			l.log.Warn().Err(err).Msg("failed to persist revalidated session")
			return stored, false
		}
	}
	return fresh, false
}

// Login authenticates with the backend. Any failure leaves the lifecycle
// anonymous.
func (l *SessionLifecycle) Login(ctx context.Context, in ports.LoginInput) (*domain.UserSession, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if err := l.requireAnonymous("login"); err != nil {
		return nil, err
	}

	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		l.record("login", domain.ErrMissingCredentials)
		return nil, domain.ErrMissingCredentials
	}
	if in.Role != "" && !in.Role.IsValid() {
		l.record("login", domain.ErrInvalidRole)
		return nil, domain.ErrInvalidRole
	}

	return l.authenticate(ctx, "login", func(ctx context.Context) (*domain.UserSession, error) {
		return l.backend.Login(ctx, in)
	})
}

// Register creates an account. A password confirmation mismatch is rejected
// before any state change or persistence.
func (l *SessionLifecycle) Register(ctx context.Context, in ports.RegisterInput) (*domain.UserSession, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if err := l.requireAnonymous("register"); err != nil {
		return nil, err
	}

	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.Email == "" || in.Password == "" {
		l.record("register", domain.ErrMissingCredentials)
		return nil, domain.ErrMissingCredentials
	}
	if in.Password != in.ConfirmPassword {
		l.record("register", domain.ErrPasswordMismatch)
		return nil, domain.ErrPasswordMismatch
	}
	if in.Role == "" {
		in.Role = domain.RoleNone
	}
	if !in.Role.IsValid() {
		l.record("register", domain.ErrInvalidRole)
		return nil, domain.ErrInvalidRole
	}
	if err := l.validate.Validate(in); err != nil {
		l.record("register", err)
		return nil, err
	}

	return l.authenticate(ctx, "register", func(ctx context.Context) (*domain.UserSession, error) {
		return l.backend.Register(ctx, in)
	})
}

func (l *SessionLifecycle) authenticate(ctx context.Context, op string, call func(context.Context) (*domain.UserSession, error)) (*domain.UserSession, error) {
	if err := l.transition(domain.StateAuthenticating, nil); err != nil {
		return nil, err
	}

	opCtx, cancel := l.opContext(ctx)
	defer cancel()

	session, err := call(opCtx)
	if err == nil && !session.Valid() {
		err = errors.New("backend returned an incomplete session")
	}
	if err == nil {
		session.Role = session.Role.Normalize()
		err = l.store.Save(ctx, session)
	}
	if err != nil {
		l.record(op, err)
		l.log.Warn().Err(err).Str("op", op).Msg("authentication failed")
		if terr := l.transition(domain.StateAnonymous, nil); terr != nil {
			return nil, terr
		}
		return nil, domain.OperationFailed(op, err)
	}

	l.record(op, nil)
	l.log.Info().Str("op", op).Str("session_id", session.ID).Str("role", string(session.Role)).Msg("authenticated")
	if err := l.transition(domain.StateAuthenticated, session); err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// UpdateProfile merges a partial profile change into the current session and
// re-persists it. On failure the session is left unchanged.
func (l *SessionLifecycle) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.UserSession, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	cur, err := l.requireAuthenticated("update profile")
	if err != nil {
		return nil, err
	}
	if err := update.Check(); err != nil {
		l.record("update_profile", err)
		return nil, err
	}
	if err := l.validate.Validate(update); err != nil {
		l.record("update_profile", err)
		return nil, err
	}
	if update.Empty() {
		return cur, nil
	}

	return l.mutate(ctx, "update_profile", cur, func(ctx context.Context) (*domain.UserSession, error) {
		updated, err := l.backend.UpdateProfile(ctx, *cur, update)
		if err != nil {
			return nil, err
		}
		updated.Role = cur.Role
		return updated, nil
	})
}

// ChangeRole is the only path that alters the role after registration.
func (l *SessionLifecycle) ChangeRole(ctx context.Context, role domain.Role) (*domain.UserSession, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	cur, err := l.requireAuthenticated("change role")
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		l.record("change_role", domain.ErrInvalidRole)
		return nil, domain.ErrInvalidRole
	}
	if role == cur.Role {
		return cur, nil
	}

	return l.mutate(ctx, "change_role", cur, func(ctx context.Context) (*domain.UserSession, error) {
		updated, err := l.backend.ChangeRole(ctx, *cur, role)
		if err != nil {
			return nil, err
		}
		updated.Role = role
		return updated, nil
	})
}

func (l *SessionLifecycle) mutate(ctx context.Context, op string, cur *domain.UserSession, call func(context.Context) (*domain.UserSession, error)) (*domain.UserSession, error) {
	opCtx, cancel := l.opContext(ctx)
	defer cancel()

	updated, err := call(opCtx)
	if err == nil {
		if updated == nil {
			err = errors.New("backend returned no session")
		} else {
			updated.ID = cur.ID
			if updated.Token == "" {
				updated.Token = cur.Token
			}
			err = l.store.Save(ctx, updated)
		}
	}
	if err != nil {
		l.record(op, err)
		l.log.Warn().Err(err).Str("op", op).Str("session_id", cur.ID).Msg("session update failed")
		return nil, domain.OperationFailed(op, err)
	}

	l.record(op, nil)
	l.log.Info().Str("op", op).Str("session_id", updated.ID).Msg("session updated")
	if err := l.transition(domain.StateAuthenticated, updated); err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// Logout clears the persisted record and discards the session. The backend
// is told on a best-effort basis. If the record cannot be cleared the
// session stays current.
func (l *SessionLifecycle) Logout(ctx context.Context) error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	cur, err := l.requireAuthenticated("logout")
	if err != nil {
		return err
	}

	opCtx, cancel := l.opContext(ctx)
	if err := l.backend.Logout(opCtx, *cur); err != nil {
		l.log.Warn().Err(err).Str("session_id", cur.ID).Msg("backend logout failed")
	}
	cancel()

	if err := l.store.Clear(ctx); err != nil {
		l.record("logout", err)
		return domain.OperationFailed("logout", err)
	}

	l.record("logout", nil)
	l.log.Info().Str("session_id", cur.ID).Msg("logged out")
	return l.transition(domain.StateAnonymous, nil)
}

func (l *SessionLifecycle) requireAnonymous(op string) error {
	switch st := l.State(); st {
	case domain.StateAnonymous:
		return nil
	case domain.StateAuthenticated:
		return fmt.Errorf("%s: %w", op, domain.ErrAlreadyAuthenticated)
	default:
		return fmt.Errorf("%s: %w (state %s)", op, domain.ErrInvalidTransition, st)
	}
}

func (l *SessionLifecycle) requireAuthenticated(op string) (*domain.UserSession, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state != domain.StateAuthenticated || l.current == nil {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrNotAuthenticated)
	}
	return l.current.Clone(), nil
}

// transition moves to next and installs session as current. Entering a state
// without a session (anything but authenticated) drops the current one.
func (l *SessionLifecycle) transition(next domain.LifecycleState, session *domain.UserSession) error {
	l.mu.Lock()
	from := l.state
	if !from.CanTransitionTo(next) {
		l.mu.Unlock()
		return fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, from, next)
	}
	l.state = next
	switch next {
	case domain.StateAuthenticated:
		l.current = session.Clone()
	case domain.StateAnonymous:
		l.current = nil
	}
	l.mu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues(string(from), string(next)).Inc()
	if l.opts.OnTransition != nil {
		l.opts.OnTransition(from, next)
	}
	return nil
}

func (l *SessionLifecycle) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.opts.OperationTimeout > 0 {
		return context.WithTimeout(ctx, l.opts.OperationTimeout)
	}
	return context.WithCancel(ctx)
}

func (l *SessionLifecycle) record(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrValidation):
		result = "validation"
	default:
		result = "failed"
	}
	metrics.SessionOperationsTotal.WithLabelValues(op, result).Inc()
}
