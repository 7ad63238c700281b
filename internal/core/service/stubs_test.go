package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/core/ports"
)

var errDisk = errors.New("disk unavailable")

// stubKV is an in-memory medium whose operations can be made to fail.
type stubKV struct {
	mu        sync.Mutex
	values    map[string]string
	getErr    error
	setErr    error
	removeErr error
	sets      int
}

func newStubKV() *stubKV {
	return &stubKV{values: map[string]string{}}
}

func (s *stubKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *stubKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.sets++
	s.values[key] = value
	return nil
}

func (s *stubKV) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.values, key)
	return nil
}

func (s *stubKV) raw(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// stubBackend answers like the simulated backend unless a func is set.
type stubBackend struct {
	loginFn      func(ctx context.Context, in ports.LoginInput) (*domain.UserSession, error)
	registerFn   func(ctx context.Context, in ports.RegisterInput) (*domain.UserSession, error)
	updateFn     func(ctx context.Context, cur domain.UserSession, u domain.ProfileUpdate) (*domain.UserSession, error)
	changeRoleFn func(ctx context.Context, cur domain.UserSession, role domain.Role) (*domain.UserSession, error)
	revalidateFn func(ctx context.Context, cur domain.UserSession) (*domain.UserSession, error)
	logoutErr    error

	mu    sync.Mutex
	calls []string
}

func (b *stubBackend) called(op string) {
	b.mu.Lock()
	b.calls = append(b.calls, op)
	b.mu.Unlock()
}

func (b *stubBackend) count(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (b *stubBackend) Login(ctx context.Context, in ports.LoginInput) (*domain.UserSession, error) {
	b.called("login")
	if b.loginFn != nil {
		return b.loginFn(ctx, in)
	}
	return &domain.UserSession{ID: "1", Email: in.Email, DisplayName: "Utilisateur Test", Role: domain.RoleNone}, nil
}

func (b *stubBackend) Register(ctx context.Context, in ports.RegisterInput) (*domain.UserSession, error) {
	b.called("register")
	if b.registerFn != nil {
		return b.registerFn(ctx, in)
	}
	return &domain.UserSession{ID: "new-id", Email: in.Email, DisplayName: in.DisplayName, Role: in.Role}, nil
}

func (b *stubBackend) UpdateProfile(ctx context.Context, cur domain.UserSession, u domain.ProfileUpdate) (*domain.UserSession, error) {
	b.called("update_profile")
	if b.updateFn != nil {
		return b.updateFn(ctx, cur, u)
	}
	updated := u.ApplyTo(cur)
	return &updated, nil
}

func (b *stubBackend) ChangeRole(ctx context.Context, cur domain.UserSession, role domain.Role) (*domain.UserSession, error) {
	b.called("change_role")
	if b.changeRoleFn != nil {
		return b.changeRoleFn(ctx, cur, role)
	}
	cur.Role = role
	return &cur, nil
}

func (b *stubBackend) Revalidate(ctx context.Context, cur domain.UserSession) (*domain.UserSession, error) {
	b.called("revalidate")
	if b.revalidateFn != nil {
		return b.revalidateFn(ctx, cur)
	}
	return &cur, nil
}

func (b *stubBackend) Logout(context.Context, domain.UserSession) error {
	b.called("logout")
	return b.logoutErr
}

// slowLogin blocks until ctx ends.
func slowLogin(ctx context.Context, _ ports.LoginInput) (*domain.UserSession, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		return nil, errors.New("timeout not applied")
	}
}
