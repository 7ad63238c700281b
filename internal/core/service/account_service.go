package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/core/ports"
	"github.com/elobenin/rental-portal/internal/pkg/metrics"
)

// AccountService implements the account directory behind the portal API.
type AccountService struct {
	repo    ports.AccountRepository
	revoker ports.TokenRevoker
	tokens  *TokenIssuer
	log     zerolog.Logger
	nowFunc func() time.Time
}

func NewAccountService(repo ports.AccountRepository, revoker ports.TokenRevoker, tokens *TokenIssuer, log zerolog.Logger) *AccountService {
	return &AccountService{
		repo:    repo,
		revoker: revoker,
		tokens:  tokens,
		log:     log,
		nowFunc: time.Now,
	}
}

func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (session *domain.UserSession, err error) {
	defer s.observe("register", time.Now(), &err)

	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrMissingCredentials
	}
	if in.Password != in.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	role := in.Role
	if role == "" {
		role = domain.RoleNone
	}
	if !role.IsValid() {
		return nil, domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFunc().UTC()
	account := &domain.Account{
		UserSession: domain.UserSession{
			ID:          uuid.NewString(),
			Email:       email,
			DisplayName: displayNameOr(in.DisplayName, email),
			Role:        role,
		},
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", account.ID).Str("role", string(role)).Msg("account registered")
	return s.issue(account)
}

func (s *AccountService) Login(ctx context.Context, in ports.LoginInput) (session *domain.UserSession, err error) {
	defer s.observe("login", time.Now(), &err)

	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrMissingCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(account)
}

// Session returns the directory's current view of the account, echoing token.
func (s *AccountService) Session(ctx context.Context, accountID, token string) (*domain.UserSession, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, domain.ErrSessionRejected
	}
	if err != nil {
		return nil, err
	}
	return account.Session(token), nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, accountID, token string, update domain.ProfileUpdate) (session *domain.UserSession, err error) {
	defer s.observe("update_profile", time.Now(), &err)

	if err := update.Check(); err != nil {
		return nil, err
	}
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if update.Email != nil {
		normalized := domain.NormalizeEmail(*update.Email)
		update.Email = &normalized
		if normalized != account.Email {
			if _, err := s.repo.FindByEmail(ctx, normalized); err == nil {
				return nil, domain.ErrAccountExists
			} else if !errors.Is(err, domain.ErrAccountNotFound) {
				return nil, err
			}
		}
	}

	account.UserSession = update.ApplyTo(account.UserSession)
	account.UpdatedAt = s.nowFunc().UTC()
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account.Session(token), nil
}

func (s *AccountService) ChangeRole(ctx context.Context, claims ports.Claims, role domain.Role) (session *domain.UserSession, err error) {
	defer s.observe("change_role", time.Now(), &err)

	if !role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	account, err := s.repo.FindByID(ctx, claims.AccountID)
	if err != nil {
		return nil, err
	}
	previous := account.Role
	account.Role = role
	account.UpdatedAt = s.nowFunc().UTC()
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}

	// The old token still carries the previous role.
	if err := s.revoke(ctx, claims); err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID).Msg("failed to revoke token after role change")
	}
	s.log.Info().Str("account_id", account.ID).Str("from", string(previous)).Str("to", string(role)).Msg("role changed")
	return s.issue(account)
}

func (s *AccountService) Logout(ctx context.Context, claims ports.Claims) (err error) {
	defer s.observe("logout", time.Now(), &err)
	return s.revoke(ctx, claims)
}

// ParseToken validates a bearer token and checks it has not been revoked.
func (s *AccountService) ParseToken(ctx context.Context, token string) (ports.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return ports.Claims{}, err
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return ports.Claims{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return ports.Claims{}, fmt.Errorf("%w: token revoked", domain.ErrSessionRejected)
	}
	return claims, nil
}

func (s *AccountService) revoke(ctx context.Context, claims ports.Claims) error {
	if claims.TokenID == "" {
		return nil
	}
	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	if claims.ExpiresAt == 0 || ttl <= 0 {
		ttl = s.tokens.TTL()
	}
	return s.revoker.Revoke(ctx, claims.TokenID, ttl)
}

func (s *AccountService) issue(account *domain.Account) (*domain.UserSession, error) {
	token, err := s.tokens.Issue(account.ID, account.Role)
	if err != nil {
		return nil, err
	}
	return account.Session(token), nil
}

func (s *AccountService) observe(op string, start time.Time, err *error) {
	metrics.AccountOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.AccountOperationsTotal.WithLabelValues(op, outcome(*err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountExists):
		return "account_exists"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	default:
		return "error"
	}
}

// displayNameOr falls back to the local part of the email.
func displayNameOr(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
