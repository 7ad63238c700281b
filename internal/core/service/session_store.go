package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/core/ports"
	"github.com/elobenin/rental-portal/internal/pkg/metrics"
)

// DefaultSessionKey is the key the web client has always used.
const DefaultSessionKey = "user"

// SessionStore keeps the current session as one JSON value in a key-value
// medium.
type SessionStore struct {
	kv  ports.KeyValueStore
	key string
	log zerolog.Logger
}

// NewSessionStore returns a SessionStore writing under key, or
// DefaultSessionKey when key is empty.
func NewSessionStore(kv ports.KeyValueStore, key string, log zerolog.Logger) *SessionStore {
	if key == "" {
		key = DefaultSessionKey
	}
	return &SessionStore{kv: kv, key: key, log: log}
}

// Load reads the persisted session. Missing or corrupt records yield nil
// without an error; only a failing medium is reported.
func (s *SessionStore) Load(ctx context.Context) (*domain.UserSession, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	session, err := decodeSession(raw)
	if err != nil {
		metrics.SessionStoreDiscardsTotal.Inc()
		s.log.Warn().Err(err).Str("key", s.key).Msg("discarding unreadable session record")
		return nil, nil
	}
	return session, nil
}

// Save overwrites any prior record.
func (s *SessionStore) Save(ctx context.Context, session *domain.UserSession) error {
	if !session.Valid() {
		return fmt.Errorf("save session: %w: id and email are required", domain.ErrValidation)
	}
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(b)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the record. Clearing an empty store is a no-op.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// legacyFields are record fields written by the web client under names that
// have since changed.
type legacyFields struct {
	Name string `json:"name"`
}

func decodeSession(raw string) (*domain.UserSession, error) {
	var session domain.UserSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorruptSession, err)
	}
	if session.DisplayName == "" {
		var legacy legacyFields
		if err := json.Unmarshal([]byte(raw), &legacy); err == nil {
			session.DisplayName = strings.TrimSpace(legacy.Name)
		}
	}
	if !session.Valid() {
		return nil, fmt.Errorf("%w: missing id or email", domain.ErrCorruptSession)
	}
	session.Role = session.Role.Normalize()
	return &session, nil
}
