package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/elobenin/rental-portal/internal/core/domain"
)

func TestSessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newStubKV()
	store := NewSessionStore(kv, "", zerolog.Nop())

	want := &domain.UserSession{
		ID: "1", Email: "a@example.com", DisplayName: "Ann", Role: domain.RoleOwner,
		Bio: "bio", Location: "Lyon", Phone: "0600", Website: "https://ann.example", ProfilePicture: "https://img", Token: "tok",
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := kv.raw(DefaultSessionKey); !ok {
		t.Fatalf("expected record under %q", DefaultSessionKey)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || *got != *want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestSessionStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newStubKV(), "user", zerolog.Nop())

	_ = store.Save(ctx, &domain.UserSession{ID: "1", Email: "a@example.com", Role: domain.RoleNone})
	_ = store.Save(ctx, &domain.UserSession{ID: "2", Email: "b@example.com", Role: domain.RoleTenant})

	got, _ := store.Load(ctx)
	if got == nil || got.ID != "2" {
		t.Fatalf("expected latest record, got %+v", got)
	}
}

func TestSessionStore_LoadEmpty(t *testing.T) {
	got, err := NewSessionStore(newStubKV(), "", zerolog.Nop()).Load(context.Background())
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", got, err)
	}
}

func TestSessionStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newStubKV(), "", zerolog.Nop())
	_ = store.Save(ctx, &domain.UserSession{ID: "1", Email: "a@example.com"})

	for i := 0; i < 2; i++ {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("clear #%d: %v", i+1, err)
		}
		if got, _ := store.Load(ctx); got != nil {
			t.Fatalf("clear #%d left %+v", i+1, got)
		}
	}
}

func TestSessionStore_CorruptRecordIsDiscarded(t *testing.T) {
	tests := map[string]string{
		"not json":      "{not json",
		"missing email": `{"id":"1","displayName":"x","role":"owner"}`,
		"wrong shape":   `["user"]`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			kv := newStubKV()
			kv.values[DefaultSessionKey] = raw

			got, err := NewSessionStore(kv, "", zerolog.Nop()).Load(context.Background())
			if err != nil {
				t.Fatalf("corrupt record must not be an error: %v", err)
			}
			if got != nil {
				t.Fatalf("expected nil session, got %+v", got)
			}
		})
	}
}

func TestSessionStore_LegacyRecord(t *testing.T) {
	kv := newStubKV()
	kv.values["user"] = `{"id":"1","email":"test@example.com","name":"Utilisateur Test","role":"proprietaire","bio":"Bonjour"}`
	store := NewSessionStore(kv, "user", zerolog.Nop())

	got, err := store.Load(context.Background())
	if err != nil || got == nil {
		t.Fatalf("expected session, got %+v, %v", got, err)
	}
	if got.Role != domain.RoleOwner {
		t.Fatalf("legacy role not mapped: %q", got.Role)
	}
	if got.DisplayName != "Utilisateur Test" {
		t.Fatalf("legacy name not mapped: %q", got.DisplayName)
	}
	if got.Bio != "Bonjour" {
		t.Fatalf("bio lost: %q", got.Bio)
	}

	if err := store.Save(context.Background(), got); err != nil {
		t.Fatalf("save: %v", err)
	}
	var rewritten map[string]any
	if err := json.Unmarshal([]byte(kv.values["user"]), &rewritten); err != nil {
		t.Fatalf("invalid record: %v", err)
	}
	if rewritten["displayName"] != "Utilisateur Test" || rewritten["role"] != "owner" {
		t.Fatalf("record not rewritten in current shape: %v", rewritten)
	}
}

func TestSessionStore_DisplayNameWinsOverLegacyName(t *testing.T) {
	kv := newStubKV()
	kv.values["user"] = `{"id":"1","email":"a@example.com","name":"Old","displayName":"New","role":"tenant"}`

	got, err := NewSessionStore(kv, "user", zerolog.Nop()).Load(context.Background())
	if err != nil || got == nil {
		t.Fatalf("expected session, got %+v, %v", got, err)
	}
	if got.DisplayName != "New" {
		t.Fatalf("expected displayName to win, got %q", got.DisplayName)
	}
}

func TestSessionStore_UnknownRoleBecomesNone(t *testing.T) {
	kv := newStubKV()
	kv.values["user"] = `{"id":"1","email":"a@example.com","displayName":"A","role":"admin"}`

	got, _ := NewSessionStore(kv, "user", zerolog.Nop()).Load(context.Background())
	if got == nil || got.Role != domain.RoleNone {
		t.Fatalf("expected role none, got %+v", got)
	}
}

func TestSessionStore_SaveRejectsInvalid(t *testing.T) {
	kv := newStubKV()
	err := NewSessionStore(kv, "", zerolog.Nop()).Save(context.Background(), &domain.UserSession{ID: "1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if kv.sets != 0 {
		t.Fatalf("invalid session must not be written")
	}
}

func TestSessionStore_MediumFailures(t *testing.T) {
	ctx := context.Background()
	kv := newStubKV()
	kv.getErr, kv.setErr, kv.removeErr = errDisk, errDisk, errDisk
	store := NewSessionStore(kv, "", zerolog.Nop())

	if _, err := store.Load(ctx); !errors.Is(err, errDisk) {
		t.Fatalf("load: expected errDisk, got %v", err)
	}
	if err := store.Save(ctx, &domain.UserSession{ID: "1", Email: "a@example.com"}); !errors.Is(err, errDisk) {
		t.Fatalf("save: expected errDisk, got %v", err)
	}
	if err := store.Clear(ctx); !errors.Is(err, errDisk) {
		t.Fatalf("clear: expected errDisk, got %v", err)
	}
}
