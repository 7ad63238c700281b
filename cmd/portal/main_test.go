package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/view"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_STORE", "file")
	t.Setenv("SESSION_FILE", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv("SESSION_BACKEND", "simulated")
	t.Setenv("SIMULATED_AUTH_DELAY", "0s")
	t.Setenv("SIMULATED_UPDATE_DELAY", "0s")
	t.Setenv("LOG_LEVEL", "error")
}

func invoke(t *testing.T, args ...string) (string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	if code != 0 {
		t.Logf("stderr: %s", stderr.String())
	}
	return stdout.String(), code
}

func TestCLI_SessionSurvivesInvocations(t *testing.T) {
	setupEnv(t)

	if _, code := invoke(t, "register", "-email", "olive@example.com", "-password", "pw", "-confirm", "pw", "-role", "owner"); code != 0 {
		t.Fatalf("register exit %d", code)
	}

	out, code := invoke(t, "whoami")
	if code != 0 {
		t.Fatalf("whoami exit %d", code)
	}
	var session domain.UserSession
	if err := json.Unmarshal([]byte(out), &session); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if session.Email != "olive@example.com" || session.Role != domain.RoleOwner || session.DisplayName != "olive" {
		t.Fatalf("unexpected session: %+v", session)
	}

	out, code = invoke(t, "nav")
	if code != 0 {
		t.Fatalf("nav exit %d", code)
	}
	var nav view.Navigation
	if err := json.Unmarshal([]byte(out), &nav); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if !nav.Authenticated || !strings.Contains(out, "/portfolio") {
		t.Fatalf("owner navigation missing portfolio: %s", out)
	}
}

func TestCLI_RoleChangeAndLogout(t *testing.T) {
	setupEnv(t)

	if _, code := invoke(t, "login", "-email", "tom@example.com", "-password", "pw"); code != 0 {
		t.Fatalf("login exit %d", code)
	}
	if _, code := invoke(t, "role", "tenant"); code != 0 {
		t.Fatalf("role exit %d", code)
	}

	out, _ := invoke(t, "capabilities")
	if !strings.Contains(out, string(domain.CapViewCurrentTenancy)) {
		t.Fatalf("tenant capabilities missing: %s", out)
	}

	if _, code := invoke(t, "logout"); code != 0 {
		t.Fatalf("logout exit %d", code)
	}
	out, _ = invoke(t, "whoami")
	if strings.TrimSpace(out) != "null" {
		t.Fatalf("expected no session after logout, got %s", out)
	}
}

func TestCLI_PasswordMismatchFails(t *testing.T) {
	setupEnv(t)

	if _, code := invoke(t, "register", "-email", "a@example.com", "-password", "one", "-confirm", "two"); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	out, _ := invoke(t, "whoami")
	if strings.TrimSpace(out) != "null" {
		t.Fatalf("mismatch must not sign in, got %s", out)
	}
}

func TestCLI_ProfileUpdate(t *testing.T) {
	setupEnv(t)

	if _, code := invoke(t, "login", "-email", "pat@example.com", "-password", "pw"); code != 0 {
		t.Fatalf("login exit %d", code)
	}
	out, code := invoke(t, "profile", "-bio", "Landlord in Lyon", "-location", "Lyon")
	if code != 0 {
		t.Fatalf("profile exit %d", code)
	}
	var session domain.UserSession
	if err := json.Unmarshal([]byte(out), &session); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if session.Bio != "Landlord in Lyon" || session.Location != "Lyon" || session.Role != domain.RoleNone {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestCLI_Usage(t *testing.T) {
	setupEnv(t)

	if _, code := invoke(t); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if _, code := invoke(t, "dance"); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}
