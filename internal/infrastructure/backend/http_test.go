package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/core/ports"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTP_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var in ports.LoginInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "a@x.com", in.Email)

		writeJSON(w, http.StatusOK, map[string]any{"session": domain.UserSession{
			ID: "1", Email: in.Email, DisplayName: "a", Role: domain.RoleTenant, Token: "tok",
		}})
	}))
	defer srv.Close()

	s, err := NewHTTP(srv.URL+"/", nil).Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, domain.RoleTenant, s.Role)
}

func TestHTTP_AuthenticatedCallsSendToken(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if r.URL.Path == "/auth/logout" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session": domain.UserSession{ID: "1", Email: "a@x.com", Role: domain.RoleOwner}})
	}))
	defer srv.Close()

	client := NewHTTP(srv.URL, nil)
	ctx := context.Background()
	cur := domain.UserSession{ID: "1", Email: "a@x.com", Role: domain.RoleNone, Token: "tok"}

	bio := "x"
	_, err := client.UpdateProfile(ctx, cur, domain.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	_, err = client.ChangeRole(ctx, cur, domain.RoleOwner)
	require.NoError(t, err)
	_, err = client.Revalidate(ctx, cur)
	require.NoError(t, err)
	require.NoError(t, client.Logout(ctx, cur))

	assert.Equal(t, []string{"PATCH /me/profile", "PUT /me/role", "GET /me", "POST /auth/logout"}, paths)
}

func TestHTTP_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		token  string
		want   error
	}{
		{http.StatusBadRequest, "", domain.ErrValidation},
		{http.StatusUnauthorized, "", domain.ErrInvalidCredentials},
		{http.StatusUnauthorized, "tok", domain.ErrSessionRejected},
		{http.StatusForbidden, "tok", domain.ErrForbidden},
		{http.StatusConflict, "", domain.ErrAccountExists},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tt.status, map[string]string{"error": "nope"})
		}))

		client := NewHTTP(srv.URL, nil)
		var err error
		if tt.token == "" {
			_, err = client.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "pw"})
		} else {
			_, err = client.Revalidate(context.Background(), domain.UserSession{ID: "1", Email: "a@x.com", Token: tt.token})
		}
		srv.Close()

		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
	}
}

func TestHTTP_ServerErrorIsNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, nil).Revalidate(context.Background(), domain.UserSession{ID: "1", Email: "a@x.com", Token: "tok"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionRejected)
}

func TestHTTP_RevalidateWithoutToken(t *testing.T) {
	_, err := NewHTTP("http://127.0.0.1:0", nil).Revalidate(context.Background(), domain.UserSession{ID: "1", Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrSessionRejected)
}
