package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/core/ports"
)

const defaultHTTPTimeout = 15 * time.Second

// HTTP talks to the portal API.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP returns a client for the API rooted at baseURL. A nil client gets
// a default one with a 15s timeout.
func NewHTTP(baseURL string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTP{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type sessionEnvelope struct {
	Session *domain.UserSession `json:"session"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

type roleRequest struct {
	Role domain.Role `json:"role"`
}

func (h *HTTP) Login(ctx context.Context, in ports.LoginInput) (*domain.UserSession, error) {
	return h.session(ctx, http.MethodPost, "/auth/login", "", in)
}

func (h *HTTP) Register(ctx context.Context, in ports.RegisterInput) (*domain.UserSession, error) {
	return h.session(ctx, http.MethodPost, "/auth/register", "", in)
}

func (h *HTTP) UpdateProfile(ctx context.Context, current domain.UserSession, update domain.ProfileUpdate) (*domain.UserSession, error) {
	return h.session(ctx, http.MethodPatch, "/me/profile", current.Token, update)
}

func (h *HTTP) ChangeRole(ctx context.Context, current domain.UserSession, role domain.Role) (*domain.UserSession, error) {
	return h.session(ctx, http.MethodPut, "/me/role", current.Token, roleRequest{Role: role})
}

func (h *HTTP) Revalidate(ctx context.Context, current domain.UserSession) (*domain.UserSession, error) {
	if current.Token == "" {
		return nil, fmt.Errorf("%w: session has no token", domain.ErrSessionRejected)
	}
	return h.session(ctx, http.MethodGet, "/me", current.Token, nil)
}

func (h *HTTP) Logout(ctx context.Context, current domain.UserSession) error {
	if current.Token == "" {
		return nil
	}
	return h.do(ctx, http.MethodPost, "/auth/logout", current.Token, nil, nil)
}

func (h *HTTP) session(ctx context.Context, method, path, token string, body any) (*domain.UserSession, error) {
	var env sessionEnvelope
	if err := h.do(ctx, method, path, token, body, &env); err != nil {
		return nil, err
	}
	if env.Session == nil {
		return nil, fmt.Errorf("%s %s: response carried no session", method, path)
	}
	return env.Session, nil
}

func (h *HTTP) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp, token != "")
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps API error responses back onto domain errors.
func statusError(resp *http.Response, authenticated bool) error {
	var env errorEnvelope
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env)
	msg := env.Error
	if msg == "" {
		msg = resp.Status
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = domain.ErrValidation
	case http.StatusUnauthorized:
		if authenticated {
			kind = domain.ErrSessionRejected
		} else {
			kind = domain.ErrInvalidCredentials
		}
	case http.StatusForbidden:
		kind = domain.ErrForbidden
	case http.StatusNotFound:
		kind = domain.ErrAccountNotFound
	case http.StatusConflict:
		kind = domain.ErrAccountExists
	default:
		return errors.New("portal api: " + msg)
	}
	return fmt.Errorf("%w: %s", kind, msg)
}
