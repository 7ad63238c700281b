package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/core/ports"
)

// MeHandler serves the authenticated account's own session.
type MeHandler struct {
	accounts ports.AccountService
}

func NewMeHandler(accounts ports.AccountService) *MeHandler {
	return &MeHandler{accounts: accounts}
}

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

type capabilitiesResponse struct {
	Role         domain.Role         `json:"role"`
	Capabilities []domain.Capability `json:"capabilities"`
}

// Get returns the directory's current view of the session. Clients use it
// to revalidate a restored session.
//
// @Summary      Current session
// @Tags         me
// @Security     BearerAuth
// @Produce      json
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Router       /me [get]
func (h *MeHandler) Get(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	session, err := h.accounts.Session(c.Request().Context(), claims.AccountID, bearer(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: session})
}

// UpdateProfile merges a partial profile change. The role cannot be changed
// here.
//
// @Summary      Update profile
// @Tags         me
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ProfileUpdate  true  "Fields to change"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Router       /me/profile [patch]
func (h *MeHandler) UpdateProfile(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req domain.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.accounts.UpdateProfile(c.Request().Context(), claims.AccountID, bearer(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: session})
}

// ChangeRole switches the account's role and re-issues its token.
//
// @Summary      Change role
// @Tags         me
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      roleRequest  true  "New role"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Router       /me/role [put]
func (h *MeHandler) ChangeRole(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	session, err := h.accounts.ChangeRole(c.Request().Context(), claims, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: session})
}

// Capabilities lists what the token's role unlocks.
//
// @Summary      Capabilities
// @Tags         me
// @Security     BearerAuth
// @Produce      json
// @Success      200   {object}  capabilitiesResponse
// @Router       /me/capabilities [get]
func (h *MeHandler) Capabilities(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, capabilitiesResponse{
		Role:         claims.Role,
		Capabilities: domain.Resolve(claims.Role).Sorted(),
	})
}
