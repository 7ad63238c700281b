package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/core/ports"
	"github.com/elobenin/rental-portal/internal/view"
)

// ViewHandler serves composed view models for the authenticated account.
type ViewHandler struct {
	accounts ports.AccountService
}

func NewViewHandler(accounts ports.AccountService) *ViewHandler {
	return &ViewHandler{accounts: accounts}
}

type sectionResponse struct {
	Section    string          `json:"section"`
	Navigation view.Navigation `json:"navigation"`
}

// Navigation returns the navigation model for the current session.
//
// @Summary      Navigation model
// @Tags         views
// @Security     BearerAuth
// @Produce      json
// @Success      200   {object}  view.Navigation
// @Router       /views/navigation [get]
func (h *ViewHandler) Navigation(c echo.Context) error {
	nav, err := h.compose(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nav)
}

// Portfolio is reachable only with the view_portfolio capability.
//
// @Summary      Owner portfolio view
// @Tags         views
// @Security     BearerAuth
// @Produce      json
// @Success      200   {object}  sectionResponse
// @Failure      403   {object}  map[string]string
// @Router       /views/portfolio [get]
func (h *ViewHandler) Portfolio(c echo.Context) error {
	return h.section(c, "portfolio")
}

// Tenancy is reachable only with the view_current_tenancy capability.
//
// @Summary      Tenant tenancy view
// @Tags         views
// @Security     BearerAuth
// @Produce      json
// @Success      200   {object}  sectionResponse
// @Failure      403   {object}  map[string]string
// @Router       /views/tenancy [get]
func (h *ViewHandler) Tenancy(c echo.Context) error {
	return h.section(c, "tenancy")
}

func (h *ViewHandler) section(c echo.Context, name string) error {
	nav, err := h.compose(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sectionResponse{Section: name, Navigation: nav})
}

func (h *ViewHandler) compose(c echo.Context) (view.Navigation, error) {
	claims, err := ctxClaims(c)
	if err != nil {
		return view.Navigation{}, err
	}
	session, err := h.accounts.Session(c.Request().Context(), claims.AccountID, "")
	if err != nil {
		return view.Navigation{}, err
	}
	return view.Compose(session, domain.Resolve(session.Role)), nil
}
