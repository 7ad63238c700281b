// Package view composes what the session allows a screen to show. It knows
// nothing about rendering.
package view

import "github.com/elobenin/rental-portal/internal/core/domain"

// MenuItem is one navigation entry.
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Header is the identity block shown when signed in.
type Header struct {
	DisplayName    string `json:"displayName"`
	Email          string `json:"email"`
	RoleLabel      string `json:"roleLabel"`
	Initials       string `json:"initials"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Navigation is the composed navigation model.
type Navigation struct {
	Authenticated bool       `json:"authenticated"`
	Header        *Header    `json:"header,omitempty"`
	Menu          []MenuItem `json:"menu"`
	// ProfilePrompt asks the user to finish their profile or pick a role.
	ProfilePrompt bool `json:"profilePrompt"`
}

type gatedItem struct {
	MenuItem
	requires domain.Capability
}

// menu is in display order.
var menu = []gatedItem{
	{MenuItem{"Listings", "/properties"}, domain.CapBrowseListings},
	{MenuItem{"Search", "/search"}, domain.CapSearchListings},
	{MenuItem{"Request a rental", "/rental-requests/new"}, domain.CapSubmitRentalRequest},
	{MenuItem{"My tenancy", "/tenancy"}, domain.CapViewCurrentTenancy},
	{MenuItem{"My properties", "/portfolio"}, domain.CapViewPortfolio},
	{MenuItem{"Publish an offer", "/rental-offers/new"}, domain.CapPublishRentalOffer},
	{MenuItem{"Revenue", "/analytics"}, domain.CapViewRevenueAnalytics},
	{MenuItem{"Messages", "/messages"}, domain.CapMessaging},
	{MenuItem{"Profile", "/profile"}, domain.CapViewProfile},
	{MenuItem{"Complete your profile", "/profile?edit=1"}, domain.CapCompleteProfile},
}

var anonymousMenu = []MenuItem{
	{"Listings", "/properties"},
	{"Sign in", "/login"},
	{"Create an account", "/register"},
}

// Compose builds the navigation for session. A nil session yields the
// anonymous navigation.
func Compose(session *domain.UserSession, caps domain.CapabilitySet) Navigation {
	if session == nil {
		items := make([]MenuItem, len(anonymousMenu))
		copy(items, anonymousMenu)
		return Navigation{Menu: items}
	}

	nav := Navigation{
		Authenticated: true,
		Header: &Header{
			DisplayName:    session.DisplayName,
			Email:          session.Email,
			RoleLabel:      session.Role.Label(),
			Initials:       session.Initials(),
			ProfilePicture: session.ProfilePicture,
		},
		ProfilePrompt: session.Role.Normalize() == domain.RoleNone || !session.ProfileComplete(),
	}
	for _, item := range menu {
		if caps.Has(item.requires) {
			nav.Menu = append(nav.Menu, item.MenuItem)
		}
	}
	return nav
}
