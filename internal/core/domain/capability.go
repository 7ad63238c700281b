package domain

import "sort"

// Capability is a UI-level permission unlocked by a role.
type Capability string

const (
	CapCompleteProfile      Capability = "complete_profile"
	CapViewProfile          Capability = "view_profile"
	CapMessaging            Capability = "messaging"
	CapBrowseListings       Capability = "browse_listings"
	CapSearchListings       Capability = "search_listings"
	CapSubmitRentalRequest  Capability = "submit_rental_request"
	CapViewCurrentTenancy   Capability = "view_current_tenancy"
	CapViewPortfolio        Capability = "view_portfolio"
	CapPublishRentalOffer   Capability = "publish_rental_offer"
	CapViewRevenueAnalytics Capability = "view_revenue_analytics"
)

// CapabilitySet is an immutable-by-convention set of capabilities.
type CapabilitySet map[Capability]struct{}

// Has reports whether c is in the set.
func (cs CapabilitySet) Has(c Capability) bool {
	_, ok := cs[c]
	return ok
}

// Sorted returns the capabilities in lexical order.
func (cs CapabilitySet) Sorted() []Capability {
	out := make([]Capability, 0, len(cs))
	for c := range cs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// partyCapabilities are shared by every role that has picked a side of a
// rental. RoleNone only gets what it needs to complete its profile.
var partyCapabilities = []Capability{CapViewProfile, CapMessaging}

var roleCapabilities = map[Role][]Capability{
	RoleNone:   {CapCompleteProfile, CapViewProfile},
	RoleOwner:  append([]Capability{CapViewPortfolio, CapPublishRentalOffer, CapViewRevenueAnalytics}, partyCapabilities...),
	RoleTenant: append([]Capability{CapBrowseListings, CapSearchListings, CapSubmitRentalRequest, CapViewCurrentTenancy}, partyCapabilities...),
}

// Resolve maps a role to the capabilities it unlocks. Unknown roles resolve
// as RoleNone. The result is never empty.
func Resolve(role Role) CapabilitySet {
	caps := roleCapabilities[role.Normalize()]
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}
