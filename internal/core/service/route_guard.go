package service

import (
	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/pkg/metrics"
)

// PresenceSource is the read side of a SessionStore the guard needs.
type PresenceSource interface {
	Presence() domain.Presence
}

// RouteGuard decides, per navigation, whether a screen renders or redirects.
type RouteGuard struct {
	sessions map[domain.IdentityDomain]PresenceSource
	routes   domain.RouteTable
}

// NewRouteGuard wires one presence source per identity domain.
func NewRouteGuard(routes domain.RouteTable, member, admin PresenceSource) *RouteGuard {
	return &RouteGuard{
		sessions: map[domain.IdentityDomain]PresenceSource{
			domain.DomainMember: member,
			domain.DomainAdmin:  admin,
		},
		routes: routes,
	}
}

// Routes returns the table the guard was built with.
func (g *RouteGuard) Routes() domain.RouteTable {
	return g.routes
}

// Evaluate decides route against the current presence of its domain.
func (g *RouteGuard) Evaluate(route domain.Route) domain.Decision {
	presence := domain.PresenceUnknown
	if src, ok := g.sessions[route.Domain]; ok && src != nil {
		presence = src.Presence()
	}

	d := Decide(route.Requirement, presence)
	metrics.GuardDecisionsTotal.WithLabelValues(string(route.Domain), route.Requirement.String(), d.String()).Inc()
	return d
}

// Target returns the redirect path for a decision on route, or "" when the
// decision does not redirect.
func (g *RouteGuard) Target(route domain.Route, d domain.Decision) string {
	paths := g.routes.PathsFor(route.Domain)
	switch d {
	case domain.RedirectToLogin:
		return paths.Login
	case domain.RedirectToHome:
		return paths.Home
	}
	return ""
}

// Decide is the guard's transition table. Unknown presence never resolves
// to a redirect: the caller must wait for hydration.
func Decide(req domain.Requirement, presence domain.Presence) domain.Decision {
	switch req {
	case domain.RequiresAuth:
		switch presence {
		case domain.PresencePresent:
			return domain.Allow
		case domain.PresenceAbsent:
			return domain.RedirectToLogin
		}
		return domain.Pending
	case domain.RequiresAnonymous:
		switch presence {
		case domain.PresencePresent:
			return domain.RedirectToHome
		case domain.PresenceAbsent:
			return domain.Allow
		}
		return domain.Pending
	default:
		return domain.Allow
	}
}
