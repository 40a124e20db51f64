package domain

// Requirement is what a route demands of the session of its domain.
type Requirement int

const (
	Public Requirement = iota
	RequiresAuth
	RequiresAnonymous
)

func (r Requirement) String() string {
	switch r {
	case RequiresAuth:
		return "requires_auth"
	case RequiresAnonymous:
		return "requires_anonymous"
	default:
		return "public"
	}
}

// Decision is the outcome of evaluating a route against a session.
type Decision int

const (
	// Pending withholds the decision until the session is hydrated.
	Pending Decision = iota
	Allow
	RedirectToLogin
	RedirectToHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToHome:
		return "redirect_to_home"
	default:
		return "pending"
	}
}

// Route is one screen of the client.
type Route struct {
	Name        string
	Path        string
	Domain      IdentityDomain
	Requirement Requirement
	// Children are nested screens gated only by this route.
	Children []Route
}

// DomainPaths are the redirect targets of one identity domain.
type DomainPaths struct {
	Login string
	Home  string
}

// RouteTable is the full screen surface of the client.
type RouteTable struct {
	Routes []Route
	Paths  map[IdentityDomain]DomainPaths
	// NotFound is served for unmatched paths.
	NotFound Route
}

// PathsFor returns the redirect targets of d.
func (t RouteTable) PathsFor(d IdentityDomain) DomainPaths {
	return t.Paths[d]
}

// DefaultRoutes returns the screen surface of the knowledge sharing client.
func DefaultRoutes() RouteTable {
	member := func(name, path string, req Requirement) Route {
		return Route{Name: name, Path: path, Domain: DomainMember, Requirement: req}
	}
	admin := func(name, path string, req Requirement) Route {
		return Route{Name: name, Path: path, Domain: DomainAdmin, Requirement: req}
	}

	dashboard := admin("admin_dashboard", "/admin/dashboard", RequiresAuth)
	dashboard.Children = []Route{
		admin("admin_products", "/products", RequiresAuth),
		admin("admin_verification", "/verification", RequiresAuth),
		admin("admin_flagged", "/flagged", RequiresAuth),
	}

	return RouteTable{
		Routes: []Route{
			member("home", "/", RequiresAuth),
			member("about", "/about", RequiresAuth),
			member("profile", "/profile", RequiresAuth),
			member("saved_posts", "/saved-posts", RequiresAuth),
			member("posts", "/posts", RequiresAuth),
			member("add_post", "/posts/new", RequiresAuth),
			member("post_detail", "/posts/:id", Public),
			member("edit_post", "/posts/:id/edit", RequiresAuth),
			member("change_password", "/change-password", RequiresAuth),
			member("privacy", "/privacy", RequiresAuth),
			member("chatbot", "/chatbot", RequiresAuth),
			member("shop", "/shop", RequiresAuth),
			member("notifications", "/notifications", Public),
			member("guest", "/guest", Public),
			member("team", "/team", Public),
			member("forgot_password", "/forgot-password", Public),
			member("reset_password", "/reset-password", Public),
			member("login", "/login", RequiresAnonymous),
			member("register", "/register", RequiresAnonymous),
			member("welcome", "/welcome", RequiresAnonymous),

			admin("admin_login", "/admin/login", RequiresAnonymous),
			admin("admin_forgot_password", "/admin/forgot-password", RequiresAnonymous),
			admin("admin_reset_password", "/admin/reset-password", RequiresAnonymous),
			dashboard,
		},
		Paths: map[IdentityDomain]DomainPaths{
			DomainMember: {Login: "/login", Home: "/"},
			DomainAdmin:  {Login: "/admin/login", Home: "/admin/dashboard"},
		},
		NotFound: member("not_found", "", Public),
	}
}
