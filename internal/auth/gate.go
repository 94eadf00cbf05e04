package auth

// State is the visibility state of a path or region for the current session.
type State int

const (
	StateUnauthenticated State = iota
	StateUnauthorized
	StateAuthorized
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateUnauthorized:
		return "unauthorized"
	case StateAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Outcome is what the caller should do with a request.
type Outcome int

const (
	OutcomeRender Outcome = iota
	OutcomeLoginForm
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRender:
		return "render"
	case OutcomeLoginForm:
		return "login_form"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Viewer is the read side of a session the gate decides against.
type Viewer interface {
	IsAuthenticated() bool
	HasRole(role string) bool
}

// Region is a protected part of a page. An empty RequiredRoles set admits
// every authenticated viewer; otherwise any one of the roles suffices.
type Region struct {
	Name          string
	RequiredRoles []string
}

// Route is a navigable path and the regions it renders.
type Route struct {
	Path    string
	Regions []Region
}

// Region returns the named region of the route.
func (r Route) Region(name string) (Region, bool) {
	for _, region := range r.Regions {
		if region.Name == name {
			return region, true
		}
	}
	return Region{}, false
}

// Decision is the gate's verdict for one request.
type Decision struct {
	State      State
	Outcome    Outcome
	RedirectTo string
	Route      Route
}

// Gate maps session state and a requested path to a Decision.
type Gate struct {
	loginPath string
	rootPath  string
	routes    map[string]Route
}

// NewGate builds a gate over the authenticated route table.
func NewGate(loginPath, rootPath string, routes ...Route) *Gate {
	table := make(map[string]Route, len(routes))
	for _, route := range routes {
		table[route.Path] = route
	}
	return &Gate{loginPath: loginPath, rootPath: rootPath, routes: table}
}

// LoginPath returns the path of the login view.
func (g *Gate) LoginPath() string { return g.loginPath }

// RootPath returns the application root.
func (g *Gate) RootPath() string { return g.rootPath }

// Route looks up an entry of the route table.
func (g *Gate) Route(path string) (Route, bool) {
	route, ok := g.routes[path]
	return route, ok
}

// Decide evaluates path against the viewer's current state. It holds no
// state of its own, so callers recompute it on every request.
func (g *Gate) Decide(viewer Viewer, path string) Decision {
	if viewer == nil || !viewer.IsAuthenticated() {
		if path == g.loginPath {
			return Decision{State: StateUnauthenticated, Outcome: OutcomeLoginForm}
		}
		return Decision{State: StateUnauthenticated, Outcome: OutcomeRedirect, RedirectTo: g.loginPath}
	}

	if path == g.loginPath {
		return Decision{State: StateAuthorized, Outcome: OutcomeRedirect, RedirectTo: g.rootPath}
	}
	route, ok := g.routes[path]
	if !ok {
		return Decision{State: StateAuthorized, Outcome: OutcomeRedirect, RedirectTo: g.rootPath}
	}
	return Decision{State: StateAuthorized, Outcome: OutcomeRender, Route: route}
}

// Authorize evaluates one region for the viewer.
func (g *Gate) Authorize(viewer Viewer, region Region) State {
	if viewer == nil || !viewer.IsAuthenticated() {
		return StateUnauthenticated
	}
	if len(region.RequiredRoles) == 0 {
		return StateAuthorized
	}
	for _, role := range region.RequiredRoles {
		if viewer.HasRole(role) {
			return StateAuthorized
		}
	}
	return StateUnauthorized
}
