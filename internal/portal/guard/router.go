package guard

import (
	"path"
	"strings"

	"github.com/edulearn/lms/internal/portal/session"
)

// Route binds a view path prefix to its policy. A Pattern ending in "/*"
// also covers every path below it.
type Route struct {
	Pattern string
	Policy  Policy
}

// Router resolves portal paths against a route table.
type Router struct {
	routes []Route
}

func NewRouter(routes ...Route) *Router {
	return &Router{routes: routes}
}

// DefaultRoutes is the portal's view table.
func DefaultRoutes() []Route {
	return []Route{
		{Pattern: "/", Policy: Public},
		{Pattern: "/login", Policy: Public},
		{Pattern: "/register", Policy: Public},
		{Pattern: "/forgot-password", Policy: Public},
		{Pattern: "/reset-password/*", Policy: Public},
		{Pattern: "/courses/*", Policy: Public},

		{Pattern: "/dashboard", Policy: Authenticated},
		{Pattern: "/profile", Policy: Authenticated},
		{Pattern: "/my-courses/*", Policy: Authenticated},
		{Pattern: "/lessons/*", Policy: Authenticated},
		{Pattern: "/notifications", Policy: Authenticated},
		{Pattern: "/certificates/*", Policy: Authenticated},

		{Pattern: "/instructor/*", Policy: Instructor},
		{Pattern: "/admin/*", Policy: Admin},
	}
}

// Resolve returns the decision of the most specific route matching p.
// Paths no route covers are public.
func (r *Router) Resolve(p string, snap session.Snapshot) Decision {
	route, ok := r.Match(p)
	if !ok {
		return Public(snap)
	}
	return route.Policy(snap)
}

// Match returns the most specific route for p.
func (r *Router) Match(p string) (Route, bool) {
	p = clean(p)

	var (
		best    Route
		bestLen = -1
	)
	for _, rt := range r.routes {
		n, ok := matches(rt.Pattern, p)
		if ok && n > bestLen {
			best, bestLen = rt, n
		}
	}
	return best, bestLen >= 0
}

// matches reports whether pattern covers p and how specific the match is.
// Exact patterns outrank a wildcard of the same prefix.
func matches(pattern, p string) (int, bool) {
	prefix, wildcard := strings.CutSuffix(pattern, "/*")
	prefix = clean(prefix)
	if p == prefix {
		if wildcard {
			return 2 * len(prefix), true
		}
		return 2*len(prefix) + 1, true
	}
	if wildcard && strings.HasPrefix(p, strings.TrimSuffix(prefix, "/")+"/") {
		return 2 * len(prefix), true
	}
	return 0, false
}

func clean(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
