package phttp

import "regexp"

// HeaderMode selects how request headers are consumed before handler
// invocation. The zero value defers to the owning application's default.
type HeaderMode int

const (
	headerAppDefault HeaderMode = iota

	// HeaderParse reads header lines into Request.Header.
	HeaderParse

	// HeaderSkip reads and discards header lines; the mapping is never
	// built.
	HeaderSkip

	// HeaderLeave stops after the request line. The handler is fully
	// responsible for draining or parsing the remaining bytes itself, e.g.
	// to support non-header-shaped framing.
	HeaderLeave
)

// RouteOption configures a single route entry.
type RouteOption func(*routeEntry)

// WithHeaders overrides the application's default header mode for one route.
func WithHeaders(m HeaderMode) RouteOption {
	return func(e *routeEntry) { e.headers = m }
}

type routeEntry struct {
	exact   string
	pattern *regexp.Regexp
	handler Handler
	headers HeaderMode
}

// match reports whether the entry claims the path. The exact string compare
// is the fast path, tried before pattern matching. Patterns are anchored at
// the start of the path: a match beginning mid-path does not claim it.
func (e *routeEntry) match(path string) (bool, []string) {
	if e.exact != "" && path == e.exact {
		return true, nil
	}

	if e.pattern != nil {
		if idx := e.pattern.FindStringSubmatchIndex(path); idx != nil && idx[0] == 0 {
			return true, submatches(path, idx)
		}
	}

	return false, nil
}

func submatches(path string, idx []int) []string {
	m := make([]string, 0, len(idx)/2)
	for i := 0; i < len(idx); i += 2 {
		if idx[i] < 0 {
			m = append(m, "")
			continue
		}

		m = append(m, path[idx[i]:idx[i+1]])
	}

	return m
}

// RouteDef declares one entry of an application's initial route table for
// [WithRoutes]. Exactly one of Path and Pattern should be set.
type RouteDef struct {
	Path    string
	Pattern *regexp.Regexp
	Handler Handler
	Options []RouteOption
}

// Handle registers a handler for an exact-match path. Entries are tried in
// registration order and the first match wins.
func (a *App) Handle(path string, h Handler, opts ...RouteOption) {
	a.middlewares.captured = true
	a.addRoute(routeEntry{exact: path, handler: h}, opts...)
}

// HandleFunc registers a handler function for an exact-match path.
func (a *App) HandleFunc(path string, h HandlerFunc, opts ...RouteOption) {
	a.Handle(path, h, opts...)
}

// HandleRe registers a handler for a pattern with capture groups, accessible
// to the handler via [Request.Capture] and [Request.NamedCapture].
func (a *App) HandleRe(pattern *regexp.Regexp, h Handler, opts ...RouteOption) {
	a.middlewares.captured = true
	a.addRoute(routeEntry{pattern: pattern, handler: h}, opts...)
}

// HandleReFunc registers a handler function for a pattern.
func (a *App) HandleReFunc(pattern *regexp.Regexp, h HandlerFunc, opts ...RouteOption) {
	a.HandleRe(pattern, h, opts...)
}

func (a *App) addRoute(e routeEntry, opts ...RouteOption) {
	for _, opt := range opts {
		opt(&e)
	}

	a.routes = append(a.routes, e)
}

// resolveRoute tries the route entries in registration order. The static
// fallback entry, when enabled, is tried only after every registered route so
// it can never shadow a more specific route added later.
func (a *App) resolveRoute(path string) (*routeEntry, []string) {
	for i := range a.routes {
		if ok, m := a.routes[i].match(path); ok {
			return &a.routes[i], m
		}
	}

	if a.static != nil {
		if ok, m := a.static.match(path); ok {
			return a.static, m
		}
	}

	return nil, nil
}
