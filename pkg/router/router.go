package router

// Router classifies inbound requests into control-plane and data-plane
// handling. It holds only immutable lookup tables built at construction, so
// a single instance is safe under unbounded request parallelism.
type Router struct {
	c *compiled
}

// New compiles the routing tables into an immutable Router.
func New(cfg Config) (*Router, error) {
	c, err := compile(cfg)
	if err != nil {
		return nil, err
	}
	return &Router{c: c}, nil
}

// LoginPath returns the configured login path.
func (rt *Router) LoginPath() string { return rt.c.loginPath }

// ResolvePath returns the internal domain-resolution endpoint path.
func (rt *Router) ResolvePath() string { return rt.c.resolvePath }

// IsControlPlaneHost reports whether the host belongs to the control-plane
// app: an exact match on the configured hostnames or any subdomain of the
// wildcard hosting domain. Port and case are ignored.
func (rt *Router) IsControlPlaneHost(host string) bool {
	h := normalizeHost(host)
	if h == "" {
		return false
	}
	if _, ok := rt.c.exactHosts[h]; ok {
		return true
	}
	return hasHostSuffix(h, rt.c.wildcardSuffix)
}

// pathClass is the classification of a path on a control-plane host.
type pathClass int

const (
	pathUnknown pathClass = iota
	pathKnownApp
	pathPublic
	pathAPI
)

// classifyPath resolves a path against the known/public/api sets in that
// fixed priority order. The sets are disjoint by construction, so at most
// one can match.
func (rt *Router) classifyPath(path string) pathClass {
	if path == "/" {
		return pathKnownApp
	}
	for _, p := range rt.c.appPrefixes {
		if hasPathPrefix(path, p) {
			return pathKnownApp
		}
	}
	for _, p := range rt.c.publicPrefixes {
		if hasPathPrefix(path, p) {
			return pathPublic
		}
	}
	for _, p := range rt.c.apiPrefixes {
		if hasPathPrefix(path, p) {
			return pathAPI
		}
	}
	return pathUnknown
}

// reservedPath reports whether a path on a custom domain must still reach
// the shared control-plane surface (auth pages, settings, billing, API);
// webhook receivers and auth callbacks are addressed by absolute URL and can
// arrive on any host.
func (rt *Router) reservedPath(path string) bool {
	return rt.classifyPath(path) != pathUnknown && path != "/"
}

// Classify decides how to handle an inbound request. The authenticated flag
// is the result of the external session check; it only influences known app
// paths, public and API paths pass through regardless so they stay reachable
// unauthenticated or can self-authenticate.
func (rt *Router) Classify(host, path string, authenticated bool) Decision {
	if path == "" {
		path = "/"
	}

	if !rt.IsControlPlaneHost(host) {
		if path == "/" {
			return Decision{
				Kind:   RewriteToDomainResolution,
				Domain: normalizeHost(host),
				Target: rt.c.loginPath,
			}
		}
		if !rt.reservedPath(path) {
			return Decision{Kind: PassThrough}
		}
		// Reserved control-plane surface requested on a custom domain:
		// promoted to control-plane handling below.
	}

	switch rt.classifyPath(path) {
	case pathPublic, pathAPI:
		return Decision{Kind: ServeApp}
	case pathKnownApp:
		if !authenticated {
			return Decision{Kind: RedirectToLogin, Target: rt.c.loginPath}
		}
		if path == "/" {
			return Decision{Kind: RedirectToApp, Target: rt.c.appPath}
		}
		return Decision{Kind: ServeApp}
	default:
		// A tenant slug may coincide with a path segment on the shared host.
		return Decision{Kind: PassThrough}
	}
}

// hasHostSuffix matches "sub.domain" against ".domain" on a label boundary.
func hasHostSuffix(host, suffix string) bool {
	return len(host) > len(suffix) && host[len(host)-len(suffix):] == suffix
}
