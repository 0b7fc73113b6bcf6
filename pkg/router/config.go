package router

import (
	"errors"
	"fmt"
	"strings"
)

// Config declares the routing tables. Loaded once at startup (typically via
// the config package's env loader) and compiled into an immutable Router.
type Config struct {
	// LocalDevHost matches local development traffic (compared without port).
	LocalDevHost string `env:"ROUTER_LOCAL_DEV_HOST" envDefault:"localhost"`

	// PrimaryDomain is the operator-configured main domain of the
	// control-plane app, e.g. "builder.example.com". Optional.
	PrimaryDomain string `env:"ROUTER_PRIMARY_DOMAIN"`

	// WildcardDomain is the platform's shared hosting domain. The apex and
	// every subdomain of it are control-plane hosts, e.g. "pages.example.com"
	// matches itself and "acme.pages.example.com".
	WildcardDomain string `env:"ROUTER_WILDCARD_DOMAIN,required"`

	// LoginPath is where unauthenticated control-plane traffic and unbound
	// custom domains are sent.
	LoginPath string `env:"ROUTER_LOGIN_PATH" envDefault:"/login"`

	// AppPath is the main authoring surface an authenticated session lands on.
	AppPath string `env:"ROUTER_APP_PATH" envDefault:"/app"`

	// ResolvePath is the internal endpoint data-plane root requests are
	// rewritten to for domain resolution.
	ResolvePath string `env:"ROUTER_RESOLVE_PATH" envDefault:"/resolve"`
}

// Prefix sets of the control-plane app. Kept as package constants because
// they describe the app's own route table, not deployment configuration.
// The three sets must stay disjoint; compile verifies that.
var (
	defaultAppPrefixes = []string{"/app", "/settings", "/billing"}
	defaultPublicPaths = []string{
		"/login", "/signup", "/auth", "/seed", "/resolve",
		"/webhooks/billing", "/password-reset",
	}
	defaultAPIPrefixes = []string{"/api"}
)

// compiled holds the immutable lookup tables derived from a Config.
type compiled struct {
	exactHosts     map[string]struct{}
	wildcardApex   string
	wildcardSuffix string

	appPrefixes    []string
	publicPrefixes []string
	apiPrefixes    []string

	loginPath   string
	appPath     string
	resolvePath string
}

func compile(cfg Config) (*compiled, error) {
	wildcard := normalizeHost(cfg.WildcardDomain)
	if wildcard == "" {
		return nil, ErrMissingWildcardDomain
	}

	c := &compiled{
		exactHosts:     make(map[string]struct{}, 3),
		wildcardApex:   wildcard,
		wildcardSuffix: "." + wildcard,
		appPrefixes:    defaultAppPrefixes,
		publicPrefixes: defaultPublicPaths,
		apiPrefixes:    defaultAPIPrefixes,
		loginPath:      cfg.LoginPath,
		appPath:        cfg.AppPath,
		resolvePath:    cfg.ResolvePath,
	}
	if c.loginPath == "" {
		c.loginPath = "/login"
	}
	if c.appPath == "" {
		c.appPath = "/app"
	}
	if c.resolvePath == "" {
		c.resolvePath = "/resolve"
	}

	c.exactHosts[wildcard] = struct{}{}
	if h := normalizeHost(cfg.LocalDevHost); h != "" {
		c.exactHosts[h] = struct{}{}
	}
	if h := normalizeHost(cfg.PrimaryDomain); h != "" {
		c.exactHosts[h] = struct{}{}
	}

	if err := verifyDisjoint(c.appPrefixes, c.publicPrefixes, c.apiPrefixes); err != nil {
		return nil, err
	}
	return c, nil
}

// verifyDisjoint rejects overlapping prefix sets so path classification has
// exactly one possible answer for every path.
func verifyDisjoint(sets ...[]string) error {
	var all []string
	for _, set := range sets {
		all = append(all, set...)
	}
	for i, a := range all {
		for _, b := range all[i+1:] {
			if strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
				return errors.Join(ErrOverlappingPrefixes,
					fmt.Errorf("prefixes %q and %q overlap", a, b))
			}
		}
	}
	return nil
}

// normalizeHost lowercases a host header value and strips the port. Anything
// unparseable normalizes to "", which classifies as not-control-plane: the
// safest default for custom-domain traffic.
func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if i := strings.Index(host, ":"); i != -1 {
		host = host[:i]
	}
	return strings.ToLower(host)
}

// hasPathPrefix reports whether path lives under prefix on a path-segment
// boundary, so "/apples" does not match the "/app" prefix.
func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
