package router

import (
	"net/http"
	"net/url"
)

// SessionChecker is the external session-authentication collaborator.
// Implementations must be side-effect-free; the router only reads the result.
type SessionChecker func(r *http.Request) bool

// Middleware applies routing decisions ahead of the control-plane app.
// The wrapped handler serves control-plane traffic (including the public
// resolve endpoint); pages serves data-plane content directly.
//
// Decisions map to HTTP as follows:
//   - ServeApp: next
//   - PassThrough: pages
//   - RewriteToDomainResolution: URL rewritten to the resolve endpoint with
//     host and fallback query parameters, then served by next
//   - RedirectToLogin / RedirectToApp: 302 to the target
func (rt *Router) Middleware(session SessionChecker, pages http.Handler) func(http.Handler) http.Handler {
	if session == nil {
		session = func(*http.Request) bool { return false }
	}
	if pages == nil {
		pages = http.NotFoundHandler()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := rt.Classify(r.Host, r.URL.Path, session(r))

			switch d.Kind {
			case RewriteToDomainResolution:
				q := url.Values{}
				q.Set("host", d.Domain)
				q.Set("fallback", d.Target)

				r2 := r.Clone(r.Context())
				r2.URL.Path = rt.c.resolvePath
				r2.URL.RawQuery = q.Encode()
				next.ServeHTTP(w, r2)

			case RedirectToLogin, RedirectToApp:
				http.Redirect(w, r, d.Target, http.StatusFound)

			case PassThrough:
				pages.ServeHTTP(w, r)

			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
