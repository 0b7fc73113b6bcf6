package router

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/landingkit/pkg/domaindir"
)

// ResolveHandler serves the domain-resolution endpoint. It looks the host
// query parameter up in the directory and rewrites the request to the bound
// page, served by pages. A missing binding or an internal failure redirects
// to the fallback; end-user-facing traffic never sees a 5xx from here.
func ResolveHandler(dir domaindir.Directory, pages http.Handler, log *slog.Logger) http.HandlerFunc {
	if dir == nil {
		panic("router: domain directory is required")
	}
	if pages == nil {
		pages = http.NotFoundHandler()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		host := r.URL.Query().Get("host")
		fallback := r.URL.Query().Get("fallback")
		if fallback == "" {
			fallback = "/login"
		}

		binding, err := dir.Resolve(r.Context(), host)
		if err != nil {
			if !errors.Is(err, domaindir.ErrDomainNotBound) && !errors.Is(err, domaindir.ErrEmptyDomain) {
				log.WarnContext(r.Context(), "domain resolution failed",
					slog.String("domain", host), slog.Any("error", err))
			}
			http.Redirect(w, r, fallback, http.StatusFound)
			return
		}

		r2 := r.Clone(r.Context())
		r2.URL.Path = "/" + binding.TenantPageID
		r2.URL.RawQuery = ""
		pages.ServeHTTP(w, r2)
	}
}
