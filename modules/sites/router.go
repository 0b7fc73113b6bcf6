package sites

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Mountable is anything that exposes its routes as an http.Handler.
type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which pieces to mount in the sites module.
// Each piece is optional and only mounted if provided.
type RouterOptions struct {
	// Sites is the tenant-facing management service (pages, domains, assets).
	Sites Mountable
	// ResolveHandler serves the domain-resolution endpoint consulted by the
	// request router for data-plane traffic.
	ResolveHandler http.HandlerFunc
	// RequireTenant wraps the management routes with whatever loads the
	// authenticated tenant into the request context.
	RequireTenant func(http.Handler) http.Handler
}

// Router creates the sites module router.
//
// Example:
//
//	svc := sites.NewService(store, store, directory, enforcer)
//
//	r := chi.NewRouter()
//	r.Mount("/", sites.Router(sites.RouterOptions{
//	    Sites:          svc,
//	    ResolveHandler: router.ResolveHandler(directory, pages, log),
//	    RequireTenant:  sessions.LoadTenant,
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.ResolveHandler != nil {
		r.Get("/resolve", opts.ResolveHandler)
	}

	if opts.Sites != nil {
		handler := opts.Sites.Handle()
		if opts.RequireTenant != nil {
			handler = opts.RequireTenant(handler)
		}
		r.Mount("/app/sites", handler)
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
