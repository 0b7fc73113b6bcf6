package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/landingkit/pkg/domaindir"
	"github.com/dmitrymomot/landingkit/pkg/router"
)

func recordingHandler(name string, paths *[]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*paths = append(*paths, name+":"+r.URL.Path+"?"+r.URL.RawQuery)
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware(t *testing.T) {
	rt := newTestRouter(t)

	authed := func(r *http.Request) bool { return r.Header.Get("X-Test-Session") == "1" }

	t.Run("data-plane root rewrites to resolve endpoint", func(t *testing.T) {
		var served []string
		h := rt.Middleware(authed, recordingHandler("pages", &served))(recordingHandler("app", &served))

		req := httptest.NewRequest(http.MethodGet, "http://custom.com/", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Len(t, served, 1)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, served[0], "app:/resolve?")
		assert.Contains(t, served[0], "host=custom.com")
		assert.Contains(t, served[0], "fallback=%2Flogin")
	})

	t.Run("data-plane content passes through to pages", func(t *testing.T) {
		var served []string
		h := rt.Middleware(authed, recordingHandler("pages", &served))(recordingHandler("app", &served))

		req := httptest.NewRequest(http.MethodGet, "http://custom.com/pricing", nil)
		h.ServeHTTP(httptest.NewRecorder(), req)

		require.Len(t, served, 1)
		assert.Equal(t, "pages:/pricing?", served[0])
	})

	t.Run("unauthenticated app path redirects to login", func(t *testing.T) {
		var served []string
		h := rt.Middleware(authed, recordingHandler("pages", &served))(recordingHandler("app", &served))

		req := httptest.NewRequest(http.MethodGet, "http://builder.example.com/settings", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Empty(t, served)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("authenticated root redirects to app", func(t *testing.T) {
		h := rt.Middleware(authed, nil)(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "http://builder.example.com/", nil)
		req.Header.Set("X-Test-Session", "1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/app", rec.Header().Get("Location"))
	})

	t.Run("public path served without session", func(t *testing.T) {
		var served []string
		h := rt.Middleware(authed, recordingHandler("pages", &served))(recordingHandler("app", &served))

		req := httptest.NewRequest(http.MethodGet, "http://builder.example.com/login", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Len(t, served, 1)
		assert.Equal(t, "app:/login?", served[0])
	})
}

func TestResolveHandler(t *testing.T) {
	ctx := context.Background()

	newDir := func(t *testing.T) domaindir.Directory {
		t.Helper()
		dir := domaindir.NewMemoryDirectory()
		require.NoError(t, dir.Bind(ctx, domaindir.Binding{
			Domain:       "bound.example.org",
			TenantID:     uuid.New(),
			TenantPageID: "sites/abc123",
		}))
		return dir
	}

	t.Run("bound domain rewrites to page path", func(t *testing.T) {
		var served []string
		h := router.ResolveHandler(newDir(t), recordingHandler("pages", &served), nil)

		req := httptest.NewRequest(http.MethodGet, "/resolve?host=bound.example.org&fallback=/login", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Len(t, served, 1)
		assert.Equal(t, "pages:/sites/abc123?", served[0])
	})

	t.Run("unbound domain redirects to fallback", func(t *testing.T) {
		h := router.ResolveHandler(newDir(t), nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/resolve?host=unbound.example.org&fallback=/login", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("missing fallback defaults to login", func(t *testing.T) {
		h := router.ResolveHandler(newDir(t), nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/resolve?host=unbound.example.org", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("resolution errors redirect instead of 5xx", func(t *testing.T) {
		h := router.ResolveHandler(failingDirectory{}, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/resolve?host=any.example.org&fallback=/login", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})
}

type failingDirectory struct{}

func (failingDirectory) Resolve(context.Context, string) (*domaindir.Binding, error) {
	return nil, assert.AnError
}
func (failingDirectory) Bind(context.Context, domaindir.Binding) error { return assert.AnError }
func (failingDirectory) Unbind(context.Context, string) error          { return assert.AnError }
func (failingDirectory) CountForTenant(context.Context, uuid.UUID) (int64, error) {
	return 0, assert.AnError
}
