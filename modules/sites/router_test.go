package sites_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/landingkit/modules/sites"
	"github.com/dmitrymomot/landingkit/pkg/domaindir"
	"github.com/dmitrymomot/landingkit/pkg/plans"
	"github.com/dmitrymomot/landingkit/pkg/quota"
	"github.com/dmitrymomot/landingkit/pkg/tenant"
)

// memStore backs PageStore and AssetStore in tests.
type memStore struct {
	mu     sync.Mutex
	pages  []sites.Page
	assets []sites.Asset
}

func (m *memStore) CreatePage(ctx context.Context, tenantID uuid.UUID, name string) (*sites.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := sites.Page{ID: uuid.New(), TenantID: tenantID, Name: name, CreatedAt: time.Now()}
	m.pages = append(m.pages, p)
	return &p, nil
}

func (m *memStore) ListPages(ctx context.Context, tenantID uuid.UUID) ([]sites.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sites.Page
	for _, p := range m.pages {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) DeletePage(ctx context.Context, tenantID, pageID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.pages {
		if p.ID == pageID && p.TenantID == tenantID {
			m.pages = append(m.pages[:i], m.pages[i+1:]...)
			return nil
		}
	}
	return sites.ErrPageNotFound
}

func (m *memStore) SaveAsset(ctx context.Context, tenantID uuid.UUID, name string, sizeBytes int64) (*sites.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := sites.Asset{ID: uuid.New(), TenantID: tenantID, Name: name, SizeBytes: sizeBytes, CreatedAt: time.Now()}
	m.assets = append(m.assets, a)
	return &a, nil
}

func (m *memStore) countPages(tenantID uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.pages {
		if p.TenantID == tenantID {
			n++
		}
	}
	return n
}

func (m *memStore) sumAssets(tenantID uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.assets {
		if a.TenantID == tenantID {
			n += a.SizeBytes
		}
	}
	return n
}

type testEnv struct {
	handler http.Handler
	store   *memStore
	dir     domaindir.Directory
	tenant  *tenant.Tenant
}

func newTestEnv(t *testing.T, plan plans.Plan) *testEnv {
	t.Helper()

	store := &memStore{}
	dir := domaindir.NewMemoryDirectory()
	catalog, err := plans.NewCatalog(plans.DefaultLimits(), plans.DefaultPrices())
	require.NoError(t, err)

	counters := quota.NewRegistry()
	counters.Register(quota.ResourcePages, func(ctx context.Context, id uuid.UUID) (int64, error) {
		return store.countPages(id), nil
	})
	counters.Register(quota.ResourceStorageBytes, func(ctx context.Context, id uuid.UUID) (int64, error) {
		return store.sumAssets(id), nil
	})
	counters.Register(quota.ResourceDomains, quota.NewDomainCounter(dir))

	current := &tenant.Tenant{ID: uuid.New(), Plan: plan}

	svc := sites.NewService(store, store, dir, quota.NewEnforcer(catalog, counters))
	handler := sites.Router(sites.RouterOptions{
		Sites: svc,
		RequireTenant: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(tenant.WithTenant(r.Context(), current)))
			})
		},
	})

	return &testEnv{handler: handler, store: store, dir: dir, tenant: current}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestCreatePage(t *testing.T) {
	t.Run("allowed under quota", func(t *testing.T) {
		env := newTestEnv(t, plans.PlanFree)

		rec := env.do(t, http.MethodPost, "/app/sites/pages", map[string]string{"name": "launch"})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, int64(1), env.store.countPages(env.tenant.ID))
	})

	t.Run("denied at the plan limit", func(t *testing.T) {
		env := newTestEnv(t, plans.PlanFree)
		for range 3 {
			rec := env.do(t, http.MethodPost, "/app/sites/pages", map[string]string{"name": "p"})
			require.Equal(t, http.StatusCreated, rec.Code)
		}

		rec := env.do(t, http.MethodPost, "/app/sites/pages", map[string]string{"name": "p4"})
		require.Equal(t, http.StatusForbidden, rec.Code)

		var decision quota.PageDecision
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
		assert.False(t, decision.Allowed)
		assert.Equal(t, int64(3), decision.CurrentCount)
		assert.Equal(t, int64(3), decision.MaxPages)
		assert.Equal(t, plans.PlanFree, decision.Plan)
	})

	t.Run("missing name rejected", func(t *testing.T) {
		env := newTestEnv(t, plans.PlanFree)
		rec := env.do(t, http.MethodPost, "/app/sites/pages", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no tenant in context", func(t *testing.T) {
		env := newTestEnv(t, plans.PlanFree)

		// Bypass the tenant-loading middleware.
		svc := sites.NewService(env.store, env.store, env.dir,
			quota.NewEnforcer(mustCatalog(t), quota.NewRegistry()))
		req := httptest.NewRequest(http.MethodPost, "/pages", bytes.NewReader([]byte(`{"name":"x"}`)))
		rec := httptest.NewRecorder()
		svc.Handle().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func mustCatalog(t *testing.T) *plans.Catalog {
	t.Helper()
	catalog, err := plans.NewCatalog(plans.DefaultLimits(), plans.DefaultPrices())
	require.NoError(t, err)
	return catalog
}

func TestBindDomain(t *testing.T) {
	t.Run("free plan denied", func(t *testing.T) {
		env := newTestEnv(t, plans.PlanFree)

		rec := env.do(t, http.MethodPost, "/app/sites/domains",
			map[string]string{"domain": "acme.example.com", "page_id": "page-1"})
		require.Equal(t, http.StatusForbidden, rec.Code)

		var decision quota.DomainDecision
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
		assert.Equal(t, plans.PlanFree, decision.Plan)
		assert.Equal(t, quota.ReasonPlanForbidsDomains, decision.Reason)
	})

	t.Run("personal plan binds and resolves", func(t *testing.T) {
		env := newTestEnv(t, plans.PlanPersonal)

		rec := env.do(t, http.MethodPost, "/app/sites/domains",
			map[string]string{"domain": "Acme.Example.com", "page_id": "page-1"})
		require.Equal(t, http.StatusCreated, rec.Code)

		binding, err := env.dir.Resolve(context.Background(), "acme.example.com")
		require.NoError(t, err)
		assert.Equal(t, env.tenant.ID, binding.TenantID)
		assert.Equal(t, "page-1", binding.TenantPageID)
	})

	t.Run("taken domain conflicts", func(t *testing.T) {
		env := newTestEnv(t, plans.PlanPersonal)
		require.NoError(t, env.dir.Bind(context.Background(), domaindir.Binding{
			Domain:       "acme.example.com",
			TenantID:     uuid.New(),
			TenantPageID: "other-page",
		}))

		rec := env.do(t, http.MethodPost, "/app/sites/domains",
			map[string]string{"domain": "acme.example.com", "page_id": "page-1"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("domain limit enforced", func(t *testing.T) {
		env := newTestEnv(t, plans.PlanPersonal)
		for _, d := range []string{"a.example.com", "b.example.com", "c.example.com"} {
			rec := env.do(t, http.MethodPost, "/app/sites/domains",
				map[string]string{"domain": d, "page_id": "page-1"})
			require.Equal(t, http.StatusCreated, rec.Code)
		}

		rec := env.do(t, http.MethodPost, "/app/sites/domains",
			map[string]string{"domain": "d.example.com", "page_id": "page-1"})
		require.Equal(t, http.StatusForbidden, rec.Code)

		var decision quota.DomainDecision
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
		assert.Equal(t, quota.ReasonLimitReached, decision.Reason)
		assert.Equal(t, int64(3), decision.CurrentCount)
	})
}

func TestUnbindDomain(t *testing.T) {
	t.Run("owner unbinds", func(t *testing.T) {
		env := newTestEnv(t, plans.PlanPersonal)
		require.NoError(t, env.dir.Bind(context.Background(), domaindir.Binding{
			Domain:       "acme.example.com",
			TenantID:     env.tenant.ID,
			TenantPageID: "page-1",
		}))

		rec := env.do(t, http.MethodDelete, "/app/sites/domains/acme.example.com", nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err := env.dir.Resolve(context.Background(), "acme.example.com")
		assert.ErrorIs(t, err, domaindir.ErrDomainNotBound)
	})

	t.Run("non-owner gets not found", func(t *testing.T) {
		env := newTestEnv(t, plans.PlanPersonal)
		require.NoError(t, env.dir.Bind(context.Background(), domaindir.Binding{
			Domain:       "acme.example.com",
			TenantID:     uuid.New(),
			TenantPageID: "other-page",
		}))

		rec := env.do(t, http.MethodDelete, "/app/sites/domains/acme.example.com", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		// Binding survives.
		_, err := env.dir.Resolve(context.Background(), "acme.example.com")
		assert.NoError(t, err)
	})
}

func TestUploadAsset(t *testing.T) {
	t.Run("allowed within storage limit", func(t *testing.T) {
		env := newTestEnv(t, plans.PlanFree)

		rec := env.do(t, http.MethodPost, "/app/sites/assets",
			map[string]any{"name": "hero.png", "size_bytes": 1 << 20})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, int64(1<<20), env.store.sumAssets(env.tenant.ID))
	})

	t.Run("denied when it would exceed the limit", func(t *testing.T) {
		env := newTestEnv(t, plans.PlanFree)
		_, err := env.store.SaveAsset(context.Background(), env.tenant.ID, "big.bin", 49<<20)
		require.NoError(t, err)

		rec := env.do(t, http.MethodPost, "/app/sites/assets",
			map[string]any{"name": "more.bin", "size_bytes": 2 << 20})
		require.Equal(t, http.StatusForbidden, rec.Code)

		var decision quota.UploadDecision
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
		assert.Equal(t, quota.ReasonLimitReached, decision.Reason)
	})
}
