package sites

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/landingkit/pkg/domaindir"
	"github.com/dmitrymomot/landingkit/pkg/quota"
	"github.com/dmitrymomot/landingkit/pkg/tenant"
)

// Service exposes the tenant-facing site management surface: pages, assets
// and custom domains. Every mutating action passes a quota check first.
type Service struct {
	pages     PageStore
	assets    AssetStore
	directory domaindir.Directory
	enforcer  *quota.Enforcer
	log       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the site management service. Panics on nil dependencies.
func NewService(pages PageStore, assets AssetStore, directory domaindir.Directory, enforcer *quota.Enforcer, opts ...ServiceOption) *Service {
	if pages == nil {
		panic("sites: page store is required")
	}
	if assets == nil {
		panic("sites: asset store is required")
	}
	if directory == nil {
		panic("sites: domain directory is required")
	}
	if enforcer == nil {
		panic("sites: quota enforcer is required")
	}

	s := &Service{
		pages:     pages,
		assets:    assets,
		directory: directory,
		enforcer:  enforcer,
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the service's HTTP routes. Every route expects an
// authenticated tenant in the request context.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/pages", s.listPages)
	r.Post("/pages", s.createPage)
	r.Delete("/pages/{pageID}", s.deletePage)

	r.Post("/domains", s.bindDomain)
	r.Delete("/domains/{domain}", s.unbindDomain)

	r.Post("/assets", s.uploadAsset)

	return r
}

func (s *Service) listPages(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no tenant in request")
		return
	}

	pages, err := s.pages.ListPages(r.Context(), t.ID)
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to list pages", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list pages")
		return
	}

	type pageView struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	views := make([]pageView, 0, len(pages))
	for _, p := range pages {
		views = append(views, pageView{ID: p.ID.String(), Name: p.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": views})
}

func (s *Service) createPage(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no tenant in request")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "page name is required")
		return
	}

	decision := s.enforcer.CheckCanCreatePage(r.Context(), t.ID, t.Plan)
	if !decision.Allowed {
		writeJSON(w, http.StatusForbidden, decision)
		return
	}

	page, err := s.pages.CreatePage(r.Context(), t.ID, req.Name)
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to create page", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to create page")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":   page.ID.String(),
		"name": page.Name,
	})
}

func (s *Service) deletePage(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no tenant in request")
		return
	}

	pageID, err := parseUUIDParam(r, "pageID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page id")
		return
	}

	if err := s.pages.DeletePage(r.Context(), t.ID, pageID); err != nil {
		if errors.Is(err, ErrPageNotFound) {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		s.log.ErrorContext(r.Context(), "failed to delete page", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to delete page")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) bindDomain(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no tenant in request")
		return
	}

	var req struct {
		Domain string `json:"domain"`
		PageID string `json:"page_id"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Domain == "" || req.PageID == "" {
		writeError(w, http.StatusBadRequest, "domain and page_id are required")
		return
	}

	decision := s.enforcer.CheckCanUseCustomDomain(r.Context(), t.ID, t.Plan)
	if !decision.Allowed {
		writeJSON(w, http.StatusForbidden, decision)
		return
	}

	err := s.directory.Bind(r.Context(), domaindir.Binding{
		Domain:       req.Domain,
		TenantID:     t.ID,
		TenantPageID: req.PageID,
		Note:         req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, domaindir.ErrDomainTaken):
			writeError(w, http.StatusConflict, "domain is already bound")
		case errors.Is(err, domaindir.ErrEmptyDomain):
			writeError(w, http.StatusBadRequest, "invalid domain")
		default:
			s.log.ErrorContext(r.Context(), "failed to bind domain",
				slog.String("domain", req.Domain),
				slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "failed to bind domain")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"domain":  domaindir.NormalizeDomain(req.Domain),
		"page_id": req.PageID,
	})
}

func (s *Service) unbindDomain(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no tenant in request")
		return
	}

	domain := chi.URLParam(r, "domain")

	// Only the owning tenant may unbind.
	binding, err := s.directory.Resolve(r.Context(), domain)
	if err != nil {
		if errors.Is(err, domaindir.ErrDomainNotBound) {
			writeError(w, http.StatusNotFound, "domain not bound")
			return
		}
		s.log.ErrorContext(r.Context(), "failed to resolve domain",
			slog.String("domain", domain),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to unbind domain")
		return
	}
	if binding.TenantID != t.ID {
		writeError(w, http.StatusNotFound, "domain not bound")
		return
	}

	if err := s.directory.Unbind(r.Context(), domain); err != nil {
		s.log.ErrorContext(r.Context(), "failed to unbind domain",
			slog.String("domain", domain),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to unbind domain")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) uploadAsset(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no tenant in request")
		return
	}

	var req struct {
		Name      string `json:"name"`
		SizeBytes int64  `json:"size_bytes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.SizeBytes <= 0 {
		writeError(w, http.StatusBadRequest, "name and size_bytes are required")
		return
	}

	decision := s.enforcer.CheckCanUpload(r.Context(), t.ID, t.Plan, req.SizeBytes)
	if !decision.Allowed {
		writeJSON(w, http.StatusForbidden, decision)
		return
	}

	asset, err := s.assets.SaveAsset(r.Context(), t.ID, req.Name, req.SizeBytes)
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to save asset", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to save asset")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         asset.ID.String(),
		"name":       asset.Name,
		"size_bytes": asset.SizeBytes,
	})
}
