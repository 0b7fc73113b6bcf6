package billing

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	corebilling "github.com/dmitrymomot/landingkit/pkg/billing"
	"github.com/dmitrymomot/landingkit/pkg/plans"
	"github.com/dmitrymomot/landingkit/pkg/tenant"
)

// Config holds the module's redirect targets for hosted checkout flows.
type Config struct {
	// SuccessURL is where the provider sends the customer after payment.
	SuccessURL string `env:"BILLING_SUCCESS_URL" envDefault:"/app?checkout=success"`
	// CancelURL is where the provider sends the customer after abandoning checkout.
	CancelURL string `env:"BILLING_CANCEL_URL" envDefault:"/billing"`
}

// Service exposes the tenant-facing billing surface: hosted checkout links,
// the customer portal, and the current subscription view.
type Service struct {
	cfg      Config
	provider corebilling.Provider
	catalog  *plans.Catalog
	log      *slog.Logger
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

// NewService creates the billing service. Panics on nil dependencies.
func NewService(cfg Config, provider corebilling.Provider, catalog *plans.Catalog, opts ...ServiceOption) *Service {
	if provider == nil {
		panic("billing: provider is required")
	}
	if catalog == nil {
		panic("billing: plan catalog is required")
	}

	s := &Service{
		cfg:      cfg,
		provider: provider,
		catalog:  catalog,
		log:      slog.New(slog.DiscardHandler),
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

	r.Get("/subscription", s.subscription)
	r.Post("/checkout", s.checkout)
	r.Get("/portal", s.portal)

	return r
}

func (s *Service) subscription(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no tenant in request")
		return
	}

	limits := s.catalog.Limits(t.Plan)
	view := map[string]any{
		"plan":                 t.Plan,
		"billing_interval":     t.BillingInterval,
		"state":                t.State(),
		"cancel_at_period_end": t.CancelAtPeriodEnd,
		"limits": map[string]any{
			"max_pages":           limits.MaxPages,
			"max_storage_bytes":   limits.MaxStorageBytes,
			"max_custom_domains":  limits.MaxCustomDomains,
			"allow_custom_domain": limits.AllowCustomDomain,
		},
	}
	if t.CurrentPeriodEnd != nil {
		view["current_period_end"] = t.CurrentPeriodEnd
	}
	if t.PaymentFailedAt != nil {
		view["payment_failed_at"] = t.PaymentFailedAt
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Service) checkout(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no tenant in request")
		return
	}

	var req struct {
		Plan     plans.Plan     `json:"plan"`
		Interval plans.Interval `json:"interval"`
		Email    string         `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Plan == plans.PlanFree || !req.Plan.Valid() {
		writeError(w, http.StatusBadRequest, "plan must be a paid tier")
		return
	}
	if req.Interval == "" {
		req.Interval = plans.IntervalMonthly
	}

	priceID, err := s.catalog.PriceFor(req.Plan, req.Interval)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no price configured for plan")
		return
	}

	link, err := s.provider.CreateCheckoutLink(r.Context(), corebilling.CheckoutRequest{
		PriceID:    priceID,
		TenantID:   t.ID,
		Email:      req.Email,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	})
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to create checkout link",
			slog.String("tenant_id", t.ID.String()),
			slog.String("price_id", priceID),
			slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "failed to create checkout link")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": link.URL})
}

func (s *Service) portal(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no tenant in request")
		return
	}
	if t.ProviderCustomerID == "" {
		writeError(w, http.StatusNotFound, "no billing profile for tenant")
		return
	}

	link, err := s.provider.GetCustomerPortalLink(r.Context(), t.ProviderCustomerID, t.ProviderSubscriptionID)
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to create portal link",
			slog.String("tenant_id", t.ID.String()),
			slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "failed to create portal link")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": link.URL})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
