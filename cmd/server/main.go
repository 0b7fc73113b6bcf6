package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	billingmod "github.com/dmitrymomot/landingkit/modules/billing"
	"github.com/dmitrymomot/landingkit/modules/sites"
	"github.com/dmitrymomot/landingkit/pkg/billing"
	"github.com/dmitrymomot/landingkit/pkg/config"
	"github.com/dmitrymomot/landingkit/pkg/domaindir"
	"github.com/dmitrymomot/landingkit/pkg/httpserver"
	"github.com/dmitrymomot/landingkit/pkg/logger"
	"github.com/dmitrymomot/landingkit/pkg/pg"
	"github.com/dmitrymomot/landingkit/pkg/plans"
	"github.com/dmitrymomot/landingkit/pkg/quota"
	"github.com/dmitrymomot/landingkit/pkg/redis"
	"github.com/dmitrymomot/landingkit/pkg/router"
	"github.com/dmitrymomot/landingkit/pkg/tenant"
)

type appConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`
}

func main() {
	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(
		logger.WithEnvironment(appCfg.Env, "landingkit"),
		logger.WithContextExtractors(tenant.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), log); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	catalog, err := plans.NewCatalog(plans.DefaultLimits(), plans.DefaultPrices())
	if err != nil {
		return err
	}

	tenants := tenant.NewPostgresStore(pool)
	directory := domaindir.NewCachedDirectory(
		domaindir.NewPostgresDirectory(pool), redisClient, domaindir.DefaultCacheTTL, log)
	siteStore := sites.NewPostgresStore(pool)

	counters := quota.NewRegistry()
	counters.Register(quota.ResourcePages, quota.NewPageCounter(pool))
	counters.Register(quota.ResourceStorageBytes, quota.NewStorageCounter(pool))
	counters.Register(quota.ResourceDomains, quota.NewDomainCounter(directory))
	enforcer := quota.NewEnforcer(catalog, counters, quota.WithLogger(log))

	// Billing is optional at startup: missing Paddle credentials must not
	// take page serving down with them.
	var (
		provider billing.Provider
		machine  *billing.StateMachine
	)
	var paddleCfg billing.PaddleConfig
	if err := config.Load(&paddleCfg); err != nil {
		log.Warn("billing disabled, provider credentials missing", logger.Error(err))
	} else {
		provider, err = billing.NewPaddleProvider(paddleCfg)
		if err != nil {
			return err
		}
		machine = billing.NewStateMachine(tenants, catalog, provider, billing.WithLogger(log))
	}

	var routerCfg router.Config
	config.MustLoad(&routerCfg)
	requestRouter, err := router.New(routerCfg)
	if err != nil {
		return err
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool), redis.Healthcheck(redisClient)))

	// Session auth and page rendering are external collaborators. The auth
	// proxy in front of this service verifies the session and forwards the
	// tenant ID; its presence is what the request router checks.
	session := func(r *http.Request) bool { return r.Header.Get("X-Tenant-ID") != "" }
	pagesHandler := http.NotFoundHandler()
	requireTenant := requireTenantMiddleware(tenants)

	mux.Mount("/", sites.Router(sites.RouterOptions{
		Sites:          sites.NewService(siteStore, siteStore, directory, enforcer, sites.WithLogger(log)),
		ResolveHandler: router.ResolveHandler(directory, pagesHandler, log),
		RequireTenant:  requireTenant,
	}))

	if provider != nil {
		var billingCfg billingmod.Config
		config.MustLoad(&billingCfg)
		billingSvc := billingmod.NewService(billingCfg, provider, catalog,
			billingmod.WithLogger(log))

		mux.Post("/webhooks/billing", billing.WebhookHandler(provider, machine, log))
		mux.Mount("/app/billing", requireTenant(billingSvc.Handle()))
	}

	handler := requestRouter.Middleware(session, pagesHandler)(mux)

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, handler)
}

// requireTenantMiddleware loads the tenant row named by the session into the
// request context. Session validation itself is an external collaborator;
// here the tenant ID arrives pre-verified in a header set by the auth proxy.
func requireTenantMiddleware(tenants tenant.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(r.Header.Get("X-Tenant-ID"))
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			t, err := tenants.GetByID(r.Context(), id)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(tenant.WithTenant(r.Context(), t)))
		})
	}
}
