// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// A single factory, New, creates a *slog.Logger configured by Option
// functions: output format (text or json), minimum level, static attributes
// applied to every record, and ContextExtractor callbacks that pull dynamic
// attributes from the request context on every Handle call.
//
// # Architecture
//
// New picks a concrete slog.Handler (slog.NewTextHandler or
// slog.NewJSONHandler) based on the configured Format, then wraps it with
// LogHandlerDecorator, which runs the registered ContextExtractor callbacks
// before delegating to the underlying handler.
//
// Helper constructors such as Error, TenantID, Domain and SubscriptionID live
// in attr.go and keep attribute naming consistent across the codebase.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.AppEnv, "landingkit"),
//	    logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "domain bound",
//	    logger.Domain("acme.example.com"),
//	    logger.TenantID(t.ID),
//	)
//
// Tenant-scoped handlers get tenant_id injected automatically once the tenant
// is in context; no manual attribute plumbing per call site.
package logger
