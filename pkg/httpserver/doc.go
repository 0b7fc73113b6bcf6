// Package httpserver provides a thin wrapper around net/http Server with
// environment-driven configuration, graceful shutdown, and probe handlers.
//
// # Usage
//
//	cfg := config.MustLoad[httpserver.Config]()
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, handler); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Run blocks until the context is canceled or the listener fails, then shuts
// down gracefully within the configured shutdown timeout.
//
// HealthCheckHandler builds a probe endpoint; with no checks it reports
// liveness, with checks it reports readiness of the given dependencies.
package httpserver
