// Package middleware provides observability middleware for the route host.
//
// This package includes:
//   - Prometheus metrics, mounted per route
//   - OpenTelemetry tracing, mounted per route
//   - Request logging with slog
//
// Per-route middleware has the router.RouteMiddleware shape, so labels and
// span names use the mount pattern rather than the concrete path:
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	registrar, _ := router.NewRegistrar(router.RegistrarConfig{
//	    Middleware: []router.RouteMiddleware{
//	        middleware.Tracing(),
//	        m.Middleware,
//	    },
//	})
//
// Expose metrics with promhttp:
//
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package middleware
