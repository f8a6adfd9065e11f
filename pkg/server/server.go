package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/formdata"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/host"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/middleware"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/router"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address.
	Addr string

	// Host selects the host router: "chi" (default) or "gin".
	Host string

	// Prefix is prepended to every route module's mount path.
	Prefix string

	// Production hides internal error messages from clients.
	Production bool

	// Body configures the body parser that runs before routing.
	Body shim.BodyOptions

	// Limits are the multipart ceilings.
	Limits formdata.Limits

	// TrustedProxies lists proxies whose forwarding headers are honoured.
	TrustedProxies []string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Registry enables Prometheus metrics when non-nil.
	Registry *prometheus.Registry

	// MetricsPath is where the registry is exposed (default "/metrics").
	MetricsPath string

	// Tracing enables per-route spans from the global tracer provider.
	Tracing bool

	// TracerName names the tracer.
	TracerName string

	// LogRequests logs one line per request.
	LogRequests bool
}

// Server hosts the loaded route modules.
type Server struct {
	config  Config
	logger  *slog.Logger
	adapter *shim.Adapter
	metrics *middleware.Metrics

	mux     router.Mux
	native  http.Handler
	handler http.Handler

	table   *router.Table
	summary router.Summary

	httpServer *http.Server
}

// New creates a server and its host router. Routes are mounted by Mount.
func New(config Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}

	s := &Server{
		config: config,
		logger: logger,
		adapter: shim.NewAdapter(shim.AdapterConfig{
			Production:     config.Production,
			Limits:         config.Limits,
			TrustedProxies: config.TrustedProxies,
			Logger:         logger,
		}),
	}

	switch config.Host {
	case "gin":
		engine := host.NewGinEngine()
		s.mux = host.NewGin(engine, s.adapter.NotFound())
		s.native = engine
	default:
		r := chi.NewRouter()
		r.NotFound(s.adapter.NotFound().ServeHTTP)
		r.MethodNotAllowed(s.methodNotAllowed)
		s.mux = host.NewChi(r)
		s.native = r
	}

	if config.Registry != nil {
		s.metrics = middleware.NewMetrics(middleware.WithRegistry(config.Registry))
	}

	var h http.Handler = s.native
	h = shim.ParseBody(config.Body)(h)
	h = shim.ParseCookies(h)
	if config.LogRequests {
		h = middleware.Logger(logger)(h)
	}
	h = chimw.RequestID(h)
	s.handler = h

	return s
}

// Mount loads the route modules and registers them, followed by the
// health and metrics endpoints. A fatal registration error is returned
// unchanged; failed modules only show up in the summary.
func (s *Server) Mount(manifest router.Manifest, routes []router.RouteDescriptor) error {
	var mws []router.RouteMiddleware
	if s.config.Tracing {
		mws = append(mws, middleware.Tracing(middleware.WithTracerName(s.config.TracerName)))
	}
	if s.metrics != nil {
		mws = append(mws, s.metrics.Middleware)
	}

	registrar, err := router.NewRegistrar(router.RegistrarConfig{
		Prefix:     s.config.Prefix,
		Manifest:   manifest,
		Adapter:    s.adapter,
		Middleware: mws,
		Logger:     s.logger,
	})
	if err != nil {
		return err
	}

	table, summary, err := registrar.Register(s.mux, routes)
	if err != nil {
		return err
	}
	s.table = table
	s.summary = summary

	if s.metrics != nil {
		s.metrics.RecordRegistration(summary)
	}

	if err := s.mux.Handle(http.MethodGet, "/healthz", http.HandlerFunc(s.health)); err != nil {
		return fmt.Errorf("mount /healthz: %w", err)
	}
	if s.config.Registry != nil {
		h := promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{Registry: s.config.Registry})
		if err := s.mux.Handle(http.MethodGet, s.config.MetricsPath, h); err != nil {
			return fmt.Errorf("mount %s: %w", s.config.MetricsPath, err)
		}
	}
	return nil
}

// Handler returns the full HTTP handler: request IDs, cookie and body
// parsing, then the host router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Routes returns the mounted registrations.
func (s *Server) Routes() []router.Registration {
	if s.table == nil {
		return nil
	}
	return s.table.Routes()
}

// Summary returns the outcome of Mount.
func (s *Server) Summary() router.Summary {
	return s.summary
}

// Adapter returns the request adapter.
func (s *Server) Adapter() *shim.Adapter {
	return s.adapter
}

// Run serves until ctx is cancelled or the listener fails, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Requests keep ctx's values but not its cancellation, so in-flight
	// requests drain during Shutdown.
	base := context.WithoutCancel(ctx)
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return base },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String(), "host", s.hostName())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.WithoutCancel(ctx))
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

func (s *Server) hostName() string {
	if s.config.Host == "gin" {
		return "gin"
	}
	return "chi"
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	shim.WriteResponse(w, shim.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"mounted": s.summary.Mounted,
		"failed":  s.summary.Failed,
	}), s.logger)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if s.table != nil {
		if allowed := s.table.Allowed(r.URL.Path); len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
		}
	}
	shim.WriteEnvelope(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
