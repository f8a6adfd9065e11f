package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/errors"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/routepath"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"
)

// Mux is the host router. It accepts a method, a pattern in ":name" /
// "*name" syntax and a handler; matching is its own business.
type Mux interface {
	Handle(method, pattern string, h http.Handler) error
}

// RouteMiddleware wraps the handler mounted for one registration.
type RouteMiddleware func(reg Registration, next http.Handler) http.Handler

// RegistrarConfig configures a Registrar.
type RegistrarConfig struct {
	// Prefix is prepended to every mount path (e.g. "/api").
	Prefix string

	// Manifest holds the compiled module loaders.
	Manifest Manifest

	// Adapter bridges native requests to shim handlers.
	Adapter *shim.Adapter

	// Middleware wraps each mounted handler, first entry outermost.
	Middleware []RouteMiddleware

	// Logger receives the startup log.
	Logger *slog.Logger
}

// Registrar loads route modules from the manifest and mounts their
// handlers on a host router.
type Registrar struct {
	prefix     string
	manifest   Manifest
	adapter    *shim.Adapter
	middleware []RouteMiddleware
	logger     *slog.Logger
}

// Summary counts the outcome of Register.
type Summary struct {
	// Files is the number of discovered route modules.
	Files int
	// Mounted is the number of (method, path) pairs registered.
	Mounted int
	// Failed is the number of modules skipped because they did not load.
	Failed int
	// Empty is the number of modules that exported no verbs.
	Empty int
	// Duration is how long loading took.
	Duration time.Duration
}

// NewRegistrar creates a Registrar.
func NewRegistrar(cfg RegistrarConfig) (*Registrar, error) {
	prefix, err := routepath.CleanPrefix(cfg.Prefix)
	if err != nil {
		return nil, errors.New("R021").WithDetail(fmt.Sprintf("routes.prefix %q", cfg.Prefix)).Wrap(err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	adapter := cfg.Adapter
	if adapter == nil {
		adapter = shim.NewAdapter(shim.AdapterConfig{Logger: logger})
	}

	return &Registrar{
		prefix:     prefix,
		manifest:   cfg.Manifest,
		adapter:    adapter,
		middleware: cfg.Middleware,
		logger:     logger,
	}, nil
}

// Register loads every route module in order and mounts one handler per
// exported verb. Loading is sequential so the startup log reads in
// discovery order.
//
// Modules that are missing from the manifest, fail or panic while loading
// are logged and skipped. A route collision or a pattern the host refuses
// aborts registration. The returned table is frozen.
func (r *Registrar) Register(mux Mux, routes []RouteDescriptor) (*Table, Summary, error) {
	start := time.Now()
	sum := Summary{Files: len(routes)}

	if err := NewValidator(routes).Validate(); err != nil {
		return nil, sum, errors.New("R002").WithDetail(err.Error()).Wrap(err)
	}

	table := NewTable()

	for _, d := range routes {
		exports, err := r.load(d)
		if err != nil {
			r.logger.Error("route module skipped", "file", d.SourcePath, "error", err)
			sum.Failed++
			continue
		}

		if exports.Count() == 0 {
			r.logger.Warn("route module exports no handlers", "file", d.SourcePath, "code", "R013")
			sum.Empty++
			continue
		}

		pattern := routepath.Join(r.prefix, d.MountPath)
		for _, method := range Methods {
			h := exports.Lookup(method)
			if h.IsZero() {
				continue
			}

			reg := Registration{
				Method:  method,
				Pattern: pattern,
				Kind:    h.Kind(),
				Handler: h,
				Source:  d.RelPath,
			}
			if err := table.Add(reg); err != nil {
				return nil, sum, err
			}
			if err := mux.Handle(method, pattern, r.handler(reg)); err != nil {
				return nil, sum, errors.New("R004").
					WithFile(d.SourcePath).
					WithDetail(fmt.Sprintf("%s %s", method, pattern)).
					Wrap(err)
			}

			r.logger.Info("mounted route",
				"method", method,
				"path", pattern,
				"kind", h.Kind().String(),
				"file", d.RelPath)
			sum.Mounted++
		}
	}

	table.Freeze()
	sum.Duration = time.Since(start)

	r.logger.Info("route loading complete",
		"files", sum.Files,
		"mounted", sum.Mounted,
		"failed", sum.Failed,
		"empty", sum.Empty,
		"duration", sum.Duration)

	return table, sum, nil
}

// load runs the module's loader, turning errors and panics into coded
// load errors.
func (r *Registrar) load(d RouteDescriptor) (exports Exports, err error) {
	loader, ok := r.manifest[d.RelPath]
	if !ok || loader == nil {
		return Exports{}, errors.New("R010").WithFile(d.SourcePath)
	}

	defer func() {
		if rec := recover(); rec != nil {
			exports = Exports{}
			err = errors.New("R012").WithFile(d.SourcePath).Wrap(fmt.Errorf("%v", rec))
		}
	}()

	exports, err = loader()
	if err != nil {
		return Exports{}, errors.New("R011").WithFile(d.SourcePath).Wrap(err)
	}
	return exports, nil
}

func (r *Registrar) handler(reg Registration) http.Handler {
	var h http.Handler = r.adapter.Handler(reg.Method, reg.Pattern, reg.Handler.Invoke)
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](reg, h)
	}
	return h
}
