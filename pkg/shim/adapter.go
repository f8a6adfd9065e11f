package shim

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/formdata"
)

// HandlerFunc is the normalized handler signature the adapter invokes.
// Plain handlers are lifted into it by ignoring the RouteContext.
type HandlerFunc func(*Request, *RouteContext) (*Response, error)

// AdapterConfig configures an Adapter.
type AdapterConfig struct {
	// Production hides error messages of unexpected errors from clients.
	Production bool

	// Limits bounds multipart parsing.
	Limits formdata.Limits

	// TrustedProxies are IPs or CIDRs whose forwarding headers are honored.
	TrustedProxies []string

	// Logger receives handler errors and panics.
	Logger *slog.Logger
}

// Adapter turns shim handlers into native http.Handlers: native request to
// Request, handler invocation, then Response to native response. Errors and
// panics become error envelopes.
type Adapter struct {
	production bool
	limits     formdata.Limits
	proxies    *ProxyMatcher
	logger     *slog.Logger
}

// NewAdapter creates an Adapter.
func NewAdapter(cfg AdapterConfig) *Adapter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		production: cfg.Production,
		limits:     cfg.Limits,
		proxies:    NewProxyMatcher(cfg.TrustedProxies, logger),
		logger:     logger,
	}
}

// Handler adapts fn, mounted as method+pattern, into an http.Handler.
func (a *Adapter) Handler(method, pattern string, fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := NewRequest(r, WithLimits(a.limits), WithTrustedProxies(a.proxies))
		rc := &RouteContext{
			Params:  req.Params(),
			Method:  method,
			Pattern: pattern,
		}

		resp, err := a.invoke(fn, req, rc)
		if err != nil {
			a.WriteError(w, r, err)
			return
		}
		WriteResponse(w, resp, a.logger)
	})
}

func (a *Adapter) invoke(fn HandlerFunc, req *Request, rc *RouteContext) (resp *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("handler panic",
				"method", rc.Method,
				"route", rc.Pattern,
				"panic", rec,
				"stack", string(debug.Stack()))
			resp, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(req, rc)
}

// WriteError translates err into an error envelope. *HTTPError keeps its
// status and message. Other messages are only shown outside production.
func (a *Adapter) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)

	msg := http.StatusText(status)
	var he *HTTPError
	if errors.As(err, &he) {
		msg = he.Message
	} else if !a.production {
		msg = err.Error()
	}

	attrs := []any{"method", r.Method, "path", r.URL.Path, "status", status, "error", err}
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", attrs...)
	} else {
		a.logger.Warn("request rejected", attrs...)
	}

	WriteEnvelope(w, r, status, msg)
}

// NotFound returns the catch-all handler for unmatched paths.
func (a *Adapter) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteEnvelope(w, r, http.StatusNotFound, "route not found")
	})
}
