package router

import (
	"net/http"

	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/routepath"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"
)

// Methods are the HTTP verbs a route module may export, in registration order.
var Methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
}

// Kind classifies an exported handler.
type Kind int

const (
	// KindPlain handlers take only the request.
	KindPlain Kind = iota
	// KindWrapped handlers take (request, context) and resolve their own
	// authorization from it.
	KindWrapped
)

func (k Kind) String() string {
	if k == KindWrapped {
		return "wrapped"
	}
	return "plain"
}

// PlainFunc is the signature of a plain handler.
type PlainFunc func(*shim.Request) (*shim.Response, error)

// WrappedFunc is the signature of a wrapped handler.
type WrappedFunc func(*shim.Request, *shim.RouteContext) (*shim.Response, error)

// Handler is a tagged handler variant. The zero value means "not exported".
type Handler struct {
	kind    Kind
	plain   PlainFunc
	wrapped WrappedFunc
}

// Plain tags fn as a plain handler.
func Plain(fn PlainFunc) Handler {
	return Handler{kind: KindPlain, plain: fn}
}

// Wrapped tags fn as a wrapped handler.
func Wrapped(fn WrappedFunc) Handler {
	return Handler{kind: KindWrapped, wrapped: fn}
}

// Kind returns the handler's tag.
func (h Handler) Kind() Kind {
	return h.kind
}

// IsZero reports whether no function is set.
func (h Handler) IsZero() bool {
	return h.plain == nil && h.wrapped == nil
}

// Invoke calls the handler. Plain handlers get the request only; wrapped
// handlers get the request and rc.
func (h Handler) Invoke(req *shim.Request, rc *shim.RouteContext) (*shim.Response, error) {
	if h.kind == KindWrapped {
		return h.wrapped(req, rc)
	}
	return h.plain(req)
}

// Exports holds one handler per verb a route module exports.
type Exports struct {
	GET    Handler
	POST   Handler
	PUT    Handler
	DELETE Handler
	PATCH  Handler
}

// Lookup returns the handler exported for method.
func (e Exports) Lookup(method string) Handler {
	switch method {
	case http.MethodGet:
		return e.GET
	case http.MethodPost:
		return e.POST
	case http.MethodPut:
		return e.PUT
	case http.MethodDelete:
		return e.DELETE
	case http.MethodPatch:
		return e.PATCH
	}
	return Handler{}
}

// Count returns how many verbs are exported.
func (e Exports) Count() int {
	n := 0
	for _, m := range Methods {
		if !e.Lookup(m).IsZero() {
			n++
		}
	}
	return n
}

// ModuleLoader produces a module's exports. Generated loaders also run the
// module's optional Init hook.
type ModuleLoader func() (Exports, error)

// Manifest maps a route module path, relative to the routes root and
// slash-separated (e.g. "hospitals/_id_/route.go"), to its loader.
type Manifest map[string]ModuleLoader

// RouteDescriptor is a discovered route module.
type RouteDescriptor struct {
	// RelPath is the module path relative to the routes root.
	RelPath string

	// SourcePath is the absolute path of the module file.
	SourcePath string

	// MountPath is the translated pattern, without the API prefix.
	MountPath string

	// Params are the dynamic segments in path order.
	Params []routepath.Param
}

// Registration is one mounted (method, path) endpoint.
type Registration struct {
	// Method is the HTTP verb.
	Method string

	// Pattern is the full mount path, prefix included (e.g. "/api/hospitals/:id").
	Pattern string

	// Kind is the handler classification.
	Kind Kind

	// Handler is the tagged handler.
	Handler Handler

	// Source is the module path the handler came from.
	Source string
}
