package router

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/errors"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/routepath"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"
)

// fakeMux records handlers and dispatches through a Table for params.
type fakeMux struct {
	handlers map[string]http.Handler
	lookup   *Table
	reject   string
}

func newFakeMux() *fakeMux {
	return &fakeMux{handlers: make(map[string]http.Handler), lookup: NewTable()}
}

func (m *fakeMux) Handle(method, pattern string, h http.Handler) error {
	if m.reject != "" && pattern == m.reject {
		return stderrors.New("pattern rejected")
	}
	m.handlers[method+" "+pattern] = h
	return m.lookup.Add(Registration{Method: method, Pattern: pattern, Source: pattern})
}

func (m *fakeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reg, params, ok := m.lookup.Match(r.Method, r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h := m.handlers[reg.Method+" "+reg.Pattern]
	h.ServeHTTP(w, r.WithContext(shim.WithRouteParams(r.Context(), params)))
}

func descriptor(t *testing.T, rel string) RouteDescriptor {
	t.Helper()
	tr, err := routepath.Translate(rel)
	if err != nil {
		t.Fatalf("Translate(%q): %v", rel, err)
	}
	return RouteDescriptor{RelPath: rel, SourcePath: "/r/" + rel, MountPath: tr.MountPath, Params: tr.Params}
}

func okPlain(body string) Handler {
	return Plain(func(*shim.Request) (*shim.Response, error) {
		return shim.Text(http.StatusOK, body), nil
	})
}

func newTestRegistrar(t *testing.T, manifest Manifest, mw ...RouteMiddleware) *Registrar {
	t.Helper()
	r, err := NewRegistrar(RegistrarConfig{
		Prefix:     "/api",
		Manifest:   manifest,
		Adapter:    shim.NewAdapter(shim.AdapterConfig{Logger: quietLogger}),
		Middleware: mw,
		Logger:     quietLogger,
	})
	if err != nil {
		t.Fatalf("NewRegistrar: %v", err)
	}
	return r
}

func TestRegisterSkipsBrokenModules(t *testing.T) {
	var routes []RouteDescriptor
	manifest := Manifest{}
	for i := 0; i < 10; i++ {
		rel := fmt.Sprintf("m%d/route.go", i)
		routes = append(routes, descriptor(t, rel))
		body := fmt.Sprintf("m%d", i)
		manifest[rel] = func() (Exports, error) { return Exports{GET: okPlain(body)}, nil }
	}
	manifest["m3/route.go"] = func() (Exports, error) { panic("boom") }
	manifest["m7/route.go"] = func() (Exports, error) { return Exports{}, stderrors.New("db unreachable") }

	mux := newFakeMux()
	table, sum, err := newTestRegistrar(t, manifest).Register(mux, routes)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if sum.Files != 10 || sum.Mounted != 8 || sum.Failed != 2 {
		t.Errorf("summary = %+v", sum)
	}
	if table.Len() != 8 || !table.Frozen() {
		t.Errorf("table len=%d frozen=%v", table.Len(), table.Frozen())
	}
	if _, _, ok := table.Match("GET", "/api/m3"); ok {
		t.Error("panicking module should not be mounted")
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/m9", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "m9" {
		t.Errorf("GET /api/m9 = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRegisterPanicAfterFirstModule(t *testing.T) {
	routes := []RouteDescriptor{descriptor(t, "a/route.go"), descriptor(t, "b/route.go")}
	manifest := Manifest{
		"a/route.go": func() (Exports, error) { return Exports{GET: okPlain("a")}, nil },
		"b/route.go": func() (Exports, error) { panic(fmt.Errorf("init failed")) },
	}

	_, sum, err := newTestRegistrar(t, manifest).Register(newFakeMux(), routes)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sum.Mounted != 1 || sum.Failed != 1 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestRegisterLoadErrorCodes(t *testing.T) {
	r := newTestRegistrar(t, Manifest{
		"err/route.go":   func() (Exports, error) { return Exports{}, stderrors.New("nope") },
		"panic/route.go": func() (Exports, error) { panic("nope") },
	})

	tests := []struct {
		rel  string
		code string
	}{
		{"missing/route.go", "R010"},
		{"err/route.go", "R011"},
		{"panic/route.go", "R012"},
	}
	for _, tt := range tests {
		_, err := r.load(descriptor(t, tt.rel))
		if !errors.HasCode(err, tt.code) {
			t.Errorf("load(%s) = %v, want %s", tt.rel, err, tt.code)
		}
		if errors.IsFatal(err) {
			t.Errorf("%s should not be fatal", tt.code)
		}
	}
}

func TestRegisterEmptyModule(t *testing.T) {
	routes := []RouteDescriptor{descriptor(t, "empty/route.go")}
	manifest := Manifest{"empty/route.go": func() (Exports, error) { return Exports{}, nil }}

	table, sum, err := newTestRegistrar(t, manifest).Register(newFakeMux(), routes)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sum.Empty != 1 || table.Len() != 0 {
		t.Errorf("summary = %+v, len = %d", sum, table.Len())
	}
}

func TestRegisterCollision(t *testing.T) {
	routes := []RouteDescriptor{
		descriptor(t, "hospitals/[id]/route.go"),
		descriptor(t, "hospitals/_id_/route.go"),
	}
	manifest := Manifest{
		"hospitals/[id]/route.go": func() (Exports, error) { return Exports{GET: okPlain("a")}, nil },
		"hospitals/_id_/route.go": func() (Exports, error) { return Exports{GET: okPlain("b")}, nil },
	}

	_, _, err := newTestRegistrar(t, manifest).Register(newFakeMux(), routes)
	if !errors.HasCode(err, "R002") {
		t.Fatalf("expected R002, got %v", err)
	}
	if !errors.IsFatal(err) {
		t.Error("collision should be fatal")
	}
	if !strings.Contains(err.Error(), "hospitals/_id_/route.go") {
		t.Errorf("error should name the second file: %v", err)
	}
}

func TestRegisterDifferentVerbsSamePath(t *testing.T) {
	routes := []RouteDescriptor{
		descriptor(t, "hospitals/[id]/route.go"),
		descriptor(t, "hospitals/_id_/route.go"),
	}
	manifest := Manifest{
		"hospitals/[id]/route.go": func() (Exports, error) { return Exports{GET: okPlain("a")}, nil },
		"hospitals/_id_/route.go": func() (Exports, error) { return Exports{DELETE: okPlain("b")}, nil },
	}

	table, _, err := newTestRegistrar(t, manifest).Register(newFakeMux(), routes)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := table.Allowed("/api/hospitals/x"); len(got) != 2 {
		t.Errorf("Allowed = %v", got)
	}
}

func TestRegisterParamConflictIsFatal(t *testing.T) {
	routes := []RouteDescriptor{
		descriptor(t, "hospitals/[id]/route.go"),
		descriptor(t, "hospitals/[hospitalId]/slots/route.go"),
	}
	_, _, err := newTestRegistrar(t, Manifest{}).Register(newFakeMux(), routes)
	if !errors.HasCode(err, "R002") {
		t.Fatalf("expected R002, got %v", err)
	}
	var multi *MultiValidationError
	if !stderrors.As(err, &multi) {
		t.Fatalf("expected MultiValidationError in chain, got %T", err)
	}
}

func TestRegisterHostRejection(t *testing.T) {
	routes := []RouteDescriptor{descriptor(t, "health/route.go")}
	manifest := Manifest{"health/route.go": func() (Exports, error) { return Exports{GET: okPlain("ok")}, nil }}

	mux := newFakeMux()
	mux.reject = "/api/health"
	_, _, err := newTestRegistrar(t, manifest).Register(mux, routes)
	if !errors.HasCode(err, "R004") {
		t.Fatalf("expected R004, got %v", err)
	}
}

func TestRegisterWrappedHandlerSeesParams(t *testing.T) {
	routes := []RouteDescriptor{descriptor(t, "hospitals/[id]/route.go")}
	manifest := Manifest{
		"hospitals/[id]/route.go": func() (Exports, error) {
			return Exports{
				GET: Wrapped(func(req *shim.Request, rc *shim.RouteContext) (*shim.Response, error) {
					id, err := rc.Param(req.Context(), "id")
					if err != nil {
						return nil, err
					}
					return shim.JSON(http.StatusOK, map[string]string{"id": id, "pattern": rc.Pattern}), nil
				}),
				POST: Plain(func(req *shim.Request) (*shim.Response, error) {
					return nil, shim.Forbidden("staff only")
				}),
			}, nil
		},
	}

	mux := newFakeMux()
	table, _, err := newTestRegistrar(t, manifest).Register(mux, routes)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	reg, _, ok := table.Match("GET", "/api/hospitals/abc123")
	if !ok || reg.Kind != KindWrapped {
		t.Fatalf("Match = %+v, %v", reg, ok)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/hospitals/abc123", nil))
	body, _ := io.ReadAll(rec.Body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, body)
	}
	if !strings.Contains(string(body), `"id":"abc123"`) || !strings.Contains(string(body), `"/api/hospitals/:id"`) {
		t.Errorf("body = %s", body)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/hospitals/abc123", nil))
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "staff only") {
		t.Errorf("POST = %d %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterMiddlewareOrder(t *testing.T) {
	routes := []RouteDescriptor{descriptor(t, "health/route.go")}
	manifest := Manifest{"health/route.go": func() (Exports, error) { return Exports{GET: okPlain("ok")}, nil }}

	var order []string
	mark := func(name string) RouteMiddleware {
		return func(reg Registration, next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+":"+reg.Pattern)
				next.ServeHTTP(w, r)
			})
		}
	}

	mux := newFakeMux()
	if _, _, err := newTestRegistrar(t, manifest, mark("outer"), mark("inner")).Register(mux, routes); err != nil {
		t.Fatalf("Register: %v", err)
	}
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/health", nil))

	if len(order) != 2 || order[0] != "outer:/api/health" || order[1] != "inner:/api/health" {
		t.Errorf("order = %v", order)
	}
}

func TestNewRegistrarRejectsBadPrefix(t *testing.T) {
	_, err := NewRegistrar(RegistrarConfig{Prefix: "api/../x", Logger: quietLogger})
	if !errors.HasCode(err, "R021") {
		t.Fatalf("expected R021, got %v", err)
	}
}
