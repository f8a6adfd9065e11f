package router

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/errors"
)

var quietLogger = slog.New(slog.NewTextHandler(discard{}, nil))

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

const wrappedModule = `package id

import "github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"

func GET(req *shim.Request, rc *shim.RouteContext) (*shim.Response, error) { return nil, nil }

func PATCH(req *shim.Request) (*shim.Response, error) { return nil, nil }

func helper() {}
`

func TestScannerDiscover(t *testing.T) {
	fsys := fstest.MapFS{
		"health/route.go":                              {Data: []byte("package health")},
		"hospitals/route.go":                           {Data: []byte("package hospitals")},
		"hospitals/_id_/route.go":                      {Data: []byte("package id")},
		"hospitals/_id_/versions/[versionId]/route.go": {Data: []byte("package v")},
		"hospitals/_id_/util.go":                       {Data: []byte("package id")},
		"(admin)/reports/route.go":                     {Data: []byte("package reports")},
		"docs/[...slug]/route.go":                      {Data: []byte("package docs")},
		".hidden/route.go":                             {Data: []byte("package hidden")},
		"testdata/route.go":                            {Data: []byte("package testdata")},
		"routes_gen.go":                                {Data: []byte("package routes")},
	}

	s := NewScannerFS(fsys, "/srv/app/routes", quietLogger)
	routes, err := s.Discover()
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	want := map[string]string{
		"(admin)/reports/route.go":                     "/reports",
		"docs/[...slug]/route.go":                      "/docs/*slug",
		"health/route.go":                              "/health",
		"hospitals/_id_/route.go":                      "/hospitals/:id",
		"hospitals/_id_/versions/[versionId]/route.go": "/hospitals/:id/versions/:versionId",
		"hospitals/route.go":                           "/hospitals",
	}

	if len(routes) != len(want) {
		t.Fatalf("got %d routes, want %d: %+v", len(routes), len(want), routes)
	}
	for _, r := range routes {
		mount, ok := want[r.RelPath]
		if !ok {
			t.Errorf("unexpected route %s", r.RelPath)
			continue
		}
		if r.MountPath != mount {
			t.Errorf("%s mounted at %q, want %q", r.RelPath, r.MountPath, mount)
		}
		if r.SourcePath != filepath.Join("/srv/app/routes", filepath.FromSlash(r.RelPath)) {
			t.Errorf("SourcePath = %q", r.SourcePath)
		}
	}
}

func TestScannerDiscoverOrderIsLexical(t *testing.T) {
	fsys := fstest.MapFS{
		"b/route.go": {Data: []byte("package b")},
		"a/route.go": {Data: []byte("package a")},
		"route.go":   {Data: []byte("package routes")},
	}

	routes, err := NewScannerFS(fsys, "/r", quietLogger).Discover()
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	got := []string{}
	for _, r := range routes {
		got = append(got, r.RelPath)
	}
	want := []string{"a/route.go", "b/route.go", "route.go"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("routes[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if routes[2].MountPath != "/" {
		t.Errorf("root module mounted at %q, want /", routes[2].MountPath)
	}
}

func TestScannerMissingRoot(t *testing.T) {
	s := NewScanner(filepath.Join(t.TempDir(), "missing"), quietLogger)
	_, err := s.Discover()
	if !errors.HasCode(err, "R001") {
		t.Fatalf("expected R001, got %v", err)
	}
	if !errors.IsFatal(err) {
		t.Error("R001 should be fatal")
	}
}

func TestScannerInvalidPath(t *testing.T) {
	fsys := fstest.MapFS{
		"docs/[...slug]/more/route.go": {Data: []byte("package more")},
	}

	_, err := NewScannerFS(fsys, "/r", quietLogger).Discover()
	if !errors.HasCode(err, "R003") {
		t.Fatalf("expected R003, got %v", err)
	}
}

// brokenDirFS fails to list one directory.
type brokenDirFS struct {
	fstest.MapFS
	broken string
}

func (b brokenDirFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == b.broken {
		return nil, stderrors.New("permission denied")
	}
	return b.MapFS.ReadDir(name)
}

func TestScannerSkipsUnreadableDirectory(t *testing.T) {
	fsys := brokenDirFS{
		MapFS: fstest.MapFS{
			"health/route.go":    {Data: []byte("package health")},
			"private/x/route.go": {Data: []byte("package x")},
			"hospitals/route.go": {Data: []byte("package hospitals")},
		},
		broken: "private",
	}

	routes, err := NewScannerFS(fsys, "/r", quietLogger).Discover()
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("got %d routes, want 2", len(routes))
	}
}

func TestScannerDiscoverOnDisk(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "hospitals", "_id_")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "route.go"), []byte(wrappedModule), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewScanner(root, quietLogger)
	routes, err := s.Discover()
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if len(routes) != 1 || routes[0].MountPath != "/hospitals/:id" {
		t.Fatalf("unexpected routes: %+v", routes)
	}
	if len(routes[0].Params) != 1 || routes[0].Params[0].Name != "id" {
		t.Errorf("Params = %+v", routes[0].Params)
	}
}

func TestScanModulesClassifiesHandlers(t *testing.T) {
	fsys := fstest.MapFS{
		"hospitals/_id_/route.go": {Data: []byte(wrappedModule)},
		"health/route.go": {Data: []byte(`package health

import "github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"

func Init() error { return nil }

func GET(_ *shim.Request) (*shim.Response, error) { return nil, nil }

type T struct{}

func (T) POST(req *shim.Request) (*shim.Response, error) { return nil, nil }
`)},
	}

	s := NewScannerFS(fsys, "/r", quietLogger)
	routes, err := s.Discover()
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	modules, err := s.ScanModules(routes)
	if err != nil {
		t.Fatalf("ScanModules() error: %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("got %d modules", len(modules))
	}

	health := modules[0]
	if health.Package != "health" || !health.HasInit {
		t.Errorf("health = %+v", health)
	}
	if len(health.Handlers) != 1 || health.Handlers[0].Method != "GET" || health.Handlers[0].Kind != KindPlain {
		t.Errorf("health handlers = %+v", health.Handlers)
	}

	hosp := modules[1]
	if hosp.Dir() != "hospitals/_id_" {
		t.Errorf("Dir() = %q", hosp.Dir())
	}
	if len(hosp.Handlers) != 2 {
		t.Fatalf("hospital handlers = %+v", hosp.Handlers)
	}
	if hosp.Handlers[0] != (ExportedHandler{Method: "GET", Kind: KindWrapped}) {
		t.Errorf("GET = %+v", hosp.Handlers[0])
	}
	if hosp.Handlers[1] != (ExportedHandler{Method: "PATCH", Kind: KindPlain}) {
		t.Errorf("PATCH = %+v", hosp.Handlers[1])
	}
}

func TestScanModulesErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"syntax error", "package x\nfunc GET(", "R030"},
		{"no params", "package x\nfunc GET() (int, error) { return 0, nil }", "R031"},
		{"three params", "package x\nfunc POST(a, b, c int) (int, error) { return 0, nil }", "R031"},
		{"one result", "package x\nfunc PUT(a int) error { return nil }", "R031"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"x/route.go": {Data: []byte(tt.src)}}
			s := NewScannerFS(fsys, "/r", quietLogger)
			routes, err := s.Discover()
			if err != nil {
				t.Fatalf("Discover() error: %v", err)
			}
			_, err = s.ScanModules(routes)
			if !errors.HasCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
		})
	}
}
