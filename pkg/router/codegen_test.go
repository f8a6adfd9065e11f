package router

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/errors"
)

func TestGeneratorGenerate(t *testing.T) {
	modules := []ModuleInfo{
		{
			RelPath:  "hospitals/_id_/route.go",
			Package:  "id",
			HasInit:  true,
			Handlers: []ExportedHandler{{Method: "GET", Kind: KindWrapped}, {Method: "PATCH", Kind: KindPlain}},
		},
		{
			RelPath:  "health/route.go",
			Package:  "health",
			Handlers: []ExportedHandler{{Method: "GET", Kind: KindPlain}},
		},
		{
			RelPath:  "route.go",
			Package:  "routes",
			Handlers: []ExportedHandler{{Method: "GET", Kind: KindPlain}},
		},
	}

	out, err := NewGenerator(modules, "github.com/example/app/routes", "routes").Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	code := string(out)

	checks := []string{
		"DO NOT EDIT",
		"package routes",
		`"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/router"`,
		`health "github.com/example/app/routes/health"`,
		`hospitals_id "github.com/example/app/routes/hospitals/_id_"`,
		"var Manifest = router.Manifest{",
		`"hospitals/_id_/route.go": func() (router.Exports, error) {`,
		"if err := hospitals_id.Init(); err != nil {",
		"GET:   router.Wrapped(hospitals_id.GET),",
		"PATCH: router.Plain(hospitals_id.PATCH),",
		"GET: router.Plain(health.GET),",
		"GET: router.Plain(GET),",
	}
	for _, want := range checks {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q\n%s", want, code)
		}
	}

	if strings.Index(code, `"health/route.go"`) > strings.Index(code, `"hospitals/_id_/route.go"`) {
		t.Error("entries should be sorted by path")
	}
	if strings.Contains(code, "health.Init") {
		t.Error("Init should only be called when declared")
	}
}

func TestGeneratorRejectsBracketDirs(t *testing.T) {
	modules := []ModuleInfo{{RelPath: "hospitals/[id]/route.go", Package: "id"}}
	_, err := NewGenerator(modules, "example.com/app/routes", "routes").Generate()
	if !errors.HasCode(err, "R033") {
		t.Fatalf("expected R033, got %v", err)
	}
}

func TestGeneratorEmpty(t *testing.T) {
	out, err := NewGenerator(nil, "example.com/app/routes", "").Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.Contains(string(out), "var Manifest = router.Manifest{") || strings.Contains(string(out), "func()") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestImportAlias(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"health", "health"},
		{"hospitals/_id_", "hospitals_id"},
		{"hospitals/_id_/versions/_versionId_", "hospitals_id_versions_versionId"},
		{"web-hooks/stripe", "web_hooks_stripe"},
		{"2fa", "r2fa"},
	}
	for _, tt := range tests {
		if got := importAlias(tt.dir); got != tt.want {
			t.Errorf("importAlias(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestUniqueAlias(t *testing.T) {
	used := map[string]bool{"router": true}
	if got := uniqueAlias("router", used); got != "router2" {
		t.Errorf("uniqueAlias = %q", got)
	}
	if got := uniqueAlias("a", used); got != "a" {
		t.Errorf("uniqueAlias = %q", got)
	}
	if got := uniqueAlias("a", used); got != "a2" {
		t.Errorf("uniqueAlias = %q", got)
	}
}

func TestGeneratorWriteFile(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator([]ModuleInfo{{RelPath: "route.go", Handlers: []ExportedHandler{{Method: "GET"}}}}, "example.com/app", "app")

	wrote, err := g.WriteFile(dir)
	if err != nil || !wrote {
		t.Fatalf("first WriteFile = %v, %v", wrote, err)
	}
	wrote, err = g.WriteFile(dir)
	if err != nil || wrote {
		t.Fatalf("second WriteFile = %v, %v", wrote, err)
	}
	if _, err := os.Stat(filepath.Join(dir, GeneratedFile)); err != nil {
		t.Fatal(err)
	}
}

func TestImportPathFor(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/booking\n\ngo 1.23\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	routes := filepath.Join(root, "app", "routes")
	if err := os.MkdirAll(routes, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ImportPathFor(routes)
	if err != nil {
		t.Fatalf("ImportPathFor: %v", err)
	}
	if got != "example.com/booking/app/routes" {
		t.Errorf("ImportPathFor = %q", got)
	}

	got, err = ImportPathFor(root)
	if err != nil || got != "example.com/booking" {
		t.Errorf("ImportPathFor(root) = %q, %v", got, err)
	}
}

func TestImportPathForBadGoMod(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("go 1.23\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ImportPathFor(root)
	if !errors.HasCode(err, "R032") {
		t.Fatalf("expected R032, got %v", err)
	}
}
