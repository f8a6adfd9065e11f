package router

import (
	stderrors "errors"
	"testing"

	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/errors"
)

func TestTableMatch(t *testing.T) {
	table := NewTable()
	regs := []Registration{
		{Method: "GET", Pattern: "/api/hospitals", Source: "hospitals/route.go"},
		{Method: "GET", Pattern: "/api/hospitals/:id", Source: "hospitals/_id_/route.go"},
		{Method: "GET", Pattern: "/api/hospitals/search", Source: "hospitals/search/route.go"},
		{Method: "GET", Pattern: "/api/hospitals/:id/versions/:versionId", Source: "v/route.go"},
		{Method: "GET", Pattern: "/api/docs/*slug", Source: "docs/route.go"},
		{Method: "GET", Pattern: "/", Source: "route.go"},
	}
	for _, reg := range regs {
		if err := table.Add(reg); err != nil {
			t.Fatalf("Add(%s): %v", reg.Pattern, err)
		}
	}

	tests := []struct {
		path    string
		pattern string
		params  map[string]string
	}{
		{"/api/hospitals", "/api/hospitals", map[string]string{}},
		{"/api/hospitals/", "/api/hospitals", map[string]string{}},
		{"/api/hospitals/abc123", "/api/hospitals/:id", map[string]string{"id": "abc123"}},
		{"/api/hospitals/search", "/api/hospitals/search", map[string]string{}},
		{"/api/hospitals/h1/versions/v2", "/api/hospitals/:id/versions/:versionId", map[string]string{"id": "h1", "versionId": "v2"}},
		{"/api/docs/a/b/c", "/api/docs/*slug", map[string]string{"slug": "a/b/c"}},
		{"/", "/", map[string]string{}},
	}

	for _, tt := range tests {
		reg, params, ok := table.Match("GET", tt.path)
		if !ok {
			t.Errorf("Match(%q) found nothing", tt.path)
			continue
		}
		if reg.Pattern != tt.pattern {
			t.Errorf("Match(%q) = %q, want %q", tt.path, reg.Pattern, tt.pattern)
		}
		if len(params) != len(tt.params) {
			t.Errorf("Match(%q) params = %v, want %v", tt.path, params, tt.params)
			continue
		}
		for k, v := range tt.params {
			if params[k] != v {
				t.Errorf("Match(%q) params[%s] = %q, want %q", tt.path, k, params[k], v)
			}
		}
	}

	for _, path := range []string{"/api/docs", "/api/hospitals/h1/versions", "/nope"} {
		if _, _, ok := table.Match("GET", path); ok {
			t.Errorf("Match(%q) should not match", path)
		}
	}
	if _, _, ok := table.Match("POST", "/api/hospitals"); ok {
		t.Error("POST should not match a GET-only path")
	}
}

func TestTableDuplicate(t *testing.T) {
	table := NewTable()
	if err := table.Add(Registration{Method: "GET", Pattern: "/api/x/:id", Source: "x/[id]/route.go"}); err != nil {
		t.Fatal(err)
	}
	if err := table.Add(Registration{Method: "POST", Pattern: "/api/x/:id", Source: "x/[id]/route.go"}); err != nil {
		t.Fatalf("different method should be accepted: %v", err)
	}

	err := table.Add(Registration{Method: "GET", Pattern: "/api/x/:id", Source: "x/_id_/route.go"})
	if !errors.HasCode(err, "R002") {
		t.Fatalf("expected R002, got %v", err)
	}
	var verr ValidationError
	if !stderrors.As(err, &verr) {
		t.Fatalf("expected ValidationError in chain")
	}
	if verr.Type != ErrorDuplicateRoute || len(verr.Files) != 2 || verr.Files[0] != "x/[id]/route.go" {
		t.Errorf("ValidationError = %+v", verr)
	}
}

func TestTableFreeze(t *testing.T) {
	table := NewTable()
	table.Freeze()
	if err := table.Add(Registration{Method: "GET", Pattern: "/x"}); !stderrors.Is(err, ErrTableFrozen) {
		t.Errorf("Add after Freeze = %v", err)
	}
}

func TestTableRoutesIsCopy(t *testing.T) {
	table := NewTable()
	_ = table.Add(Registration{Method: "GET", Pattern: "/a"})
	routes := table.Routes()
	routes[0].Pattern = "/changed"
	if table.Routes()[0].Pattern != "/a" {
		t.Error("Routes() should return a copy")
	}
}

func TestTableAllowed(t *testing.T) {
	table := NewTable()
	for _, m := range []string{"PATCH", "GET", "DELETE"} {
		_ = table.Add(Registration{Method: m, Pattern: "/api/bookings/:id"})
	}

	got := table.Allowed("/api/bookings/7")
	want := []string{"GET", "DELETE", "PATCH"}
	if len(got) != len(want) {
		t.Fatalf("Allowed = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Allowed[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if table.Allowed("/api/other") != nil {
		t.Error("Allowed for unknown path should be nil")
	}
}

func TestRouteNodeStaticBeatsParam(t *testing.T) {
	root := newRouteNode("")
	root.insert("/users/:id").handlers = map[string]int{"GET": 0}
	root.insert("/users/new").handlers = map[string]int{"GET": 1}

	params := map[string]string{}
	node, ok := root.match(splitPath("/users/new"), params)
	if !ok || node.handlers["GET"] != 1 {
		t.Fatalf("static route should win")
	}
	if len(params) != 0 {
		t.Errorf("params leaked: %v", params)
	}
}

func TestRouteNodeParamBacktracks(t *testing.T) {
	root := newRouteNode("")
	root.insert("/a/:id/b").handlers = map[string]int{"GET": 0}
	root.insert("/a/x/c").handlers = map[string]int{"GET": 1}

	params := map[string]string{}
	node, ok := root.match(splitPath("/a/x/b"), params)
	if !ok || node.handlers["GET"] != 0 || params["id"] != "x" {
		t.Fatalf("expected param match after static miss, got ok=%v params=%v", ok, params)
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/", 0},
		{"", 0},
		{"/a", 1},
		{"/a/b/", 2},
	}
	for _, tt := range tests {
		if got := len(splitPath(tt.path)); got != tt.want {
			t.Errorf("splitPath(%q) has %d segments, want %d", tt.path, got, tt.want)
		}
	}
}
