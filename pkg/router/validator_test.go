package router

import (
	"strings"
	"testing"
)

func routesFor(t *testing.T, rels ...string) []RouteDescriptor {
	t.Helper()
	var out []RouteDescriptor
	for _, rel := range rels {
		out = append(out, descriptor(t, rel))
	}
	return out
}

func TestValidateAcceptsConsistentParams(t *testing.T) {
	routes := routesFor(t,
		"hospitals/route.go",
		"hospitals/[id]/route.go",
		"hospitals/_id_/slots/route.go",
		"hospitals/[id]/versions/[versionId]/route.go",
		"docs/[...slug]/route.go",
	)
	if err := NewValidator(routes).Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestValidateParamNameConflict(t *testing.T) {
	routes := routesFor(t,
		"hospitals/[id]/route.go",
		"hospitals/[hospitalId]/slots/route.go",
	)

	err := NewValidator(routes).Validate()
	multi, ok := err.(*MultiValidationError)
	if !ok {
		t.Fatalf("expected MultiValidationError, got %T", err)
	}
	if len(multi.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(multi.Errors))
	}
	e := multi.Errors[0]
	if e.Type != ErrorParamNameConflict || e.Path != "/hospitals" {
		t.Errorf("error = %+v", e)
	}
	if !strings.Contains(e.Details, ":id vs :hospitalId") {
		t.Errorf("Details = %q", e.Details)
	}
}

func TestValidateCatchAllConflict(t *testing.T) {
	routes := routesFor(t,
		"docs/[id]/route.go",
		"docs/[...slug]/route.go",
	)

	err := NewValidator(routes).Validate()
	multi, ok := err.(*MultiValidationError)
	if !ok || len(multi.Errors) != 1 {
		t.Fatalf("expected one error, got %v", err)
	}
	if multi.Errors[0].Type != ErrorCatchAllConflict {
		t.Errorf("Type = %s", multi.Errors[0].Type)
	}
}

func TestMultiValidationErrorMessage(t *testing.T) {
	err := &MultiValidationError{Errors: []ValidationError{
		{Type: ErrorParamNameConflict, Message: "one"},
		{Type: ErrorCatchAllConflict, Message: "two"},
	}}
	msg := err.Error()
	if !strings.HasPrefix(msg, "2 route validation errors") {
		t.Errorf("Error() = %q", msg)
	}
}

func TestSortBySpecificity(t *testing.T) {
	regs := []Registration{
		{Method: "GET", Pattern: "/api/docs/*slug"},
		{Method: "POST", Pattern: "/api/hospitals/:id"},
		{Method: "GET", Pattern: "/api/hospitals/:id"},
		{Method: "GET", Pattern: "/api/hospitals/search"},
		{Method: "GET", Pattern: "/api/hospitals"},
	}
	SortBySpecificity(regs)

	want := []string{
		"GET /api/hospitals/search",
		"GET /api/hospitals/:id",
		"POST /api/hospitals/:id",
		"GET /api/hospitals",
		"GET /api/docs/*slug",
	}
	for i, reg := range regs {
		if got := reg.Method + " " + reg.Pattern; got != want[i] {
			t.Errorf("regs[%d] = %s, want %s", i, got, want[i])
		}
	}
}

func TestFormatValidationError(t *testing.T) {
	out := FormatValidationError(ValidationError{
		Message: "Duplicate route detected",
		Path:    "/api/hospitals/:id",
		Files:   []string{"hospitals/[id]/route.go", "hospitals/_id_/route.go"},
	})
	if !strings.Contains(out, "hospitals/_id_/route.go → /api/hospitals/:id") {
		t.Errorf("output = %q", out)
	}
}
