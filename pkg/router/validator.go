package router

import (
	"fmt"
	"sort"
	"strings"
)

// Validator checks discovered routes for patterns that cannot coexist on a
// host router.
type Validator struct {
	routes []RouteDescriptor
	errors []ValidationError
}

// ValidationError represents a route validation error.
type ValidationError struct {
	// Type is the error category
	Type ValidationErrorType

	// Message is the human-readable error message
	Message string

	// Files are the source files involved
	Files []string

	// Path is the conflicting URL pattern
	Path string

	// Details contains additional error-specific information
	Details string
}

func (e ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ValidationErrorType categorizes validation errors.
type ValidationErrorType string

const (
	// ErrorDuplicateRoute indicates two handlers for the same method and path.
	// Example: hospitals/[id]/route.go and hospitals/_id_/route.go both export GET.
	ErrorDuplicateRoute ValidationErrorType = "DUPLICATE_ROUTE"

	// ErrorParamNameConflict indicates sibling dynamic segments with
	// different names.
	// Example: hospitals/[id]/route.go and hospitals/[hospitalId]/slots/route.go
	ErrorParamNameConflict ValidationErrorType = "PARAM_NAME_CONFLICT"

	// ErrorCatchAllConflict indicates a catch-all next to a param segment.
	// Example: docs/[id]/route.go and docs/[...slug]/route.go
	ErrorCatchAllConflict ValidationErrorType = "CATCH_ALL_CONFLICT"
)

// MultiValidationError wraps multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d route validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// NewValidator creates a new route validator.
func NewValidator(routes []RouteDescriptor) *Validator {
	return &Validator{routes: routes}
}

// Validate returns nil if all routes can be mounted together, or a
// MultiValidationError listing every conflict.
func (v *Validator) Validate() error {
	v.errors = nil

	v.validateDynamicSiblings()

	if len(v.errors) > 0 {
		return &MultiValidationError{Errors: v.errors}
	}
	return nil
}

// validateDynamicSiblings checks that every dynamic segment under the same
// parent uses one name and that a catch-all never shares a parent with a
// param. Host routers reject both.
func (v *Validator) validateDynamicSiblings() {
	type sibling struct {
		segment string
		file    string
	}
	byParent := make(map[string][]sibling)
	var parents []string

	for _, route := range v.routes {
		segments := splitPath(route.MountPath)
		for i, seg := range segments {
			if !strings.HasPrefix(seg, ":") && !strings.HasPrefix(seg, "*") {
				continue
			}
			parent := "/" + strings.Join(segments[:i], "/")
			if _, ok := byParent[parent]; !ok {
				parents = append(parents, parent)
			}
			byParent[parent] = append(byParent[parent], sibling{segment: seg, file: route.SourcePath})
		}
	}

	for _, parent := range parents {
		entries := byParent[parent]
		first := entries[0].segment

		var files, segs []string
		conflict, catchAll := false, false
		seen := make(map[string]bool)
		for _, e := range entries {
			if e.segment != first {
				conflict = true
			}
			if strings.HasPrefix(e.segment, "*") {
				catchAll = true
			}
			if !seen[e.segment] {
				seen[e.segment] = true
				segs = append(segs, e.segment)
			}
			files = append(files, e.file)
		}
		if !conflict {
			continue
		}

		typ := ErrorParamNameConflict
		msg := fmt.Sprintf("Conflicting parameter names under %s", parent)
		if catchAll {
			typ = ErrorCatchAllConflict
			msg = fmt.Sprintf("Catch-all shares %s with a parameter", parent)
		}
		v.errors = append(v.errors, ValidationError{
			Type:    typ,
			Message: msg,
			Path:    parent,
			Files:   files,
			Details: fmt.Sprintf("Segments: %s", strings.Join(segs, " vs ")),
		})
	}
}

// =============================================================================
// Route Specificity Sorting
// =============================================================================

// SortBySpecificity orders registrations for display, most specific first:
// static segments, then params, then catch-all. Ties keep method order.
func SortBySpecificity(regs []Registration) {
	sort.SliceStable(regs, func(i, j int) bool {
		si, sj := calculateSpecificity(regs[i].Pattern), calculateSpecificity(regs[j].Pattern)
		if si != sj {
			return si > sj
		}
		if regs[i].Pattern != regs[j].Pattern {
			return regs[i].Pattern < regs[j].Pattern
		}
		return methodIndex(regs[i].Method) < methodIndex(regs[j].Method)
	})
}

// calculateSpecificity returns a numeric score for route specificity.
// Higher scores = more specific = matched first.
func calculateSpecificity(pattern string) int {
	segments := splitPath(pattern)
	score := len(segments) * 100

	for _, seg := range segments {
		switch {
		case strings.HasPrefix(seg, "*"):
			return 0
		case strings.HasPrefix(seg, ":"):
			score += 10
		default:
			score += 50
		}
	}
	return score
}

func methodIndex(method string) int {
	for i, m := range Methods {
		if m == method {
			return i
		}
	}
	return len(Methods)
}

// FormatValidationError formats a validation error for display:
//
//	ERROR: Duplicate route detected
//	  app/routes/hospitals/[id]/route.go → /api/hospitals/:id
//	  app/routes/hospitals/_id_/route.go → /api/hospitals/:id
func FormatValidationError(err ValidationError) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("ERROR: %s\n", err.Message))

	for _, file := range err.Files {
		sb.WriteString(fmt.Sprintf("  %s → %s\n", file, err.Path))
	}

	if err.Details != "" {
		sb.WriteString(fmt.Sprintf("  Details: %s\n", err.Details))
	}

	return sb.String()
}
