package router

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/errors"
)

// ErrTableFrozen is returned by Add after Freeze.
var ErrTableFrozen = stderrors.New("router: registration table is frozen")

// Table is the registration table. It is written only during startup and
// is read-only once frozen.
type Table struct {
	mu     sync.RWMutex
	frozen bool
	regs   []Registration
	root   *routeNode
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{root: newRouteNode("")}
}

// Add records reg. A second registration for the same method and pattern
// is a fatal R002 collision.
func (t *Table) Add(reg Registration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen {
		return ErrTableFrozen
	}

	leaf := t.root.insert(reg.Pattern)
	if i, ok := leaf.handlers[reg.Method]; ok {
		prev := t.regs[i]
		verr := ValidationError{
			Type:    ErrorDuplicateRoute,
			Message: fmt.Sprintf("Duplicate route detected at %s %s", reg.Method, reg.Pattern),
			Path:    reg.Pattern,
			Files:   []string{prev.Source, reg.Source},
			Details: fmt.Sprintf("Files: %s, %s", prev.Source, reg.Source),
		}
		return errors.New("R002").
			WithFile(reg.Source).
			WithDetail(FormatValidationError(verr)).
			Wrap(verr)
	}

	if leaf.handlers == nil {
		leaf.handlers = make(map[string]int)
	}
	leaf.handlers[reg.Method] = len(t.regs)
	t.regs = append(t.regs, reg)
	return nil
}

// Freeze makes the table read-only.
func (t *Table) Freeze() {
	t.mu.Lock()
	t.frozen = true
	t.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (t *Table) Frozen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frozen
}

// Len returns the number of registrations.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.regs)
}

// Routes returns a copy of all registrations in mount order.
func (t *Table) Routes() []Registration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Registration, len(t.regs))
	copy(out, t.regs)
	return out
}

// Match finds the registration serving method and path, with the param
// bindings the path produces.
func (t *Table) Match(method, path string) (Registration, map[string]string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	params := make(map[string]string)
	leaf, ok := t.root.match(splitPath(path), params)
	if !ok {
		return Registration{}, nil, false
	}
	i, ok := leaf.handlers[method]
	if !ok {
		return Registration{}, nil, false
	}
	return t.regs[i], params, true
}

// Allowed returns the methods registered for path.
func (t *Table) Allowed(path string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	leaf, ok := t.root.match(splitPath(path), make(map[string]string))
	if !ok {
		return nil
	}
	var out []string
	for _, m := range Methods {
		if _, ok := leaf.handlers[m]; ok {
			out = append(out, m)
		}
	}
	return out
}
