package routepath

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// ModuleFile is the file name that marks a directory as a route module.
const ModuleFile = "route.go"

// Param is a dynamic segment extracted from a route module path.
type Param struct {
	// Name is the binding name (e.g., "id").
	Name string

	// Segment is the original path segment (e.g., "[id]" or "_id_").
	Segment string

	// CatchAll reports whether the param consumes the rest of the path.
	CatchAll bool
}

// Translation is the result of translating a route module path.
type Translation struct {
	// MountPath is the router pattern (e.g., "/hospitals/:id").
	MountPath string

	// Params are the dynamic segments in left-to-right order.
	Params []Param
}

// ParamNames returns the param names in path order.
func (t Translation) ParamNames() []string {
	names := make([]string, len(t.Params))
	for i, p := range t.Params {
		names[i] = p.Name
	}
	return names
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Translate converts a route module path, relative to the routes root, into
// a mount path.
//
// Segment conventions:
//
//	[id]       → :id
//	_id_       → :id     (Go-importable alias)
//	[...slug]  → *slug   (catch-all, last segment only)
//	(group)    → dropped
//
// The module file name is stripped: "hospitals/[id]/route.go" → "/hospitals/:id".
// Files not named route.go lose their extension instead.
func Translate(relPath string) (Translation, error) {
	p := strings.ReplaceAll(relPath, "\\", "/")
	p = strings.Trim(p, "/")

	base := path.Base(p)
	switch {
	case base == ModuleFile || base == strings.TrimSuffix(ModuleFile, ".go"):
		p = path.Dir(p)
		if p == "." {
			p = ""
		}
	default:
		p = strings.TrimSuffix(p, path.Ext(p))
	}

	var (
		out    []string
		params []Param
		seen   = make(map[string]bool)
	)

	segments := splitSegments(p)
	for i, seg := range segments {
		param, isParam, err := parseSegment(seg)
		if err != nil {
			return Translation{}, fmt.Errorf("route path %q: %w", relPath, err)
		}

		if !isParam {
			if isGroup(seg) {
				continue
			}
			out = append(out, seg)
			continue
		}

		if param.CatchAll && i != len(segments)-1 {
			return Translation{}, fmt.Errorf("route path %q: catch-all %s must be the last segment", relPath, seg)
		}
		if seen[param.Name] {
			return Translation{}, fmt.Errorf("route path %q: duplicate param %q", relPath, param.Name)
		}
		seen[param.Name] = true
		params = append(params, param)

		if param.CatchAll {
			out = append(out, "*"+param.Name)
		} else {
			out = append(out, ":"+param.Name)
		}
	}

	return Translation{
		MountPath: "/" + strings.Join(out, "/"),
		Params:    params,
	}, nil
}

// parseSegment reports whether seg is a dynamic segment and extracts it.
func parseSegment(seg string) (Param, bool, error) {
	var name string
	catchAll := false

	switch {
	case strings.HasPrefix(seg, "[...") && strings.HasSuffix(seg, "]"):
		name = seg[4 : len(seg)-1]
		catchAll = true
	case strings.HasPrefix(seg, "[") && strings.HasSuffix(seg, "]"):
		name = seg[1 : len(seg)-1]
	case len(seg) > 2 && strings.HasPrefix(seg, "_") && strings.HasSuffix(seg, "_"):
		name = seg[1 : len(seg)-1]
	case strings.ContainsAny(seg, "[]"):
		return Param{}, false, fmt.Errorf("malformed segment %q", seg)
	default:
		return Param{}, false, nil
	}

	if !identRe.MatchString(name) {
		return Param{}, false, fmt.Errorf("invalid param name %q in segment %q", name, seg)
	}

	return Param{Name: name, Segment: seg, CatchAll: catchAll}, true, nil
}

func isGroup(seg string) bool {
	return len(seg) > 2 && strings.HasPrefix(seg, "(") && strings.HasSuffix(seg, ")")
}

func splitSegments(p string) []string {
	if p == "" {
		return nil
	}
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
