package router

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/errors"
)

// GeneratedFile is the manifest file written into the routes root.
const GeneratedFile = "routes_gen.go"

const routerImport = "github.com/fastbmktdev/medical-by-fastb-sub001/pkg/router"

// Generator produces routes_gen.go, the compiled manifest that maps every
// route module path to a loader.
type Generator struct {
	modules    []ModuleInfo
	importPath string
	pkg        string
}

// NewGenerator creates a generator. importPath is the Go import path of the
// routes root and pkg the package name of the generated file.
func NewGenerator(modules []ModuleInfo, importPath, pkg string) *Generator {
	if pkg == "" {
		pkg = "routes"
	}
	return &Generator{modules: modules, importPath: importPath, pkg: pkg}
}

type genImport struct {
	Alias string
	Path  string
}

type genHandler struct {
	Method string
	Ctor   string
	Func   string
}

type genEntry struct {
	RelPath  string
	Init     string
	Handlers []genHandler
}

type genData struct {
	Package      string
	RouterImport string
	Imports      []genImport
	Entries      []genEntry
}

var manifestTemplate = template.Must(template.New("manifest").Parse(`// Code generated by medapi gen routes. DO NOT EDIT.

package {{.Package}}

import (
	"{{.RouterImport}}"
{{range .Imports}}	{{.Alias}} "{{.Path}}"
{{end}})

// Manifest maps each route module, relative to this directory, to its loader.
var Manifest = router.Manifest{
{{- range .Entries}}
	"{{.RelPath}}": func() (router.Exports, error) {
{{- if .Init}}
		if err := {{.Init}}(); err != nil {
			return router.Exports{}, err
		}
{{- end}}
		return router.Exports{
{{- range .Handlers}}
			{{.Method}}: router.{{.Ctor}}({{.Func}}),
{{- end}}
		}, nil
	},
{{- end}}
}
`))

// Generate renders and formats the manifest source.
func (g *Generator) Generate() ([]byte, error) {
	data := genData{Package: g.pkg, RouterImport: routerImport}

	modules := make([]ModuleInfo, len(g.modules))
	copy(modules, g.modules)
	sort.Slice(modules, func(i, j int) bool { return modules[i].RelPath < modules[j].RelPath })

	aliases := make(map[string]string)
	used := map[string]bool{"router": true}

	for _, m := range modules {
		qual := ""
		if dir := m.Dir(); dir != "." {
			if err := checkImportable(dir); err != nil {
				return nil, errors.New("R033").WithFile(m.RelPath).Wrap(err)
			}
			alias, ok := aliases[dir]
			if !ok {
				alias = uniqueAlias(importAlias(dir), used)
				aliases[dir] = alias
				data.Imports = append(data.Imports, genImport{
					Alias: alias,
					Path:  g.importPath + "/" + dir,
				})
			}
			qual = alias + "."
		}

		entry := genEntry{RelPath: m.RelPath}
		if m.HasInit {
			entry.Init = qual + "Init"
		}
		for _, h := range m.Handlers {
			ctor := "Plain"
			if h.Kind == KindWrapped {
				ctor = "Wrapped"
			}
			entry.Handlers = append(entry.Handlers, genHandler{
				Method: h.Method,
				Ctor:   ctor,
				Func:   qual + h.Method,
			})
		}
		data.Entries = append(data.Entries, entry)
	}

	var buf bytes.Buffer
	if err := manifestTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render manifest: %w", err)
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format manifest: %w", err)
	}
	return out, nil
}

// WriteFile generates the manifest into dir. The file is only rewritten
// when its content changes; the returned bool reports a write.
func (g *Generator) WriteFile(dir string) (bool, error) {
	out, err := g.Generate()
	if err != nil {
		return false, err
	}

	target := filepath.Join(dir, GeneratedFile)
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, out) {
		return false, nil
	}
	if err := os.WriteFile(target, out, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", target, err)
	}
	return true, nil
}

// checkImportable rejects directory names Go cannot import. Bracketed and
// grouped segments are valid mount paths but not valid import paths; the
// underscore form (_id_) is the compiled equivalent.
func checkImportable(dir string) error {
	for _, seg := range strings.Split(dir, "/") {
		for _, r := range seg {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			case r == '-', r == '.', r == '_', r == '~':
			default:
				return fmt.Errorf("directory %q contains %q and cannot be imported", seg, r)
			}
		}
	}
	return nil
}

// importAlias builds an identifier from a directory path:
// "hospitals/_id_/versions" becomes "hospitals_id_versions".
func importAlias(dir string) string {
	var parts []string
	for _, seg := range strings.Split(dir, "/") {
		s := sanitizeIdentifier(seg)
		if s != "" {
			parts = append(parts, s)
		}
	}
	alias := strings.Join(parts, "_")
	if alias == "" {
		alias = "route"
	}
	if alias[0] >= '0' && alias[0] <= '9' {
		alias = "r" + alias
	}
	return alias
}

func sanitizeIdentifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func uniqueAlias(base string, used map[string]bool) string {
	alias := base
	for i := 2; used[alias]; i++ {
		alias = fmt.Sprintf("%s%d", base, i)
	}
	used[alias] = true
	return alias
}

// ImportPathFor returns the Go import path of dir by locating the nearest
// go.mod above it.
func ImportPathFor(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.New("R032").WithFile(dir).Wrap(err)
	}

	for cur := abs; ; {
		modulePath, err := readModulePath(filepath.Join(cur, "go.mod"))
		if err == nil {
			rel, err := filepath.Rel(cur, abs)
			if err != nil {
				return "", errors.New("R032").WithFile(dir).Wrap(err)
			}
			if rel == "." {
				return modulePath, nil
			}
			return path.Join(modulePath, filepath.ToSlash(rel)), nil
		}
		if !os.IsNotExist(err) {
			return "", errors.New("R032").WithFile(filepath.Join(cur, "go.mod")).Wrap(err)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", errors.New("R032").WithFile(dir).WithDetail("no go.mod found above the routes directory")
		}
		cur = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "module ")), `"`), nil
		}
	}
	return "", fmt.Errorf("module declaration not found in %s", goModPath)
}
