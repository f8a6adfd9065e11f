package router

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/errors"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/routepath"
)

// Scanner discovers route modules under a routes root.
type Scanner struct {
	fsys    fs.FS
	rootDir string
	logger  *slog.Logger
}

// NewScanner creates a scanner over a directory on disk.
func NewScanner(rootDir string, logger *slog.Logger) *Scanner {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		abs = rootDir
	}
	return NewScannerFS(os.DirFS(abs), abs, logger)
}

// NewScannerFS creates a scanner over fsys. rootDir is only used to build
// absolute SourcePath values.
func NewScannerFS(fsys fs.FS, rootDir string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{fsys: fsys, rootDir: rootDir, logger: logger}
}

// RootDir returns the routes root.
func (s *Scanner) RootDir() string {
	return s.rootDir
}

// Discover walks the routes root and returns every route.go below it, in
// lexical walk order, with its translated mount path.
//
// A missing or unreadable root is fatal (R001), as is a path that cannot be
// translated (R003). An unreadable subdirectory is logged and skipped.
func (s *Scanner) Discover() ([]RouteDescriptor, error) {
	if _, err := fs.Stat(s.fsys, "."); err != nil {
		return nil, errors.New("R001").WithFile(s.rootDir).Wrap(err)
	}

	var routes []RouteDescriptor

	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." {
				return errors.New("R001").WithFile(s.rootDir).Wrap(err)
			}
			s.logger.Warn("skipping unreadable directory", "dir", s.sourcePath(p), "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if p != "." && skipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		if d.Name() != routepath.ModuleFile {
			return nil
		}

		tr, err := routepath.Translate(p)
		if err != nil {
			return errors.New("R003").WithFile(s.sourcePath(p)).Wrap(err)
		}

		routes = append(routes, RouteDescriptor{
			RelPath:    p,
			SourcePath: s.sourcePath(p),
			MountPath:  tr.MountPath,
			Params:     tr.Params,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return routes, nil
}

func (s *Scanner) sourcePath(rel string) string {
	return filepath.Join(s.rootDir, filepath.FromSlash(rel))
}

// skipDir reports directories that never hold route modules.
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "testdata" || name == "vendor"
}

// ExportedHandler is a verb function found in a route module's source.
type ExportedHandler struct {
	Method string
	Kind   Kind
}

// ModuleInfo is what the generator needs to know about one route module.
type ModuleInfo struct {
	// RelPath is the module path relative to the routes root.
	RelPath string

	// Package is the Go package name declared by the module.
	Package string

	// Handlers are the exported verb functions, in Methods order.
	Handlers []ExportedHandler

	// HasInit reports an exported `func Init() error`.
	HasInit bool
}

// Dir returns the module's directory relative to the routes root ("." for
// the root itself).
func (m ModuleInfo) Dir() string {
	return path.Dir(m.RelPath)
}

// ScanModules parses every discovered route module and classifies its
// exported verb functions by declared parameter count.
func (s *Scanner) ScanModules(routes []RouteDescriptor) ([]ModuleInfo, error) {
	modules := make([]ModuleInfo, 0, len(routes))
	for _, d := range routes {
		info, err := s.scanFile(d.RelPath)
		if err != nil {
			return nil, err
		}
		modules = append(modules, info)
	}
	return modules, nil
}

// scanFile parses a Go file and extracts its handler exports.
func (s *Scanner) scanFile(relPath string) (ModuleInfo, error) {
	src, err := fs.ReadFile(s.fsys, relPath)
	if err != nil {
		return ModuleInfo{}, errors.New("R030").WithFile(s.sourcePath(relPath)).Wrap(err)
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, s.sourcePath(relPath), src, parser.SkipObjectResolution)
	if err != nil {
		return ModuleInfo{}, errors.New("R030").WithLocationFromError(err).Wrap(err)
	}

	info := ModuleInfo{RelPath: relPath, Package: f.Name.Name}
	found := make(map[string]Kind)

	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil || !fn.Name.IsExported() {
			continue
		}

		name := fn.Name.Name
		if name == "Init" {
			info.HasInit = countFields(fn.Type.Params) == 0
			continue
		}
		if !isMethod(name) {
			continue
		}

		params := countFields(fn.Type.Params)
		results := countFields(fn.Type.Results)
		if params == 0 || params > 2 || results != 2 {
			pos := fset.Position(fn.Pos())
			return ModuleInfo{}, errors.New("R031").
				WithLocation(pos.Filename, pos.Line, pos.Column).
				WithDetail(fmt.Sprintf("%s declares %d params and %d results", name, params, results))
		}

		kind := KindPlain
		if params >= 2 {
			kind = KindWrapped
		}
		found[name] = kind
	}

	for _, m := range Methods {
		if kind, ok := found[m]; ok {
			info.Handlers = append(info.Handlers, ExportedHandler{Method: m, Kind: kind})
		}
	}

	return info, nil
}

// countFields counts declared names, treating an unnamed field as one.
func countFields(fl *ast.FieldList) int {
	if fl == nil {
		return 0
	}
	n := 0
	for _, field := range fl.List {
		if len(field.Names) == 0 {
			n++
			continue
		}
		n += len(field.Names)
	}
	return n
}

func isMethod(name string) bool {
	for _, m := range Methods {
		if m == name {
			return true
		}
	}
	return false
}
