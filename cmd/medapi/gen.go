package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/config"
	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/errors"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/router"
)

func genCmd(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen <type>",
		Short: "Generate code",
		Long: `Generate code from the project layout.

Types:
  routes      Generate routes_gen.go from the routes directory

Examples:
  medapi gen routes            # Regenerate app/routes/routes_gen.go
  medapi gen routes --watch    # Regenerate on every route file change`,
	}

	cmd.AddCommand(genRoutesCmd(dir))
	return cmd
}

type genRoutesOptions struct {
	routesDir string
	pkg       string
	watch     bool
}

func genRoutesCmd(dir *string) *cobra.Command {
	var opts genRoutesOptions

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Generate routes_gen.go from route modules",
		Long: `Scan the routes directory and write routes_gen.go, the manifest that
links every route module into the binary.

Each route.go is parsed, its exported GET, POST, PUT, DELETE and PATCH
functions are classified by parameter count, and an optional Init hook
is wired in. The output is deterministic; the file is only rewritten
when it changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runGenRoutes(ctx, cmd.OutOrStdout(), *dir, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.routesDir, "dir", "d", "", "Routes directory (default: routes.dir from the config)")
	cmd.Flags().StringVar(&opts.pkg, "package", "", "Package name of the generated file (default: the directory name)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Keep running and regenerate on changes")
	return cmd
}

func runGenRoutes(ctx context.Context, out io.Writer, dir string, opts genRoutesOptions) error {
	routesDir := opts.routesDir
	if routesDir == "" {
		cfg, err := loadConfig(dir)
		if err != nil {
			return err
		}
		routesDir = cfg.RoutesPath()
	}
	routesDir, err := filepath.Abs(routesDir)
	if err != nil {
		return err
	}

	pkg := opts.pkg
	if pkg == "" {
		pkg = filepath.Base(routesDir)
	}

	generate := func() error {
		written, n, err := generateRoutes(routesDir, pkg)
		if err != nil {
			return err
		}
		if written {
			success(out, "Generated %s (%d modules)", filepath.Join(routesDir, router.GeneratedFile), n)
		} else {
			info(out, "%s is up to date (%d modules)", router.GeneratedFile, n)
		}
		return nil
	}

	if err := generate(); err != nil {
		if !opts.watch {
			return err
		}
		errors.PrintError(err)
	}
	if !opts.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, _ := newLogger(config.New())
	w, err := router.NewWatcher(routesDir, func() error {
		if err := generate(); err != nil {
			errors.PrintError(err)
		}
		return nil
	}, logger)
	if err != nil {
		return err
	}
	info(out, "Watching %s for changes...", routesDir)
	return w.Run(ctx)
}

// generateRoutes scans routesDir and writes its manifest.
func generateRoutes(routesDir, pkg string) (bool, int, error) {
	scanner := router.NewScanner(routesDir, quietLogger())
	discovered, err := scanner.Discover()
	if err != nil {
		return false, 0, err
	}
	modules, err := scanner.ScanModules(discovered)
	if err != nil {
		return false, 0, err
	}
	importPath, err := router.ImportPathFor(routesDir)
	if err != nil {
		return false, 0, err
	}

	written, err := router.NewGenerator(modules, importPath, pkg).WriteFile(routesDir)
	return written, len(modules), err
}
