package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code. Errors go to
// errOut in the style picked by --error-format.
func execute(args []string, out, errOut io.Writer) int {
	root := newRootCmd(out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		style, _ := root.PersistentFlags().GetString("error-format")
		errors.Fprint(errOut, err, style)
		return 1
	}
	return 0
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		dir         string
		errorFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "medapi",
		Short: "Booking API server with directory-based routes",
		Long: `medapi serves the hospital booking API.

Every route.go file below the routes directory is a route module whose
directory decides its mount path:

  app/routes/hospitals/_id_/route.go   →   /api/hospitals/:id

Modules are linked in through routes_gen.go, which "medapi gen routes"
keeps up to date.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !errors.ValidStyle(errorFormat) {
				return errors.Newf(errors.CategoryCLI, "unknown --error-format %q (want pretty, compact or json)", errorFormat)
			}
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVarP(&dir, "project", "p", ".", "Project directory holding medapi.json or medapi.yaml")
	rootCmd.PersistentFlags().StringVar(&errorFormat, "error-format", errors.StylePretty, "Error output: pretty, compact or json")

	rootCmd.AddCommand(
		serveCmd(&dir),
		routesCmd(&dir),
		genCmd(&dir),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
