package main

import (
	"io"
	"log/slog"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/errors"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/router"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/routepath"
)

func routesCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the routes the routes directory declares",
		Long: `Scan the routes directory and print every method and path that
"medapi serve" would mount, most specific first.

Collisions and parameter name conflicts are reported as errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(cmd.OutOrStdout(), *dir)
		},
	}
}

func runRoutes(out io.Writer, dir string) error {
	cfg, err := loadConfig(dir)
	if err != nil {
		return err
	}

	scanner := router.NewScanner(cfg.RoutesPath(), quietLogger())
	discovered, err := scanner.Discover()
	if err != nil {
		return err
	}
	if err := router.NewValidator(discovered).Validate(); err != nil {
		return errors.New("R002").WithDetail(err.Error()).Wrap(err)
	}
	modules, err := scanner.ScanModules(discovered)
	if err != nil {
		return err
	}

	prefix, err := routepath.CleanPrefix(cfg.Routes.Prefix)
	if err != nil {
		return err
	}

	table := router.NewTable()
	for i, m := range modules {
		for _, h := range m.Handlers {
			reg := router.Registration{
				Method:  h.Method,
				Pattern: routepath.Join(prefix, discovered[i].MountPath),
				Kind:    h.Kind,
				Source:  m.RelPath,
			}
			if err := table.Add(reg); err != nil {
				return err
			}
		}
	}
	regs := table.Routes()
	router.SortBySpecificity(regs)

	data := make([][]string, 0, len(regs))
	for _, r := range regs {
		data = append(data, []string{r.Method, r.Pattern, r.Kind.String(), r.Source})
	}
	if err := renderTable([]string{"METHOD", "PATH", "KIND", "MODULE"}, data, out); err != nil {
		return err
	}
	info(out, "%d routes in %d modules", len(regs), len(modules))
	return nil
}

func renderTable(header []string, data [][]string, w io.Writer) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(
			tw.Rendition{
				Borders: tw.BorderNone,
				Symbols: tw.NewSymbols(tw.StyleASCII),
				Settings: tw.Settings{
					Lines: tw.Lines{
						ShowHeaderLine: tw.Off,
						ShowFooterLine: tw.Off,
						ShowTop:        tw.Off,
						ShowBottom:     tw.Off,
					},
					Separators: tw.Separators{
						ShowHeader:     tw.Off,
						ShowFooter:     tw.Off,
						BetweenRows:    tw.Off,
						BetweenColumns: tw.Off,
					},
				},
			},
		)),
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	)

	table.Header(header)
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
