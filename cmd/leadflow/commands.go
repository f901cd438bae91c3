package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hylla/leadflow/internal/adapters/seedfile"
	"github.com/hylla/leadflow/internal/adapters/server"
	"github.com/hylla/leadflow/internal/adapters/server/common"
	"github.com/hylla/leadflow/internal/domain"
	"github.com/hylla/leadflow/internal/notify"
	"github.com/hylla/leadflow/internal/printer"
	"github.com/hylla/leadflow/internal/tui"
	"github.com/spf13/cobra"
)

// leadFieldOrder is the form order used when printing field errors.
var leadFieldOrder = []string{domain.FieldName, domain.FieldEmail, domain.FieldPhone, domain.FieldSource}

func newTUICommand(opts *cliOptions, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the kanban board (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
}

// runTUI opens the board with config-driven options.
func runTUI(ctx context.Context, opts *cliOptions, stderr io.Writer) error {
	oo := openOptions{command: "tui", muteConsole: true, stderr: stderr}
	return withRuntime(ctx, opts, oo, func(rt *appRuntime) error {
		board := rt.cfg.Board
		modelOpts := []tui.Option{
			tui.WithBoardConfig(tui.BoardConfig{
				ShowSidebar:      board.ShowSidebar,
				SidebarCollapsed: board.SidebarCollapsed,
				ShowAssignee:     board.ShowAssignee,
				ToastDuration:    time.Duration(board.ToastSeconds) * time.Second,
			}),
			tui.WithKeyConfig(tui.KeyConfig{
				AddLead:       rt.cfg.Keys.AddLead,
				Grab:          rt.cfg.Keys.Grab,
				ToggleSidebar: rt.cfg.Keys.ToggleSidebar,
				CopyEmail:     rt.cfg.Keys.CopyEmail,
			}),
			tui.WithNotifier(rt.notifier),
		}
		if rt.bus != nil {
			sub, err := rt.bus.Subscribe(ctx)
			if err != nil {
				rt.logger.Warn("lead event subscription failed; board will not auto-refresh", "err", err)
			} else {
				defer func() { _ = sub.Close() }()
				go func() {
					for err := range sub.Errors() {
						rt.logger.Warn("skipped lead event", "err", err)
					}
				}()
				modelOpts = append(modelOpts, tui.WithEvents(sub.Events()))
			}
		}

		m := tui.NewModel(rt.svc, modelOpts...)
		rt.logger.Info("starting tui program loop")
		if _, err := programFactory(m).Run(); err != nil {
			return fmt.Errorf("run tui program: %w", err)
		}
		return nil
	})
}

func newServeCommand(opts *cliOptions, stderr io.Writer) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and MCP tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, opts, openOptions{command: "serve", stderr: stderr}, func(rt *appRuntime) error {
				unsubscribe := rt.logEvents()
				defer unsubscribe()

				cfg := server.Config{
					HTTPBind:       rt.cfg.Server.HTTPBind,
					APIEndpoint:    rt.cfg.Server.APIEndpoint,
					MCPEndpoint:    rt.cfg.Server.MCPEndpoint,
					AllowedOrigins: rt.cfg.Server.AllowedOrigins,
					ServerName:     rt.appName,
					ServerVersion:  version,
				}
				if strings.TrimSpace(bind) != "" {
					cfg.HTTPBind = bind
				}
				rt.logger.Info("http server starting", "bind", cfg.HTTPBind, "api", cfg.APIEndpoint, "mcp", cfg.MCPEndpoint)
				return server.Run(ctx, cfg, server.Dependencies{
					Leads:  common.NewAppServiceAdapter(rt.svc, rt.notifier),
					Logger: rt.logger,
					Ready:  rt.ready,
				})
			})
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "override server.http_bind")
	return cmd
}

func newListCommand(opts *cliOptions, stderr io.Writer) *cobra.Command {
	var (
		statusFilter string
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			var filter *domain.Status
			if raw := strings.TrimSpace(statusFilter); raw != "" {
				status, err := domain.ParseStatus(raw)
				if err != nil {
					return unknownStatusError(stderr, raw)
				}
				filter = &status
			}
			return withRuntime(cmd.Context(), opts, openOptions{command: "list", stderr: stderr}, func(rt *appRuntime) error {
				columns, err := rt.svc.Board(cmd.Context())
				if err != nil {
					return fmt.Errorf("load board: %w", err)
				}
				leads := make([]domain.Lead, 0)
				for _, column := range columns {
					if filter != nil && column.Status != *filter {
						continue
					}
					leads = append(leads, column.Leads...)
				}
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(leads)
				}
				if len(leads) == 0 {
					printer.Info(out, "no leads")
					return nil
				}
				_, _ = fmt.Fprintln(out, renderLeadTable(leads))

				counts := make([]string, 0, len(columns))
				for _, column := range columns {
					counts = append(counts, fmt.Sprintf("%s %d", column.Title, len(column.Leads)))
				}
				printer.Info(out, "%s", strings.Join(counts, " · "))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&statusFilter, "status", "", "only show leads in this status")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// renderLeadTable renders leads as a bordered table in board order.
func renderLeadTable(leads []domain.Lead) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("239"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("ID", "NAME", "STATUS", "SOURCE", "EMAIL", "PHONE", "ASSIGNED", "CREATED")
	for _, lead := range leads {
		created := "-"
		if !lead.CreatedAt.IsZero() {
			created = lead.CreatedAt.Local().Format("2006-01-02")
		}
		t.Row(lead.ID, lead.Name, lead.Status.Title(), lead.Source, lead.Email, lead.Phone, lead.AssignedTo, created)
	}
	return t.String()
}

func newAddCommand(opts *cliOptions, stderr io.Writer) *cobra.Command {
	var in domain.LeadInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a lead to New Leads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			return withRuntime(cmd.Context(), opts, openOptions{command: "add", stderr: stderr}, func(rt *appRuntime) error {
				lead, err := rt.svc.CreateLead(cmd.Context(), in)
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					return printer.FieldErrors(stderr, "lead not added", verr.Map(), leadFieldOrder)
				}
				if err != nil {
					return fmt.Errorf("create lead: %w", err)
				}
				n, err := rt.notifier.Created(lead)
				if err != nil {
					n = notify.PlainCreated(lead)
				}
				printer.Success(out, "%s (%s)", n.Title, lead.ID)
				printer.Detail(out, "%s", n.Description)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&in.Name, "name", "", "lead name")
	flags.StringVar(&in.Email, "email", "", "lead email")
	flags.StringVar(&in.Phone, "phone", "", "lead phone")
	flags.StringVar(&in.Source, "source", "", "lead source, for example Facebook Ads")
	return cmd
}

func newMoveCommand(opts *cliOptions, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "move <lead-id> <status>",
		Short: "Move a lead to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			leadID := strings.TrimSpace(args[0])
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return unknownStatusError(stderr, args[1])
			}
			return withRuntime(cmd.Context(), opts, openOptions{command: "move", stderr: stderr}, func(rt *appRuntime) error {
				result, err := rt.svc.MoveLead(cmd.Context(), leadID, status)
				if err != nil {
					return fmt.Errorf("move lead: %w", err)
				}
				switch {
				case !result.Applied:
					printer.Warning(out, "lead %q not found; nothing changed", leadID)
				case result.FromStatus == status:
					printer.Info(out, "%s stays in %s", result.Lead.Name, status.Title())
				default:
					n, err := rt.notifier.Moved(result.Lead, result.FromStatus)
					if err != nil {
						n = notify.PlainMoved(result.Lead, result.FromStatus)
					}
					printer.Success(out, "%s", n.Title)
					printer.Detail(out, "%s", n.Description)
				}
				return nil
			})
		},
	}
}

// unknownStatusError prints the accepted identifiers and returns a short error.
func unknownStatusError(stderr io.Writer, raw string) error {
	ids := make([]string, 0, len(domain.Statuses()))
	for _, def := range domain.Statuses() {
		ids = append(ids, def.Status.String())
	}
	return printer.Error(stderr,
		fmt.Sprintf("unknown status %q", raw),
		"",
		[]string{"use one of: " + strings.Join(ids, ", ")},
	)
}

func newNavCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "Print the sidebar navigation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, domain.NavGroupLabel)
			for _, item := range domain.NavItems() {
				_, _ = fmt.Fprintf(out, "  %s %-10s %s\n", item.Icon, item.Label, item.Href)
			}
			return nil
		},
	}
}

func newExportCommand(opts *cliOptions, stderr io.Writer) *cobra.Command {
	var (
		outPath string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every lead as a JSON snapshot or YAML seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported export format %q", format)
			}
			return withRuntime(cmd.Context(), opts, openOptions{command: "export", stderr: stderr}, func(rt *appRuntime) error {
				leads, err := rt.svc.ListLeads(cmd.Context())
				if err != nil {
					return fmt.Errorf("list leads: %w", err)
				}
				write := func(w io.Writer) error {
					if format == "yaml" {
						encoded, err := seedfile.Encode(leads)
						if err != nil {
							return fmt.Errorf("encode seed yaml: %w", err)
						}
						_, err = w.Write(encoded)
						return err
					}
					if err := seedfile.WriteSnapshot(w, leads, time.Now()); err != nil {
						return fmt.Errorf("write snapshot: %w", err)
					}
					return nil
				}
				if outPath == "-" {
					return write(cmd.OutOrStdout())
				}
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return fmt.Errorf("create export output dir: %w", err)
				}
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				return writeAndClose(f, write)
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	cmd.Flags().StringVar(&format, "format", "json", "json snapshot or yaml seed")
	return cmd
}

// writeAndClose runs write against wc and always closes it. A close failure
// is reported when the write itself succeeded.
func writeAndClose(wc io.WriteCloser, write func(io.Writer) error) error {
	writeErr := write(wc)
	if closeErr := wc.Close(); closeErr != nil && writeErr == nil {
		return fmt.Errorf("close export file: %w", closeErr)
	}
	return writeErr
}

func newImportCommand(opts *cliOptions, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import leads from a JSON snapshot or YAML seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			leads, err := seedfile.ReadImport(args[0])
			if err != nil {
				return err
			}
			oo := openOptions{command: "import", skipSeed: true, stderr: stderr}
			return withRuntime(cmd.Context(), opts, oo, func(rt *appRuntime) error {
				added, err := rt.svc.ImportLeads(cmd.Context(), leads)
				if err != nil {
					return fmt.Errorf("import leads: %w", err)
				}
				printer.Success(cmd.OutOrStdout(), "imported %d of %d leads", added, len(leads))
				return nil
			})
		},
	}
}

func newPathsCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := opts.resolvePaths()
			if err != nil {
				return err
			}
			configPath, dbPath, _ := opts.resolveLocations(paths)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", configPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", dbPath)
			_, _ = fmt.Fprintf(out, "seed: %s\n", paths.SeedPath)
			_, _ = fmt.Fprintf(out, "exports: %s\n", paths.ExportDir)
			return nil
		},
	}
}
