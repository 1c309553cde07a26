package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/your-org/cucumber-report-enhanced/pkg/allure"
	"github.com/your-org/cucumber-report-enhanced/pkg/analytics"
	"github.com/your-org/cucumber-report-enhanced/pkg/evidence"
	"github.com/your-org/cucumber-report-enhanced/pkg/export"
	"github.com/your-org/cucumber-report-enhanced/pkg/generator"
	"github.com/your-org/cucumber-report-enhanced/pkg/insights"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
	"github.com/your-org/cucumber-report-enhanced/pkg/server"
	"github.com/your-org/cucumber-report-enhanced/pkg/storage"
	"github.com/your-org/cucumber-report-enhanced/pkg/summary"
	"github.com/your-org/cucumber-report-enhanced/pkg/timeline"
	"github.com/your-org/cucumber-report-enhanced/pkg/trace"
)

// newRenderCmd builds the standalone command for a single renderer.
func (a *app) newRenderCmd(kind, short string) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   kind,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" {
				if err := a.setOutput(kind, output); err != nil {
					return err
				}
			}
			artifacts, err := generator.NewGenerator(a.cfg).GenerateFromFile(a.input(input), kind)
			if err != nil {
				return err
			}
			a.printArtifacts(artifacts)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Cucumber JSON trace (default: <reports_dir>/cucumber-report.json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or directory for allure")
	return cmd
}

func (a *app) newGenerateCmd() *cobra.Command {
	var (
		input       string
		kinds       []string
		showSummary bool
		record      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render every report from the trace",
		Long:  "Render the evidence, timeline and Allure reports from one trace. Use --kind to pick a subset.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if record {
				a.cfg.History.Enabled = true
			}
			path := a.input(input)
			g := generator.NewGenerator(a.cfg)
			if _, err := g.Renderers(kinds...); err != nil {
				return err
			}

			tr, err := generator.LoadTrace(path)
			if err != nil {
				return err
			}
			report := g.BuildReport(tr, path)
			artifacts, err := g.Render(report, kinds...)
			if err != nil {
				return err
			}

			if showSummary {
				if err := summary.Print(a.out, report); err != nil {
					return err
				}
			}
			a.printArtifacts(artifacts)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Cucumber JSON trace or Gauge .pb suite result")
	cmd.Flags().StringSliceVarP(&kinds, "kind", "k", nil, fmt.Sprintf("Reports to render (%s)", strings.Join(generator.Kinds, ", ")))
	cmd.Flags().BoolVar(&showSummary, "summary", false, "Also print the execution summary")
	cmd.Flags().BoolVar(&record, "record", false, "Record this run in the history database")
	return cmd
}

func (a *app) newSummaryCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print per-feature execution metrics to the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.loadReport(input)
			if err != nil {
				return err
			}
			return summary.Print(a.out, report)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Cucumber JSON trace")
	return cmd
}

func (a *app) newExportCmd() *cobra.Command {
	var input, output, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export aggregated metrics as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.loadReport(input)
			if err != nil {
				return err
			}

			exporter := export.NewExporter(a.cfg.ProjectName)
			if output == "" {
				return exporter.Export(a.out, report, format)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := exporter.Export(f, report, format); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Cucumber JSON trace")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatJSON, fmt.Sprintf("Export format (%s)", strings.Join(export.Formats, ", ")))
	return cmd
}

func (a *app) newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the accepted cucumber trace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := trace.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, string(data))
			return err
		},
	}
}

func (a *app) newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs recorded with generate --record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.cfg.HistoryPath()); os.IsNotExist(err) {
				return summary.PrintHistory(a.out, nil)
			}

			db, err := storage.NewDatabase(a.cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := analytics.NewEngine(a.cfg, db).RecentRuns(limit)
			if err != nil {
				return err
			}
			return summary.PrintHistory(a.out, runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

func (a *app) newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated reports and the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := fmt.Sprintf("%s:%d", host, a.cfg.Server.Port)
			return server.NewServer(a.cfg).Serve(ctx, addr)
		},
	}
	cmd.Flags().StringVarP(&host, "host", "H", "localhost", "Host to bind")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (default from config)")
	return cmd
}

// input returns the trace to read: the flag when given, else the configured
// trace path.
func (a *app) input(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.TracePath()
}

// setOutput points the renderer of kind at path. Relative paths are taken
// from the working directory, not the reports directory.
func (a *app) setOutput(kind, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid output path %s: %w", path, err)
	}
	switch kind {
	case evidence.Name:
		a.cfg.EvidenceFile = abs
	case timeline.Name:
		a.cfg.TimelineFile = abs
	case allure.Name:
		a.cfg.AllureDir = abs
	}
	return nil
}

// loadReport aggregates the trace with insights, without touching history.
func (a *app) loadReport(input string) (*models.Report, error) {
	tr, err := generator.LoadTrace(a.input(input))
	if err != nil {
		return nil, err
	}
	report := analytics.Aggregate(tr)
	report.GeneratedAt = time.Now()
	if a.cfg.ShowInsights {
		report.Insights = insights.NewAnalyzer().Analyze(report)
	}
	return report, nil
}

func (a *app) printArtifacts(artifacts []generator.Artifact) {
	for _, artifact := range artifacts {
		fmt.Fprintln(a.out, artifact.Path)
	}
}
