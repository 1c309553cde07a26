package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/your-org/cucumber-report-enhanced/pkg/config"
	"github.com/your-org/cucumber-report-enhanced/pkg/logger"
	"github.com/your-org/cucumber-report-enhanced/pkg/plugin"
)

var (
	version = "1.0.0"
	commit  = "dev"
	date    = "unknown"
)

// pluginAction is set by Gauge when it launches the binary as a reporter
const pluginAction = "html-report_action"

func main() {
	if os.Getenv(pluginAction) == "execution" {
		cfg := config.NewConfig()
		cfg.LoadFromEnv()
		runAsGaugePlugin(cfg)
		return
	}

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

// app carries state shared by every command
type app struct {
	cfg        *config.Config
	out        io.Writer
	configFile string
	logLevel   string
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	rootCmd := &cobra.Command{
		Use:   "trace-report",
		Short: "Render cucumber JSON traces into evidence, timeline and Allure reports",
		Long: `trace-report reads the cucumber JSON trace left behind by a test run and
renders it as a self-contained evidence report, a Chart.js timeline and
Allure result files. It can also summarise, export and serve the results.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Path to configuration file (default: trace-report.yml if present)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		a.newRenderCmd("evidence", "Render the detailed evidence HTML report"),
		a.newRenderCmd("timeline", "Render the scenario timeline HTML report"),
		a.newRenderCmd("allure", "Convert the trace into Allure result files"),
		a.newGenerateCmd(),
		a.newSummaryCmd(),
		a.newExportCmd(),
		a.newSchemaCmd(),
		a.newHistoryCmd(),
		a.newServeCmd(),
		&cobra.Command{
			Use:   "plugin",
			Short: "Run as Gauge reporter plugin",
			Long:  "Start the gRPC reporter used by Gauge (launched internally by Gauge).",
			Run:   func(cmd *cobra.Command, args []string) { runAsGaugePlugin(a.cfg) },
		},
	)
	return rootCmd
}

// loadConfig reads the config file, then the environment, then applies the
// log level. An explicit --config must exist.
func (a *app) loadConfig() error {
	if a.configFile != "" {
		cfg := config.NewConfig()
		if err := cfg.LoadFromFile(a.configFile); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg.LoadFromEnv()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		a.cfg = cfg
	} else {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	level := a.cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	logger.SetLevel(level)
	return nil
}

func runAsGaugePlugin(cfg *config.Config) {
	logger.Info("Starting trace report plugin")
	cfg.ReportsDir = plugin.ReportsDir(os.Getenv("GAUGE_PROJECT_ROOT"), os.Getenv("gauge_reports_dir"))

	p := plugin.NewPlugin(cfg)
	if err := p.Start(); err != nil {
		logger.Fatalf("Failed to start plugin: %v", err)
	}
}

func init() {
	logger.Logger().SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}
