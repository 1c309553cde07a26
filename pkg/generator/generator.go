// Package generator runs the full pipeline: read the trace, aggregate it,
// annotate it and hand it to the selected renderers.
package generator

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/cucumber-report-enhanced/pkg/allure"
	"github.com/your-org/cucumber-report-enhanced/pkg/analytics"
	"github.com/your-org/cucumber-report-enhanced/pkg/config"
	"github.com/your-org/cucumber-report-enhanced/pkg/evidence"
	"github.com/your-org/cucumber-report-enhanced/pkg/insights"
	"github.com/your-org/cucumber-report-enhanced/pkg/logger"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
	"github.com/your-org/cucumber-report-enhanced/pkg/renderer"
	"github.com/your-org/cucumber-report-enhanced/pkg/storage"
	"github.com/your-org/cucumber-report-enhanced/pkg/timeline"
	"github.com/your-org/cucumber-report-enhanced/pkg/trace"
)

// Kinds lists every renderer in the order they run
var Kinds = []string{evidence.Name, timeline.Name, allure.Name}

// ErrUnknownKind is returned for a report kind no renderer handles
var ErrUnknownKind = errors.New("unknown report kind")

// Artifact is one generated output
type Artifact struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// Generator wires reader, aggregator, history and renderers together
type Generator struct {
	config   *config.Config
	analyzer *insights.Analyzer
	now      func() time.Time
}

// NewGenerator creates a new report generator
func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{
		config:   cfg,
		analyzer: insights.NewAnalyzer(),
		now:      time.Now,
	}
}

// LoadTrace reads a cucumber JSON trace, or a saved Gauge suite result when
// the file ends in .pb.
func LoadTrace(inputFile string) (models.Trace, error) {
	if strings.EqualFold(filepath.Ext(inputFile), ".pb") {
		return trace.LoadGauge(inputFile)
	}
	return trace.Load(inputFile)
}

// GenerateFromFile loads inputFile and renders the requested kinds, all when
// none are given.
func (g *Generator) GenerateFromFile(inputFile string, kinds ...string) ([]Artifact, error) {
	logger.Infof("Reading test results from %s", inputFile)

	tr, err := LoadTrace(inputFile)
	if err != nil {
		return nil, err
	}
	return g.Generate(tr, inputFile, kinds...)
}

// Generate builds the report for tr and renders it. source is recorded in
// run history.
func (g *Generator) Generate(tr models.Trace, source string, kinds ...string) ([]Artifact, error) {
	renderers, err := g.Renderers(kinds...)
	if err != nil {
		return nil, err
	}
	return g.render(renderers, g.BuildReport(tr, source))
}

// Render writes an already built report with the requested renderers.
func (g *Generator) Render(report *models.Report, kinds ...string) ([]Artifact, error) {
	renderers, err := g.Renderers(kinds...)
	if err != nil {
		return nil, err
	}
	return g.render(renderers, report)
}

func (g *Generator) render(renderers []renderer.Renderer, report *models.Report) ([]Artifact, error) {
	startTime := g.now()
	artifacts := make([]Artifact, 0, len(renderers))
	for _, r := range renderers {
		logger.Debugf("Rendering %s report...", r.Name())
		path, err := r.Render(report)
		if err != nil {
			return artifacts, fmt.Errorf("failed to render %s report: %w", r.Name(), err)
		}
		artifacts = append(artifacts, Artifact{Kind: r.Name(), Path: path})
	}

	logger.Infof("✓ Reports generated successfully in %v", g.now().Sub(startTime))
	return artifacts, nil
}

// BuildReport aggregates tr and attaches insights and, when enabled, run
// history annotations.
func (g *Generator) BuildReport(tr models.Trace, source string) *models.Report {
	report := analytics.Aggregate(tr)
	report.GeneratedAt = g.now()

	if g.config.ShowInsights {
		report.Insights = g.analyzer.Analyze(report)
	}
	if g.config.History.Enabled {
		g.applyHistory(report, source)
	}
	return report
}

// applyHistory records the run and reads flakiness back. History problems
// never fail the generation.
func (g *Generator) applyHistory(report *models.Report, source string) {
	db, err := storage.NewDatabase(g.config.HistoryPath())
	if err != nil {
		logger.Warnf("Run history disabled: %v", err)
		return
	}
	defer db.Close()

	engine := analytics.NewEngine(g.config, db)
	if err := engine.RecordRun(report, uuid.NewString(), source); err != nil {
		logger.Warnf("Failed to record run: %v", err)
	}
	report.Flaky = engine.DetectFlaky(report)
	if report.Insights != nil {
		engine.TrackFailures(report.Insights.FailureGroups, report.GeneratedAt)
	}
	if err := engine.Cleanup(report.GeneratedAt); err != nil {
		logger.Warnf("Failed to clean up run history: %v", err)
	}
}

// Renderers resolves kinds to configured renderers. Unknown kinds are an
// error so nothing is written for a mistyped command.
func (g *Generator) Renderers(kinds ...string) ([]renderer.Renderer, error) {
	if len(kinds) == 0 {
		kinds = Kinds
	}

	renderers := make([]renderer.Renderer, 0, len(kinds))
	for _, kind := range kinds {
		r, err := g.renderer(kind)
		if err != nil {
			return nil, err
		}
		renderers = append(renderers, r)
	}
	return renderers, nil
}

func (g *Generator) renderer(kind string) (renderer.Renderer, error) {
	cfg := g.config
	switch strings.ToLower(kind) {
	case evidence.Name:
		return evidence.New(cfg.EvidencePath(), evidence.Options{
			ProjectName: cfg.ProjectName,
			Now:         g.now,
		}), nil
	case timeline.Name:
		return timeline.New(cfg.TimelinePath(), timeline.Options{
			ProjectName:    cfg.ProjectName,
			ChartScriptURL: cfg.ChartScriptURL,
			Now:            g.now,
		}), nil
	case allure.Name:
		return allure.NewConverter(allure.Options{
			ResultsDir:  cfg.AllurePath(),
			Environment: cfg.Environment,
			HistoryDir:  cfg.AllureHistoryDir,
			Now:         g.now,
		}), nil
	default:
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownKind, kind, strings.Join(Kinds, ", "))
	}
}
