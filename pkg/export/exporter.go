package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/your-org/cucumber-report-enhanced/pkg/analytics"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the supported export formats
var Formats = []string{FormatJSON, FormatYAML}

// Exporter handles exporting the aggregated report tree
type Exporter struct {
	projectName string
}

// NewExporter creates a new exporter
func NewExporter(projectName string) *Exporter {
	return &Exporter{projectName: projectName}
}

// Document is the exported shape. Embeddings are never included.
type Document struct {
	Project     string       `json:"project,omitempty" yaml:"project,omitempty"`
	GeneratedAt string       `json:"generatedAt" yaml:"generatedAt"`
	Summary     SummaryDoc   `json:"summary" yaml:"summary"`
	Features    []FeatureDoc `json:"features" yaml:"features"`
	Failures    []FailureDoc `json:"failures,omitempty" yaml:"failures,omitempty"`
	Flaky       []FlakyDoc   `json:"flaky,omitempty" yaml:"flaky,omitempty"`
}

type SummaryDoc struct {
	Features    int     `json:"features" yaml:"features"`
	Scenarios   int     `json:"scenarios" yaml:"scenarios"`
	Steps       int     `json:"steps" yaml:"steps"`
	Passed      int     `json:"passed" yaml:"passed"`
	Failed      int     `json:"failed" yaml:"failed"`
	Skipped     int     `json:"skipped" yaml:"skipped"`
	SuccessRate float64 `json:"successRate" yaml:"successRate"`
	DurationMs  float64 `json:"durationMs" yaml:"durationMs"`
	Duration    string  `json:"duration" yaml:"duration"`
}

type FeatureDoc struct {
	Name       string        `json:"name" yaml:"name"`
	URI        string        `json:"uri,omitempty" yaml:"uri,omitempty"`
	Tags       []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	DurationMs float64       `json:"durationMs" yaml:"durationMs"`
	Duration   string        `json:"duration" yaml:"duration"`
	Passed     int           `json:"passed" yaml:"passed"`
	Failed     int           `json:"failed" yaml:"failed"`
	Skipped    int           `json:"skipped" yaml:"skipped"`
	Scenarios  []ScenarioDoc `json:"scenarios" yaml:"scenarios"`
}

type ScenarioDoc struct {
	Name       string    `json:"name" yaml:"name"`
	Status     string    `json:"status" yaml:"status"`
	Tags       []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	DurationMs float64   `json:"durationMs" yaml:"durationMs"`
	Duration   string    `json:"duration" yaml:"duration"`
	Steps      []StepDoc `json:"steps" yaml:"steps"`
}

type StepDoc struct {
	Name       string  `json:"name" yaml:"name"`
	Status     string  `json:"status" yaml:"status"`
	DurationMs float64 `json:"durationMs" yaml:"durationMs"`
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
	Embeddings int     `json:"embeddings,omitempty" yaml:"embeddings,omitempty"`
}

type FailureDoc struct {
	ErrorType string   `json:"errorType" yaml:"errorType"`
	RootCause string   `json:"rootCause" yaml:"rootCause"`
	Count     int      `json:"count" yaml:"count"`
	Severity  string   `json:"severity" yaml:"severity"`
	Scenarios []string `json:"scenarios" yaml:"scenarios"`
}

type FlakyDoc struct {
	Feature     string  `json:"feature" yaml:"feature"`
	Scenario    string  `json:"scenario" yaml:"scenario"`
	FailureRate float64 `json:"failureRate" yaml:"failureRate"`
	Runs        int     `json:"runs" yaml:"runs"`
}

// Export writes the report to w in the given format
func (e *Exporter) Export(w io.Writer, report *models.Report, format string) error {
	doc := e.Build(report)

	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

// Build converts the report into the export document
func (e *Exporter) Build(report *models.Report) *Document {
	sum := report.Summary
	doc := &Document{
		Project: e.projectName,
		Summary: SummaryDoc{
			Features:    sum.FeatureCount,
			Scenarios:   sum.ScenarioCount,
			Steps:       sum.StepCount,
			Passed:      sum.Passed,
			Failed:      sum.Failed,
			Skipped:     sum.Skipped,
			SuccessRate: analytics.CalculateSuccessRate(sum.Passed, sum.ScenarioCount),
			DurationMs:  sum.DurationMs(),
			Duration:    analytics.FormatNanos(sum.DurationNs),
		},
		Features: make([]FeatureDoc, 0, len(report.Features)),
	}
	if !report.GeneratedAt.IsZero() {
		doc.GeneratedAt = report.GeneratedAt.UTC().Format(time.RFC3339)
	}

	for _, fr := range report.Features {
		fd := FeatureDoc{
			Name:       fr.Feature.Name,
			URI:        fr.Feature.URI,
			Tags:       models.TagNames(fr.Feature.Tags),
			DurationMs: fr.Metrics.DurationMs(),
			Duration:   analytics.FormatNanos(fr.Metrics.DurationNs),
			Passed:     fr.Metrics.Passed,
			Failed:     fr.Metrics.Failed,
			Skipped:    fr.Metrics.Skipped,
			Scenarios:  make([]ScenarioDoc, 0, len(fr.Scenarios)),
		}
		for _, sr := range fr.Scenarios {
			sd := ScenarioDoc{
				Name:       sr.Scenario.Name,
				Status:     string(sr.Status),
				Tags:       models.TagNames(sr.Scenario.Tags),
				DurationMs: sr.Metrics.DurationMs(),
				Duration:   analytics.FormatNanos(sr.Metrics.DurationNs),
				Steps:      make([]StepDoc, 0, len(sr.Scenario.Steps)),
			}
			for _, step := range sr.Scenario.Steps {
				sd.Steps = append(sd.Steps, StepDoc{
					Name:       step.FullName(),
					Status:     string(step.Status()),
					DurationMs: models.NanosToMillis(step.DurationNs()),
					Error:      step.ErrorMessage(),
					Embeddings: len(step.Embeddings),
				})
			}
			fd.Scenarios = append(fd.Scenarios, sd)
		}
		doc.Features = append(doc.Features, fd)
	}

	if report.Insights != nil {
		for _, g := range report.Insights.FailureGroups {
			doc.Failures = append(doc.Failures, FailureDoc{
				ErrorType: g.ErrorType,
				RootCause: g.RootCause,
				Count:     g.Count,
				Severity:  g.Severity,
				Scenarios: g.AffectedScenarios,
			})
		}
	}
	for _, f := range report.Flaky {
		doc.Flaky = append(doc.Flaky, FlakyDoc{
			Feature:     f.Feature,
			Scenario:    f.Scenario,
			FailureRate: f.FailureRate,
			Runs:        f.Runs,
		})
	}

	return doc
}
