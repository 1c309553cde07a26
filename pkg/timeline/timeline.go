// Package timeline renders a horizontal bar chart of scenario durations.
package timeline

import (
	"html/template"
	"time"

	"github.com/your-org/cucumber-report-enhanced/pkg/analytics"
	"github.com/your-org/cucumber-report-enhanced/pkg/config"
	"github.com/your-org/cucumber-report-enhanced/pkg/logger"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
	"github.com/your-org/cucumber-report-enhanced/pkg/renderer"
)

const (
	Name = "timeline"

	// LabelLimit is the number of runes shown on the chart axis
	LabelLimit = 50
)

type Options struct {
	ProjectName    string
	ChartScriptURL string
	Now            func() time.Time
}

// Renderer writes timeline-report.html
type Renderer struct {
	outputPath string
	opts       Options
	tmpl       *template.Template
}

var _ renderer.Renderer = (*Renderer)(nil)

func New(outputPath string, opts Options) *Renderer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ChartScriptURL == "" {
		opts.ChartScriptURL = config.DefaultChartScriptURL
	}
	return &Renderer{
		outputPath: outputPath,
		opts:       opts,
		tmpl:       template.Must(template.New("timeline-report").Parse(pageTemplate)),
	}
}

func (r *Renderer) Name() string { return Name }

func (r *Renderer) Render(report *models.Report) (string, error) {
	if err := renderer.RenderTemplate(r.tmpl, r.buildPage(report), r.outputPath); err != nil {
		return "", err
	}
	logger.Infof("Timeline report generated: %s", r.outputPath)
	return r.outputPath, nil
}

type page struct {
	Title          string
	GeneratedAt    string
	ChartScriptURL string
	Features       int
	Scenarios      int
	Passed         int
	Failed         int
	Duration       string
	Bars           []bar
	// ChartHeight grows with the number of bars so labels stay readable
	ChartHeight int
}

// bar is serialised into the page script
type bar struct {
	Label    string  `json:"label"`
	Name     string  `json:"name"`
	Feature  string  `json:"feature"`
	Status   string  `json:"status"`
	Ms       float64 `json:"ms"`
	Duration string  `json:"duration"`
}

func (r *Renderer) buildPage(report *models.Report) page {
	title := "Timeline Report"
	if r.opts.ProjectName != "" {
		title = r.opts.ProjectName + " - " + title
	}

	p := page{
		Title:          title,
		GeneratedAt:    r.opts.Now().Format("January 2, 2006 at 3:04 PM"),
		ChartScriptURL: r.opts.ChartScriptURL,
		Features:       report.Summary.FeatureCount,
		Scenarios:      report.Summary.ScenarioCount,
		Passed:         report.Summary.Passed,
		Failed:         report.Summary.Failed,
		Duration:       analytics.FormatNanos(report.Summary.DurationNs),
		Bars:           make([]bar, 0, report.Summary.ScenarioCount),
	}

	for _, sr := range report.ScenarioReports() {
		ms := sr.Metrics.DurationMs()
		p.Bars = append(p.Bars, bar{
			Label:    renderer.Truncate(sr.Scenario.Name, LabelLimit),
			Name:     sr.Scenario.Name,
			Feature:  sr.Feature.Name,
			Status:   string(sr.Status),
			Ms:       ms,
			Duration: analytics.FormatDuration(ms),
		})
	}

	p.ChartHeight = 120 + 36*len(p.Bars)
	if p.ChartHeight < 500 {
		p.ChartHeight = 500
	}
	return p
}
