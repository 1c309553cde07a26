// Package evidence renders the detailed, self-contained HTML report with step
// evidence (screenshots, logs and JSON payloads).
package evidence

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/your-org/cucumber-report-enhanced/pkg/analytics"
	"github.com/your-org/cucumber-report-enhanced/pkg/logger"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
	"github.com/your-org/cucumber-report-enhanced/pkg/renderer"
)

// Name identifies this renderer on the command line
const Name = "evidence"

var imageMimePattern = regexp.MustCompile(`^image/[a-zA-Z0-9.+-]+$`)

// Options tune the page
type Options struct {
	ProjectName string
	// Now stamps the page; defaults to time.Now
	Now func() time.Time
}

// Renderer writes detailed-report.html
type Renderer struct {
	outputPath string
	opts       Options
	tmpl       *template.Template
}

var _ renderer.Renderer = (*Renderer)(nil)

// New creates an evidence renderer writing to outputPath
func New(outputPath string, opts Options) *Renderer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Renderer{
		outputPath: outputPath,
		opts:       opts,
		tmpl:       template.Must(template.New("detailed-report").Funcs(funcMap).Parse(pageTemplate)),
	}
}

func (r *Renderer) Name() string { return Name }

// Render writes the page and returns its path
func (r *Renderer) Render(report *models.Report) (string, error) {
	data := r.buildPage(report)
	if err := renderer.RenderTemplate(r.tmpl, data, r.outputPath); err != nil {
		return "", err
	}
	logger.Infof("Detailed report generated: %s", r.outputPath)
	return r.outputPath, nil
}

var funcMap = template.FuncMap{
	"icon": func(s models.Status) string { return s.Icon() },
	"percent": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v)
	},
	"join": strings.Join,
}

type page struct {
	Title       string
	GeneratedAt string
	Summary     summaryView
	Features    []featureView
	Insights    *models.Insights
	Flaky       []*models.FlakyScenario
}

type summaryView struct {
	Features  int
	Scenarios int
	Passed    int
	Failed    int
	Skipped   int
	Duration  string
}

type featureView struct {
	Keyword   string
	Name      string
	Tags      string
	Duration  string
	Scenarios int
	Steps     int
	Items     []scenarioView
}

type scenarioView struct {
	Keyword  string
	Name     string
	Tags     string
	Status   models.Status
	Duration string
	Before   []stepView
	Steps    []stepView
	After    []stepView
}

type stepView struct {
	Status   models.Status
	Keyword  string
	Name     string
	Duration string
	Error    string
	Evidence []evidenceView
}

type evidenceView struct {
	// Kind selects the block: "image", "log", "json" or "data"
	Kind  string
	Label string
	Src   template.URL
	Text  string
}

func (r *Renderer) buildPage(report *models.Report) page {
	title := "Detailed Test Report"
	if r.opts.ProjectName != "" {
		title = r.opts.ProjectName + " - " + title
	}

	p := page{
		Title:       title,
		GeneratedAt: r.opts.Now().Format("January 2, 2006 at 3:04 PM"),
		Summary: summaryView{
			Features:  report.Summary.FeatureCount,
			Scenarios: report.Summary.ScenarioCount,
			Passed:    report.Summary.Passed,
			Failed:    report.Summary.Failed,
			Skipped:   report.Summary.Skipped,
			Duration:  analytics.FormatNanos(report.Summary.DurationNs),
		},
		Features: make([]featureView, 0, len(report.Features)),
		Insights: report.Insights,
		Flaky:    report.Flaky,
	}

	for _, fr := range report.Features {
		fv := featureView{
			Keyword:   keywordOr(fr.Feature.Keyword, "Feature"),
			Name:      fr.Feature.Name,
			Tags:      models.JoinTags(fr.Feature.Tags),
			Duration:  analytics.FormatNanos(fr.Metrics.DurationNs),
			Scenarios: fr.Metrics.ScenarioCount,
			Steps:     fr.Metrics.StepCount,
		}
		for _, sr := range fr.Scenarios {
			fv.Items = append(fv.Items, buildScenario(sr))
		}
		p.Features = append(p.Features, fv)
	}
	return p
}

func buildScenario(sr *models.ScenarioReport) scenarioView {
	sv := scenarioView{
		Keyword:  keywordOr(sr.Scenario.Keyword, "Scenario"),
		Name:     sr.Scenario.Name,
		Tags:     models.JoinTags(sr.Scenario.Tags),
		Status:   sr.Status,
		Duration: analytics.FormatNanos(sr.Metrics.DurationNs),
	}
	sv.Before = buildHooks(sr.Scenario.Before)
	for _, step := range sr.Scenario.Steps {
		view := stepView{
			Status:   step.Status(),
			Keyword:  step.Keyword,
			Name:     step.Name,
			Duration: analytics.FormatNanos(step.DurationNs()),
			Error:    step.ErrorMessage(),
			Evidence: buildEvidenceList(step.Embeddings),
		}
		sv.Steps = append(sv.Steps, view)
	}
	sv.After = buildHooks(sr.Scenario.After)
	return sv
}

// buildHooks lists only hooks worth showing: the ones that failed or carry
// evidence, such as an after-hook screenshot.
func buildHooks(hooks []*models.Hook) []stepView {
	var views []stepView
	for _, hook := range hooks {
		if hook == nil || (len(hook.Embeddings) == 0 && hook.ErrorMessage() == "") {
			continue
		}
		views = append(views, stepView{
			Status:   hook.Status(),
			Keyword:  keywordOr(hook.Keyword, "Hook"),
			Name:     "hook",
			Duration: analytics.FormatNanos(hook.DurationNs()),
			Error:    hook.ErrorMessage(),
			Evidence: buildEvidenceList(hook.Embeddings),
		})
	}
	return views
}

func buildEvidenceList(embeddings []*models.Embedding) []evidenceView {
	var list []evidenceView
	for idx, embedding := range embeddings {
		if ev, ok := buildEvidence(idx, embedding); ok {
			list = append(list, ev)
		}
	}
	return list
}

// buildEvidence converts one embedding. Unsupported MIME types are skipped;
// decoding problems fall back to a raw block instead of failing the page.
func buildEvidence(idx int, embedding *models.Embedding) (evidenceView, bool) {
	if embedding == nil {
		return evidenceView{}, false
	}
	mime := strings.ToLower(strings.TrimSpace(embedding.MimeType))

	switch {
	case strings.HasPrefix(mime, "image/"):
		if imageMimePattern.MatchString(mime) && validBase64(embedding.Data) {
			return evidenceView{
				Kind:  "image",
				Label: fmt.Sprintf("Screenshot %d", idx+1),
				Src:   template.URL("data:" + mime + ";base64," + embedding.Data),
			}, true
		}
		logger.Warnf("Embedding %d (%s) is not a valid image, showing raw data", idx+1, mime)
		return evidenceView{Kind: "data", Label: "Data", Text: embedding.Data}, true

	case strings.HasPrefix(mime, "text/"):
		text, err := base64.StdEncoding.DecodeString(embedding.Data)
		if err != nil {
			logger.Warnf("Embedding %d: invalid base64 log, showing raw data: %v", idx+1, err)
			return evidenceView{Kind: "data", Label: "Data", Text: embedding.Data}, true
		}
		label := "Log"
		if mime != "text/plain" {
			label = mime
		}
		// always escaped, text/html included
		return evidenceView{Kind: "log", Label: label, Text: string(text)}, true

	case mime == "application/json":
		raw, err := base64.StdEncoding.DecodeString(embedding.Data)
		if err != nil {
			logger.Warnf("Embedding %d: invalid base64 JSON, showing raw data: %v", idx+1, err)
			return evidenceView{Kind: "data", Label: "Data", Text: embedding.Data}, true
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, bytes.TrimSpace(raw), "", "  "); err != nil {
			return evidenceView{Kind: "data", Label: "Data", Text: string(raw)}, true
		}
		return evidenceView{Kind: "json", Label: "JSON Data", Text: pretty.String()}, true
	}

	return evidenceView{}, false
}

func validBase64(data string) bool {
	if data == "" {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(data)
	return err == nil
}

func keywordOr(keyword, fallback string) string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return fallback
	}
	return keyword
}
