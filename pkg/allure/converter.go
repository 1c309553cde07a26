// Package allure converts a cucumber trace into an allure-results directory:
// one result file per scenario, extracted attachments, environment
// properties and categories.
package allure

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/getgauge/common"
	"github.com/google/uuid"

	"github.com/your-org/cucumber-report-enhanced/pkg/config"
	"github.com/your-org/cucumber-report-enhanced/pkg/logger"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
	"github.com/your-org/cucumber-report-enhanced/pkg/renderer"
)

const Name = "allure"

type Options struct {
	ResultsDir  string
	Environment config.Environment

	// HistoryDir is a previous allure-report/history directory. When it
	// exists it is mirrored into <ResultsDir>/history.
	HistoryDir string

	// Now is captured once per conversion; defaults to time.Now
	Now func() time.Time
}

// Converter writes allure-results
type Converter struct {
	opts    Options
	newUUID func() string
}

var _ renderer.Renderer = (*Converter)(nil)

func NewConverter(opts Options) *Converter {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Converter{
		opts:    opts,
		newUUID: uuid.NewString,
	}
}

func (c *Converter) Name() string { return Name }

// Render converts every scenario of the report and returns the results
// directory. Per-scenario and per-attachment write failures are logged and
// skipped.
func (c *Converter) Render(report *models.Report) (string, error) {
	dir := c.opts.ResultsDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create allure results directory: %w", err)
	}

	now := c.opts.Now()
	// Start/stop times are laid out sequentially from a single capture; the
	// trace only carries durations.
	cursor := now.UnixMilli()

	written := 0
	for _, sr := range report.ScenarioReports() {
		result := c.convertScenario(sr, &cursor)
		if err := writeJSON(filepath.Join(dir, result.UUID+"-result.json"), result); err != nil {
			logger.Warnf("Skipping allure result for %q: %v", sr.Scenario.Name, err)
			continue
		}
		written++
	}

	if err := c.writeEnvironment(now); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "categories.json"), Categories()); err != nil {
		return "", err
	}
	c.mirrorHistory()

	logger.Infof("Allure results generated in: %s (%d results)", dir, written)
	return dir, nil
}

func (c *Converter) convertScenario(sr *models.ScenarioReport, cursor *int64) *Result {
	feature, scenario := sr.Feature, sr.Scenario

	result := &Result{
		UUID:        c.newUUID(),
		HistoryID:   HistoryID(feature.Name, scenario.Name),
		FullName:    feature.Name + ": " + scenario.Name,
		Name:        scenario.Name,
		Description: scenario.Description,
		Labels:      Labels(feature, scenario),
		Links:       []Link{},
		Status:      MapStatus(sr.Status),
		Stage:       StageFinished,
		Start:       *cursor,
		Steps:       make([]Step, 0, len(scenario.Steps)),
		Attachments: []Attachment{},
		Parameters:  []Parameter{},
	}

	for _, hook := range scenario.Before {
		*cursor += nanosToMillis(hook.DurationNs())
		result.Attachments = append(result.Attachments, c.extractAttachments(hookName(hook), hook.Embeddings)...)
	}
	for _, step := range scenario.Steps {
		s := Step{
			Name:        step.FullName(),
			Status:      MapStatus(step.Status()),
			Stage:       StageFinished,
			Start:       *cursor,
			Attachments: c.extractAttachments(step.Name, step.Embeddings),
		}
		*cursor += nanosToMillis(step.DurationNs())
		s.Stop = *cursor
		if msg := step.ErrorMessage(); msg != "" {
			s.StatusDetails = &StatusDetails{Message: msg, Trace: msg}
			if result.StatusDetails == nil && step.Status() == models.StatusFailed {
				result.StatusDetails = &StatusDetails{Message: msg, Trace: msg}
			}
		}
		result.Steps = append(result.Steps, s)
	}
	for _, hook := range scenario.After {
		*cursor += nanosToMillis(hook.DurationNs())
		result.Attachments = append(result.Attachments, c.extractAttachments(hookName(hook), hook.Embeddings)...)
	}

	result.Stop = *cursor
	return result
}

// extractAttachments writes the embeddings of one step or hook, named owner
// in warnings, as attachment files.
func (c *Converter) extractAttachments(owner string, embeddings []*models.Embedding) []Attachment {
	attachments := make([]Attachment, 0, len(embeddings))
	for idx, embedding := range embeddings {
		if embedding == nil {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(embedding.Data)
		if err != nil {
			logger.Warnf("Skipping attachment %d of %q: %v", idx, owner, err)
			continue
		}

		mimeType := embedding.MimeType
		if mimeType == "" {
			mimeType = "text/plain"
		}
		source := fmt.Sprintf("%s-attachment.%s", c.newUUID(), Extension(mimeType))
		if err := os.WriteFile(filepath.Join(c.opts.ResultsDir, source), data, 0644); err != nil {
			logger.Warnf("Failed to save attachment %d of %q: %v", idx, owner, err)
			continue
		}

		name := embedding.Name
		if name == "" {
			name = fmt.Sprintf("attachment-%d", idx)
		}
		attachments = append(attachments, Attachment{Name: name, Source: source, Type: mimeType})
	}
	return attachments
}

func (c *Converter) mirrorHistory() {
	src := c.opts.HistoryDir
	if src == "" || !common.DirExists(src) {
		return
	}
	dst := filepath.Join(c.opts.ResultsDir, "history")
	if err := os.MkdirAll(dst, 0755); err != nil {
		logger.Warnf("Failed to create allure history directory: %v", err)
		return
	}
	if _, err := common.MirrorDir(src, dst); err != nil {
		logger.Warnf("Failed to copy allure history from %s: %v", src, err)
	}
}

func hookName(hook *models.Hook) string {
	if hook.Keyword != "" {
		return hook.Keyword + " hook"
	}
	return "hook"
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return renderer.WriteFile(path, data)
}

func nanosToMillis(ns int64) int64 {
	return ns / int64(time.Millisecond)
}
