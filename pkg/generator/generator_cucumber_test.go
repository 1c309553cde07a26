package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/your-org/cucumber-report-enhanced/pkg/allure"
	"github.com/your-org/cucumber-report-enhanced/pkg/config"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
	"github.com/your-org/cucumber-report-enhanced/pkg/trace"
)

// TestGenerateReportScenarios runs the report generation feature scenarios.
func TestGenerateReportScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name: "generate-reports",
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			InitializeGenerateScenario(ctx, t)
		},
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("features", "generate_reports.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeGenerateScenario wires steps for report generation scenarios.
func InitializeGenerateScenario(ctx *godog.ScenarioContext, t *testing.T) {
	state := &generateScenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset(t.TempDir())
		return ctx, nil
	})

	ctx.Step(`^a trace where "([^"]+)" ran "([^"]+)" with steps of (\d+)ms and (\d+)ms$`, state.givenPassingTrace)
	ctx.Step(`^a trace where "([^"]+)" ran "([^"]+)" with a failing step "([^"]+)"$`, state.givenFailingTrace)
	ctx.Step(`^there is no trace file$`, state.givenNoTrace)
	ctx.Step(`^a trace file containing "(.*)"$`, state.givenTraceContent)
	ctx.Step(`^I generate all reports$`, state.whenIGenerateAll)
	ctx.Step(`^I generate the "([^"]+)" report$`, state.whenIGenerateKind)
	ctx.Step(`^generation succeeds with (\d+) artifacts$`, state.thenSucceeds)
	ctx.Step(`^generation fails mentioning "([^"]+)"$`, state.thenFails)
	ctx.Step(`^the "([^"]+)" report contains "([^"]+)"$`, state.thenReportContains)
	ctx.Step(`^no "([^"]+)" report was written$`, state.thenNoReport)
	ctx.Step(`^the allure results hold (\d+) results? with status "([^"]+)"$`, state.thenAllureResults)
}

// generateScenarioState holds scenario state for report generation tests.
type generateScenarioState struct {
	cfg       *config.Config
	artifacts []Artifact
	err       error
}

func (s *generateScenarioState) reset(dir string) {
	s.cfg = config.NewConfig()
	s.cfg.ReportsDir = dir
	s.cfg.ProjectName = "pokedex"
	s.artifacts = nil
	s.err = nil
}

func (s *generateScenarioState) writeTrace(tr models.Trace) error {
	return trace.Write(s.cfg.TracePath(), tr)
}

func (s *generateScenarioState) givenPassingTrace(feature, scenario string, first, second int) error {
	return s.writeTrace(models.Trace{{
		URI:  "features/" + strings.ToLower(strings.ReplaceAll(feature, " ", "_")) + ".feature",
		Name: feature,
		Elements: []*models.Scenario{{
			Name: scenario,
			Steps: []*models.Step{
				{Keyword: "Given ", Name: "the first step", Result: &models.Result{Status: models.StatusPassed, Duration: int64(first) * 1_000_000}},
				{Keyword: "Then ", Name: "the second step", Result: &models.Result{Status: models.StatusPassed, Duration: int64(second) * 1_000_000}},
			},
		}},
	}})
}

func (s *generateScenarioState) givenFailingTrace(feature, scenario, message string) error {
	return s.writeTrace(models.Trace{{
		Name: feature,
		Elements: []*models.Scenario{{
			Name: scenario,
			Steps: []*models.Step{
				{Keyword: "When ", Name: "I request it", Result: &models.Result{Status: models.StatusFailed, Duration: 10_000_000, ErrorMessage: message}},
				{Keyword: "Then ", Name: "nothing else runs", Result: &models.Result{Status: models.StatusSkipped}},
			},
		}},
	}})
}

func (s *generateScenarioState) givenNoTrace() error {
	if _, err := os.Stat(s.cfg.TracePath()); err == nil {
		return fmt.Errorf("unexpected trace at %s", s.cfg.TracePath())
	}
	return nil
}

func (s *generateScenarioState) givenTraceContent(content string) error {
	return os.WriteFile(s.cfg.TracePath(), []byte(content), 0644)
}

func (s *generateScenarioState) whenIGenerateAll() error {
	s.artifacts, s.err = NewGenerator(s.cfg).GenerateFromFile(s.cfg.TracePath())
	return nil
}

func (s *generateScenarioState) whenIGenerateKind(kind string) error {
	s.artifacts, s.err = NewGenerator(s.cfg).GenerateFromFile(s.cfg.TracePath(), kind)
	return nil
}

func (s *generateScenarioState) thenSucceeds(count int) error {
	if s.err != nil {
		return fmt.Errorf("generation failed: %v", s.err)
	}
	if len(s.artifacts) != count {
		return fmt.Errorf("expected %d artifacts, got %d", count, len(s.artifacts))
	}
	return nil
}

func (s *generateScenarioState) thenFails(snippet string) error {
	if s.err == nil {
		return fmt.Errorf("expected generation to fail")
	}
	if !strings.Contains(s.err.Error(), snippet) {
		return fmt.Errorf("expected error to mention %q, got %q", snippet, s.err.Error())
	}
	return nil
}

func (s *generateScenarioState) reportPath(kind string) (string, error) {
	switch kind {
	case "evidence":
		return s.cfg.EvidencePath(), nil
	case "timeline":
		return s.cfg.TimelinePath(), nil
	case "allure":
		return s.cfg.AllurePath(), nil
	}
	return "", fmt.Errorf("unknown report kind %q", kind)
}

func (s *generateScenarioState) thenReportContains(kind, snippet string) error {
	path, err := s.reportPath(kind)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !strings.Contains(string(data), snippet) {
		return fmt.Errorf("expected %s report to contain %q", kind, snippet)
	}
	return nil
}

func (s *generateScenarioState) thenNoReport(kind string) error {
	path, err := s.reportPath(kind)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return fmt.Errorf("expected no %s report at %s", kind, path)
	}
	return nil
}

func (s *generateScenarioState) thenAllureResults(count int, status string) error {
	files, err := filepath.Glob(filepath.Join(s.cfg.AllurePath(), "*-result.json"))
	if err != nil {
		return err
	}
	if len(files) != count {
		return fmt.Errorf("expected %d allure results, got %d", count, len(files))
	}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		var result allure.Result
		if err := json.Unmarshal(data, &result); err != nil {
			return err
		}
		if result.Status != status {
			return fmt.Errorf("expected status %q in %s, got %q", status, filepath.Base(file), result.Status)
		}
	}
	return nil
}
