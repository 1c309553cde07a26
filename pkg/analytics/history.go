package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/your-org/cucumber-report-enhanced/pkg/config"
	"github.com/your-org/cucumber-report-enhanced/pkg/logger"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
	"github.com/your-org/cucumber-report-enhanced/pkg/storage"
)

// Engine records runs into the history database and reads flakiness back.
// Aggregated metrics are always recomputed from the trace; the database only
// feeds history-derived annotations.
type Engine struct {
	config *config.Config
	db     *storage.Database
}

// NewEngine creates a new history engine with database support
func NewEngine(cfg *config.Config, db *storage.Database) *Engine {
	return &Engine{
		config: cfg,
		db:     db,
	}
}

// RecordRun saves the run summary and every scenario outcome
func (e *Engine) RecordRun(report *models.Report, executionID, source string) error {
	if e.db == nil {
		return fmt.Errorf("database not initialized")
	}

	summary := report.Summary
	execution := &storage.ExecutionRecord{
		ID:               executionID,
		Timestamp:        report.GeneratedAt,
		DurationMs:       summary.DurationMs(),
		TotalFeatures:    summary.FeatureCount,
		TotalScenarios:   summary.ScenarioCount,
		PassedScenarios:  summary.Passed,
		FailedScenarios:  summary.Failed,
		SkippedScenarios: summary.Skipped,
		SuccessRate:      CalculateSuccessRate(summary.Passed, summary.ScenarioCount),
		Environment:      e.config.Environment.Name,
		Source:           source,
	}

	scenarios := make([]*storage.ScenarioRecord, 0, summary.ScenarioCount)
	for _, sr := range report.ScenarioReports() {
		record := &storage.ScenarioRecord{
			ExecutionID:  executionID,
			FeatureKey:   sr.Feature.Key(),
			FeatureName:  sr.Feature.Name,
			ScenarioName: sr.Scenario.Name,
			Status:       string(sr.Status),
			DurationMs:   sr.Metrics.DurationMs(),
		}
		if sr.Status == models.StatusFailed {
			for _, step := range sr.Scenario.Steps {
				if step.Status() == models.StatusFailed {
					record.ErrorMessage = step.ErrorMessage()
					break
				}
			}
		}
		scenarios = append(scenarios, record)
	}

	if err := e.db.SaveRun(execution, scenarios); err != nil {
		return fmt.Errorf("failed to save run history: %w", err)
	}
	return nil
}

// DetectFlaky returns scenarios of the current report whose outcome has
// alternated within the configured window, most flaky first
func (e *Engine) DetectFlaky(report *models.Report) []*models.FlakyScenario {
	flaky := make([]*models.FlakyScenario, 0)
	if e.db == nil {
		return flaky
	}

	since := report.GeneratedAt.AddDate(0, 0, -e.config.History.WindowDays)
	threshold := e.config.History.FlakyThreshold

	for _, sr := range report.ScenarioReports() {
		score, runs, failureRate, err := e.db.CalculateFlakyScore(sr.Feature.Key(), sr.Scenario.Name, since)
		if err != nil {
			logger.Warnf("Failed to read history for %q: %v", sr.Scenario.Name, err)
			continue
		}
		if score <= threshold {
			continue
		}
		flaky = append(flaky, &models.FlakyScenario{
			Feature:     sr.Feature.Name,
			Scenario:    sr.Scenario.Name,
			FlakyScore:  score,
			FailureRate: failureRate * 100,
			Runs:        runs,
			LastSeen:    report.GeneratedAt,
		})
	}

	sort.SliceStable(flaky, func(i, j int) bool {
		return flaky[i].FlakyScore > flaky[j].FlakyScore
	})
	return flaky
}

// TrackFailures records failure signatures and annotates each group with
// how often it was seen in earlier runs
func (e *Engine) TrackFailures(groups []*models.FailureGroup, seenAt time.Time) {
	if e.db == nil {
		return
	}
	for _, group := range groups {
		pattern, err := e.db.RecordFailurePattern(group.Signature, group.ErrorType, seenAt)
		if err != nil {
			logger.Warnf("Failed to track failure pattern %s: %v", group.Signature, err)
			continue
		}
		group.PreviousOccurrences = pattern.OccurrenceCount - 1
	}
}

// Cleanup drops runs older than the retention period
func (e *Engine) Cleanup(now time.Time) error {
	if e.db == nil || e.config.History.RetentionDays <= 0 {
		return nil
	}
	_, err := e.db.CleanupOldData(now.AddDate(0, 0, -e.config.History.RetentionDays))
	return err
}

// RecentRuns lists the latest recorded runs
func (e *Engine) RecentRuns(limit int) ([]storage.ExecutionRecord, error) {
	if e.db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return e.db.GetRecentExecutions(limit)
}
