package analytics

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/cucumber-report-enhanced/pkg/config"
	"github.com/your-org/cucumber-report-enhanced/pkg/insights"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
	"github.com/your-org/cucumber-report-enhanced/pkg/storage"
)

func newHistoryEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "history"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.NewConfig()
	cfg.History.Enabled = true
	return NewEngine(cfg, db)
}

func reportWithStatus(status models.Status, at time.Time) *models.Report {
	tr := pokemonTrace()
	tr[0].Elements[0].Steps[1].Result.Status = status
	if status == models.StatusFailed {
		tr[0].Elements[0].Steps[1].Result.ErrorMessage = "expected 200 but got 500"
	}
	report := Aggregate(tr)
	report.GeneratedAt = at
	return report
}

func TestEngine_DetectFlaky(t *testing.T) {
	engine := newHistoryEngine(t)
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	statuses := []models.Status{models.StatusPassed, models.StatusFailed, models.StatusPassed, models.StatusFailed}
	var last *models.Report
	for i, status := range statuses {
		last = reportWithStatus(status, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, engine.RecordRun(last, fmt.Sprintf("run-%d", i), "reports/cucumber-report.json"))
	}

	flaky := engine.DetectFlaky(last)
	require.Len(t, flaky, 1)
	assert.Equal(t, "Get pikachu", flaky[0].Scenario)
	assert.Equal(t, 4, flaky[0].Runs)
	assert.InDelta(t, 50.0, flaky[0].FailureRate, 0.001)

	runs, err := engine.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.Equal(t, "run-3", runs[0].ID)
	assert.Equal(t, 1, runs[0].FailedScenarios)
}

func TestEngine_StableScenarioIsNotFlaky(t *testing.T) {
	engine := newHistoryEngine(t)
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	var last *models.Report
	for i := 0; i < 5; i++ {
		last = reportWithStatus(models.StatusPassed, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, engine.RecordRun(last, fmt.Sprintf("run-%d", i), ""))
	}

	assert.Empty(t, engine.DetectFlaky(last))
}

func TestEngine_TrackFailures(t *testing.T) {
	engine := newHistoryEngine(t)
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	analyzer := insights.NewAnalyzer()

	var groups []*models.FailureGroup
	for i := 0; i < 3; i++ {
		report := reportWithStatus(models.StatusFailed, base.Add(time.Duration(i)*time.Hour))
		groups = analyzer.GroupFailures(report)
		engine.TrackFailures(groups, report.GeneratedAt)
	}

	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].PreviousOccurrences)
}

func TestEngine_WithoutDatabase(t *testing.T) {
	engine := NewEngine(config.NewConfig(), nil)

	assert.Error(t, engine.RecordRun(Aggregate(pokemonTrace()), "id", ""))
	assert.Empty(t, engine.DetectFlaky(Aggregate(pokemonTrace())))
	assert.NoError(t, engine.Cleanup(time.Now()))
}
