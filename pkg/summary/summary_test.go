package summary

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/cucumber-report-enhanced/pkg/analytics"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
	"github.com/your-org/cucumber-report-enhanced/pkg/storage"
)

func sampleReport() *models.Report {
	return analytics.Aggregate(models.Trace{{
		URI:  "features/pokemon.feature",
		Name: "Pokemon API",
		Elements: []*models.Scenario{
			{Name: "Get pikachu", Steps: []*models.Step{
				{Keyword: "Given ", Name: "I request pikachu", Result: &models.Result{Status: models.StatusPassed, Duration: 500_000_000}},
				{Keyword: "Then ", Name: "status is 200", Result: &models.Result{Status: models.StatusPassed, Duration: 300_000_000}},
			}},
			{Name: "Get missingno", Steps: []*models.Step{
				{Keyword: "Then ", Name: "status is 200", Result: &models.Result{Status: models.StatusFailed, Duration: 2_345_000_000}},
			}},
		},
	}})
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "DETAILED EXECUTION METRICS")
	assert.Contains(t, out, "Pokemon API")
	assert.Contains(t, out, "features/pokemon.feature")
	assert.Contains(t, out, "Get pikachu")
	assert.Contains(t, out, "800ms")
	assert.Contains(t, out, "2.35s")
	assert.Contains(t, out, "3.15s")
	assert.Contains(t, out, "Step 2:")
	assert.Contains(t, out, "Then status is 200")
	assert.Contains(t, out, "PASSED")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "Passed Scenarios:")
	assert.NotContains(t, out, "FAILURE ANALYSIS")
}

func TestPrint_FailureAnalysis(t *testing.T) {
	report := sampleReport()
	report.Insights = &models.Insights{FailureGroups: []*models.FailureGroup{{
		ErrorType:    "assertion",
		Count:        1,
		Severity:     "medium",
		RootCause:    "expected 200 but got 404",
		SuggestedFix: "Check the expected values",
	}}}

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, report))

	assert.Contains(t, buf.String(), "FAILURE ANALYSIS")
	assert.Contains(t, buf.String(), "assertion (1 scenario(s), medium)")
	assert.Contains(t, buf.String(), "expected 200 but got 404")
}

func TestPrint_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, analytics.Aggregate(nil)))
	assert.Contains(t, buf.String(), "0ms")
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintHistory(&buf, []storage.ExecutionRecord{
		{ID: "b", Timestamp: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC), DurationMs: 2345, PassedScenarios: 1, FailedScenarios: 1, SuccessRate: 50, Source: "reports/cucumber-report.json"},
		{ID: "a", Timestamp: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), DurationMs: 800, PassedScenarios: 1, SuccessRate: 100},
	}))
	out := buf.String()

	assert.Contains(t, out, "RUN HISTORY")
	assert.Contains(t, out, " 50.0%")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "2.35s")
	assert.Contains(t, out, "800ms")
	assert.Contains(t, out, "reports/cucumber-report.json")
}

func TestPrintHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintHistory(&buf, nil))
	assert.Contains(t, buf.String(), "No runs recorded yet")
}
