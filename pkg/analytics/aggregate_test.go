package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

func result(status models.Status, ns int64) *models.Result {
	return &models.Result{Status: status, Duration: ns}
}

func pokemonTrace() models.Trace {
	return models.Trace{
		{
			URI:  "features/pokemon.feature",
			Name: "Pokemon API",
			Elements: []*models.Scenario{
				{
					Name: "Get pikachu",
					Steps: []*models.Step{
						{Keyword: "Given ", Name: "I request pikachu", Result: result(models.StatusPassed, 500_000_000)},
						{Keyword: "Then ", Name: "status is 200", Result: result(models.StatusPassed, 300_000_000)},
					},
				},
			},
		},
	}
}

func TestAggregate_PokemonScenario(t *testing.T) {
	report := Aggregate(pokemonTrace())

	require.Len(t, report.Features, 1)
	scenario := report.Features[0].Scenarios[0]
	assert.Equal(t, models.StatusPassed, scenario.Status)
	assert.Equal(t, 800.0, scenario.Metrics.DurationMs())
	assert.Equal(t, "800ms", FormatDuration(scenario.Metrics.DurationMs()))

	assert.Equal(t, 1, report.Summary.FeatureCount)
	assert.Equal(t, 1, report.Summary.ScenarioCount)
	assert.Equal(t, 1, report.Summary.Passed)
	assert.Equal(t, 0, report.Summary.Failed)
	assert.Equal(t, 2, report.Summary.StepCount)
}

func TestAggregate_HooksCountTowardsScenarioOnly(t *testing.T) {
	tr := models.Trace{{
		Name: "Hooks",
		Elements: []*models.Scenario{{
			Name:   "with hooks",
			Before: []*models.Hook{{Result: result(models.StatusPassed, 10_000_000)}},
			Steps:  []*models.Step{{Keyword: "Given ", Name: "x", Result: result(models.StatusPassed, 5_000_000)}},
			After:  []*models.Hook{{Result: result(models.StatusPassed, 20_000_000)}, {}},
		}},
	}}

	report := Aggregate(tr)
	assert.Equal(t, int64(35_000_000), report.Features[0].Scenarios[0].Metrics.DurationNs)
	assert.Equal(t, int64(35_000_000), report.Features[0].Metrics.DurationNs)
	assert.Equal(t, int64(35_000_000), report.Summary.DurationNs)
}

func TestAggregate_SummaryEqualsSumOfFeatures(t *testing.T) {
	tr := models.Trace{
		{
			Name: "A",
			Elements: []*models.Scenario{
				{Name: "pass", Steps: []*models.Step{{Keyword: "Given ", Name: "a", Result: result(models.StatusPassed, 1_000_000)}}},
				{Name: "fail", Steps: []*models.Step{
					{Keyword: "Given ", Name: "a", Result: result(models.StatusFailed, 2_000_000)},
					{Keyword: "Then ", Name: "b", Result: result(models.StatusSkipped, 0)},
				}},
			},
		},
		{
			Name: "B",
			Elements: []*models.Scenario{
				{Name: "undefined", Steps: []*models.Step{{Keyword: "Given ", Name: "a", Result: result(models.StatusUndefined, 0)}}},
				{Name: "empty"},
			},
		},
	}

	report := Aggregate(tr)

	var sum models.Metrics
	for _, f := range report.Features {
		sum.Add(f.Metrics)
	}
	assert.Equal(t, sum, report.Summary.Metrics)
	assert.Equal(t, 2, report.Summary.FeatureCount)
	assert.Equal(t, 4, report.Summary.ScenarioCount)
	assert.Equal(t, 1, report.Summary.Passed)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, 2, report.Summary.Skipped)

	failing := report.Features[0].Scenarios[1]
	assert.Equal(t, models.StatusFailed, failing.Status)
	assert.Equal(t, 1, failing.Metrics.Failed)
	assert.Equal(t, 1, failing.Metrics.Skipped)

	assert.Equal(t, models.StatusPending, report.Features[1].Scenarios[1].Status)
}

func TestAggregate_EmptyTrace(t *testing.T) {
	report := Aggregate(models.Trace{})
	assert.Empty(t, report.Features)
	assert.Zero(t, report.Summary.ScenarioCount)
	assert.Equal(t, "0ms", FormatDuration(report.Summary.DurationMs()))
}

func TestAggregate_DoesNotMutateTrace(t *testing.T) {
	tr := pokemonTrace()
	before := *tr[0].Elements[0].Steps[0].Result

	Aggregate(tr)
	Aggregate(tr)

	assert.Equal(t, before, *tr[0].Elements[0].Steps[0].Result)
}

func TestCalculateSuccessRate(t *testing.T) {
	assert.Equal(t, 0.0, CalculateSuccessRate(0, 0))
	assert.Equal(t, 50.0, CalculateSuccessRate(1, 2))
}
