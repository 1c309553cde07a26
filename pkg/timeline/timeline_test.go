package timeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/cucumber-report-enhanced/pkg/analytics"
	"github.com/your-org/cucumber-report-enhanced/pkg/config"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

func passed(ns int64) *models.Result {
	return &models.Result{Status: models.StatusPassed, Duration: ns}
}

func sampleTrace() models.Trace {
	return models.Trace{
		{
			Name: "Pokemon API",
			Elements: []*models.Scenario{
				{Name: "Get pikachu", Steps: []*models.Step{
					{Keyword: "Given ", Name: "a", Result: passed(500_000_000)},
					{Keyword: "Then ", Name: "b", Result: passed(300_000_000)},
				}},
				{Name: strings.Repeat("a", 60), Steps: []*models.Step{
					{Keyword: "Given ", Name: "slow", Result: passed(2_345_000_000)},
				}},
			},
		},
		{
			Name: "Web",
			Elements: []*models.Scenario{
				{Name: "</script><script>alert(1)</script>", Steps: []*models.Step{
					{Keyword: "When ", Name: "boom", Result: &models.Result{Status: models.StatusFailed, Duration: 1_000_000}},
				}},
				{Name: "not yet", Steps: []*models.Step{{Keyword: "Given ", Name: "todo"}}},
			},
		},
	}
}

func renderTimeline(t *testing.T, tr models.Trace, opts Options) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "timeline-report.html")
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }
	}

	path, err := New(out, opts).Render(analytics.Aggregate(tr))
	require.NoError(t, err)
	assert.Equal(t, out, path)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	return string(data)
}

func TestRender_SummaryCards(t *testing.T) {
	html := renderTimeline(t, sampleTrace(), Options{})

	assert.Contains(t, html, `id="stat-features">2<`)
	assert.Contains(t, html, `id="stat-scenarios">4<`)
	assert.Contains(t, html, `id="stat-passed">2<`)
	assert.Contains(t, html, `id="stat-failed">1<`)
	assert.Contains(t, html, `id="stat-duration">3.15s<`)
	assert.Contains(t, html, "October 19, 2026 at 9:30 AM")
	assert.Contains(t, html, `<script src="`+config.DefaultChartScriptURL+`">`)
}

func TestRender_ChartDataInTraceOrder(t *testing.T) {
	html := renderTimeline(t, sampleTrace(), Options{})

	pikachu := strings.Index(html, `"name":"Get pikachu"`)
	long := strings.Index(html, `"label":"`+strings.Repeat("a", LabelLimit)+`..."`)
	pending := strings.Index(html, `"name":"not yet"`)
	require.True(t, pikachu > 0 && long > 0 && pending > 0)
	assert.Less(t, pikachu, long)
	assert.Less(t, long, pending)

	assert.Contains(t, html, `"duration":"800ms"`)
	assert.Contains(t, html, `"duration":"2.35s"`)
	assert.Contains(t, html, `"feature":"Web"`)
	assert.Contains(t, html, `"status":"pending"`)
}

func TestRender_ScenarioNamesCannotBreakOutOfScript(t *testing.T) {
	html := renderTimeline(t, sampleTrace(), Options{})

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Equal(t, 2, strings.Count(html, "<script"))
}

func TestRender_CustomScriptAndProject(t *testing.T) {
	html := renderTimeline(t, sampleTrace(), Options{
		ProjectName:    "Pokedex",
		ChartScriptURL: "https://example.test/chart.js",
	})

	assert.Contains(t, html, "<title>Pokedex - Timeline Report</title>")
	assert.Contains(t, html, `<script src="https://example.test/chart.js">`)
}

func TestRender_EmptyTrace(t *testing.T) {
	html := renderTimeline(t, models.Trace{}, Options{})

	assert.Contains(t, html, "No scenarios were executed.")
	assert.NotContains(t, html, "new Chart(")
	assert.Contains(t, html, `id="stat-duration">0ms<`)
}

func TestBuildPage_ChartHeight(t *testing.T) {
	r := New("unused.html", Options{})
	assert.Equal(t, 500, r.buildPage(analytics.Aggregate(nil)).ChartHeight)

	var scenarios []*models.Scenario
	for i := 0; i < 20; i++ {
		scenarios = append(scenarios, &models.Scenario{Name: "s"})
	}
	report := analytics.Aggregate(models.Trace{{Name: "many", Elements: scenarios}})
	assert.Equal(t, 120+36*20, r.buildPage(report).ChartHeight)
}
