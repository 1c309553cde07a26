package insights

import (
	"strings"
	"testing"

	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

func TestAnalyzer_ClassifyError(t *testing.T) {
	analyzer := NewAnalyzer()

	tests := []struct {
		message  string
		expected ErrorType
	}{
		{"Expected 5 but got 1", ErrorTypeAssertion},
		{"Connection timeout after 30 seconds", ErrorTypeTimeout},
		{"page.click: Timeout 30000ms exceeded", ErrorTypeTimeout},
		{"Connection refused to host", ErrorTypeNetwork},
		{"TypeError: Cannot read properties of undefined", ErrorTypeNullPointer},
		{"ENOENT: no such file or directory", ErrorTypeFileSystem},
		{"duplicate key value violates unique constraint", ErrorTypeDatabase},
		{"BASE_URL variable not set", ErrorTypeEnvironment},
		{"something odd happened", ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := analyzer.ClassifyError(tt.message); got != tt.expected {
				t.Errorf("ClassifyError(%q) = %v, want %v", tt.message, got, tt.expected)
			}
		})
	}
}

func TestAnalyzer_GenerateErrorSignature(t *testing.T) {
	analyzer := NewAnalyzer()

	sig1 := analyzer.GenerateErrorSignature("Expected 5 but got 1", ErrorTypeAssertion)
	sig2 := analyzer.GenerateErrorSignature("Expected 10 but got 2", ErrorTypeAssertion)
	if sig1 != sig2 {
		t.Errorf("Expected same signature after normalization, got %s and %s", sig1, sig2)
	}

	sig3 := analyzer.GenerateErrorSignature("Expected 5 but got 1", ErrorTypeTimeout)
	if sig1 == sig3 {
		t.Errorf("Expected different signatures for different error types")
	}

	u1 := analyzer.GenerateErrorSignature("order 3f2b8c1e-1d2a-4b5c-9e8f-0a1b2c3d4e5f missing", ErrorTypeUnknown)
	u2 := analyzer.GenerateErrorSignature("order 9a9b8c7d-6e5f-4a3b-2c1d-0e9f8a7b6c5d missing", ErrorTypeUnknown)
	if u1 != u2 {
		t.Errorf("Expected UUIDs to be masked")
	}

	p1 := analyzer.GenerateErrorSignature("cannot open /tmp/a/report.json", ErrorTypeFileSystem)
	p2 := analyzer.GenerateErrorSignature("cannot open /var/b.json", ErrorTypeFileSystem)
	if p1 != p2 {
		t.Errorf("Expected paths to be masked")
	}
}

func failedScenario(feature *models.Feature, name, message string) *models.ScenarioReport {
	return &models.ScenarioReport{
		Feature: feature,
		Status:  models.StatusFailed,
		Scenario: &models.Scenario{
			Name: name,
			Steps: []*models.Step{
				{Keyword: "Given ", Name: "setup", Result: &models.Result{Status: models.StatusPassed}},
				{Keyword: "Then ", Name: "check", Result: &models.Result{Status: models.StatusFailed, ErrorMessage: message}},
			},
		},
	}
}

func TestAnalyzer_GroupFailures(t *testing.T) {
	analyzer := NewAnalyzer()
	api := &models.Feature{Name: "API"}
	web := &models.Feature{Name: "Web"}

	report := &models.Report{
		Features: []*models.FeatureReport{
			{Feature: api, Scenarios: []*models.ScenarioReport{
				failedScenario(api, "timeout one", "Timeout 30000ms exceeded"),
				failedScenario(api, "status 1", "expected 200 but got 500"),
				{Feature: api, Status: models.StatusPassed, Scenario: &models.Scenario{Name: "ok"}},
			}},
			{Feature: web, Scenarios: []*models.ScenarioReport{
				failedScenario(web, "status 2", "expected 201 but got 404"),
			}},
		},
	}

	groups := analyzer.GroupFailures(report)
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}

	first := groups[0]
	if first.Count != 2 || first.ErrorType != string(ErrorTypeAssertion) {
		t.Errorf("Expected assertion group of 2 first, got %+v", first)
	}
	if strings.Join(first.AffectedFeatures, ",") != "API,Web" {
		t.Errorf("Unexpected affected features: %v", first.AffectedFeatures)
	}
	if first.Severity != "high" {
		t.Errorf("Expected high severity, got %s", first.Severity)
	}
	if first.StepText != "Then check" {
		t.Errorf("Unexpected step text %q", first.StepText)
	}

	if groups[1].ErrorType != string(ErrorTypeTimeout) || groups[1].Count != 1 {
		t.Errorf("Unexpected second group %+v", groups[1])
	}
}

func TestExtractRootCause(t *testing.T) {
	long := strings.Repeat("x", 200)
	got := extractRootCause(long + "\nstack")
	if len(got) != rootCauseLimit+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected truncated root cause, got %d chars", len(got))
	}

	if got := extractRootCause("  first line \nsecond"); got != "first line" {
		t.Errorf("extractRootCause() = %q", got)
	}
}

func TestAnalyzer_Summarize(t *testing.T) {
	analyzer := NewAnalyzer()

	report := &models.Report{}
	report.Summary.ScenarioCount = 10
	report.Summary.Passed = 10
	summary := analyzer.Summarize(report, nil)
	if summary.HealthStatus != "Excellent" {
		t.Errorf("Expected Excellent, got %s", summary.HealthStatus)
	}

	report.Summary.Passed = 5
	report.Summary.Failed = 5
	groups := []*models.FailureGroup{{Severity: "critical"}}
	summary = analyzer.Summarize(report, groups)
	if summary.HealthStatus != "Poor" {
		t.Errorf("Expected Poor, got %s", summary.HealthStatus)
	}
	if !strings.Contains(summary.Recommendation, "critical") {
		t.Errorf("Unexpected recommendation %q", summary.Recommendation)
	}
}
