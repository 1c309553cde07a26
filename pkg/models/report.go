package models

import "time"

// Report is the aggregated view of a trace that every renderer consumes
type Report struct {
	Trace       Trace
	Features    []*FeatureReport
	Summary     Summary
	GeneratedAt time.Time

	// Flaky is filled from run history when it is enabled
	Flaky []*FlakyScenario

	// Insights is nil unless failure analysis ran
	Insights *Insights
}

// FeatureReport pairs a feature with its metrics
type FeatureReport struct {
	Feature   *Feature
	Scenarios []*ScenarioReport
	Metrics   Metrics
}

// ScenarioReport pairs a scenario with its derived status and metrics
type ScenarioReport struct {
	Scenario *Scenario
	Feature  *Feature
	Status   Status
	Metrics  Metrics
}

// Metrics counts durations and outcomes. For a scenario Passed/Failed/Skipped
// count steps; for a feature or a run they count scenarios.
type Metrics struct {
	DurationNs    int64
	ScenarioCount int
	StepCount     int
	Passed        int
	Failed        int
	Skipped       int
}

// Summary holds run-wide totals
type Summary struct {
	FeatureCount int
	Metrics
}

// FlakyScenario is a scenario whose recent outcomes alternate
type FlakyScenario struct {
	Feature     string
	Scenario    string
	FlakyScore  float64
	FailureRate float64
	Runs        int
	LastSeen    time.Time
}

// DurationMs converts the accumulated nanoseconds to milliseconds.
func (m Metrics) DurationMs() float64 {
	return NanosToMillis(m.DurationNs)
}

// Add accumulates other into m.
func (m *Metrics) Add(other Metrics) {
	m.DurationNs += other.DurationNs
	m.ScenarioCount += other.ScenarioCount
	m.StepCount += other.StepCount
	m.Passed += other.Passed
	m.Failed += other.Failed
	m.Skipped += other.Skipped
}

// Count increments the counter matching status. Anything that is neither
// passed nor failed is counted as skipped.
func (m *Metrics) Count(status Status) {
	switch status {
	case StatusPassed:
		m.Passed++
	case StatusFailed:
		m.Failed++
	default:
		m.Skipped++
	}
}

// Insights holds the failure analysis shown with the report
type Insights struct {
	Health        *HealthSummary
	FailureGroups []*FailureGroup
}

// HealthSummary rates the run as a whole
type HealthSummary struct {
	HealthStatus   string // "Excellent", "Good", "Fair", "Poor", "Unknown"
	SuccessRate    float64
	KeyInsights    []string
	Recommendation string
}

// FailureGroup represents grouped similar failures
type FailureGroup struct {
	Signature         string
	ErrorType         string
	RootCause         string
	Count             int
	AffectedScenarios []string
	AffectedFeatures  []string
	Severity          string // "critical", "high", "medium", "low"
	SuggestedFix      string
	StepText          string

	// PreviousOccurrences is filled from run history when enabled
	PreviousOccurrences int
}

// NanosToMillis converts a cucumber duration (ns) to milliseconds.
func NanosToMillis(ns int64) float64 {
	return float64(ns) / 1_000_000
}

// ScenarioReports flattens the report in trace order.
func (r *Report) ScenarioReports() []*ScenarioReport {
	var all []*ScenarioReport
	for _, f := range r.Features {
		all = append(all, f.Scenarios...)
	}
	return all
}
