package analytics

import (
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

// Aggregate derives per-scenario, per-feature and run-wide metrics from tr.
// It has no side effects and never mutates the trace.
func Aggregate(tr models.Trace) *models.Report {
	report := &models.Report{
		Trace:    tr,
		Features: make([]*models.FeatureReport, 0, len(tr)),
	}

	for _, feature := range tr {
		if feature == nil {
			continue
		}
		fr := aggregateFeature(feature)
		report.Features = append(report.Features, fr)
		report.Summary.FeatureCount++
		report.Summary.Add(fr.Metrics)
	}

	return report
}

func aggregateFeature(feature *models.Feature) *models.FeatureReport {
	fr := &models.FeatureReport{
		Feature:   feature,
		Scenarios: make([]*models.ScenarioReport, 0, len(feature.Elements)),
	}

	for _, scenario := range feature.Elements {
		if scenario == nil {
			continue
		}
		sr := aggregateScenario(feature, scenario)
		fr.Scenarios = append(fr.Scenarios, sr)

		fr.Metrics.DurationNs += sr.Metrics.DurationNs
		fr.Metrics.StepCount += sr.Metrics.StepCount
		fr.Metrics.ScenarioCount++
		fr.Metrics.Count(sr.Status)
	}

	return fr
}

func aggregateScenario(feature *models.Feature, scenario *models.Scenario) *models.ScenarioReport {
	sr := &models.ScenarioReport{
		Scenario: scenario,
		Feature:  feature,
		Status:   models.DeriveScenarioStatus(scenario.Steps),
	}

	for _, hook := range scenario.Before {
		sr.Metrics.DurationNs += hook.DurationNs()
	}
	for _, step := range scenario.Steps {
		sr.Metrics.DurationNs += step.DurationNs()
		sr.Metrics.StepCount++
		sr.Metrics.Count(step.Status())
	}
	for _, hook := range scenario.After {
		sr.Metrics.DurationNs += hook.DurationNs()
	}

	return sr
}

// CalculateSuccessRate calculates the success rate percentage
func CalculateSuccessRate(passed, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(passed) / float64(total) * 100.0
}
