// Package insights groups failed scenarios by a normalised error signature and
// attaches a rule-based classification, severity and fix suggestion.
package insights

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

// ErrorType represents different categories of test failures
type ErrorType string

const (
	ErrorTypeAssertion   ErrorType = "Assertion Failure"
	ErrorTypeTimeout     ErrorType = "Timeout"
	ErrorTypeNetwork     ErrorType = "Network Error"
	ErrorTypeNullPointer ErrorType = "Null Reference"
	ErrorTypeFileSystem  ErrorType = "File System"
	ErrorTypeDatabase    ErrorType = "Database"
	ErrorTypeEnvironment ErrorType = "Environment"
	ErrorTypeUnknown     ErrorType = "Unknown Error"
)

const rootCauseLimit = 150

var (
	uuidPattern   = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	numberPattern = regexp.MustCompile(`\d+`)
	pathPattern   = regexp.MustCompile(`/[^\s]+`)
)

// Analyzer classifies and groups failures
type Analyzer struct{}

// NewAnalyzer creates a new failure analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// ClassifyError determines the type of error from its message
func (a *Analyzer) ClassifyError(errorMsg string) ErrorType {
	combined := strings.ToLower(errorMsg)

	if containsAny(combined, "timeout", "timed out", "deadline exceeded") {
		return ErrorTypeTimeout
	}

	if containsAny(combined, "assertion", "assert", "expected", "actual", "should be",
		"must be", "equals", "not equal", "to be") {
		return ErrorTypeAssertion
	}

	if containsAny(combined, "connection refused", "network", "socket", "econnrefused",
		"connection reset", "connection closed", "dns", "enotfound") {
		return ErrorTypeNetwork
	}

	if containsAny(combined, "null", "nil pointer", "undefined is not", "cannot read properties") {
		return ErrorTypeNullPointer
	}

	if containsAny(combined, "file not found", "no such file", "permission denied", "enoent", "directory") {
		return ErrorTypeFileSystem
	}

	if containsAny(combined, "database", "sql", "query", "transaction", "duplicate key", "constraint") {
		return ErrorTypeDatabase
	}

	if containsAny(combined, "environment", "config", "configuration", "variable not set") {
		return ErrorTypeEnvironment
	}

	return ErrorTypeUnknown
}

// GenerateErrorSignature creates a stable signature for similar errors by
// masking UUIDs, numbers and paths before hashing.
func (a *Analyzer) GenerateErrorSignature(errorMsg string, errorType ErrorType) string {
	cleaned := uuidPattern.ReplaceAllString(errorMsg, "UUID")
	cleaned = numberPattern.ReplaceAllString(cleaned, "N")
	cleaned = pathPattern.ReplaceAllString(cleaned, "/PATH")

	hash := md5.Sum([]byte(fmt.Sprintf("%s:%s", errorType, cleaned)))
	return hex.EncodeToString(hash[:])
}

// GroupFailures groups failed scenarios of the report. Groups are ordered by
// count, largest first, then by first appearance in the trace.
func (a *Analyzer) GroupFailures(report *models.Report) []*models.FailureGroup {
	groups := make(map[string]*models.FailureGroup)
	var order []string

	for _, feature := range report.Features {
		for _, scenario := range feature.Scenarios {
			if scenario.Status != models.StatusFailed {
				continue
			}

			errorMsg, stepText := firstFailure(scenario.Scenario)
			if errorMsg == "" {
				continue
			}

			errorType := a.ClassifyError(errorMsg)
			signature := a.GenerateErrorSignature(errorMsg, errorType)

			if group, exists := groups[signature]; exists {
				group.Count++
				group.AffectedScenarios = append(group.AffectedScenarios, scenario.Scenario.Name)
				if !contains(group.AffectedFeatures, feature.Feature.Name) {
					group.AffectedFeatures = append(group.AffectedFeatures, feature.Feature.Name)
				}
				continue
			}

			groups[signature] = &models.FailureGroup{
				Signature:         signature,
				ErrorType:         string(errorType),
				RootCause:         extractRootCause(errorMsg),
				Count:             1,
				AffectedScenarios: []string{scenario.Scenario.Name},
				AffectedFeatures:  []string{feature.Feature.Name},
				SuggestedFix:      suggestion(errorType),
				StepText:          stepText,
			}
			order = append(order, signature)
		}
	}

	result := make([]*models.FailureGroup, 0, len(order))
	for _, signature := range order {
		group := groups[signature]
		group.Severity = calculateSeverity(ErrorType(group.ErrorType), group.Count)
		result = append(result, group)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

// Analyze groups failures and rates the run in one pass.
func (a *Analyzer) Analyze(report *models.Report) *models.Insights {
	groups := a.GroupFailures(report)
	return &models.Insights{
		Health:        a.Summarize(report, groups),
		FailureGroups: groups,
	}
}

// Summarize rates the run health from the report counters.
func (a *Analyzer) Summarize(report *models.Report, groups []*models.FailureGroup) *models.HealthSummary {
	summary := &models.HealthSummary{KeyInsights: make([]string, 0)}

	total := report.Summary.ScenarioCount
	if total > 0 {
		summary.SuccessRate = float64(report.Summary.Passed) / float64(total) * 100
	}

	switch {
	case total == 0:
		summary.HealthStatus = "Unknown"
	case summary.SuccessRate >= 95:
		summary.HealthStatus = "Excellent"
	case summary.SuccessRate >= 85:
		summary.HealthStatus = "Good"
	case summary.SuccessRate >= 70:
		summary.HealthStatus = "Fair"
	default:
		summary.HealthStatus = "Poor"
	}

	if report.Summary.Failed == 0 {
		summary.KeyInsights = append(summary.KeyInsights, "No failed scenarios")
	} else {
		summary.KeyInsights = append(summary.KeyInsights,
			fmt.Sprintf("%d of %d scenarios failed", report.Summary.Failed, total))
	}

	switch {
	case len(groups) == 1:
		summary.KeyInsights = append(summary.KeyInsights, "Single root cause identified")
	case len(groups) > 1:
		summary.KeyInsights = append(summary.KeyInsights,
			fmt.Sprintf("%d distinct failure patterns", len(groups)))
	}

	if len(report.Flaky) > 0 {
		summary.KeyInsights = append(summary.KeyInsights,
			fmt.Sprintf("%d flaky scenario(s) in recent history", len(report.Flaky)))
	}

	summary.Recommendation = recommendation(summary, groups)
	return summary
}

func firstFailure(scenario *models.Scenario) (errorMsg, stepText string) {
	for _, step := range scenario.Steps {
		if step.Status() == models.StatusFailed {
			return step.ErrorMessage(), step.FullName()
		}
	}
	return "", ""
}

// extractRootCause keeps the first line, capped at rootCauseLimit bytes
func extractRootCause(errorMsg string) string {
	line := strings.TrimSpace(strings.SplitN(errorMsg, "\n", 2)[0])
	if len(line) > rootCauseLimit {
		return line[:rootCauseLimit] + "..."
	}
	return line
}

func calculateSeverity(errorType ErrorType, count int) string {
	if count >= 3 {
		return "critical"
	}

	switch errorType {
	case ErrorTypeAssertion:
		if count >= 2 {
			return "high"
		}
		return "medium"
	case ErrorTypeTimeout, ErrorTypeNetwork, ErrorTypeNullPointer:
		return "high"
	case ErrorTypeDatabase:
		return "critical"
	case ErrorTypeUnknown:
		return "low"
	default:
		return "medium"
	}
}

func suggestion(errorType ErrorType) string {
	switch errorType {
	case ErrorTypeAssertion:
		return "Review test expectations and verify they match actual behavior. Check if application logic changed or test data is outdated."
	case ErrorTypeTimeout:
		return "Increase timeout values or investigate performance degradation. Check for slow external dependencies."
	case ErrorTypeNetwork:
		return "Verify network connectivity and service availability for the base URL under test."
	case ErrorTypeNullPointer:
		return "Check that the element or response field exists before it is read."
	case ErrorTypeFileSystem:
		return "Verify file paths and permissions, and ensure fixtures exist before the run."
	case ErrorTypeDatabase:
		return "Check the database connection, schema and seeded test data."
	case ErrorTypeEnvironment:
		return "Review environment configuration and required variables."
	default:
		return "Review the error output and evidence attached to the failing step."
	}
}

func recommendation(summary *models.HealthSummary, groups []*models.FailureGroup) string {
	for _, group := range groups {
		if group.Severity == "critical" {
			return "Address critical failures before proceeding with new deployments."
		}
	}
	if summary.HealthStatus == "Excellent" {
		return "Keep monitoring for new flaky scenarios."
	}
	if len(groups) > 0 {
		return "Prioritize fixes by failure frequency, largest group first."
	}
	return "No action needed."
}

func containsAny(s string, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
