// Package summary prints per-feature execution metrics to a terminal.
package summary

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/your-org/cucumber-report-enhanced/pkg/analytics"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

const ruleWidth = 80

var (
	colorGreen   = lipgloss.Color("42")
	colorRed     = lipgloss.Color("196")
	colorYellow  = lipgloss.Color("214")
	colorBlue    = lipgloss.Color("39")
	colorCyan    = lipgloss.Color("51")
	colorDim     = lipgloss.Color("240")
	colorMagenta = lipgloss.Color("201")
)

type styles struct {
	banner   lipgloss.Style
	feature  lipgloss.Style
	label    lipgloss.Style
	dim      lipgloss.Style
	duration lipgloss.Style
	passed   lipgloss.Style
	failed   lipgloss.Style
	skipped  lipgloss.Style
	unknown  lipgloss.Style
}

// newStyles binds every style to the renderer of w so colour is only
// emitted when w is a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		banner:   r.NewStyle().Bold(true).Foreground(colorMagenta),
		feature:  r.NewStyle().Bold(true).Foreground(colorBlue),
		label:    r.NewStyle().Bold(true),
		dim:      r.NewStyle().Foreground(colorDim),
		duration: r.NewStyle().Foreground(colorCyan),
		passed:   r.NewStyle().Foreground(colorGreen),
		failed:   r.NewStyle().Foreground(colorRed),
		skipped:  r.NewStyle().Foreground(colorYellow),
		unknown:  r.NewStyle().Foreground(colorDim),
	}
}

func (s styles) status(status models.Status) lipgloss.Style {
	switch status {
	case models.StatusPassed:
		return s.passed
	case models.StatusFailed:
		return s.failed
	case models.StatusSkipped, models.StatusPending:
		return s.skipped
	default:
		return s.unknown
	}
}

// Print writes the detailed execution metrics followed by the run summary.
func Print(w io.Writer, report *models.Report) error {
	st := newStyles(w)
	var b strings.Builder

	rule := st.banner.Render(strings.Repeat("═", ruleWidth))
	fmt.Fprintf(&b, "\n%s\n%s\n%s\n\n", rule, st.banner.Render("  📊 DETAILED EXECUTION METRICS"), rule)

	for _, fr := range report.Features {
		writeFeature(&b, st, fr)
	}

	if report.Insights != nil && len(report.Insights.FailureGroups) > 0 {
		writeFailures(&b, st, report.Insights.FailureGroups)
	}

	sum := report.Summary
	fmt.Fprintf(&b, "%s\n%s\n%s\n\n", rule, st.banner.Render("  📈 SUMMARY"), rule)
	fmt.Fprintf(&b, "%s%s\n", st.label.Render("  Total Duration:    "), st.duration.Render(analytics.FormatNanos(sum.DurationNs)))
	fmt.Fprintf(&b, "%s%s\n", st.label.Render("  Total Features:    "), st.duration.Render(fmt.Sprint(sum.FeatureCount)))
	fmt.Fprintf(&b, "%s%s\n", st.label.Render("  Total Scenarios:   "), st.duration.Render(fmt.Sprint(sum.ScenarioCount)))
	fmt.Fprintf(&b, "%s%s\n", st.label.Render("  Total Steps:       "), st.duration.Render(fmt.Sprint(sum.StepCount)))
	fmt.Fprintf(&b, "%s%s\n", st.label.Render("  Passed Scenarios:  "), st.passed.Render(fmt.Sprint(sum.Passed)))
	fmt.Fprintf(&b, "%s%s\n", st.label.Render("  Failed Scenarios:  "), st.failed.Render(fmt.Sprint(sum.Failed)))
	fmt.Fprintf(&b, "%s%s\n", st.label.Render("  Skipped Scenarios: "), st.skipped.Render(fmt.Sprint(sum.Skipped)))
	fmt.Fprintf(&b, "\n%s\n\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeFeature(b *strings.Builder, st styles, fr *models.FeatureReport) {
	fmt.Fprintf(b, "%s%s\n", st.feature.Render("📄 Feature: "), st.label.Render(fr.Feature.Name))
	if fr.Feature.URI != "" {
		fmt.Fprintf(b, "%s%s\n", st.dim.Render("   URI: "), fr.Feature.URI)
	}
	fmt.Fprintf(b, "%s%s\n\n", st.label.Render("   Duration: "), st.duration.Render(analytics.FormatNanos(fr.Metrics.DurationNs)))

	for _, sr := range fr.Scenarios {
		status := st.status(sr.Status)
		fmt.Fprintf(b, "   %s %s\n", status.Render(sr.Status.Icon()), sr.Scenario.Name)
		fmt.Fprintf(b, "      Duration: %s\n", st.duration.Render(analytics.FormatNanos(sr.Metrics.DurationNs)))
		fmt.Fprintf(b, "      Status: %s\n", status.Render(strings.ToUpper(string(sr.Status))))

		if len(sr.Scenario.Steps) > 0 {
			fmt.Fprintf(b, "%s\n", st.dim.Render(fmt.Sprintf("      Steps (%d):", len(sr.Scenario.Steps))))
			for idx, step := range sr.Scenario.Steps {
				stepStatus := step.Status()
				fmt.Fprintf(b, "         %s Step %d: %s %s\n",
					st.status(stepStatus).Render(stepStatus.Icon()),
					idx+1,
					st.duration.Render(analytics.FormatNanos(step.DurationNs())),
					st.dim.Render(step.FullName()),
				)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(b, "%s\n\n", st.dim.Render(strings.Repeat("─", ruleWidth)))
}

func writeFailures(b *strings.Builder, st styles, groups []*models.FailureGroup) {
	fmt.Fprintf(b, "%s\n", st.failed.Render("  🔍 FAILURE ANALYSIS"))
	for _, group := range groups {
		fmt.Fprintf(b, "   %s %s (%d scenario(s), %s)\n",
			st.failed.Render("✗"), group.ErrorType, group.Count, group.Severity)
		fmt.Fprintf(b, "      %s\n", group.RootCause)
		if group.SuggestedFix != "" {
			fmt.Fprintf(b, "      %s\n", st.dim.Render(group.SuggestedFix))
		}
	}
	b.WriteString("\n")
}
