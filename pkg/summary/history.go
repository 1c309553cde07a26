package summary

import (
	"fmt"
	"io"
	"strings"

	"github.com/your-org/cucumber-report-enhanced/pkg/analytics"
	"github.com/your-org/cucumber-report-enhanced/pkg/storage"
)

// PrintHistory lists recorded runs, newest first.
func PrintHistory(w io.Writer, runs []storage.ExecutionRecord) error {
	st := newStyles(w)
	var b strings.Builder

	rule := st.banner.Render(strings.Repeat("═", ruleWidth))
	fmt.Fprintf(&b, "\n%s\n%s\n%s\n\n", rule, st.banner.Render("  🕑 RUN HISTORY"), rule)

	if len(runs) == 0 {
		fmt.Fprintf(&b, "  %s\n\n", st.dim.Render("No runs recorded yet. Enable history with --record."))
		_, err := io.WriteString(w, b.String())
		return err
	}

	for _, run := range runs {
		rate := st.passed
		if run.FailedScenarios > 0 {
			rate = st.failed
		}
		fmt.Fprintf(&b, "  %s  %s  %s  %s passed, %s failed, %s skipped  %s\n",
			st.label.Render(run.Timestamp.Local().Format("2006-01-02 15:04:05")),
			rate.Render(fmt.Sprintf("%5.1f%%", run.SuccessRate)),
			st.duration.Render(fmt.Sprintf("%8s", analytics.FormatDuration(run.DurationMs))),
			st.passed.Render(fmt.Sprint(run.PassedScenarios)),
			st.failed.Render(fmt.Sprint(run.FailedScenarios)),
			st.skipped.Render(fmt.Sprint(run.SkippedScenarios)),
			st.dim.Render(run.Source),
		)
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
