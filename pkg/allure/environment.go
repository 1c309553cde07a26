package allure

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/your-org/cucumber-report-enhanced/pkg/renderer"
)

// EnvironmentProperties lists the key=value lines of environment.properties
// in a fixed order.
func (c *Converter) EnvironmentProperties(now time.Time) []string {
	env := c.opts.Environment
	return []string{
		"environment=" + env.Name,
		"base.url=" + env.BaseURL,
		"browser=" + env.Browser,
		"headless=" + strconv.FormatBool(env.Headless),
		"parallel=" + strconv.Itoa(env.Parallel),
		"go.version=" + runtime.Version(),
		"os=" + runtime.GOOS,
		"timestamp=" + now.UTC().Format(time.RFC3339),
	}
}

func (c *Converter) writeEnvironment(now time.Time) error {
	path := filepath.Join(c.opts.ResultsDir, "environment.properties")
	content := strings.Join(c.EnvironmentProperties(now), "\n")
	if err := renderer.WriteFile(path, []byte(content)); err != nil {
		return fmt.Errorf("failed to write environment properties: %w", err)
	}
	return nil
}

// Categories is the fixed defect taxonomy written to categories.json
func Categories() []Category {
	return []Category{
		{Name: "API Tests", MatchedStatuses: []string{StatusPassed, StatusFailed, StatusBroken}, MessageRegex: ".*api.*"},
		{Name: "Web Tests", MatchedStatuses: []string{StatusPassed, StatusFailed, StatusBroken}, MessageRegex: ".*web.*"},
		{Name: "Failed Tests", MatchedStatuses: []string{StatusFailed}},
		{Name: "Broken Tests", MatchedStatuses: []string{StatusBroken}},
		{Name: "Product Defects", MatchedStatuses: []string{StatusFailed}, MessageRegex: ".*defect.*"},
	}
}
