package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/cucumber-report-enhanced/pkg/models"
	"github.com/your-org/cucumber-report-enhanced/pkg/trace"
)

// setup writes a config file pointing at a fresh reports directory and
// returns both paths.
func setup(t *testing.T, withTrace bool) (configFile, reportsDir string) {
	t.Helper()
	dir := t.TempDir()
	reportsDir = filepath.Join(dir, "reports")
	configFile = filepath.Join(dir, "trace-report.yml")
	content := fmt.Sprintf("reports_dir: %s\nproject_name: pokedex\nhistory:\n  dir: %s\n", reportsDir, filepath.Join(dir, "history"))
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	if withTrace {
		require.NoError(t, trace.Write(filepath.Join(reportsDir, "cucumber-report.json"), models.Trace{{
			URI:  "features/pokemon.feature",
			Name: "Pokemon API",
			Elements: []*models.Scenario{{
				Name: "Get pikachu",
				Steps: []*models.Step{
					{Keyword: "Given ", Name: "I request pikachu", Result: &models.Result{Status: models.StatusPassed, Duration: 500_000_000}},
					{Keyword: "Then ", Name: "status is 200", Result: &models.Result{Status: models.StatusPassed, Duration: 300_000_000}},
				},
			}},
		}}))
	}
	return configFile, reportsDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSubcommands(t *testing.T) {
	registered := map[string]bool{}
	for _, cmd := range newRootCmd(&bytes.Buffer{}).Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range []string{"evidence", "timeline", "allure", "generate", "summary", "export", "schema", "history", "serve", "plugin"} {
		assert.True(t, registered[name], "missing subcommand %s", name)
	}
}

func TestRenderCommands(t *testing.T) {
	tests := []struct {
		kind string
		file string
	}{
		{"evidence", "detailed-report.html"},
		{"timeline", "timeline-report.html"},
		{"allure", "allure-results"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			configFile, reportsDir := setup(t, true)

			out, err := run(t, "--config", configFile, tt.kind)
			require.NoError(t, err)
			want := filepath.Join(reportsDir, tt.file)
			assert.Equal(t, want, strings.TrimSpace(out))
			_, err = os.Stat(want)
			assert.NoError(t, err)
		})
	}
}

func TestRenderCommand_MissingTrace(t *testing.T) {
	configFile, reportsDir := setup(t, false)

	_, err := run(t, "--config", configFile, "evidence")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run the tests first")
	assert.Contains(t, err.Error(), filepath.Join(reportsDir, "cucumber-report.json"))
}

func TestRenderCommand_CustomInputAndOutput(t *testing.T) {
	configFile, reportsDir := setup(t, true)
	input := filepath.Join(t.TempDir(), "other.json")
	data, err := os.ReadFile(filepath.Join(reportsDir, "cucumber-report.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(input, data, 0644))
	output := filepath.Join(t.TempDir(), "evidence.html")

	out, err := run(t, "--config", configFile, "evidence", "-i", input, "-o", output)
	require.NoError(t, err)
	assert.Equal(t, output, strings.TrimSpace(out))

	html, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Get pikachu")
}

func TestGenerateCommand(t *testing.T) {
	configFile, reportsDir := setup(t, true)

	out, err := run(t, "--config", configFile, "generate", "--summary", "--record")
	require.NoError(t, err)
	assert.Contains(t, out, "DETAILED EXECUTION METRICS")
	assert.Contains(t, out, "800ms")
	assert.Contains(t, out, filepath.Join(reportsDir, "detailed-report.html"))
	assert.Contains(t, out, filepath.Join(reportsDir, "timeline-report.html"))
	assert.Contains(t, out, filepath.Join(reportsDir, "allure-results"))

	out, err = run(t, "--config", configFile, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "100.0%")
}

func TestGenerateCommand_UnknownKind(t *testing.T) {
	configFile, reportsDir := setup(t, true)

	_, err := run(t, "--config", configFile, "generate", "--kind", "evidence,pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown report kind")
	_, statErr := os.Stat(filepath.Join(reportsDir, "detailed-report.html"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExportCommand(t *testing.T) {
	configFile, _ := setup(t, true)

	out, err := run(t, "--config", configFile, "export", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "project: pokedex")
	assert.Contains(t, out, "name: Get pikachu")

	_, err = run(t, "--config", configFile, "export", "--format", "xml")
	assert.Error(t, err)
}

func TestSchemaCommand(t *testing.T) {
	configFile, _ := setup(t, false)

	out, err := run(t, "--config", configFile, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "cucumber-trace.json")
}

func TestHistoryCommand_Empty(t *testing.T) {
	configFile, _ := setup(t, false)

	out, err := run(t, "--config", configFile, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet")
}

func TestConfigFileMustExist(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yml"), "schema")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
