package trace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/getgauge/gauge-proto/go/gauge_messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

func gaugeStep(text string, ms int64, failed, skipped bool, message string) *gauge_messages.ProtoItem {
	return &gauge_messages.ProtoItem{
		ItemType: gauge_messages.ProtoItem_Step,
		Step: &gauge_messages.ProtoStep{
			ParsedText: text,
			StepExecutionResult: &gauge_messages.ProtoStepExecutionResult{
				ExecutionResult: &gauge_messages.ProtoExecutionResult{
					Failed:        failed,
					ExecutionTime: ms,
					ErrorMessage:  message,
				},
				Skipped: skipped,
			},
		},
	}
}

func gaugeSuite() *gauge_messages.ProtoSuiteResult {
	return &gauge_messages.ProtoSuiteResult{
		ProjectName: "pokedex",
		SpecResults: []*gauge_messages.ProtoSpecResult{{
			ProtoSpec: &gauge_messages.ProtoSpec{
				SpecHeading: "Pokemon API",
				FileName:    "specs/pokemon.spec",
				Tags:        []string{"api"},
				Items: []*gauge_messages.ProtoItem{
					{
						ItemType: gauge_messages.ProtoItem_Scenario,
						Scenario: &gauge_messages.ProtoScenario{
							ScenarioHeading: "Get pikachu",
							Tags:            []string{"smoke"},
							ScenarioItems: []*gauge_messages.ProtoItem{
								gaugeStep("Request pikachu", 500, false, false, ""),
								gaugeStep("Status is 200", 300, false, false, ""),
							},
						},
					},
					{
						ItemType: gauge_messages.ProtoItem_Scenario,
						Scenario: &gauge_messages.ProtoScenario{
							ScenarioHeading: "Get missingno",
							ScenarioItems: []*gauge_messages.ProtoItem{
								gaugeStep("Request missingno", 100, true, false, "404 Not Found"),
								gaugeStep("Status is 200", 0, false, true, ""),
							},
						},
					},
				},
			},
		}},
	}
}

func TestFromGauge(t *testing.T) {
	tr := FromGauge(gaugeSuite())
	require.Len(t, tr, 1)

	feature := tr[0]
	assert.Equal(t, "Pokemon API", feature.Name)
	assert.Equal(t, "specs/pokemon.spec", feature.URI)
	assert.Equal(t, []string{"@api"}, models.TagNames(feature.Tags))
	require.Len(t, feature.Elements, 2)

	pikachu := feature.Elements[0]
	assert.Equal(t, []string{"@smoke"}, models.TagNames(pikachu.Tags))
	assert.Equal(t, int64(500_000_000), pikachu.Steps[0].DurationNs())
	assert.Equal(t, models.StatusPassed, models.DeriveScenarioStatus(pikachu.Steps))

	missingno := feature.Elements[1]
	assert.Equal(t, models.StatusFailed, missingno.Steps[0].Status())
	assert.Equal(t, "404 Not Found", missingno.Steps[0].ErrorMessage())
	assert.Equal(t, models.StatusSkipped, missingno.Steps[1].Status())
	assert.Equal(t, models.StatusFailed, models.DeriveScenarioStatus(missingno.Steps))
}

func TestLoadGauge(t *testing.T) {
	data, err := proto.Marshal(gaugeSuite())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "last_run_result")
	require.NoError(t, os.WriteFile(path, data, 0644))

	tr, err := LoadGauge(path)
	require.NoError(t, err)
	require.Len(t, tr, 1)
	assert.Len(t, tr[0].Elements, 2)
}

func TestLoadGauge_Missing(t *testing.T) {
	_, err := LoadGauge(filepath.Join(t.TempDir(), "nope"))
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
