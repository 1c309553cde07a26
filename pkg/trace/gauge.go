package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getgauge/gauge-proto/go/gauge_messages"
	"google.golang.org/protobuf/proto"

	"github.com/your-org/cucumber-report-enhanced/pkg/logger"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

// gaugeStepKeyword stands in for Given/When/Then, Gauge steps are markdown bullets
const gaugeStepKeyword = "* "

// LoadGauge reads a protobuf encoded Gauge suite result and converts it.
func LoadGauge(path string) (models.Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, &MalformedTraceError{Path: path, Reason: "unreadable", Err: err}
	}

	suite := &gauge_messages.ProtoSuiteResult{}
	if err := proto.Unmarshal(data, suite); err != nil {
		return nil, &MalformedTraceError{Path: path, Reason: "invalid gauge suite result", Err: err}
	}

	return FromGauge(suite), nil
}

// FromGauge maps a Gauge suite result onto the cucumber trace shape:
// specifications become features, Gauge durations (ms) become ns.
func FromGauge(suite *gauge_messages.ProtoSuiteResult) models.Trace {
	tr := make(models.Trace, 0, len(suite.GetSpecResults()))
	for _, specResult := range suite.GetSpecResults() {
		tr = append(tr, convertSpec(specResult))
	}
	logger.Debugf("Converted gauge suite %q (%s): %d specifications",
		suite.GetProjectName(), suite.GetEnvironment(), len(tr))
	return tr
}

func convertSpec(specResult *gauge_messages.ProtoSpecResult) *models.Feature {
	spec := specResult.GetProtoSpec()
	feature := &models.Feature{
		URI:      spec.GetFileName(),
		ID:       idFromName(spec.GetSpecHeading()),
		Keyword:  "Specification",
		Name:     spec.GetSpecHeading(),
		Tags:     gaugeTags(spec.GetTags()),
		Elements: make([]*models.Scenario, 0),
	}
	if feature.URI != "" {
		feature.URI = filepath.ToSlash(feature.URI)
	}

	for _, item := range spec.GetItems() {
		if item.GetItemType() == gauge_messages.ProtoItem_Scenario {
			feature.Elements = append(feature.Elements, convertScenario(feature, item.GetScenario()))
		}
	}
	return feature
}

func convertScenario(feature *models.Feature, protoScenario *gauge_messages.ProtoScenario) *models.Scenario {
	scenario := &models.Scenario{
		ID:      feature.ID + ";" + idFromName(protoScenario.GetScenarioHeading()),
		Keyword: "Scenario",
		Name:    protoScenario.GetScenarioHeading(),
		Type:    "scenario",
		Tags:    gaugeTags(protoScenario.GetTags()),
		Steps:   make([]*models.Step, 0),
	}

	for _, item := range protoScenario.GetScenarioItems() {
		if item.GetItemType() == gauge_messages.ProtoItem_Step {
			scenario.Steps = append(scenario.Steps, convertStep(item.GetStep()))
		}
	}

	// a scenario Gauge skipped before running any step still shows as skipped
	//nolint:staticcheck // deprecated accessor is the only scenario-level skip flag
	if len(scenario.Steps) == 0 && protoScenario.GetSkipped() {
		scenario.Steps = append(scenario.Steps, &models.Step{
			Keyword: gaugeStepKeyword,
			Name:    "scenario skipped",
			Result:  &models.Result{Status: models.StatusSkipped},
		})
	}
	return scenario
}

func convertStep(protoStep *gauge_messages.ProtoStep) *models.Step {
	execResult := protoStep.GetStepExecutionResult().GetExecutionResult()

	result := &models.Result{
		Status:   models.StatusPassed,
		Duration: (time.Duration(execResult.GetExecutionTime()) * time.Millisecond).Nanoseconds(),
	}
	switch {
	case execResult.GetFailed():
		result.Status = models.StatusFailed
		result.ErrorMessage = execResult.GetErrorMessage()
		if stack := execResult.GetStackTrace(); stack != "" {
			result.ErrorMessage = fmt.Sprintf("%s\n%s", result.ErrorMessage, stack)
		}
	case protoStep.GetStepExecutionResult().GetSkipped():
		result.Status = models.StatusSkipped
	}

	return &models.Step{
		Keyword: gaugeStepKeyword,
		Name:    protoStep.GetParsedText(),
		Result:  result,
	}
}

func gaugeTags(tags []string) []*models.Tag {
	out := make([]*models.Tag, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "@") {
			tag = "@" + tag
		}
		out = append(out, &models.Tag{Name: tag})
	}
	return out
}

func idFromName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}
