package allure

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

var extensions = map[string]string{
	"image/png":        "png",
	"image/jpeg":       "jpg",
	"image/jpg":        "jpg",
	"image/gif":        "gif",
	"text/plain":       "txt",
	"text/html":        "html",
	"application/json": "json",
	"video/webm":       "webm",
}

// Extension picks the attachment file extension, "txt" when unknown.
func Extension(mimeType string) string {
	if ext, ok := extensions[strings.ToLower(strings.TrimSpace(mimeType))]; ok {
		return ext
	}
	return "txt"
}

// MapStatus converts a cucumber status to its Allure equivalent.
func MapStatus(status models.Status) string {
	switch status {
	case models.StatusPassed:
		return StatusPassed
	case models.StatusFailed:
		return StatusFailed
	case models.StatusSkipped:
		return StatusSkipped
	case models.StatusPending, models.StatusUndefined, models.StatusAmbiguous:
		return StatusBroken
	default:
		return StatusUnknown
	}
}

// HistoryID is stable for a feature/scenario pair so the viewer can track
// the same test across runs.
func HistoryID(featureName, scenarioName string) string {
	sum := md5.Sum([]byte(featureName + ":" + scenarioName))
	return hex.EncodeToString(sum[:])
}

// Labels builds feature/suite/story labels followed by one or two labels per
// feature and scenario tag.
func Labels(feature *models.Feature, scenario *models.Scenario) []Label {
	labels := []Label{
		{Name: "feature", Value: feature.Name},
		{Name: "suite", Value: feature.Name},
		{Name: "story", Value: scenario.Name},
	}

	tags := append(models.TagNames(feature.Tags), models.TagNames(scenario.Tags)...)
	for _, tag := range tags {
		labels = append(labels, tagLabels(strings.TrimPrefix(tag, "@"))...)
	}
	return labels
}

func tagLabels(tag string) []Label {
	switch {
	case strings.Contains(tag, "smoke"):
		return []Label{{Name: "severity", Value: "critical"}, {Name: "tag", Value: tag}}
	case strings.Contains(tag, "regression"):
		return []Label{{Name: "severity", Value: "normal"}, {Name: "tag", Value: tag}}
	case tag == "api":
		return []Label{{Name: "testType", Value: "api"}}
	case tag == "web":
		return []Label{{Name: "testType", Value: "ui"}}
	case tag == "mobile":
		return []Label{{Name: "testType", Value: "mobile"}}
	default:
		return []Label{{Name: "tag", Value: tag}}
	}
}
