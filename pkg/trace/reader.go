// Package trace reads cucumber JSON traces and converts Gauge suite results
// into the same shape.
package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/your-org/cucumber-report-enhanced/pkg/logger"
	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads and validates the trace at path.
func Load(path string) (models.Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, &MalformedTraceError{Path: path, Reason: "unreadable", Err: err}
	}

	tr, err := Parse(data)
	if err != nil {
		var malformed *MalformedTraceError
		if errors.As(err, &malformed) {
			malformed.Path = path
		}
		return nil, err
	}

	logger.Debugf("Loaded trace %s: %d features", path, len(tr))
	return tr, nil
}

// Parse decodes a cucumber JSON document. Either the whole trace is returned
// or a *MalformedTraceError; there is no partial result.
func Parse(data []byte) (models.Trace, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 {
		return nil, &MalformedTraceError{Reason: "empty document"}
	}
	if !json.Valid(data) {
		var v interface{}
		err := json.Unmarshal(data, &v)
		return nil, &MalformedTraceError{Reason: "invalid JSON", Err: err}
	}

	violations, err := validateShape(data)
	if err != nil {
		return nil, &MalformedTraceError{Reason: "shape validation failed", Err: err}
	}
	if len(violations) > 0 {
		return nil, &MalformedTraceError{Reason: "not a cucumber report: " + strings.Join(violations, "; ")}
	}

	var tr models.Trace
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, &MalformedTraceError{Reason: "decode failed", Err: err}
	}
	for _, feature := range tr {
		if feature == nil {
			continue
		}
		for _, scenario := range feature.Elements {
			if scenario != nil {
				liftHooks(scenario)
			}
		}
	}
	return tr, nil
}

// liftHooks moves hooks that cucumber-js writes inline with the steps into
// Before/After. Hooks seen before the first real step are before hooks.
func liftHooks(scenario *models.Scenario) {
	hasHooks := false
	for _, step := range scenario.Steps {
		if step != nil && step.IsHook() {
			hasHooks = true
			break
		}
	}
	if !hasHooks {
		return
	}

	steps := make([]*models.Step, 0, len(scenario.Steps))
	for _, step := range scenario.Steps {
		if step == nil || !step.IsHook() {
			steps = append(steps, step)
			continue
		}

		hook := &models.Hook{
			Keyword:    strings.TrimSpace(step.Keyword),
			Result:     step.Result,
			Embeddings: step.Embeddings,
		}
		switch {
		case hook.Keyword == "Before":
			scenario.Before = append(scenario.Before, hook)
		case hook.Keyword == "After":
			scenario.After = append(scenario.After, hook)
		case len(steps) == 0:
			scenario.Before = append(scenario.Before, hook)
		default:
			scenario.After = append(scenario.After, hook)
		}
	}
	scenario.Steps = steps
}

// Write stores tr as an indented cucumber JSON document.
func Write(path string, tr models.Trace) error {
	if tr == nil {
		tr = models.Trace{}
	}
	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	return nil
}
