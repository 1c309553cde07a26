package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

const schemaID = "https://github.com/your-org/cucumber-report-enhanced/schemas/cucumber-trace.json"

var printer = message.NewPrinter(language.English)

var (
	compileOnce    sync.Once
	compiledSchema *sjsonschema.Schema
	compileErr     error
)

// Schema produces the JSON Schema (Draft 2020-12) describing the subset of
// the cucumber JSON report this tool reads. It pins types only: formatters
// disagree on which fields they emit, so no property is required.
func Schema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false
	r.AllowAdditionalProperties = true
	r.RequiredFromJSONSchemaTags = true

	s := r.Reflect(&models.Trace{})
	s.ID = schemaID
	s.Title = "Cucumber JSON trace"
	s.Description = "Features, scenarios and steps as emitted by cucumber JSON formatters"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

func compile() (*sjsonschema.Schema, error) {
	compileOnce.Do(func() {
		schemaJSON, err := Schema()
		if err != nil {
			compileErr = err
			return
		}

		schemaDoc, err := sjsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal schema: %w", err)
			return
		}

		c := sjsonschema.NewCompiler()
		if err := c.AddResource(schemaID, schemaDoc); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		compiledSchema, compileErr = c.Compile(schemaID)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// validateShape checks data against the trace schema and returns a list of
// "path: message" violations.
func validateShape(data []byte) ([]string, error) {
	sch, err := compile()
	if err != nil {
		return nil, err
	}

	doc, err := sjsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if err := sch.Validate(doc); err != nil {
		ve, ok := err.(*sjsonschema.ValidationError)
		if !ok {
			return []string{err.Error()}, nil
		}
		var violations []string
		for _, cause := range flattenValidationErrors(ve) {
			path := "/" + strings.Join(cause.InstanceLocation, "/")
			violations = append(violations, fmt.Sprintf("%s: %s", path, cause.ErrorKind.LocalizedString(printer)))
		}
		return violations, nil
	}
	return nil, nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}
