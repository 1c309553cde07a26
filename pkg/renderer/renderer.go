// Package renderer defines the contract shared by every report output and the
// file helpers they use.
package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/your-org/cucumber-report-enhanced/pkg/models"
)

// Renderer turns an aggregated report into an artifact on disk and returns
// the artifact path.
type Renderer interface {
	Name() string
	Render(report *models.Report) (string, error)
}

// RenderTemplate executes tmpl into outputPath. The file is only written once
// execution succeeded, so a failed render never leaves a partial page.
func RenderTemplate(tmpl *template.Template, data interface{}, outputPath string) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", tmpl.Name(), err)
	}
	return WriteFile(outputPath, buf.Bytes())
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Truncate shortens s to max runes, appending "..." when cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
