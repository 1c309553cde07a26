package models

import "strings"

// Trace is the ordered list of features in a cucumber JSON report. Only the
// array shape is required; every field below is optional on input.
type Trace []*Feature

// Feature is a named group of scenarios, usually one source file
type Feature struct {
	URI         string      `json:"uri,omitempty"`
	ID          string      `json:"id,omitempty"`
	Keyword     string      `json:"keyword,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Line        int         `json:"line,omitempty"`
	Tags        []*Tag      `json:"tags,omitempty"`
	Elements    []*Scenario `json:"elements,omitempty"`
}

// Scenario is one executable example inside a feature
type Scenario struct {
	ID          string  `json:"id,omitempty"`
	Keyword     string  `json:"keyword,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Line        int     `json:"line,omitempty"`
	Type        string  `json:"type,omitempty"`
	Tags        []*Tag  `json:"tags,omitempty"`
	Before      []*Hook `json:"before,omitempty"`
	Steps       []*Step `json:"steps,omitempty"`
	After       []*Hook `json:"after,omitempty"`
}

// Step is a single Given/When/Then line. Keyword keeps its trailing space.
// Hidden marks a hook that cucumber-js wrote inline with the steps.
type Step struct {
	Keyword    string       `json:"keyword,omitempty"`
	Name       string       `json:"name,omitempty"`
	Line       int          `json:"line,omitempty"`
	Hidden     bool         `json:"hidden,omitempty"`
	Result     *Result      `json:"result,omitempty"`
	Embeddings []*Embedding `json:"embeddings,omitempty"`
}

// Hook is a before or after hook attached to a scenario
type Hook struct {
	Keyword    string       `json:"keyword,omitempty"`
	Result     *Result      `json:"result,omitempty"`
	Embeddings []*Embedding `json:"embeddings,omitempty"`
}

// Result is the outcome of a step or hook. Duration is in nanoseconds.
type Result struct {
	Status       Status `json:"status"`
	Duration     int64  `json:"duration,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Embedding is base64 encoded evidence attached to a step
type Embedding struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
	Name     string `json:"name,omitempty"`
}

// Tag is a cucumber tag, name includes the leading '@'
type Tag struct {
	Name string `json:"name"`
	Line int    `json:"line,omitempty"`
}

// Key identifies a feature across runs: the source path when known, else the name.
func (f *Feature) Key() string {
	if f.URI != "" {
		return f.URI
	}
	return f.Name
}

// Status returns the step status, pending when the step carries no result.
func (s *Step) Status() Status {
	if s.Result == nil || s.Result.Status == "" {
		return StatusPending
	}
	return s.Result.Status
}

// DurationNs returns the step duration, zero when absent.
func (s *Step) DurationNs() int64 {
	if s.Result == nil {
		return 0
	}
	return s.Result.Duration
}

// ErrorMessage returns the failure text, if any.
func (s *Step) ErrorMessage() string {
	if s.Result == nil {
		return ""
	}
	return s.Result.ErrorMessage
}

// FullName joins the keyword and name the way the step was written.
func (s *Step) FullName() string {
	return s.Keyword + s.Name
}

// IsHook reports whether the entry is a hook written inline with the steps:
// flagged hidden, or a bare Before/After keyword without step text.
func (s *Step) IsHook() bool {
	if s.Hidden {
		return true
	}
	keyword := strings.TrimSpace(s.Keyword)
	return s.Name == "" && (keyword == "Before" || keyword == "After")
}

// Status returns the hook status, pending when the hook carries no result.
func (h *Hook) Status() Status {
	if h == nil || h.Result == nil || h.Result.Status == "" {
		return StatusPending
	}
	return h.Result.Status
}

// ErrorMessage returns the hook failure text, if any.
func (h *Hook) ErrorMessage() string {
	if h == nil || h.Result == nil {
		return ""
	}
	return h.Result.ErrorMessage
}

// DurationNs returns the hook duration, zero when absent.
func (h *Hook) DurationNs() int64 {
	if h == nil || h.Result == nil {
		return 0
	}
	return h.Result.Duration
}

// TagNames returns the tag names in order.
func TagNames(tags []*Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != nil {
			names = append(names, t.Name)
		}
	}
	return names
}

// JoinTags renders tags separated by a space, e.g. "@api @smoke".
func JoinTags(tags []*Tag) string {
	return strings.Join(TagNames(tags), " ")
}
