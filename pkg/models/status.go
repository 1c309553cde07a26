package models

// Status is a cucumber result status. Unknown values are kept verbatim.
type Status string

const (
	StatusPassed    Status = "passed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusPending   Status = "pending"
	StatusUndefined Status = "undefined"
	StatusAmbiguous Status = "ambiguous"
)

// DeriveScenarioStatus applies the status precedence shared by every report:
// failed if any step failed, passed if every step passed, skipped if any step
// was skipped, pending otherwise. A scenario without steps is pending.
func DeriveScenarioStatus(steps []*Step) Status {
	if len(steps) == 0 {
		return StatusPending
	}

	allPassed := true
	anySkipped := false
	for _, step := range steps {
		switch step.Status() {
		case StatusFailed:
			return StatusFailed
		case StatusPassed:
		case StatusSkipped:
			allPassed = false
			anySkipped = true
		default:
			allPassed = false
		}
	}

	if allPassed {
		return StatusPassed
	}
	if anySkipped {
		return StatusSkipped
	}
	return StatusPending
}

// Icon is the glyph shown next to a status in the HTML and console reports.
func (s Status) Icon() string {
	switch s {
	case StatusPassed:
		return "✓"
	case StatusFailed:
		return "✗"
	case StatusSkipped:
		return "○"
	case StatusPending:
		return "◷"
	default:
		return "?"
	}
}

func (s Status) String() string {
	return string(s)
}
