package trace

import "fmt"

// NotFoundError is returned when no trace exists at the expected location.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no cucumber trace found at %s: run the tests first to produce it", e.Path)
}

// MalformedTraceError is returned when the trace cannot be decoded or does
// not have the cucumber report shape.
type MalformedTraceError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedTraceError) Error() string {
	where := e.Path
	if where == "" {
		where = "input"
	}
	if e.Err != nil {
		return fmt.Sprintf("malformed trace %s: %s: %v", where, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed trace %s: %s", where, e.Reason)
}

func (e *MalformedTraceError) Unwrap() error {
	return e.Err
}
