package projection

import "fmt"

// InvalidTaskContextError reports a task context that cannot be projected at
// all: the document is nil or not a map. Every other malformation is absorbed
// into degraded-but-successful output.
type InvalidTaskContextError struct {
	// TypeName is the Go type of the rejected value, for diagnostics.
	TypeName string
}

func (e *InvalidTaskContextError) Error() string {
	return fmt.Sprintf("invalid task context: expected object, got %s", e.TypeName)
}

func newInvalidTaskContextError(v any) *InvalidTaskContextError {
	if v == nil {
		return &InvalidTaskContextError{TypeName: "nil"}
	}
	return &InvalidTaskContextError{TypeName: fmt.Sprintf("%T", v)}
}
