package professor

import "fmt"

// RejectionError reports why a candidate failed validation. Rejections are
// per-record and never fatal to a run; callers log them and move on.
type RejectionError struct {
	Field   string
	Message string
	Cause   error
}

func (e *RejectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rejected %s: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("rejected %s: %s", e.Field, e.Message)
}

func (e *RejectionError) Unwrap() error {
	return e.Cause
}
