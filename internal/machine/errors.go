package machine

import "fmt"

// WorkflowError means the external engine reported failure, timed out, or
// could not be reached.
type WorkflowError struct {
	Machine string
	Cause   string
	Err     error
}

func (e *WorkflowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("workflow %s: %s: %v", e.Machine, e.Cause, e.Err)
	}
	return fmt.Sprintf("workflow %s: %s", e.Machine, e.Cause)
}

func (e *WorkflowError) Unwrap() error { return e.Err }

// DeserializationError means the engine returned a payload that does not
// decode into the expected result shape.
type DeserializationError struct {
	Machine string
	Err     error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("workflow %s returned a malformed response: %v", e.Machine, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// CancellationError means a best-effort stop request could not be delivered,
// e.g. the execution already finished or the handle is unknown. Non-fatal.
type CancellationError struct {
	Execution string
	Err       error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("unable to cancel execution %s: %v", e.Execution, e.Err)
}

func (e *CancellationError) Unwrap() error { return e.Err }
