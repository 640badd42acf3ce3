package tool

import "fmt"

// InvocationError reports that a quality tool could not be executed or exited
// in a way that does not correspond to reporting failing files.
type InvocationError struct {
	Tool   string
	Reason string
	Stderr string
	Err    error
}

// Error renders the failure including captured standard error when present.
func (invocationError *InvocationError) Error() string {
	message := fmt.Sprintf("%s: %s", invocationError.Tool, invocationError.Reason)
	if invocationError.Err != nil {
		message = fmt.Sprintf("%s: %v", message, invocationError.Err)
	}
	if invocationError.Stderr != "" {
		message = fmt.Sprintf("%s\nstderr: %s", message, invocationError.Stderr)
	}
	return message
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (invocationError *InvocationError) Unwrap() error {
	return invocationError.Err
}
