package invoke

import "fmt"

// InvocationError - a read, simulation or invocation of a contract function failed
type InvocationError struct {
	Function string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("calling %q: %v", e.Function, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
