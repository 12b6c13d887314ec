package spec

import "fmt"

// FetchError - the contract spec could not be retrieved: the RPC call failed, the contract
// code is absent or the bytecode is not a valid contract image
type FetchError struct {
	ContractID string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching spec of contract %q: %v", e.ContractID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NormalizeError - the raw spec is structurally malformed
type NormalizeError struct {
	Function string
	Err      error
}

func (e *NormalizeError) Error() string {
	if e.Function == "" {
		return fmt.Sprintf("normalizing spec: %v", e.Err)
	}
	return fmt.Sprintf("normalizing spec function %q: %v", e.Function, e.Err)
}

func (e *NormalizeError) Unwrap() error {
	return e.Err
}
