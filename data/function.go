package data

// Param - a named and typed entry of a contract function signature
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FunctionDescriptor - the flat form of a contract function, as rendered by the front-ends
type FunctionDescriptor struct {
	Name    string  `json:"name"`
	Doc     string  `json:"doc"`
	Inputs  []Param `json:"inputs"`
	Outputs []Param `json:"outputs"`
}

// HasInputs - returns true if the function takes at least one argument
func (fd *FunctionDescriptor) HasInputs() bool {
	return len(fd.Inputs) > 0
}

// CallResult - the outcome of a read or a simulation
type CallResult struct {
	Function string      `json:"function"`
	Value    interface{} `json:"value"`
	Raw      string      `json:"raw"`
}

// InvokeResult - the outcome of a submitted invocation
type InvokeResult struct {
	Function string `json:"function"`
	Hash     string `json:"hash"`
	Status   string `json:"status"`
	Ledger   uint32 `json:"ledger,omitempty"`
}
