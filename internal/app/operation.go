package app

import "ciid-go/internal/ciid"

// Operation tracks one CLI command run. Only catalog-mutating commands
// persist it, as a run row whose ID is assigned by the catalog.
type Operation struct {
	RunID   string
	Command string
	Status  string
	Failed  int
}

// NewOperation creates a new in-memory operation.
func NewOperation(command string) *Operation {
	return &Operation{
		Command: command,
		Status:  ciid.RunSuccess,
	}
}

// Persisted returns true if this operation has been recorded in the catalog.
func (op *Operation) Persisted() bool {
	return op.RunID != ""
}

// Fail records a failed file; the operation finishes with an error status.
func (op *Operation) Fail() {
	op.Failed++
	op.Status = ciid.RunError
}
