package app

import (
	"testing"

	"ciid-go/internal/ciid"
)

func TestNewOperation(t *testing.T) {
	for _, command := range []string{"identify", "index", "dupes"} {
		t.Run(command, func(t *testing.T) {
			op := NewOperation(command)

			if op.Command != command {
				t.Errorf("Command = %q, want %q", op.Command, command)
			}
			if op.Status != ciid.RunSuccess {
				t.Errorf("Status = %q, want %q", op.Status, ciid.RunSuccess)
			}
			if op.RunID != "" {
				t.Errorf("RunID = %q, want empty", op.RunID)
			}
		})
	}
}

func TestOperation_Persisted(t *testing.T) {
	tests := []struct {
		name  string
		runID string
		want  bool
	}{
		{name: "not persisted without run ID", runID: "", want: false},
		{name: "persisted with run ID", runID: "5f0c6f1e-6c7e-4d4c-9f36-2f1f4d0d7a11", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &Operation{RunID: tt.runID}
			if got := op.Persisted(); got != tt.want {
				t.Errorf("Persisted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOperation_Fail(t *testing.T) {
	op := NewOperation("index")
	op.Fail()
	op.Fail()

	if op.Failed != 2 {
		t.Errorf("Failed = %d, want 2", op.Failed)
	}
	if op.Status != ciid.RunError {
		t.Errorf("Status = %q, want %q", op.Status, ciid.RunError)
	}
}
