package ciid

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRecord is returned when the metadata source has no record for a file.
	ErrNoRecord = errors.New("no metadata record")

	// ErrAmbiguousRecords is returned when the metadata source yields more than one record.
	ErrAmbiguousRecords = errors.New("more than one metadata record")

	// ErrBeforeEpoch is returned for capture times earlier than 1970-01-01T00:00:00Z.
	ErrBeforeEpoch = errors.New("timestamp before unix epoch")

	// ErrNullBuffer is returned when a RAW decoder reports no sensor buffer after unpacking.
	ErrNullBuffer = errors.New("unexpected null sensor buffer")

	// ErrBufferSize is returned when a sensor buffer does not span pitch × rows bytes.
	ErrBufferSize = errors.New("sensor buffer size mismatch")

	// ErrUnsupportedKind is returned when no decoder is configured for a file kind.
	ErrUnsupportedKind = errors.New("unsupported file kind")
)

// Stage names the derivation step that failed.
type Stage string

const (
	StageResolve     Stage = "resolve"
	StageFingerprint Stage = "fingerprint"
	StageEncode      Stage = "encode"
)

// StageError wraps the first failure of a derivation with the stage and file involved.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	var op string
	switch e.Stage {
	case StageResolve:
		op = "resolving capture timestamp"
	case StageFingerprint:
		op = "fingerprinting pixel data"
	case StageEncode:
		op = "encoding identifier"
	default:
		op = string(e.Stage)
	}
	return fmt.Sprintf("%s for %s: %v", op, e.Path, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
