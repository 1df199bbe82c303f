package ciid

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the started_at, finished_at and indexed_at times the
// catalog records, so catalog rows are reproducible in tests. Capture times
// never come from a Clock; they are read from the photo's metadata.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator names runs. A run ID appears on every log line of a command
// and as the run row of catalog-writing commands, tying the two together.
type IDGenerator interface {
	New() string
}

// UUIDGenerator names runs with random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.NewString() }
