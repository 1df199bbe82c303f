package testutil

import (
	"fmt"
	"sync"
	"time"

	"ciid-go/internal/ciid"
)

// CatalogEpoch is the instant FixedClock starts at.
var CatalogEpoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// StubClock is a manually driven ciid.Clock. Safe for concurrent use.
type StubClock struct {
	mu   sync.Mutex
	now  time.Time
	tick time.Duration
}

// NewStubClock creates a StubClock reading t until it is advanced.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to CatalogEpoch.
func FixedClock() *StubClock {
	return NewStubClock(CatalogEpoch)
}

// Ticking makes every Now call move the clock forward by d after reading it,
// so consecutive catalog writes get distinct timestamps.
func (c *StubClock) Ticking(d time.Duration) *StubClock {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = d
	return c
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.tick)
	return now
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// StubIDGenerator hands out "<prefix>-1", "<prefix>-2" and so on.
// Safe for concurrent use.
type StubIDGenerator struct {
	mu     sync.Mutex
	prefix string
	issued []string
}

// NewStubIDGenerator returns a generator of "id-N" run IDs.
func NewStubIDGenerator() *StubIDGenerator {
	return NewPrefixedIDGenerator("id")
}

// NewPrefixedIDGenerator returns a generator of "<prefix>-N" run IDs.
func NewPrefixedIDGenerator(prefix string) *StubIDGenerator {
	return &StubIDGenerator{prefix: prefix}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("%s-%d", g.prefix, len(g.issued)+1)
	g.issued = append(g.issued, id)
	return id
}

// Issued returns every ID handed out so far, oldest first.
func (g *StubIDGenerator) Issued() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.issued...)
}

var (
	_ ciid.Clock       = (*StubClock)(nil)
	_ ciid.IDGenerator = (*StubIDGenerator)(nil)
)
