package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ciid-go/internal/ciid"
)

// FakeMetadataSource returns canned records per path. Safe for concurrent use.
type FakeMetadataSource struct {
	mu      sync.Mutex
	records map[string][]ciid.Record
	errs    map[string]error
	calls   map[string]int
}

// NewFakeMetadataSource creates an empty FakeMetadataSource.
// Paths without records yield an empty slice.
func NewFakeMetadataSource() *FakeMetadataSource {
	return &FakeMetadataSource{
		records: make(map[string][]ciid.Record),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

// Set replaces the records returned for path.
func (f *FakeMetadataSource) Set(path string, records ...ciid.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[path] = records
}

// SetDateTime is shorthand for a single record with only SubSecDateTimeOriginal.
func (f *FakeMetadataSource) SetDateTime(path, dateTime string) {
	f.Set(path, ciid.Record{SubSecDateTimeOriginal: dateTime})
}

// Fail makes Records return err for path.
func (f *FakeMetadataSource) Fail(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[path] = err
}

// Calls returns how many times Records was called for path.
func (f *FakeMetadataSource) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *FakeMetadataSource) Records(_ context.Context, path string) ([]ciid.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[path]++
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	return f.records[path], nil
}

// FakeZoneLocator maps every coordinate to the same location.
type FakeZoneLocator struct {
	Location *time.Location
	Err      error
	Calls    int
}

func (f *FakeZoneLocator) Locate(lat, lon float64) (*time.Location, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Location == nil {
		return nil, fmt.Errorf("no zone at %f,%f", lat, lon)
	}
	return f.Location, nil
}

var (
	_ ciid.MetadataSource = (*FakeMetadataSource)(nil)
	_ ciid.ZoneLocator    = (*FakeZoneLocator)(nil)
)
