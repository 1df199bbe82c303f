package ciid

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Record is one metadata record for a file, holding exactly the fields needed
// to resolve the capture timestamp.
type Record struct {
	// SubSecDateTimeOriginal is the original capture date-time, optionally with
	// a fractional second and a UTC offset, e.g. "2017:01:05 13:52:55.96+02:00".
	SubSecDateTimeOriginal string

	// OffsetTimeOriginal is the EXIF offset of DateTimeOriginal, e.g. "+02:00".
	OffsetTimeOriginal string

	// TimeZone is a maker-specific time zone, e.g. "+02:00".
	TimeZone string

	// GPSLatitude and GPSLongitude are decimal degrees, nil if absent.
	GPSLatitude  *float64
	GPSLongitude *float64
}

// MetadataSource returns the metadata records for a file.
// Implementations shell out to exiftool or read EXIF natively.
type MetadataSource interface {
	Records(ctx context.Context, path string) ([]Record, error)
}

// ZoneLocator maps GPS coordinates to a time zone.
type ZoneLocator interface {
	Locate(lat, lon float64) (*time.Location, error)
}

const (
	dateTimeLayout = "2006:01:02 15:04:05"
	offsetLayout   = "Z07:00"
)

// Layouts accepted for a date-time carrying its own offset. Fractional
// seconds after the seconds field are accepted by time.Parse without being
// spelled out in the layout.
var offsetDateTimeLayouts = []string{
	dateTimeLayout + " " + offsetLayout,
	dateTimeLayout + offsetLayout,
}

// Resolver derives capture timestamps from metadata records.
type Resolver struct {
	source  MetadataSource
	locator ZoneLocator
	logger  Logger
}

// NewResolver creates a Resolver reading records from source.
// locator may be nil, in which case GPS coordinates are never consulted.
func NewResolver(source MetadataSource, locator ZoneLocator, logger Logger) *Resolver {
	return &Resolver{
		source:  source,
		locator: locator,
		logger:  logger,
	}
}

// Resolve fetches the metadata for path and resolves its capture timestamp.
// The source must return exactly one record.
func (r *Resolver) Resolve(ctx context.Context, path string) (time.Time, error) {
	records, err := r.source.Records(ctx, path)
	if err != nil {
		return time.Time{}, fmt.Errorf("reading metadata: %w", err)
	}

	switch len(records) {
	case 0:
		return time.Time{}, ErrNoRecord
	case 1:
	default:
		return time.Time{}, fmt.Errorf("%w: got %d", ErrAmbiguousRecords, len(records))
	}

	return r.ResolveRecord(records[0])
}

// ResolveRecord resolves the capture timestamp of a single record.
//
// A date-time with an explicit offset is returned as is. Otherwise the naive
// wall-clock value is kept and an offset attached, taken from
// OffsetTimeOriginal, then TimeZone, then the GPS position (when a locator is
// configured), then +00:00.
func (r *Resolver) ResolveRecord(rec Record) (time.Time, error) {
	raw := strings.TrimSpace(rec.SubSecDateTimeOriginal)
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing SubSecDateTimeOriginal")
	}

	for _, layout := range offsetDateTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return checkEpoch(normalizeZone(ts))
		}
	}

	naive, err := time.Parse(dateTimeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date time %q: %w", raw, err)
	}

	zone, err := r.resolveZone(rec, naive)
	if err != nil {
		return time.Time{}, err
	}

	ts := time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(), zone)
	return checkEpoch(ts)
}

// resolveZone picks the offset for a naive wall-clock value.
func (r *Resolver) resolveZone(rec Record, naive time.Time) (*time.Location, error) {
	if s := strings.TrimSpace(rec.OffsetTimeOriginal); s != "" {
		return ParseOffset(s)
	}
	if s := strings.TrimSpace(rec.TimeZone); s != "" {
		return ParseOffset(s)
	}

	if r.locator != nil && rec.GPSLatitude != nil && rec.GPSLongitude != nil {
		loc, err := r.locator.Locate(*rec.GPSLatitude, *rec.GPSLongitude)
		if err != nil {
			r.logger.Warn("locating time zone", "lat", *rec.GPSLatitude, "lon", *rec.GPSLongitude, "error", err)
		} else {
			// The offset in effect at that wall-clock time, including DST.
			local := time.Date(naive.Year(), naive.Month(), naive.Day(),
				naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(), loc)
			_, offset := local.Zone()
			return fixedZone(offset), nil
		}
	}

	return time.UTC, nil
}

// ParseOffset parses a UTC offset of the form ±HH:MM (or "Z") into a fixed zone.
func ParseOffset(s string) (*time.Location, error) {
	t, err := time.Parse(offsetLayout, s)
	if err != nil {
		return nil, fmt.Errorf("parsing utc offset %q: %w", s, err)
	}
	_, offset := t.Zone()
	return fixedZone(offset), nil
}

// normalizeZone replaces whatever zone time.Parse attached with a fixed zone
// carrying the same offset.
func normalizeZone(t time.Time) time.Time {
	_, offset := t.Zone()
	return t.In(fixedZone(offset))
}

func fixedZone(offset int) *time.Location {
	if offset == 0 {
		return time.UTC
	}
	return time.FixedZone(FormatOffset(offset), offset)
}

// FormatOffset renders an offset in seconds as ±HH:MM.
func FormatOffset(offset int) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("%c%02d:%02d", sign, offset/3600, offset%3600/60)
}

func checkEpoch(t time.Time) (time.Time, error) {
	if t.UnixMilli() < 0 {
		return time.Time{}, fmt.Errorf("%w: %s", ErrBeforeEpoch, t.Format(time.RFC3339Nano))
	}
	return t, nil
}
