package metadata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"ciid-go/internal/ciid"
)

// EXIF sub-IFD tags the exif package does not name.
const (
	tagOffsetTimeOriginal = 0x9011
	tagTimeZoneOffset     = 0x882a
)

// EXIF reads metadata natively from JPEG and TIFF-based RAW files (CR2, NEF,
// DNG, ...) without an external process. It always yields exactly one record
// or an error.
type EXIF struct {
	logger ciid.Logger
}

// NewEXIF creates a native EXIF source.
func NewEXIF(logger ciid.Logger) *EXIF {
	return &EXIF{logger: logger}
}

// Records decodes the EXIF block of the file at path.
func (e *EXIF) Records(_ context.Context, path string) ([]ciid.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	rec, err := e.readRecord(f)
	if err != nil {
		return nil, err
	}
	return []ciid.Record{rec}, nil
}

func (e *EXIF) readRecord(r io.Reader) (ciid.Record, error) {
	x, err := exif.Decode(r)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return ciid.Record{}, fmt.Errorf("decoding exif: %w", err)
	}

	original, err := stringTag(x, exif.DateTimeOriginal)
	if err != nil {
		return ciid.Record{}, fmt.Errorf("reading DateTimeOriginal: %w", err)
	}

	rec := ciid.Record{SubSecDateTimeOriginal: original}
	if subSec, err := stringTag(x, exif.SubSecTimeOriginal); err == nil && subSec != "" {
		rec.SubSecDateTimeOriginal = original + "." + subSec
	}

	if lat, lon, err := x.LatLong(); err == nil {
		rec.GPSLatitude, rec.GPSLongitude = &lat, &lon
	}

	offset, zone, err := readOffsetTags(x)
	if err != nil {
		// Offsets are optional; the resolver falls back to other evidence.
		e.logger.Debug("reading exif offset tags", "error", err)
	}
	rec.OffsetTimeOriginal = offset
	rec.TimeZone = zone

	return rec, nil
}

func stringTag(x *exif.Exif, name exif.FieldName) (string, error) {
	tag, err := x.Get(name)
	if err != nil {
		return "", err
	}
	s, err := tag.StringVal()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// readOffsetTags scans the EXIF sub-IFD for OffsetTimeOriginal and
// TimeZoneOffset, which exif.Exif does not expose by name.
func readOffsetTags(x *exif.Exif) (offset, zone string, err error) {
	ptr, err := x.Get(exif.ExifIFDPointer)
	if err != nil {
		return "", "", err
	}
	pos, err := ptr.Int64(0)
	if err != nil {
		return "", "", err
	}

	r := bytes.NewReader(x.Raw)
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("seeking to exif sub-ifd: %w", err)
	}
	dir, _, err := tiff.DecodeDir(r, x.Tiff.Order)
	if err != nil {
		return "", "", fmt.Errorf("decoding exif sub-ifd: %w", err)
	}

	for _, tag := range dir.Tags {
		switch tag.Id {
		case tagOffsetTimeOriginal:
			if s, err := tag.StringVal(); err == nil {
				offset = strings.TrimSpace(s)
			}
		case tagTimeZoneOffset:
			if hours, err := tag.Int(0); err == nil {
				zone = ciid.FormatOffset(hours * 3600)
			}
		}
	}
	return offset, zone, nil
}

var _ ciid.MetadataSource = (*EXIF)(nil)
