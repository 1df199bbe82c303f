// Package metadata provides ciid.MetadataSource implementations that read
// capture timestamps, plus a GPS based time zone locator.
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"unicode/utf8"

	"ciid-go/internal/ciid"
)

// exifToolTags are the tags requested from exiftool. The "#" suffix disables
// print conversion for that tag only, so GPS values come back as decimal degrees.
var exifToolTags = []string{
	"-SubSecDateTimeOriginal",
	"-OffsetTimeOriginal",
	"-TimeZone",
	"-GPSLatitude#",
	"-GPSLongitude#",
}

// ExifTool reads metadata by running the exiftool command once per file.
type ExifTool struct {
	path   string
	logger ciid.Logger
}

// NewExifTool creates an ExifTool source running the binary at path
// (looked up in $PATH when it has no separator).
func NewExifTool(path string, logger ciid.Logger) *ExifTool {
	if path == "" {
		path = "exiftool"
	}
	return &ExifTool{path: path, logger: logger}
}

// Records runs exiftool for path and decodes its JSON output.
func (e *ExifTool) Records(ctx context.Context, path string) ([]ciid.Record, error) {
	args := append([]string{"-json"}, exifToolTags...)
	args = append(args, "--", path)

	stdout, err := e.run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("running exiftool: %w", err)
	}

	records, err := parseExifToolJSON(stdout)
	if err != nil {
		return nil, fmt.Errorf("parsing exiftool output: %w", err)
	}

	e.logger.Debug("exiftool records", "path", path, "count", len(records))
	return records, nil
}

// run executes exiftool. Any output on stderr is treated as a failure, even
// with a zero exit status.
func (e *ExifTool) run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return nil, fmt.Errorf("failed executing command: %w", runErr)
	}

	if !utf8.Valid(stderr.Bytes()) {
		return nil, errors.New("stderr is not valid UTF-8")
	}
	errText := strings.TrimSpace(stderr.String())

	var status string
	if exitErr != nil {
		if exitErr.ExitCode() < 0 {
			status = "process was terminated by signal"
		} else {
			status = fmt.Sprintf("process exited with code %d", exitErr.ExitCode())
		}
	}

	switch {
	case status != "" && errText != "":
		return nil, fmt.Errorf("%s: stderr: %s", status, errText)
	case status != "":
		return nil, errors.New(status)
	case errText != "":
		return nil, fmt.Errorf("stderr: %s", errText)
	}

	if !utf8.Valid(stdout.Bytes()) {
		return nil, errors.New("stdout is not valid UTF-8")
	}
	return stdout.Bytes(), nil
}

// parseExifToolJSON decodes exiftool's -json output: an array with one object
// per file. Values are read loosely because exiftool emits numbers for some
// otherwise string-like tags.
func parseExifToolJSON(data []byte) ([]ciid.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var raw []map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	records := make([]ciid.Record, 0, len(raw))
	for _, obj := range raw {
		rec := ciid.Record{
			SubSecDateTimeOriginal: stringField(obj, "SubSecDateTimeOriginal"),
			OffsetTimeOriginal:     stringField(obj, "OffsetTimeOriginal"),
			TimeZone:               stringField(obj, "TimeZone"),
		}

		lat, err := floatField(obj, "GPSLatitude")
		if err != nil {
			return nil, err
		}
		lon, err := floatField(obj, "GPSLongitude")
		if err != nil {
			return nil, err
		}
		rec.GPSLatitude, rec.GPSLongitude = lat, lon

		records = append(records, rec)
	}
	return records, nil
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func floatField(obj map[string]any, key string) (*float64, error) {
	var s string
	switch v := obj[key].(type) {
	case nil:
		return nil, nil
	case json.Number:
		s = v.String()
	case string:
		s = v
	default:
		return nil, fmt.Errorf("%s has unexpected type %T", key, v)
	}
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing %s %q: %w", key, s, err)
	}
	return &f, nil
}

var _ ciid.MetadataSource = (*ExifTool)(nil)
