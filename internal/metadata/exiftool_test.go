package metadata

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"ciid-go/internal/ciid"
)

func TestParseExifToolJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []ciid.Record
		wantErr bool
	}{
		{
			name:  "empty output",
			input: "",
			want:  nil,
		},
		{
			name:  "date with offset fields",
			input: `[{"SourceFile":"a.CR2","SubSecDateTimeOriginal":"2017:01:05 13:52:55.96","OffsetTimeOriginal":"+02:00","TimeZone":"+01:00"}]`,
			want: []ciid.Record{{
				SubSecDateTimeOriginal: "2017:01:05 13:52:55.96",
				OffsetTimeOriginal:     "+02:00",
				TimeZone:               "+01:00",
			}},
		},
		{
			name:  "missing tags",
			input: `[{"SourceFile":"a.jpg"}]`,
			want:  []ciid.Record{{}},
		},
		{
			name:  "two records",
			input: `[{"SubSecDateTimeOriginal":"2017:01:05 13:52:55"},{"SubSecDateTimeOriginal":"2018:01:05 13:52:55"}]`,
			want: []ciid.Record{
				{SubSecDateTimeOriginal: "2017:01:05 13:52:55"},
				{SubSecDateTimeOriginal: "2018:01:05 13:52:55"},
			},
		},
		{
			name:    "not json",
			input:   "Error: file not found",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExifToolJSON([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("parseExifToolJSON() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseExifToolJSON() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].SubSecDateTimeOriginal != tt.want[i].SubSecDateTimeOriginal ||
					got[i].OffsetTimeOriginal != tt.want[i].OffsetTimeOriginal ||
					got[i].TimeZone != tt.want[i].TimeZone {
					t.Errorf("record %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseExifToolJSON_GPS(t *testing.T) {
	got, err := parseExifToolJSON([]byte(`[{"SubSecDateTimeOriginal":"2017:01:05 13:52:55","GPSLatitude":52.52,"GPSLongitude":"-13.405"}]`))
	if err != nil {
		t.Fatalf("parseExifToolJSON() error = %v", err)
	}
	if got[0].GPSLatitude == nil || *got[0].GPSLatitude != 52.52 {
		t.Errorf("GPSLatitude = %v, want 52.52", got[0].GPSLatitude)
	}
	if got[0].GPSLongitude == nil || *got[0].GPSLongitude != -13.405 {
		t.Errorf("GPSLongitude = %v, want -13.405", got[0].GPSLongitude)
	}

	if _, err := parseExifToolJSON([]byte(`[{"GPSLatitude":"north"}]`)); err == nil {
		t.Error("parseExifToolJSON() expected error for non-numeric latitude")
	}
}

// fakeExifTool writes a shell script standing in for exiftool.
func fakeExifTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake exiftool needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "exiftool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755); err != nil {
		t.Fatalf("writing fake exiftool: %v", err)
	}
	return path
}

func TestExifTool_Records(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes output", func(t *testing.T) {
		bin := fakeExifTool(t, `echo '[{"SourceFile":"x","SubSecDateTimeOriginal":"2009:02:13 23:31:30.123"}]'`)
		got, err := NewExifTool(bin, ciid.NewNopLogger()).Records(ctx, "x.jpg")
		if err != nil {
			t.Fatalf("Records() error = %v", err)
		}
		if len(got) != 1 || got[0].SubSecDateTimeOriginal != "2009:02:13 23:31:30.123" {
			t.Errorf("Records() = %+v", got)
		}
	})

	t.Run("passes requested tags and path", func(t *testing.T) {
		bin := fakeExifTool(t, `echo "$@" >&2; exit 0`)
		_, err := NewExifTool(bin, ciid.NewNopLogger()).Records(ctx, "/photos/a.CR2")
		if err == nil {
			t.Fatal("Records() expected error for stderr output")
		}
		for _, want := range []string{"-json", "-SubSecDateTimeOriginal", "-OffsetTimeOriginal", "-TimeZone", "/photos/a.CR2"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q does not mention argument %q", err, want)
			}
		}
	})

	t.Run("non-zero exit", func(t *testing.T) {
		bin := fakeExifTool(t, `exit 3`)
		_, err := NewExifTool(bin, ciid.NewNopLogger()).Records(ctx, "x.jpg")
		if err == nil || !strings.Contains(err.Error(), "code 3") {
			t.Errorf("Records() error = %v, want exit code 3", err)
		}
	})

	t.Run("non-zero exit with stderr", func(t *testing.T) {
		bin := fakeExifTool(t, `echo 'File not found' >&2; exit 1`)
		_, err := NewExifTool(bin, ciid.NewNopLogger()).Records(ctx, "x.jpg")
		if err == nil || !strings.Contains(err.Error(), "File not found") {
			t.Errorf("Records() error = %v, want stderr text", err)
		}
	})

	t.Run("invalid utf-8 output", func(t *testing.T) {
		bin := fakeExifTool(t, `printf '\377\376'`)
		_, err := NewExifTool(bin, ciid.NewNopLogger()).Records(ctx, "x.jpg")
		if err == nil || !strings.Contains(err.Error(), "UTF-8") {
			t.Errorf("Records() error = %v, want UTF-8 error", err)
		}
	})

	t.Run("missing binary", func(t *testing.T) {
		bin := filepath.Join(t.TempDir(), "no-such-exiftool")
		if _, err := NewExifTool(bin, ciid.NewNopLogger()).Records(ctx, "x.jpg"); err == nil {
			t.Error("Records() expected error for missing binary")
		}
	})
}
