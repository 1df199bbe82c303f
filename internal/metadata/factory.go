package metadata

import (
	"fmt"

	"ciid-go/internal/ciid"
	"ciid-go/internal/config"
)

// NewSourceFromConfig creates a MetadataSource based on the configured source.
func NewSourceFromConfig(cfg config.MetadataConfig, logger ciid.Logger) (ciid.MetadataSource, error) {
	switch cfg.Source {
	case "", "exiftool":
		return NewExifTool(cfg.ExifToolPath, logger), nil
	case "exif":
		return NewEXIF(logger), nil
	default:
		return nil, fmt.Errorf("unknown metadata source: %s", cfg.Source)
	}
}

// NewLocatorFromConfig returns a ZoneLocator when GPS zone inference is
// enabled, and nil otherwise.
func NewLocatorFromConfig(cfg config.MetadataConfig) (ciid.ZoneLocator, error) {
	if !cfg.InferZoneFromGPS {
		return nil, nil
	}
	locator, err := NewTZF()
	if err != nil {
		return nil, err
	}
	return locator, nil
}
