package metadata

import (
	"fmt"
	"time"

	"github.com/ringsaturn/tzf"

	"ciid-go/internal/ciid"
)

// TZF locates the time zone of a GPS position using the tzf polygon data.
type TZF struct {
	finder tzf.F
}

// NewTZF loads the default tzf finder. Loading takes a noticeable moment, so
// it is only done when zone inference is enabled.
func NewTZF() (*TZF, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("loading time zone finder: %w", err)
	}
	return &TZF{finder: finder}, nil
}

// Locate returns the IANA time zone containing lat/lon.
func (z *TZF) Locate(lat, lon float64) (*time.Location, error) {
	name := z.finder.GetTimezoneName(lon, lat)
	if name == "" {
		return nil, fmt.Errorf("no time zone at %f,%f", lat, lon)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading location %s: %w", name, err)
	}
	return loc, nil
}

var _ ciid.ZoneLocator = (*TZF)(nil)
