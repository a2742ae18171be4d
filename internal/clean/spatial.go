package clean

import (
	"github.com/paleosieve/paleosieve-cli/internal/table"
)

// SpatialSpec configures coordinate validation.
type SpatialSpec struct {
	Lat string
	Lng string
	// FlagColumn names the derived flag; "" means "invalid_coords".
	FlagColumn string
}

// SpatialResult is the validator's report.
type SpatialResult struct {
	// Invalid counts records flagged out of range or placeholder (0, 0).
	Invalid int
	// ZeroZero counts the subset of invalid records at exactly (0, 0).
	ZeroZero int
	// MissingPairs counts records lacking one or both coordinates; they
	// are reported, not flagged invalid.
	MissingPairs int
}

// ValidateCoordinates flags records whose latitude is outside [-90, 90],
// longitude outside [-180, 180], or whose pair is exactly (0, 0), a
// common placeholder in occurrence exports. Advisory only.
func ValidateCoordinates(t *table.Table, spec SpatialSpec) (*table.Table, *SpatialResult, error) {
	flagCol := spec.FlagColumn
	if flagCol == "" {
		flagCol = "invalid_coords"
	}
	res := &SpatialResult{}
	flags := make([]bool, t.Len())
	for row := 0; row < t.Len(); row++ {
		lat, latOK, err := t.Float(spec.Lat, row)
		if err != nil {
			return nil, nil, err
		}
		lng, lngOK, err := t.Float(spec.Lng, row)
		if err != nil {
			return nil, nil, err
		}
		if !latOK || !lngOK {
			res.MissingPairs++
			continue
		}
		switch {
		case lat < -90 || lat > 90 || lng < -180 || lng > 180:
			flags[row] = true
			res.Invalid++
		case lat == 0 && lng == 0:
			flags[row] = true
			res.Invalid++
			res.ZeroZero++
		}
	}
	out := t.Clone()
	if err := out.AddFlag(flagCol, flags); err != nil {
		return nil, nil, err
	}
	return out, res, nil
}
