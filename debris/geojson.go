package debris

import (
	"errors"
	"fmt"
	"io"
	"os"

	geojson "github.com/paulmach/go.geojson"
)

// ErrNoRecords is returned when a collection holds no usable point features.
var ErrNoRecords = errors.New("debris: no records")

// LoadGeoJSONFile reads a FeatureCollection from path.
func LoadGeoJSONFile(path string) ([]Datum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadGeoJSON(f)
}

// ReadGeoJSON decodes a FeatureCollection from r.
func ReadGeoJSON(r io.Reader) ([]Datum, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return LoadGeoJSON(data)
}

// LoadGeoJSON converts a FeatureCollection of points into records.
//
// Recognised properties: id, name, density, severity and the composition
// shares plastic, fishing_gear, glass, metal, other. Features that are not
// points are skipped; a point without a density or with an unknown severity
// is an error.
func LoadGeoJSON(data []byte) ([]Datum, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("debris: decode geojson: %w", err)
	}

	out := make([]Datum, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil || !f.Geometry.IsPoint() || len(f.Geometry.Point) < 2 {
			continue
		}
		d, err := featureDatum(f)
		if err != nil {
			return nil, fmt.Errorf("debris: feature %d: %w", i, err)
		}
		if d.ID == "" {
			d.ID = fmt.Sprintf("%d", i)
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, ErrNoRecords
	}
	return out, nil
}

func featureDatum(f *geojson.Feature) (Datum, error) {
	density, err := f.PropertyFloat64("density")
	if err != nil {
		return Datum{}, err
	}
	sevName, err := f.PropertyString("severity")
	if err != nil {
		return Datum{}, err
	}
	sev, err := ParseSeverity(sevName)
	if err != nil {
		return Datum{}, err
	}

	d := Datum{
		Name:     f.PropertyMustString("name", ""),
		Density:  density,
		Severity: sev,
		Composition: Composition{
			Plastic:     f.PropertyMustFloat64("plastic", 0),
			FishingGear: f.PropertyMustFloat64("fishing_gear", 0),
			Glass:       f.PropertyMustFloat64("glass", 0),
			Metal:       f.PropertyMustFloat64("metal", 0),
			Other:       f.PropertyMustFloat64("other", 0),
		},
		Longitude: f.Geometry.Point[0],
		Latitude:  f.Geometry.Point[1],
	}

	switch id := f.ID.(type) {
	case string:
		d.ID = id
	case float64:
		d.ID = fmt.Sprintf("%g", id)
	}
	if d.ID == "" {
		d.ID = f.PropertyMustString("id", "")
	}
	return d, nil
}
