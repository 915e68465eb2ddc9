// Package geo reads the geographic feature source. Only the "name" property
// of each feature is consumed.
package geo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/paulmach/orb/geojson"
)

var ErrNoFeatures = errors.New("geo: no named features")

type Feature struct {
	Name string `json:"name"`
}

// Load parses a GeoJSON FeatureCollection. Features without a name are
// skipped; a collection with no named feature is an error.
func Load(r io.Reader) ([]Feature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("geo: read: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("geo: decode feature collection: %w", err)
	}

	features := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		name := strings.TrimSpace(f.Properties.MustString("name", ""))
		if name == "" {
			continue
		}
		features = append(features, Feature{Name: name})
	}
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}
	return features, nil
}

func LoadFile(path string) ([]Feature, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Load(file)
}
