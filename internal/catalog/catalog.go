// Package catalog loads the seed set of cameras and incidents.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"camshare/internal/model"
)

//go:embed seed.yaml
var defaultSeed []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

type Catalog struct {
	Cameras   []model.Camera   `yaml:"cameras"`
	Incidents []model.Incident `yaml:"incidents"`
}

// Default returns the embedded demo catalog.
func Default() (*Catalog, error) {
	return Parse(defaultSeed)
}

// Load reads a YAML catalog from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog. Missing status and privacy
// values default to ACTIVE and NONE.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Cameras))
	for i := range c.Cameras {
		cam := &c.Cameras[i]
		if cam.ID == "" {
			return nil, fmt.Errorf("%w: camera #%d has no id", ErrInvalidCatalog, i+1)
		}
		if _, dup := seen[cam.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate camera id %s", ErrInvalidCatalog, cam.ID)
		}
		seen[cam.ID] = struct{}{}

		if cam.Status == "" {
			cam.Status = model.StatusActive
		}
		if !cam.Status.Valid() {
			return nil, fmt.Errorf("%w: camera %s has unknown status %q", ErrInvalidCatalog, cam.ID, cam.Status)
		}
		if cam.PrivacySetting == "" {
			cam.PrivacySetting = model.PrivacyNone
		}
		if !cam.PrivacySetting.Valid() {
			return nil, fmt.Errorf("%w: camera %s has unknown privacy setting %q", ErrInvalidCatalog, cam.ID, cam.PrivacySetting)
		}
	}

	for i, inc := range c.Incidents {
		if inc.ID == "" {
			return nil, fmt.Errorf("%w: incident #%d has no id", ErrInvalidCatalog, i+1)
		}
	}
	return &c, nil
}
