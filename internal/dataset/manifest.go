package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FeatureSpec describes one on-disk feature file: whitespace-separated
// float32 values in row-major order, with the declared shape.
type FeatureSpec struct {
	Key   string `toml:"key"`
	File  string `toml:"file"`
	Shape []int  `toml:"shape"`
}

// Manifest is the dataset descriptor, stored as dataset.toml in the
// dataset directory.
type Manifest struct {
	Name         string        `toml:"name"`
	NumNodes     int           `toml:"num_nodes"`
	EdgeFile     string        `toml:"edge_file"`
	NodeFeatures []FeatureSpec `toml:"node_features"`
	EdgeFeatures []FeatureSpec `toml:"edge_features"`
}

// ManifestFile is the expected manifest name inside a dataset directory.
const ManifestFile = "dataset.toml"

// ReadManifest parses and validates the manifest of a dataset directory.
func ReadManifest(dir string) (*Manifest, error) {
	var m Manifest
	path := filepath.Join(dir, ManifestFile)
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Name == "" {
		return fmt.Errorf("missing dataset name")
	}
	if m.NumNodes < 0 {
		return fmt.Errorf("negative node count %d", m.NumNodes)
	}
	if m.EdgeFile == "" {
		return fmt.Errorf("missing edge file")
	}
	for _, specs := range [][]FeatureSpec{m.NodeFeatures, m.EdgeFeatures} {
		for _, spec := range specs {
			if spec.Key == "" || spec.File == "" {
				return fmt.Errorf("feature spec needs both key and file: %+v", spec)
			}
			if len(spec.Shape) == 0 {
				return fmt.Errorf("feature %q needs a shape", spec.Key)
			}
		}
	}
	return nil
}
