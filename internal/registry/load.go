package registry

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/regions.yaml
var defaultDataset []byte

type dataset struct {
	Version string       `yaml:"version"`
	Regions []RegionSpec `yaml:"regions"`
}

// Load reads the dataset at path, or the bundled dataset when path is empty.
// Any error must abort startup: the engine never runs on partial data.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Parse(defaultDataset)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	r, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes a YAML dataset. Unknown keys are rejected.
func Parse(data []byte) (*Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var ds dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromSpecs(ds.Version, ds.Regions...)
}
