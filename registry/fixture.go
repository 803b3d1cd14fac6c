package registry

import (
	"fmt"
	"os"

	"github.com/dominionforge/dominion-core/model"
	"gopkg.in/yaml.v3"
)

// LoadBundleYAML reads a model.DataBundle literal from a YAML document.
// This stands in for "a DataBundle already produced by the external INI
// parser" (spec.md Section 6) — INI parsing itself is explicitly out of
// scope (spec.md Section 1); cmd/dominion-core loads its bundle through
// it, while package tests build their bundles as Go literals.
func LoadBundleYAML(path string) (model.DataBundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.DataBundle{}, fmt.Errorf("read bundle %s: %w", path, err)
	}
	var bundle model.DataBundle
	if err := yaml.Unmarshal(raw, &bundle); err != nil {
		return model.DataBundle{}, fmt.Errorf("unmarshal bundle %s: %w", path, err)
	}
	return bundle, nil
}

// LoadMapYAML reads a model.MapData literal from a YAML document.
func LoadMapYAML(path string) (model.MapData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.MapData{}, fmt.Errorf("read map %s: %w", path, err)
	}
	var m model.MapData
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return model.MapData{}, fmt.Errorf("unmarshal map %s: %w", path, err)
	}
	return m, nil
}
