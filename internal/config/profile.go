package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"go-image-forensics/internal/detect"
)

// Profile is a named set of detector parameters loaded from YAML, used
// by the command line tool to tune a run without rebuilding. Zero
// fields keep the battery defaults.
type Profile struct {
	Name             string  `yaml:"name"`
	TileSize         int     `yaml:"tile_size"`
	CloneTileSize    int     `yaml:"clone_tile_size"`
	CloneThreshold   float64 `yaml:"clone_threshold"`
	ELAQuality       int     `yaml:"ela_quality"`
	DCWindow         int     `yaml:"dc_window"`
	PeakPercentile   float64 `yaml:"peak_percentile"`
	NoiseZMultiplier float64 `yaml:"noise_z_multiplier"`
	NotchRadius      int     `yaml:"notch_radius"`
	EnableClone      bool    `yaml:"enable_clone"`
}

// LoadProfile parses a profile file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) validate() error {
	if p.TileSize < 0 || p.CloneTileSize < 0 || p.NotchRadius < 0 {
		return fmt.Errorf("profile %q: sizes must not be negative", p.Name)
	}
	if p.CloneThreshold < 0 || p.CloneThreshold > 1 {
		return fmt.Errorf("profile %q: clone_threshold must be in [0, 1]", p.Name)
	}
	if p.ELAQuality < 0 || p.ELAQuality > 100 {
		return fmt.Errorf("profile %q: ela_quality must be in [0, 100]", p.Name)
	}
	if p.PeakPercentile < 0 || p.PeakPercentile > 100 {
		return fmt.Errorf("profile %q: peak_percentile must be in [0, 100]", p.Name)
	}
	if p.DCWindow < 0 || p.DCWindow%2 == 0 && p.DCWindow != 0 {
		return fmt.Errorf("profile %q: dc_window must be odd", p.Name)
	}
	return nil
}

// Params overlays the profile onto the battery defaults.
func (p *Profile) Params() detect.Params {
	params := detect.DefaultParams()
	if p.TileSize > 0 {
		params.TileSize = p.TileSize
	}
	if p.CloneTileSize > 0 {
		params.CloneTileSize = p.CloneTileSize
	}
	if p.CloneThreshold > 0 {
		params.CloneThreshold = p.CloneThreshold
	}
	if p.ELAQuality > 0 {
		params.ELAQuality = p.ELAQuality
	}
	if p.DCWindow > 0 {
		params.DCWindow = p.DCWindow
	}
	if p.PeakPercentile > 0 {
		params.PeakPercentile = p.PeakPercentile
	}
	if p.NoiseZMultiplier > 0 {
		params.NoiseZMultiplier = p.NoiseZMultiplier
	}
	if p.NotchRadius > 0 {
		params.NotchRadius = p.NotchRadius
	}
	return params
}
