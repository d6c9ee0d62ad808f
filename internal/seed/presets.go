package seed

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

// Venue is a real-world place seeded pins point at.
type Venue struct {
	Name    string  `yaml:"name"`
	Address string  `yaml:"address"`
	Lat     float64 `yaml:"lat"`
	Lng     float64 `yaml:"lng"`
}

// City groups the venues of one area.
type City struct {
	Name   string  `yaml:"name"`
	Venues []Venue `yaml:"venues"`
}

// Theme is a list template.
type Theme struct {
	Name  string `yaml:"name"`
	Emoji string `yaml:"emoji"`
	Color string `yaml:"color"`
}

// Presets is the parsed presets file.
type Presets struct {
	Cities map[string]City `yaml:"cities"`
	Themes []Theme         `yaml:"themes"`
}

// LoadPresets parses the embedded presets.
func LoadPresets() (*Presets, error) {
	return parsePresets(presetsYAML)
}

func parsePresets(raw []byte) (*Presets, error) {
	var p Presets
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}
	if len(p.Cities) == 0 {
		return nil, fmt.Errorf("presets define no cities")
	}
	if len(p.Themes) == 0 {
		return nil, fmt.Errorf("presets define no list themes")
	}
	for key, city := range p.Cities {
		if len(city.Venues) == 0 {
			return nil, fmt.Errorf("city %q has no venues", key)
		}
	}
	return &p, nil
}

// CityKeys returns the available city keys in sorted order.
func (p *Presets) CityKeys() []string {
	keys := make([]string, 0, len(p.Cities))
	for k := range p.Cities {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
