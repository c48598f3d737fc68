package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FeedOverrides replaces or extends feed registry locations.
//
//	feeds:
//	  technology: https://example.com/tech.xml
//	cities:
//	  pune: https://example.com/pune.xml
type FeedOverrides struct {
	Feeds  map[string]string `yaml:"feeds"`
	Cities map[string]string `yaml:"cities"`
}

// LoadFeedOverrides reads a YAML feed override file.
func LoadFeedOverrides(path string) (FeedOverrides, error) {
	var o FeedOverrides
	data, err := os.ReadFile(path)
	if err != nil {
		return o, fmt.Errorf("read feeds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &o); err != nil {
		return o, fmt.Errorf("parse feeds file %s: %w", path, err)
	}
	return o, nil
}
