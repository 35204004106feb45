package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed grant_sources.yaml
var defaultGrantSources []byte

// GrantSource is one portal the scraper reads grants from.
type GrantSource struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Type     string `yaml:"type"`
	Provider string `yaml:"provider"`
}

type grantSourceFile struct {
	Sources []GrantSource `yaml:"sources"`
}

// LoadGrantSources reads the source list from path, or the embedded default list when path is empty.
func LoadGrantSources(path string) ([]GrantSource, error) {
	data := defaultGrantSources
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read grant sources: %w", err)
		}
		data = b
	}
	return parseGrantSources(data)
}

func parseGrantSources(data []byte) ([]GrantSource, error) {
	var f grantSourceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse grant sources: %w", err)
	}
	if len(f.Sources) == 0 {
		return nil, errors.New("grant sources list is empty")
	}
	for i, s := range f.Sources {
		if s.Name == "" || s.URL == "" {
			return nil, fmt.Errorf("grant source %d is missing name or url", i)
		}
		if s.Type == "" {
			f.Sources[i].Type = "government"
		}
	}
	return f.Sources, nil
}
