package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of source definitions
type Loader struct {
	path string
}

// NewLoader creates a new source configuration loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads the sources file and returns validated source definitions.
// A missing file is not an error; it yields an empty list.
func (l *Loader) Load() ([]Source, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	seen := make(map[string]bool, len(file.Sources))
	for i, src := range file.Sources {
		if err := l.validate(src); err != nil {
			return nil, fmt.Errorf("invalid source %q (entry %d): %w", src.Name, i+1, err)
		}
		if seen[src.Name] {
			return nil, fmt.Errorf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = true
	}

	return file.Sources, nil
}

func (l *Loader) validate(src Source) error {
	if src.Name == "" {
		return fmt.Errorf("source name is required")
	}

	switch src.Type {
	case TypeRSS:
		if src.URL == "" {
			return fmt.Errorf("rss source requires a url")
		}
	case TypeTwitter:
		if src.URL == "" {
			return fmt.Errorf("twitter source requires a username or feed url")
		}
	case TypeSearch:
		if src.Query == "" {
			return fmt.Errorf("search source requires a query")
		}
	default:
		return fmt.Errorf("unknown source type %q", src.Type)
	}

	return nil
}
