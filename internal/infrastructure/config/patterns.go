package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

type customPatternsFile struct {
	Patterns []string `yaml:"patterns"`
}

// LoadCustomPatterns reads the optional operator pattern file referenced
// by security.patterns_file. A missing file yields no patterns rather
// than an error so a fresh install works untouched.
func LoadCustomPatterns(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var file customPatternsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Patterns, nil
}
