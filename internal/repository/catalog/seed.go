package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Movies []Movie `yaml:"movies"`
}

// LoadSeedFile reads catalog entries from a YAML file of the form
//
//	movies:
//	  - id: "42"
//	    title: Heat
//	    source_url: https://cdn.example.com/heat.mp4
//	    poster_url: https://cdn.example.com/heat.jpg
func LoadSeedFile(path string) ([]Movie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, m := range f.Movies {
		if m.ID == "" {
			return nil, fmt.Errorf("movie %d: %w", i, ErrEmptyMovieID)
		}
	}

	return f.Movies, nil
}
