package phpwalktest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Suite is a manifest of conformance cases, each pairing a php-parser
// JSON fixture with the outcome it must produce.
type Suite struct {
	Cases []Case `yaml:"cases"`
}

// Case describes one fixture run. File is resolved relative to the
// manifest by the caller. Either Error names a substring of the expected
// fatal error, or the run must succeed and match the other fields.
type Case struct {
	Name     string            `yaml:"name"`
	File     string            `yaml:"file"`
	Output   string            `yaml:"output,omitempty"`
	Diags    []string          `yaml:"diags,omitempty"`
	Bindings map[string]string `yaml:"bindings,omitempty"` // variable name to Inspect form
	Error    string            `yaml:"error,omitempty"`
}

// LoadSuite reads a case manifest. Unknown fields are rejected, so a typo
// in a manifest fails the suite instead of silently checking nothing.
func LoadSuite(path string) (*Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var s Suite
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	seen := map[string]bool{}
	for i, c := range s.Cases {
		if c.Name == "" {
			return nil, fmt.Errorf("%s: case %d has no name", path, i)
		}
		if c.File == "" {
			return nil, fmt.Errorf("%s: case %q has no file", path, c.Name)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%s: duplicate case name %q", path, c.Name)
		}
		seen[c.Name] = true
	}
	return &s, nil
}
