package store

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedPrompt is one entry of a library seed file.
type SeedPrompt struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content"`
}

// SeedFile is the yaml document imported into the library on start:
//
//	prompts:
//	  - name: Greeting
//	    content: "Hello {{ user.name }}"
type SeedFile struct {
	Prompts []SeedPrompt `yaml:"prompts"`
}

// ParseSeed decodes a seed document. Unknown fields are rejected.
func ParseSeed(r io.Reader) (*SeedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f SeedFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for i, p := range f.Prompts {
		if _, err := NormalizeName(p.Name); err != nil {
			return nil, fmt.Errorf("seed prompt %d: %w", i+1, err)
		}
	}
	return &f, nil
}

// LoadSeedFile reads and parses the seed file at path.
func LoadSeedFile(path string) (*SeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return ParseSeed(f)
}

// Import upserts every seed prompt by name and returns how many were written.
func (s *PromptStore) Import(ctx context.Context, seed *SeedFile) (int, error) {
	for i, p := range seed.Prompts {
		if _, err := s.Upsert(ctx, p.Name, p.Content); err != nil {
			return i, fmt.Errorf("import %q: %w", p.Name, err)
		}
	}
	return len(seed.Prompts), nil
}
