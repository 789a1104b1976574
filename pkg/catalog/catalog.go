// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobboard-workers/internal/models"
	"jobboard-workers/internal/questions"
)

// Default returns the built-in catalog used when no file is configured.
func Default() *Catalog {
	return &Catalog{
		Version:   "1.0.0",
		Questions: append([]string(nil), questions.DefaultSeeds...),
		Employers: []models.EmployerSeed{},
	}
}

// Load reads a catalog file. An empty path yields Default. A file without
// questions gets the default questions.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if len(c.Questions) == 0 {
		c.Questions = append([]string(nil), questions.DefaultSeeds...)
	}
	return &c, nil
}

// Save writes the catalog as indented JSON, creating the directory.
func Save(c *Catalog, path string) error {
	c.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

// Validate rejects blank or case-insensitively repeated questions and
// employers without an email or company.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Questions))
	for i, q := range c.Questions {
		key := strings.ToLower(strings.TrimSpace(q))
		if key == "" {
			return fmt.Errorf("question %d is blank", i)
		}
		if seen[key] {
			return fmt.Errorf("duplicate question: %q", q)
		}
		seen[key] = true
	}

	emails := make(map[string]bool, len(c.Employers))
	for _, e := range c.Employers {
		if e.Email == "" {
			return fmt.Errorf("employer %q missing email", e.Company)
		}
		if e.Company == "" {
			return fmt.Errorf("employer %s missing company", e.Email)
		}
		if emails[e.Email] {
			return fmt.Errorf("duplicate employer email: %s", e.Email)
		}
		emails[e.Email] = true
	}
	return nil
}

// Registry builds a fresh question template registry from the catalog.
func (c *Catalog) Registry() questions.Registry {
	return questions.New(c.Questions)
}
