package book

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed default.yml
var defaultCatalog []byte

// DefaultCatalog returns the built-in sample catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range c.Books {
		c.Books[i].Source = path
	}
	return c, nil
}

// ParseCatalog decodes a YAML catalog. Books without an ID are numbered by
// position.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i := range c.Books {
		b := &c.Books[i]
		if err := b.validate(); err != nil {
			return nil, fmt.Errorf("book %d: %w", i+1, err)
		}
		if b.ID == "" {
			b.ID = strconv.Itoa(i + 1)
		}
	}
	return &c, nil
}
