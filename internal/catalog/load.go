package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Format is a catalog file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatFromPath picks the encoding from a file extension; anything other
// than .toml is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML or TOML file.
// An empty path returns the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	c, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and indexes catalog data.
func Parse(data []byte, format Format) (*Catalog, error) {
	var f File
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	default:
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(f)
}

// Marshal encodes a catalog file in the given format.
func Marshal(f File, format Format) ([]byte, error) {
	if format == FormatTOML {
		return toml.Marshal(f)
	}
	return yaml.Marshal(f)
}
