package persona

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadCatalog reads a persona catalog from a YAML (or JSON) file. Unknown
// fields are rejected so that typos surface as configuration errors.
// When the file carries no keyword table the built-in one is used.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return nil, &ConfigurationError{Source: path, Reason: "no path configured"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Source: path, Reason: "cannot read file", Err: err}
	}

	return ParseCatalog(path, data)
}

// ParseCatalog decodes catalog bytes. source is only used in errors.
func ParseCatalog(source string, data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cat Catalog
	if err := dec.Decode(&cat); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigurationError{Source: source, Reason: "file is empty"}
		}
		return nil, &ConfigurationError{Source: source, Reason: "malformed catalog", Err: err}
	}

	if err := cat.validate(source); err != nil {
		return nil, err
	}

	if len(cat.Keywords) == 0 {
		cat.Keywords = DefaultKeywords()
	}

	return &cat, nil
}
