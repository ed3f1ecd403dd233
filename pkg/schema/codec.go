package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode parses a form schema from raw JSON or YAML, sniffing the format from
// the first non-blank character.
func Decode(raw []byte) (Form, error) {
	var form Form
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return Form{}, fmt.Errorf("schema: empty document")
	}
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(raw, &form); err != nil {
			return Form{}, fmt.Errorf("schema: decode json: %w", err)
		}
		return form, nil
	}
	if err := yaml.Unmarshal(raw, &form); err != nil {
		return Form{}, fmt.Errorf("schema: decode yaml: %w", err)
	}
	return form, nil
}

// LoadFile reads and decodes a schema document from disk. The codec is chosen
// by extension: .json decodes as JSON, everything else as YAML.
func LoadFile(path string) (Form, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Form{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var form Form
		if err := json.Unmarshal(raw, &form); err != nil {
			return Form{}, fmt.Errorf("schema: decode %s: %w", path, err)
		}
		return form, nil
	default:
		var form Form
		if err := yaml.Unmarshal(raw, &form); err != nil {
			return Form{}, fmt.Errorf("schema: decode %s: %w", path, err)
		}
		return form, nil
	}
}

// EncodeJSON serialises the form as indented JSON, the storage format used by
// the store implementations.
func EncodeJSON(form Form) ([]byte, error) {
	out, err := json.MarshalIndent(form, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: encode json: %w", err)
	}
	return out, nil
}

// EncodeYAML serialises the form as YAML for authoring on disk.
func EncodeYAML(form Form) ([]byte, error) {
	out, err := yaml.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("schema: encode yaml: %w", err)
	}
	return out, nil
}
