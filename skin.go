package guibridge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SkinManifest describes a skin directory: the entry scene the GUI loads
// and any extra import paths the skin ships with.
type SkinManifest struct {
	// Name of the skin.
	Name string `json:"name"`

	// Version of the skin, free-form.
	Version string `json:"version"`

	// Main is the entry scene file, relative to the skin directory.
	Main string `json:"main"`

	// Imports are additional GUI-library import paths, relative to the
	// skin directory.
	Imports []string `json:"imports,omitempty"`

	// Author of the skin.
	Author string `json:"author,omitempty"`
}

// skinManifestSchema is the JSON Schema (draft-7) every manifest.json
// must satisfy before the GUI touches the skin.
const skinManifestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name", "version", "main"],
	"properties": {
		"name":    {"type": "string", "minLength": 1},
		"version": {"type": "string", "minLength": 1},
		"main":    {"type": "string", "minLength": 1},
		"imports": {"type": "array", "items": {"type": "string", "minLength": 1}},
		"author":  {"type": "string"}
	},
	"additionalProperties": false
}`

// SkinManifestError reports a manifest that failed schema validation.
type SkinManifestError struct {
	Path    string
	Details []string
}

func (e *SkinManifestError) Error() string {
	return fmt.Sprintf("invalid skin manifest %s: %s", e.Path, strings.Join(e.Details, "; "))
}

// LoadSkinManifest reads and validates <skinDir>/manifest.json.
func LoadSkinManifest(skinDir string) (*SkinManifest, error) {
	path := filepath.Join(skinDir, "manifest.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skin manifest: %w", err)
	}
	return ParseSkinManifest(path, data)
}

// ParseSkinManifest validates raw manifest bytes against the manifest
// schema and decodes them. path is used for error reporting only.
func ParseSkinManifest(path string, data []byte) (*SkinManifest, error) {
	schemaLoader := gojsonschema.NewStringLoader(skinManifestSchema)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("validate skin manifest: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, &SkinManifestError{Path: path, Details: details}
	}

	var manifest SkinManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode skin manifest: %w", err)
	}
	return &manifest, nil
}

// MainScenePath returns the absolute path of the skin's entry scene.
func (m *SkinManifest) MainScenePath(skinDir string) string {
	return filepath.Join(skinDir, m.Main)
}

// ImportPaths returns the skin's import paths resolved against skinDir.
func (m *SkinManifest) ImportPaths(skinDir string) []string {
	paths := make([]string, 0, len(m.Imports))
	for _, imp := range m.Imports {
		paths = append(paths, filepath.Join(skinDir, imp))
	}
	return paths
}
