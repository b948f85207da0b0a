package tablesync

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// SourcesManifest models a YAML document declaring config-driven sources.
type SourcesManifest struct {
	Version string           `json:"version" yaml:"version"`
	Name    string           `json:"name,omitempty" yaml:"name,omitempty"`
	Sources []ManifestSource `json:"sources" yaml:"sources"`
	Path    string           `json:"-" yaml:"-"`
}

// ManifestSource declares a static source, its records and an optional
// JSON schema applied to every record before a sync.
type ManifestSource struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Type        DataType       `json:"type" yaml:"type"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled     *bool          `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Origin      string         `json:"origin,omitempty" yaml:"origin,omitempty"`
	Records     []Record       `json:"records,omitempty" yaml:"records,omitempty"`
	Schema      map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// ReadManifest loads a manifest file from disk.
func ReadManifest(path string) (*SourcesManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("tablesync: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("tablesync: decode manifest %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*SourcesManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc SourcesManifest
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("tablesync: manifest is empty")
		}
		return nil, fmt.Errorf("tablesync: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *SourcesManifest) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("tablesync: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Sources))
	for idx, src := range doc.Sources {
		if src.ID == "" {
			return fmt.Errorf("tablesync: manifest source at index %d is missing id", idx)
		}
		if src.Type == "" {
			return fmt.Errorf("tablesync: manifest source %s missing type", src.ID)
		}
		if _, exists := seen[src.ID]; exists {
			return fmt.Errorf("tablesync: manifest duplicates source id %s", src.ID)
		}
		seen[src.ID] = struct{}{}
	}
	return nil
}

// Register adds every manifest source to reg and its schema to validator.
// A nil validator skips schema registration.
func (doc *SourcesManifest) Register(reg *Registry, validator *JSONSchemaValidator, clock func() time.Time) error {
	if doc == nil {
		return fmt.Errorf("tablesync: manifest document is nil")
	}
	for _, src := range doc.Sources {
		origin := src.Origin
		if origin == "" {
			origin = "manifest:" + doc.Name
		}
		desc := SourceDescriptor{
			ID:          src.ID,
			Name:        src.Name,
			Type:        src.Type,
			Description: src.Description,
			Enabled:     src.Enabled == nil || *src.Enabled,
			Source: StaticSource{
				Type:    src.Type,
				Origin:  origin,
				Records: src.Records,
				Clock:   clock,
			},
		}
		if err := reg.Register(desc); err != nil {
			return fmt.Errorf("tablesync: register source %s from %s: %w", src.ID, doc.Path, err)
		}
		if validator != nil && len(src.Schema) > 0 {
			if err := validator.Register(src.ID, src.Schema); err != nil {
				return err
			}
		}
	}
	return nil
}

func (doc *SourcesManifest) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	for i := range doc.Sources {
		if doc.Sources[i].Name == "" {
			doc.Sources[i].Name = doc.Sources[i].ID
		}
	}
}
