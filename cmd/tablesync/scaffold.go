package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

type scaffoldCmd struct {
	Name         string `arg:"" help:"Display name of the source (e.g. \"Regional Accounts\")."`
	ManifestPath string `name:"manifest" required:"" type:"path" help:"Sources manifest YAML file to create or update."`
	ID           string `help:"Source id (defaults to the kebab-cased name)."`
	Type         string `help:"Data type (defaults to the snake-cased name)."`
	Description  string `help:"One-line description recorded in the manifest."`
	Origin       string `help:"Origin label stamped on exports."`
	SchemaPath   string `name:"schema" type:"path" help:"Optional JSON schema file applied to every record."`
	Disabled     bool   `help:"Register the source disabled."`
	Overwrite    bool   `help:"Replace an existing entry with the same id."`
}

func (cmd *scaffoldCmd) Run() error {
	id := cmd.ID
	if id == "" {
		id = strcase.ToKebab(cmd.Name)
	}
	dataType := cmd.Type
	if dataType == "" {
		dataType = strcase.ToSnake(cmd.Name)
	}
	if id == "" || dataType == "" {
		return fmt.Errorf("tablesync: source name %q yields an empty id", cmd.Name)
	}

	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("tablesync: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	schema, err := cmd.loadSchema()
	if err != nil {
		return err
	}

	entry := tablesync.ManifestSource{
		ID:          id,
		Name:        cmd.Name,
		Type:        tablesync.DataType(dataType),
		Description: cmd.Description,
		Origin:      cmd.Origin,
		Schema:      schema,
		Records:     []tablesync.Record{},
	}
	if entry.Origin == "" {
		entry.Origin = strcase.ToKebab(cmd.Name) + "-export"
	}
	if cmd.Disabled {
		enabled := false
		entry.Enabled = &enabled
	}

	replaced := false
	for idx := range doc.Sources {
		if doc.Sources[idx].ID != id {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("tablesync: manifest already defines source %s (use --overwrite to replace)", id)
		}
		doc.Sources[idx] = entry
		replaced = true
	}
	if !replaced {
		doc.Sources = append(doc.Sources, entry)
	}
	sort.Slice(doc.Sources, func(i, j int) bool { return doc.Sources[i].ID < doc.Sources[j].ID })

	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s added %s (%s) to %s, table %s\n",
		okMark("✓"), bold(id), dataType, manifestPath, tablesync.TableName(entry.Type))
	return nil
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("tablesync: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("tablesync: parse schema JSON: %w", err)
	}
	return schema, nil
}

func loadOrInitManifest(path string) (*tablesync.SourcesManifest, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			return &tablesync.SourcesManifest{
				Version: tablesync.ManifestVersion,
				Name:    strcase.ToKebab(name),
				Sources: []tablesync.ManifestSource{},
				Path:    path,
			}, nil
		}
		return nil, fmt.Errorf("tablesync: stat manifest: %w", err)
	}
	return tablesync.ReadManifest(path)
}

func writeManifest(path string, doc *tablesync.SourcesManifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("tablesync: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("tablesync: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("tablesync: write manifest: %w", err)
	}
	return nil
}
