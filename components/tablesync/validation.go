package tablesync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RecordValidator checks the records of a source before they are formatted.
type RecordValidator interface {
	ValidateRecords(sourceID string, records []Record) error
}

// JSONSchemaValidator validates each record of a source against the JSON
// schema registered for that source. Sources without a schema pass.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	schemas  map[string]map[string]any
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		schemas:  make(map[string]map[string]any),
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Register associates a record schema with a source. The schema is
// compiled eagerly so mistakes surface at startup.
func (v *JSONSchemaValidator) Register(sourceID string, schema map[string]any) error {
	if sourceID == "" {
		return fmt.Errorf("tablesync: schema source id is required")
	}
	if len(schema) == 0 {
		return nil
	}
	compiled, err := compileSchema(sourceID, schema)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.schemas[sourceID] = schema
	v.compiled[sourceID] = compiled
	return nil
}

// Schema returns the raw schema registered for sourceID.
func (v *JSONSchemaValidator) Schema(sourceID string) (map[string]any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	schema, ok := v.schemas[sourceID]
	return schema, ok
}

// ValidateRecords ensures every record satisfies the source schema.
func (v *JSONSchemaValidator) ValidateRecords(sourceID string, records []Record) error {
	v.mu.RLock()
	schema, ok := v.compiled[sourceID]
	v.mu.RUnlock()
	if !ok {
		return nil
	}
	for idx, record := range records {
		payload, err := normalizePayload(record)
		if err != nil {
			return fmt.Errorf("tablesync: normalize record %d of %s: %w", idx, sourceID, err)
		}
		if err := schema.Validate(payload); err != nil {
			return fmt.Errorf("%w: record %d of %s failed validation: %w", ErrInvalidInput, idx, sourceID, err)
		}
	}
	return nil
}

// ValidateDocument validates an arbitrary payload against a schema. It is
// used for configuration documents.
func ValidateDocument(name string, schema map[string]any, payload any) error {
	compiled, err := compileSchema(name, schema)
	if err != nil {
		return err
	}
	normalized, err := normalizePayload(payload)
	if err != nil {
		return fmt.Errorf("tablesync: normalize %s: %w", name, err)
	}
	if err := compiled.Validate(normalized); err != nil {
		return fmt.Errorf("tablesync: %s failed validation: %w", name, err)
	}
	return nil
}

func compileSchema(name string, schema map[string]any) (*jsonschema.Schema, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("tablesync: marshal schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := schemaURL(name)
	if err := compiler.AddResource(resource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("tablesync: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("tablesync: compile schema %s: %w", name, err)
	}
	return compiled, nil
}

// schemaURL names an in-memory schema resource, keeping filesystem paths out
// of validation errors.
func schemaURL(name string) string {
	return "mem://tablesync/" + url.PathEscape(name) + ".json"
}

// normalizePayload round-trips through JSON so Go slices, ints and structs
// become the generic shapes jsonschema expects.
func normalizePayload(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type noopRecordValidator struct{}

func (noopRecordValidator) ValidateRecords(string, []Record) error { return nil }
