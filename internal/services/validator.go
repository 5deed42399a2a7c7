package services

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Payload names for Validate.
const (
	PayloadTaskCreate   = "task_create"
	PayloadRewardCreate = "reward_create"
)

// ErrValidation can be used with errors.Is to detect payload validation failures.
var ErrValidation = errors.New("validation failed")

//go:embed schemas/*.json
var schemaFS embed.FS

// Validator checks request payloads against the embedded JSON Schemas before
// they reach the domain services.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles every embedded schema. Schema names are the file
// names without extension.
func NewValidator() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read embedded schemas: %w", err)
	}
	schemas := make(map[string]*jsonschema.Schema, len(entries))
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		data, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %q: %w", e.Name(), err)
		}
		id := "https://taskquest.dev/schemas/" + name
		schemas[name], err = jsonschema.CompileString(id, string(data))
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", name, err)
		}
	}
	return &Validator{schemas: schemas}, nil
}

// Validate performs a hard reject: it returns an error wrapping ErrValidation
// when payload does not match the named schema.
func (v *Validator) Validate(name string, payload json.RawMessage) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown payload schema %q", name)
	}
	var doc interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
