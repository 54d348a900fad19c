// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package layout

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// RoomDocument mirrors the wire shape of a room document for schema
// generation. Conditions and change tuples are polymorphic on the wire, so
// the schema only pins their containers; the load-time parsers enforce the
// interior shapes.
type RoomDocument struct {
	Name    string         `json:"name" jsonschema:"required,description=Unique room name"`
	Desc    string         `json:"desc" jsonschema:"required,description=Room description template"`
	Exits   []ExitDocument `json:"exits,omitempty"`
	Changes [][]any        `json:"changes,omitempty" jsonschema:"description=Change tuples applied on entry"`
}

// ExitDocument mirrors the wire shape of an exit entry.
type ExitDocument struct {
	Name string `json:"name" jsonschema:"required,description=Target room name"`
	Verb string `json:"verb" jsonschema:"required,description=Exit label template"`
	Cond any    `json:"cond,omitempty" jsonschema:"description=Condition tree or DSL string"`
}

// SchemaID is the $id for generated layout schemas.
const SchemaID = "https://web-adventure.dev/schemas/layout.schema.json"

// schemaCache holds the compiled schema to avoid recompilation.
var schemaCache *jschema.Schema

// GenerateSchema generates the JSON Schema for room documents.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&RoomDocument{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Web-Adventure Room Document"
	schema.Description = "Schema for one document of a room layout file"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_MARSHAL_FAILED").Wrap(err)
	}
	return data, nil
}

// ValidateDocuments checks every YAML document in the stream against the
// room document schema. Structural problems are collected per document;
// validation never stops at the first bad document.
func ValidateDocuments(r io.Reader) []error {
	sch, err := compiledSchema()
	if err != nil {
		return []error{err}
	}

	var errs []error
	index := 0
	dec := yaml.NewDecoder(r)
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs = append(errs, oops.Code("LAYOUT_BAD_YAML").Wrap(err))
			break
		}
		index++
		if doc == nil {
			continue
		}
		if err := sch.Validate(toJSONTypes(doc)); err != nil {
			errs = append(errs, oops.Code("LAYOUT_SCHEMA_VIOLATION").
				With("document", index).
				Wrapf(err, "document %d", index))
		}
	}
	return errs
}

// compiledSchema returns the cached compiled schema or compiles it.
func compiledSchema() (*jschema.Schema, error) {
	if schemaCache != nil {
		return schemaCache, nil
	}

	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, oops.Code("SCHEMA_PARSE_FAILED").Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("layout.schema.json", schemaData); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
	}
	sch, err := c.Compile("layout.schema.json")
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
	}

	schemaCache = sch
	return sch, nil
}

// toJSONTypes converts YAML-parsed data to JSON-compatible types. yaml.v3
// already yields map[string]any, but nested values need the walk.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = toJSONTypes(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toJSONTypes(item)
		}
		return out
	default:
		return val
	}
}
