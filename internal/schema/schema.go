// Package schema describes the JSON shape of HelloSign resources as the CLI
// prints them, so --jq filters can be written without reading API docs.
package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Schema is a JSON Schema-like type definition.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

var registry = sync.OnceValue(resources)

// Get returns the schema of a resource.
func Get(name string) (*Schema, error) {
	s, ok := registry()[name]
	if !ok {
		return nil, fmt.Errorf("schema %q not found", name)
	}
	return s, nil
}

// List returns the resource names, sorted.
func List() []string {
	reg := registry()
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Field is one leaf of a flattened schema.
type Field struct {
	// Path is a jq-style path such as signatures[].status_code.
	Path     string
	Type     string
	Required bool
	Schema   *Schema
}

// Fields flattens s depth-first with properties in name order. Arrays of
// objects contribute "name[]" and then their item fields.
func Fields(s *Schema) []Field {
	var out []Field
	walk(s, "", &out)
	return out
}

func walk(s *Schema, prefix string, out *[]Field) {
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := s.Properties[name]
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		*out = append(*out, Field{Path: path, Type: TypeName(prop), Required: required[name], Schema: prop})

		switch {
		case prop.Type == "object" && len(prop.Properties) > 0:
			walk(prop, path, out)
		case prop.Items != nil && len(prop.Items.Properties) > 0:
			walk(prop.Items, path+"[]", out)
		}
	}
}

// TypeName renders a type, e.g. array<string>.
func TypeName(s *Schema) string {
	if s.Items != nil {
		return fmt.Sprintf("array<%s>", s.Items.Type)
	}
	return s.Type
}

// Object creates an object schema with properties.
func Object(desc string, props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Description: desc, Properties: props, Required: required}
}

// String creates a string schema.
func String(desc string) *Schema {
	return &Schema{Type: "string", Description: desc}
}

// Int creates an integer schema.
func Int(desc string) *Schema {
	return &Schema{Type: "integer", Description: desc}
}

// Bool creates a boolean schema.
func Bool(desc string) *Schema {
	return &Schema{Type: "boolean", Description: desc}
}

// Enum creates a string schema with enumerated values.
func Enum(desc string, values ...string) *Schema {
	return &Schema{Type: "string", Description: desc, Enum: values}
}

// Array creates an array schema.
func Array(items *Schema, desc string) *Schema {
	return &Schema{Type: "array", Description: desc, Items: items}
}

// Timestamp creates a schema for Unix timestamp fields.
func Timestamp(desc string) *Schema {
	return &Schema{Type: "integer", Description: desc + " (Unix timestamp)"}
}

// Map creates a schema for free-form key-value objects.
func Map(desc string) *Schema {
	return &Schema{Type: "object", Description: desc}
}
