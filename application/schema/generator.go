// Package schema provides JSON schema generation for command arguments and
// results.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// GenerateSchema creates a JSON schema from a Go value.
// It uses the `invopop/jsonschema` library to reflect on the value
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("cannot generate schema for nil")
	}
	return GenerateSchemaForType(reflect.TypeOf(v))
}

// GenerateSchemaFor creates a JSON schema for the type parameter T.
func GenerateSchemaFor[T any]() ([]byte, error) {
	return GenerateSchemaForType(reflect.TypeFor[T]())
}

// GenerateSchemaForType creates a JSON schema for t. The schema carries no
// $id so it can be compiled under any resource name.
func GenerateSchemaForType(t reflect.Type) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot generate schema for nil type")
	}
	if t.Kind() == reflect.Interface {
		// Any JSON document is acceptable.
		return []byte(`{"$schema":"https://json-schema.org/draft/2020-12/schema"}`), nil
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	// Named structs are expanded from their definition. Anonymous structs
	// have no definition entry and are already reflected inline.
	reflector := jsonschema.Reflector{
		ExpandedStruct: t.Kind() == reflect.Struct && t.Name() != "",
		Anonymous:      true,
	}
	schema := reflector.ReflectFromType(t)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}
