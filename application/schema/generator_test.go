package schema

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetArgs struct {
	Name  string   `json:"name" jsonschema:"minLength=1"`
	Times int      `json:"times,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

type size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type window struct {
	Label string `json:"label"`
	Size  *size  `json:"size,omitempty"`
}

type openArgs struct {
	Window window `json:"window"`
	Focus  bool   `json:"focus"`
}

type ping struct{}

type doc struct {
	Schema     string                     `json:"$schema"`
	Type       string                     `json:"type"`
	Required   []string                   `json:"required"`
	Properties map[string]json.RawMessage `json:"properties"`
	Defs       map[string]json.RawMessage `json:"$defs"`
}

func decode(t *testing.T, raw []byte) doc {
	t.Helper()
	var d doc
	require.NoError(t, json.Unmarshal(raw, &d))
	return d
}

func TestGenerateSchema(t *testing.T) {
	tests := []struct {
		name         string
		value        any
		wantType     string
		wantProps    []string
		wantRequired []string
	}{
		{
			name:         "command args",
			value:        greetArgs{},
			wantType:     "object",
			wantProps:    []string{"name", "times", "tags"},
			wantRequired: []string{"name"},
		},
		{
			name:         "pointer is dereferenced",
			value:        &greetArgs{},
			wantType:     "object",
			wantProps:    []string{"name", "times", "tags"},
			wantRequired: []string{"name"},
		},
		{
			name:         "nested struct",
			value:        openArgs{},
			wantType:     "object",
			wantProps:    []string{"window", "focus"},
			wantRequired: []string{"window", "focus"},
		},
		{name: "empty struct", value: ping{}, wantType: "object"},
		{name: "anonymous empty struct", value: struct{}{}, wantType: "object"},
		{
			name: "anonymous struct",
			value: struct {
				X int `json:"x"`
			}{},
			wantType:     "object",
			wantProps:    []string{"x"},
			wantRequired: []string{"x"},
		},
		{name: "string result", value: "", wantType: "string"},
		{name: "list result", value: []int{}, wantType: "array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := GenerateSchema(tt.value)
			require.NoError(t, err)

			d := decode(t, raw)
			assert.Contains(t, d.Schema, "json-schema.org")
			assert.Equal(t, tt.wantType, d.Type)
			for _, p := range tt.wantProps {
				assert.Contains(t, d.Properties, p)
			}
			assert.ElementsMatch(t, tt.wantRequired, d.Required)
		})
	}
}

func TestGenerateSchema_NestedDefinitions(t *testing.T) {
	raw, err := GenerateSchemaFor[openArgs]()
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"label"`)
	assert.Contains(t, string(raw), `"width"`)
	assert.NotContains(t, string(raw), `"$id"`, "schemas compile under any resource name")
}

func TestGenerateSchema_Nil(t *testing.T) {
	_, err := GenerateSchema(nil)
	require.Error(t, err)

	_, err = GenerateSchemaForType(nil)
	require.Error(t, err)
}

func TestGenerateSchemaFor(t *testing.T) {
	byValue, err := GenerateSchema(greetArgs{})
	require.NoError(t, err)
	byType, err := GenerateSchemaFor[greetArgs]()
	require.NoError(t, err)
	byReflect, err := GenerateSchemaForType(reflect.TypeOf(greetArgs{}))
	require.NoError(t, err)

	assert.JSONEq(t, string(byValue), string(byType))
	assert.JSONEq(t, string(byValue), string(byReflect))
}

func TestGenerateSchemaFor_Interface(t *testing.T) {
	raw, err := GenerateSchemaFor[any]()
	require.NoError(t, err)

	d := decode(t, raw)
	assert.Empty(t, d.Type, "any document is accepted")
	assert.Empty(t, d.Properties)
}
