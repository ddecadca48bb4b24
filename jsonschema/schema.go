package jsonschema

// Draft is the dialect emitted by FromType.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
// Keep this struct small and extend incrementally.
type Schema struct {
	// Core
	Dialect string             `json:"$schema,omitempty"`
	Ref     string             `json:"$ref,omitempty"`
	Defs    map[string]*Schema `json:"$defs,omitempty"`
	Title   string             `json:"title,omitempty"`
	Type    string             `json:"type,omitempty"`
	Format  string             `json:"format,omitempty"`
	Default any                `json:"default,omitempty"`
	Enum    []any              `json:"enum,omitempty"`

	// Number
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`
}
