package model

import "github.com/invopop/jsonschema"

var reflector = jsonschema.Reflector{
	AllowAdditionalProperties: false,
	DoNotReference:            true,
}

// SchemaOf returns the JSON schema of the document type of v.
func SchemaOf(v any) *jsonschema.Schema {
	return reflector.Reflect(v)
}
