package provider

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema describing one provider's response.
type Schema struct {
	s *gojsonschema.Schema
}

// MustSchema compiles src and panics on an invalid schema. Intended for
// package-level vars.
func MustSchema(src string) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("provider: invalid schema: " + err.Error())
	}
	return &Schema{s: s}
}

// Decode validates body against the schema and decodes it into a generic
// document. Invalid JSON and schema violations are Malformed.
func (s *Schema) Decode(name string, body []byte) (any, error) {
	res, err := s.s.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, Errorf(name, Malformed, "decode: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, Errorf(name, Malformed, "schema: %s", strings.Join(msgs, "; "))
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, Errorf(name, Malformed, "decode: %w", err)
	}
	return doc, nil
}
