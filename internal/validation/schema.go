// Package validation checks survey payloads against embedded JSON schemas.
package validation

import (
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"nutrivision-go/internal/apperr"
)

type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// MustCompile panics on a malformed schema; schemas are package constants.
func MustCompile(name, source string) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(errors.Wrapf(err, "compile %s schema", name))
	}
	return &Schema{name: name, schema: s}
}

// Validate returns an *apperr.ValidationError listing every violation.
func (s *Schema) Validate(v any) error {
	res, err := s.schema.Validate(gojsonschema.NewGoLoader(v))
	if err != nil {
		return errors.Wrapf(err, "validate %s", s.name)
	}
	if res.Valid() {
		return nil
	}
	d := []string{}
	for _, e := range res.Errors() {
		d = append(d, e.String())
	}
	return &apperr.ValidationError{
		Field:   s.name,
		Reason:  "please fill out all required fields",
		Details: d,
	}
}
