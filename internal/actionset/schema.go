package actionset

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/domain.schema.json
var domainSchemaJSON string

//go:embed schemas/scenario.schema.json
var scenarioSchemaJSON string

var (
	schemaOnce     sync.Once
	domainSchema   *jsonschema.Schema
	scenarioSchema *jsonschema.Schema
	schemaErr      error
)

func compileSchemas() error {
	schemaOnce.Do(func() {
		domainSchema, schemaErr = compileSchema("domain.schema.json", domainSchemaJSON)
		if schemaErr != nil {
			return
		}
		scenarioSchema, schemaErr = compileSchema("scenario.schema.json", scenarioSchemaJSON)
	})
	return schemaErr
}

func compileSchema(name, src string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, strings.NewReader(src)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	s, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return s, nil
}

// checkSchema decodes data as generic YAML and validates it against schema.
// Every violation becomes one ValidationError.
func checkSchema(schema *jsonschema.Schema, data []byte, source string) ValidationErrors {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ValidationErrors{{File: source, Field: "yaml", Message: err.Error()}}
	}
	// Round-trip through JSON so the validator sees JSON types only.
	raw, err := json.Marshal(doc)
	if err != nil {
		return ValidationErrors{{File: source, Field: "yaml", Message: fmt.Sprintf("unsupported document: %v", err)}}
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return ValidationErrors{{File: source, Field: "yaml", Message: err.Error()}}
	}

	err = schema.Validate(value)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return ValidationErrors{{File: source, Message: err.Error()}}
	}
	var errs ValidationErrors
	for _, leaf := range leafCauses(ve) {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   pointerToField(leaf.InstanceLocation),
			Message: leaf.Message,
		})
	}
	return errs
}

func leafCauses(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leafCauses(c)...)
	}
	return out
}

// pointerToField turns a JSON pointer such as /actions/0/cost into the
// field path style used elsewhere: actions[0].cost.
func pointerToField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for i, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
