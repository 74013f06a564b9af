package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas caches compiled definitions per *Schema.
var compiledSchemas sync.Map // map[*Schema]*jsonschema.Schema

// Validate checks raw JSON against s. A nil Schema accepts anything.
// Failures are *ErrInvalidResponse carrying raw so callers can repair it.
func (s *Schema) Validate(raw json.RawMessage) error {
	if s == nil {
		return nil
	}
	invalid := func(format string, args ...any) error {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf(format, args...)}
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return invalid("invalid JSON: %w", err)
	}
	compiled, err := s.compile()
	if err != nil {
		return invalid("compile schema %q: %w", s.Name, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return invalid("schema validation failed: %w", err)
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(s); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants decoded JSON values, not Go literals such as
	// []string, so round-trip the definition.
	b, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", s.Name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	compiledSchemas.Store(s, compiled)
	return compiled, nil
}
