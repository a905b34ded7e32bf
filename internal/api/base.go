// Package api contains the schema-validated models exposed over HTTP and
// their conversions to and from persistence documents.
//
// Every model carries a JSON Schema; a model that fails validation is never
// constructed. Documents coming from Mongo have their keys unescaped and
// their `_id` renamed to `id` on the way out, and the inverse applied on the
// way in.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"execapi/internal/util/mongoescape"
)

// Model is implemented by every API-facing data object.
type Model interface {
	Schema() *jsonschema.Schema
}

// ValidationError wraps a schema violation. The HTTP layer translates it
// into a 400 response.
type ValidationError struct {
	Cause error
}

func (e *ValidationError) Error() string {
	return e.Cause.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// MustCompile compiles a Go-literal draft-07 schema at package init.
func MustCompile(name string, schema map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("api: marshal schema %s: %v", name, err))
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource(name, bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("api: add schema %s: %v", name, err))
	}
	compiled, err := c.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("api: compile schema %s: %v", name, err))
	}
	return compiled
}

// New validates raw attributes against T's schema and decodes them into a
// typed model.
func New[T Model](raw map[string]any) (*T, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}

	// The validator wants plain JSON values, not bson types.
	var instance any
	if err := json.Unmarshal(b, &instance); err != nil {
		return nil, fmt.Errorf("decode attributes: %w", err)
	}

	var out T
	if err := out.Schema().Validate(instance); err != nil {
		return nil, &ValidationError{Cause: err}
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &out, nil
}

// FromDocument converts a persistence document into a validated model.
func FromDocument[T Model](doc bson.M) (*T, error) {
	return New[T](DocumentAttrs(doc))
}

// DocumentAttrs prepares a persistence document for model construction:
// keys are unescaped, nil values dropped and `_id` renamed to a string `id`.
func DocumentAttrs(doc bson.M) map[string]any {
	unescaped := mongoescape.UnescapeDocument(doc)

	attrs := make(map[string]any, len(unescaped))
	for k, v := range unescaped {
		if v == nil {
			continue
		}
		attrs[k] = v
	}
	if id, ok := attrs["_id"]; ok {
		delete(attrs, "_id")
		attrs["id"] = stringifyID(id)
	}
	return attrs
}

// ToDocument is the inverse of FromDocument: the model is flattened to a
// map, keys are escaped and `id` becomes `_id` (an ObjectID when the value
// is a valid hex ID).
func ToDocument(m Model) (bson.M, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("flatten model: %w", err)
	}

	if id, ok := raw["id"].(string); ok {
		delete(raw, "id")
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			raw["_id"] = oid
		} else {
			raw["_id"] = id
		}
	}

	escaped := mongoescape.EscapeChars(raw).(map[string]any)
	return bson.M(escaped), nil
}

func stringifyID(id any) string {
	switch t := id.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
