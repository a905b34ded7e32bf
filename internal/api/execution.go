package api

import (
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"execapi/internal/util/isotime"
)

// executionSchema composes the sub-schemas of everything captured in an
// execution record. Only the record itself is closed to unknown properties;
// the snapshots keep whatever extra context they were stored with.
var executionSchema = map[string]any{
	"title":       "ActionExecution",
	"description": "Record of the execution of an action.",
	"type":        "object",
	"properties": map[string]any{
		"id":               map[string]any{"type": "string"},
		"trigger":          DeepCopy(triggerSchema),
		"trigger_type":     DeepCopy(triggerTypeSchema),
		"trigger_instance": DeepCopy(triggerInstanceSchema),
		"rule":             DeepCopy(ruleSchema),
		"action":           DeepCopy(actionSchema),
		"runner":           DeepCopy(runnerTypeSchema),
		"liveaction":       DeepCopy(liveActionSchema),
		"parent":           map[string]any{"type": "string"},
		"children": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"uniqueItems": true,
		},
	},
	"required":             []any{"action", "runner", "liveaction"},
	"additionalProperties": false,
}

var executionSchemaCompiled = MustCompile("execution.json", executionSchema)

// ExecutionAPI is the execution record exposed over HTTP. The id is
// server-assigned: optional on ingest, always present on records read back.
type ExecutionAPI struct {
	ID              string              `json:"id,omitempty"`
	Trigger         *TriggerAPI         `json:"trigger,omitempty"`
	TriggerType     *TriggerTypeAPI     `json:"trigger_type,omitempty"`
	TriggerInstance *TriggerInstanceAPI `json:"trigger_instance,omitempty"`
	Rule            *RuleAPI            `json:"rule,omitempty"`
	Action          *ActionAPI          `json:"action"`
	Runner          *RunnerTypeAPI      `json:"runner"`
	Liveaction      *LiveActionAPI      `json:"liveaction"`
	Parent          string              `json:"parent,omitempty"`
	Children        []string            `json:"children,omitempty"`
}

func (ExecutionAPI) Schema() *jsonschema.Schema { return executionSchemaCompiled }

// ExecutionFromDocument converts a persistence document into a validated
// ExecutionAPI. On top of the base conversion it renders the liveaction
// timestamps as offset-less ISO8601 strings and drops empty values, so a
// record round-trips through the API without accumulating noise.
func ExecutionFromDocument(doc bson.M) (*ExecutionAPI, error) {
	attrs := DocumentAttrs(doc)

	// Internal bookkeeping for offloaded results; never exposed.
	delete(attrs, "result_ref")

	la, ok := asMap(attrs["liveaction"])
	if !ok {
		return nil, fmt.Errorf("execution document has no liveaction")
	}
	for k, v := range la {
		if v == nil {
			delete(la, k)
		}
	}
	start, err := renderTimestamp(la["start_timestamp"])
	if err != nil {
		return nil, fmt.Errorf("liveaction start_timestamp: %w", err)
	}
	la["start_timestamp"] = start

	if end, present := la["end_timestamp"]; present && end != nil {
		rendered, err := renderTimestamp(end)
		if err != nil {
			return nil, fmt.Errorf("liveaction end_timestamp: %w", err)
		}
		la["end_timestamp"] = rendered
	}
	attrs["liveaction"] = la

	for k, v := range attrs {
		if isEmpty(v) {
			delete(attrs, k)
		}
	}

	return New[ExecutionAPI](attrs)
}

// ToDocument converts the record back to its persistence form, parsing the
// liveaction timestamps into native time values.
func (e *ExecutionAPI) ToDocument() (bson.M, error) {
	doc, err := ToDocument(e)
	if err != nil {
		return nil, err
	}

	la, ok := doc["liveaction"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("execution has no liveaction")
	}
	if s, ok := la["start_timestamp"].(string); ok && s != "" {
		parsed, err := isotime.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("liveaction start_timestamp: %w", err)
		}
		la["start_timestamp"] = parsed
	}
	if s, ok := la["end_timestamp"].(string); ok && s != "" {
		parsed, err := isotime.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("liveaction end_timestamp: %w", err)
		}
		la["end_timestamp"] = parsed
	}

	return doc, nil
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case bson.M:
		return map[string]any(t), true
	default:
		return nil, false
	}
}

// renderTimestamp accepts whatever the document layer hands us for a date
// field and normalizes it to an offset-less ISO8601 string.
func renderTimestamp(v any) (string, error) {
	switch t := v.(type) {
	case time.Time:
		return isotime.Format(t, false), nil
	case primitive.DateTime:
		return isotime.Format(t.Time(), false), nil
	case string:
		parsed, err := isotime.Parse(t)
		if err != nil {
			return "", err
		}
		return isotime.Format(parsed, false), nil
	case nil:
		return "", fmt.Errorf("missing value")
	default:
		return "", fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case bson.M:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case primitive.A:
		return len(t) == 0
	default:
		return false
	}
}
