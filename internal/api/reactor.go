package api

import "github.com/santhosh-tekuri/jsonschema/v5"

var triggerTypeSchema = map[string]any{
	"title":       "TriggerType",
	"description": "A type of event the platform can react to.",
	"type":        "object",
	"properties": map[string]any{
		"id":                map[string]any{"type": "string"},
		"name":              map[string]any{"type": "string"},
		"pack":              map[string]any{"type": "string"},
		"description":       map[string]any{"type": "string"},
		"payload_schema":    map[string]any{"type": "object"},
		"parameters_schema": map[string]any{"type": "object"},
	},
	"required": []any{"name"},
}

var triggerSchema = map[string]any{
	"title":       "Trigger",
	"description": "A concrete subscription to a trigger type.",
	"type":        "object",
	"properties": map[string]any{
		"id":         map[string]any{"type": "string"},
		"name":       map[string]any{"type": "string"},
		"pack":       map[string]any{"type": "string"},
		"type":       map[string]any{"type": "string"},
		"parameters": map[string]any{"type": "object"},
	},
}

var triggerInstanceSchema = map[string]any{
	"title":       "TriggerInstance",
	"description": "One occurrence of a trigger firing.",
	"type":        "object",
	"properties": map[string]any{
		"id":              map[string]any{"type": "string"},
		"trigger":         map[string]any{"type": "string"},
		"payload":         map[string]any{"type": "object"},
		"occurrence_time": map[string]any{"type": "string"},
	},
}

var (
	triggerTypeSchemaCompiled     = MustCompile("trigger_type.json", triggerTypeSchema)
	triggerSchemaCompiled         = MustCompile("trigger.json", triggerSchema)
	triggerInstanceSchemaCompiled = MustCompile("trigger_instance.json", triggerInstanceSchema)
)

// TriggerTypeAPI is the trigger-type snapshot embedded in execution records
// that were started by a rule.
type TriggerTypeAPI struct {
	ID               string         `json:"id,omitempty"`
	Name             string         `json:"name"`
	Pack             string         `json:"pack,omitempty"`
	Description      string         `json:"description,omitempty"`
	PayloadSchema    map[string]any `json:"payload_schema,omitempty"`
	ParametersSchema map[string]any `json:"parameters_schema,omitempty"`
}

func (TriggerTypeAPI) Schema() *jsonschema.Schema { return triggerTypeSchemaCompiled }

// TriggerAPI is the trigger snapshot embedded in execution records.
type TriggerAPI struct {
	ID         string         `json:"id,omitempty"`
	Name       string         `json:"name,omitempty"`
	Pack       string         `json:"pack,omitempty"`
	Type       string         `json:"type,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

func (TriggerAPI) Schema() *jsonschema.Schema { return triggerSchemaCompiled }

// TriggerInstanceAPI records the specific event occurrence that started an
// execution.
type TriggerInstanceAPI struct {
	ID             string         `json:"id,omitempty"`
	Trigger        string         `json:"trigger,omitempty"`
	Payload        map[string]any `json:"payload,omitempty"`
	OccurrenceTime string         `json:"occurrence_time,omitempty"`
}

func (TriggerInstanceAPI) Schema() *jsonschema.Schema { return triggerInstanceSchemaCompiled }
