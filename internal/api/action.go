package api

import "github.com/santhosh-tekuri/jsonschema/v5"

// liveActionStatuses enumerates the lifecycle states of a run.
var liveActionStatuses = []any{
	"requested", "scheduled", "running",
	"succeeded", "failed", "timeout",
	"canceling", "canceled", "abandoned",
}

var actionSchema = map[string]any{
	"title":       "Action",
	"description": "An action the platform can run.",
	"type":        "object",
	"properties": map[string]any{
		"id":          map[string]any{"type": "string"},
		"ref":         map[string]any{"type": "string"},
		"name":        map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"pack":        map[string]any{"type": "string"},
		"enabled":     map[string]any{"type": "boolean"},
		"entry_point": map[string]any{"type": "string"},
		"runner_type": map[string]any{"type": "string"},
		"parameters":  map[string]any{"type": "object"},
	},
	"required": []any{"name"},
}

var runnerTypeSchema = map[string]any{
	"title":       "RunnerType",
	"description": "The runner that executes an action.",
	"type":        "object",
	"properties": map[string]any{
		"id":                map[string]any{"type": "string"},
		"name":              map[string]any{"type": "string"},
		"description":       map[string]any{"type": "string"},
		"enabled":           map[string]any{"type": "boolean"},
		"runner_module":     map[string]any{"type": "string"},
		"runner_parameters": map[string]any{"type": "object"},
	},
	"required": []any{"name"},
}

var liveActionSchema = map[string]any{
	"title":       "LiveAction",
	"description": "A single run of an action.",
	"type":        "object",
	"properties": map[string]any{
		"id":     map[string]any{"type": "string"},
		"action": map[string]any{"type": "string"},
		"status": map[string]any{
			"type": "string",
			"enum": liveActionStatuses,
		},
		"start_timestamp": map[string]any{"type": "string"},
		"end_timestamp":   map[string]any{"type": "string"},
		"parameters":      map[string]any{"type": "object"},
		"result":          map[string]any{},
		"context":         map[string]any{"type": "object"},
		"callback":        map[string]any{"type": "object"},
	},
	"required": []any{"action"},
}

var (
	actionSchemaCompiled     = MustCompile("action.json", actionSchema)
	runnerTypeSchemaCompiled = MustCompile("runner_type.json", runnerTypeSchema)
	liveActionSchemaCompiled = MustCompile("live_action.json", liveActionSchema)
)

// ActionAPI is the action definition snapshot embedded in execution records.
type ActionAPI struct {
	ID          string         `json:"id,omitempty"`
	Ref         string         `json:"ref,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Pack        string         `json:"pack,omitempty"`
	Enabled     *bool          `json:"enabled,omitempty"`
	EntryPoint  string         `json:"entry_point,omitempty"`
	RunnerType  string         `json:"runner_type,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

func (ActionAPI) Schema() *jsonschema.Schema { return actionSchemaCompiled }

// RunnerTypeAPI is the runner snapshot embedded in execution records.
type RunnerTypeAPI struct {
	ID               string         `json:"id,omitempty"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	Enabled          *bool          `json:"enabled,omitempty"`
	RunnerModule     string         `json:"runner_module,omitempty"`
	RunnerParameters map[string]any `json:"runner_parameters,omitempty"`
}

func (RunnerTypeAPI) Schema() *jsonschema.Schema { return runnerTypeSchemaCompiled }

// LiveActionAPI describes one run of an action, including its timestamps
// and result payload.
type LiveActionAPI struct {
	ID             string         `json:"id,omitempty"`
	Action         string         `json:"action"`
	Status         string         `json:"status,omitempty"`
	StartTimestamp string         `json:"start_timestamp,omitempty"`
	EndTimestamp   string         `json:"end_timestamp,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	Result         any            `json:"result,omitempty"`
	Context        map[string]any `json:"context,omitempty"`
	Callback       map[string]any `json:"callback,omitempty"`
}

func (LiveActionAPI) Schema() *jsonschema.Schema { return liveActionSchemaCompiled }
