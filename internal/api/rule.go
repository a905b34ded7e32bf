package api

import "github.com/santhosh-tekuri/jsonschema/v5"

var ruleSchema = map[string]any{
	"title":       "Rule",
	"description": "Maps a trigger to an action.",
	"type":        "object",
	"properties": map[string]any{
		"id":          map[string]any{"type": "string"},
		"name":        map[string]any{"type": "string"},
		"ref":         map[string]any{"type": "string"},
		"pack":        map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"trigger":     map[string]any{"type": "object"},
		"criteria":    map[string]any{"type": "object"},
		"action":      map[string]any{"type": "object"},
		"enabled":     map[string]any{"type": "boolean"},
	},
	"required": []any{"name"},
}

var ruleSchemaCompiled = MustCompile("rule.json", ruleSchema)

// RuleAPI is the rule snapshot embedded in execution records started by a
// rule match.
type RuleAPI struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Ref         string         `json:"ref,omitempty"`
	Pack        string         `json:"pack,omitempty"`
	Description string         `json:"description,omitempty"`
	Trigger     map[string]any `json:"trigger,omitempty"`
	Criteria    map[string]any `json:"criteria,omitempty"`
	Action      map[string]any `json:"action,omitempty"`
	Enabled     *bool          `json:"enabled,omitempty"`
}

func (RuleAPI) Schema() *jsonschema.Schema { return ruleSchemaCompiled }
