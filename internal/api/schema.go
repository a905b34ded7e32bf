package api

import "encoding/json"

// DeepCopy clones a Go-literal schema so composite schemas can embed
// sub-schemas without sharing mutable state.
func DeepCopy(schema map[string]any) map[string]any {
	b, err := json.Marshal(schema)
	if err != nil {
		panic("api: deep copy schema: " + err.Error())
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		panic("api: deep copy schema: " + err.Error())
	}
	return out
}
