// Package model contains the persisted document models. The API layer never
// touches these structs directly; it consumes the mapping produced by
// ToMongo.
package model

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExecutionDB is the stored execution record. The sub-documents are
// snapshots taken at execution time, kept schemaless so history survives
// later edits to the referenced definitions.
type ExecutionDB struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Trigger         bson.M             `bson:"trigger,omitempty"`
	TriggerType     bson.M             `bson:"trigger_type,omitempty"`
	TriggerInstance bson.M             `bson:"trigger_instance,omitempty"`
	Rule            bson.M             `bson:"rule,omitempty"`
	Action          bson.M             `bson:"action"`
	Runner          bson.M             `bson:"runner"`
	Liveaction      bson.M             `bson:"liveaction"`
	Parent          string             `bson:"parent,omitempty"`
	Children        []string           `bson:"children,omitempty"`

	// ResultRef points at the offloaded result object when the payload was
	// too large to keep inline.
	ResultRef string `bson:"result_ref,omitempty"`
}

// ToMongo renders the document as the generic mapping consumed by the API
// model conversions.
func (d *ExecutionDB) ToMongo() (bson.M, error) {
	b, err := bson.Marshal(d)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ExecutionDBFromDocument is the inverse of ToMongo.
func ExecutionDBFromDocument(doc bson.M) (*ExecutionDB, error) {
	b, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out ExecutionDB
	if err := bson.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
