// Package migration bootstraps the collections and indexes the service
// expects. Mongo creates collections lazily, so the only schema to manage
// here is the index set.
package migration

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"execapi/internal/logging"
)

// ExecutionsCollection is the collection holding execution records.
const ExecutionsCollection = "executions"

type indexStep struct {
	Name string
	Keys bson.D
}

var steps = []indexStep{
	{
		Name: "idx_executions_start_timestamp",
		Keys: bson.D{{Key: "liveaction.start_timestamp", Value: -1}},
	},
	{
		Name: "idx_executions_parent",
		Keys: bson.D{{Key: "parent", Value: 1}},
	},
	{
		Name: "idx_executions_liveaction_id",
		Keys: bson.D{{Key: "liveaction.id", Value: 1}},
	},
}

// EnsureIndexes creates the execution indexes if they are missing. Index
// creation is idempotent, so every startup runs through the full list.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *logging.Logger) error {
	start := time.Now()
	coll := db.Collection(ExecutionsCollection)

	log.Info("db_index_check", logging.Fields{
		"collection": ExecutionsCollection,
		"indexes":    len(steps),
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    step.Keys,
			Options: options.Index().SetName(step.Name),
		})
		if err != nil {
			log.Error("db_index_failed", logging.Fields{
				"collection":  ExecutionsCollection,
				"index":       step.Name,
				"error":       err.Error(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			return fmt.Errorf("create index %s: %w", step.Name, err)
		}
		log.Info("db_index_ensured", logging.Fields{
			"collection":       ExecutionsCollection,
			"index":            step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	log.Info("db_index_done", logging.Fields{
		"collection":  ExecutionsCollection,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
