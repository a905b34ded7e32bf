package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"execapi/internal/database/migration"
	"execapi/internal/model"
	"execapi/internal/repository"
)

// ExecutionMongo is the Mongo implementation of
// repository.ExecutionRepository.
type ExecutionMongo struct {
	coll *mongo.Collection
}

// NewExecutionMongo creates the repository over the executions collection.
func NewExecutionMongo(db *mongo.Database) *ExecutionMongo {
	return &ExecutionMongo{coll: db.Collection(migration.ExecutionsCollection)}
}

var _ repository.ExecutionRepository = (*ExecutionMongo)(nil)

// Insert stores a new record. The caller is responsible for assigning the ID.
func (r *ExecutionMongo) Insert(ctx context.Context, exec *model.ExecutionDB) (*model.ExecutionDB, error) {
	if _, err := r.coll.InsertOne(ctx, exec); err != nil {
		return nil, err
	}
	return exec, nil
}

// FindByID fetches a single record by its hex ID.
func (r *ExecutionMongo) FindByID(ctx context.Context, id string) (*model.ExecutionDB, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid execution id %q: %w", id, err)
	}

	var out model.ExecutionDB
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns records newest first with a total count.
func (r *ExecutionMongo) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.ExecutionDB], error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "liveaction.start_timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(pq.Limit)).
		SetSkip(int64(pq.Offset))

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	// cursor.All closes the cursor
	items := make([]model.ExecutionDB, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.ExecutionDB]{
		Items: items,
		Total: int(total),
	}, nil
}

// FindChildren returns the records spawned by the given execution.
func (r *ExecutionMongo) FindChildren(ctx context.Context, id string) ([]model.ExecutionDB, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "liveaction.start_timestamp", Value: 1}})

	cur, err := r.coll.Find(ctx, bson.M{"parent": id}, opts)
	if err != nil {
		return nil, err
	}

	items := make([]model.ExecutionDB, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
