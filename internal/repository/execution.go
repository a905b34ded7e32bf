package repository

import (
	"context"

	"execapi/internal/model"
)

// ExecutionRepository defines data access for execution records. Strictly
// persistence operations, no business logic.
type ExecutionRepository interface {
	// Insert stores a new execution record and returns it as stored.
	Insert(ctx context.Context, exec *model.ExecutionDB) (*model.ExecutionDB, error)

	// FindByID returns a record by its ID. A missing record surfaces as
	// mongo.ErrNoDocuments for the service layer to translate.
	FindByID(ctx context.Context, id string) (*model.ExecutionDB, error)

	// List returns a page of records, newest first, and the total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.ExecutionDB], error)

	// FindChildren returns the records whose parent field equals id.
	FindChildren(ctx context.Context, id string) ([]model.ExecutionDB, error)
}
