package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"execapi/internal/api"
	"execapi/internal/config"
	"execapi/internal/model"
	"execapi/internal/repository"
	"execapi/internal/storage"
	"execapi/internal/util/isotime"
)

var (
	ErrIDRequired        = errors.New("execution id is required")
	ErrNotFound          = errors.New("execution not found")
	ErrAttributeNotFound = errors.New("attribute not found")
)

// ExecutionListResult is the service-level DTO for paginated records.
type ExecutionListResult struct {
	Items []api.ExecutionAPI `json:"data"`
	Total int                `json:"total"`
}

// ExecutionService defines the use cases around execution records.
type ExecutionService interface {
	// Record stores a new execution record. The ID is assigned when absent,
	// and oversized result payloads are offloaded to object storage before
	// the document is inserted.
	Record(ctx context.Context, exec *api.ExecutionAPI) (*api.ExecutionAPI, error)

	// Get returns a single record with its result re-inflated.
	Get(ctx context.Context, id string) (*api.ExecutionAPI, error)

	// List returns records newest first with a total count. Offloaded
	// results stay offloaded; fetch the record or its result attribute to
	// see them.
	List(ctx context.Context, limit, offset int) (*ExecutionListResult, error)

	// Children returns the records spawned by the given execution.
	Children(ctx context.Context, id string) ([]api.ExecutionAPI, error)

	// Attribute returns one attribute of a record, reading offloaded
	// results from object storage without inflating the whole record.
	Attribute(ctx context.Context, id, name string) (any, error)
}

type executionService struct {
	repo    repository.ExecutionRepository
	store   storage.Storage
	offload config.OffloadConfig
}

// NewExecutionService constructs an ExecutionService.
func NewExecutionService(repo repository.ExecutionRepository, store storage.Storage, offload config.OffloadConfig) ExecutionService {
	return &executionService{repo: repo, store: store, offload: offload}
}

func (s *executionService) Record(ctx context.Context, exec *api.ExecutionAPI) (*api.ExecutionAPI, error) {
	if exec.ID == "" {
		exec.ID = primitive.NewObjectID().Hex()
	}
	if exec.Liveaction != nil && exec.Liveaction.StartTimestamp == "" {
		exec.Liveaction.StartTimestamp = isotime.Format(time.Now(), false)
	}

	doc, err := exec.ToDocument()
	if err != nil {
		return nil, fmt.Errorf("convert execution: %w", err)
	}

	key, err := s.maybeOffload(ctx, exec.ID, doc)
	if err != nil {
		return nil, fmt.Errorf("offload result: %w", err)
	}

	dbModel, err := model.ExecutionDBFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("decode execution document: %w", err)
	}

	stored, err := s.repo.Insert(ctx, dbModel)
	if err != nil {
		// Roll back the offloaded object so storage does not leak.
		if key != "" {
			if delErr := s.store.Delete(ctx, key); delErr != nil {
				return nil, fmt.Errorf("insert failed: %v; rollback delete failed: %v", err, delErr)
			}
		}
		return nil, fmt.Errorf("insert execution: %w", err)
	}

	return s.toAPI(ctx, stored, true)
}

func (s *executionService) Get(ctx context.Context, id string) (*api.ExecutionAPI, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	db, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.toAPI(ctx, db, true)
}

func (s *executionService) List(ctx context.Context, limit, offset int) (*ExecutionListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	page, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}

	items := make([]api.ExecutionAPI, 0, len(page.Items))
	for i := range page.Items {
		m, err := s.toAPI(ctx, &page.Items[i], false)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	return &ExecutionListResult{Items: items, Total: page.Total}, nil
}

func (s *executionService) Children(ctx context.Context, id string) ([]api.ExecutionAPI, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	// The parent must exist; a child query for a missing record is a 404,
	// not an empty list.
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	children, err := s.repo.FindChildren(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]api.ExecutionAPI, 0, len(children))
	for i := range children {
		m, err := s.toAPI(ctx, &children[i], false)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

func (s *executionService) Attribute(ctx context.Context, id, name string) (any, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	db, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// The result may live in object storage rather than the document.
	if name == "result" {
		if db.ResultRef != "" {
			return s.fetchResult(ctx, db.ResultRef)
		}
		if v, ok := db.Liveaction["result"]; ok {
			return v, nil
		}
		return nil, ErrAttributeNotFound
	}

	doc, err := db.ToMongo()
	if err != nil {
		return nil, err
	}
	attrs := api.DocumentAttrs(doc)
	delete(attrs, "result_ref")

	v, ok := attrs[name]
	if !ok {
		return nil, ErrAttributeNotFound
	}
	return v, nil
}

// maybeOffload moves an oversized liveaction result into object storage and
// replaces it with a result_ref pointer on the document. Returns the object
// key when an offload happened.
func (s *executionService) maybeOffload(ctx context.Context, id string, doc bson.M) (string, error) {
	if s.offload.ThresholdBytes <= 0 || s.store == nil {
		return "", nil
	}
	la, ok := doc["liveaction"].(map[string]any)
	if !ok {
		return "", nil
	}
	result, present := la["result"]
	if !present || result == nil {
		return "", nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	if len(payload) <= s.offload.ThresholdBytes {
		return "", nil
	}

	key := path.Join(s.offload.KeyPrefix, id, "result.json")
	_, err = s.store.Put(ctx, key, bytes.NewReader(payload), storage.PutObjectOptions{
		Size:        int64(len(payload)),
		ContentType: "application/json",
	})
	if err != nil {
		return "", err
	}

	delete(la, "result")
	doc["result_ref"] = key
	return key, nil
}

func (s *executionService) fetchResult(ctx context.Context, key string) (any, error) {
	rc, _, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch offloaded result: %w", err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read offloaded result: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode offloaded result: %w", err)
	}
	return out, nil
}

// toAPI converts a stored record into its API representation, optionally
// re-inflating an offloaded result.
func (s *executionService) toAPI(ctx context.Context, db *model.ExecutionDB, inflate bool) (*api.ExecutionAPI, error) {
	doc, err := db.ToMongo()
	if err != nil {
		return nil, err
	}

	if inflate && db.ResultRef != "" {
		result, err := s.fetchResult(ctx, db.ResultRef)
		if err != nil {
			return nil, err
		}
		if la, ok := doc["liveaction"].(bson.M); ok {
			la["result"] = result
		}
	}

	return api.ExecutionFromDocument(doc)
}
