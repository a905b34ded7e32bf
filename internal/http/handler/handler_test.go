package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"execapi/internal/api"
	"execapi/internal/service"
	serviceMocks "execapi/internal/service/mocks"
)

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) Ping(ctx context.Context, rp *readpref.ReadPref) error {
	args := m.Called(ctx, rp)
	return args.Error(0)
}

func validExecution(id string) *api.ExecutionAPI {
	return &api.ExecutionAPI{
		ID:     id,
		Action: &api.ActionAPI{Name: "core.local"},
		Runner: &api.RunnerTypeAPI{Name: "local-shell-cmd"},
		Liveaction: &api.LiveActionAPI{
			Action:         "core.local",
			Status:         "succeeded",
			StartTimestamp: "2024-05-17T09:30:45.123456Z",
		},
	}
}

func TestHealthCheck(t *testing.T) {
	db := new(mockPinger)
	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		db.On("Ping", mock.Anything, mock.Anything).Return(nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		db.On("Ping", mock.Anything, mock.Anything).Return(errors.New("no reachable servers")).Once()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body faultPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "dependency unavailable", body.Faultstring)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListExecutions(t *testing.T) {
	mockSvc := new(serviceMocks.MockExecutionService)
	app := fiber.New()
	app.Get("/executions", ListExecutions(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := primitive.NewObjectID().Hex()
		expectedRes := &service.ExecutionListResult{
			Items: []api.ExecutionAPI{*validExecution(id)},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, 5, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/executions?limit=5", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.ExecutionListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		assert.Equal(t, id, result.Items[0].ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("defaults apply when no query is given", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).
			Return(&service.ExecutionListResult{Items: []api.ExecutionAPI{}, Total: 0}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/executions", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/executions?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body faultPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "invalid value for parameter limit", body.Faultstring)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(nil, errors.New("cursor error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/executions", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var body faultPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "internal server error", body.Faultstring)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetExecution(t *testing.T) {
	mockSvc := new(serviceMocks.MockExecutionService)
	app := fiber.New()
	app.Get("/executions/:id", GetExecution(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := primitive.NewObjectID().Hex()
		mockSvc.On("Get", mock.Anything, id).Return(validExecution(id), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/executions/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result api.ExecutionAPI
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := primitive.NewObjectID().Hex()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/executions/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body faultPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "execution not found", body.Faultstring)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/executions/not-an-oid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body faultPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "invalid execution id", body.Faultstring)
	})

	t.Run("service error", func(t *testing.T) {
		id := primitive.NewObjectID().Hex()
		mockSvc.On("Get", mock.Anything, id).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/executions/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestCreateExecution(t *testing.T) {
	mockSvc := new(serviceMocks.MockExecutionService)
	app := fiber.New()
	app.Post("/executions", CreateExecution(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := primitive.NewObjectID().Hex()
		mockSvc.On("Record", mock.Anything, mock.AnythingOfType("*api.ExecutionAPI")).
			Return(validExecution(id), nil).Once()

		payload, _ := json.Marshal(validExecution(""))
		req := httptest.NewRequest(http.MethodPost, "/executions", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result api.ExecutionAPI
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("schema violation", func(t *testing.T) {
		// Missing the required action/runner/liveaction snapshots.
		req := httptest.NewRequest(http.MethodPost, "/executions", bytes.NewReader([]byte(`{"parent":"abc"}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body faultPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.NotEmpty(t, body.Faultstring)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/executions", bytes.NewReader([]byte(`{not json`)))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body faultPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "malformed request body", body.Faultstring)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Record", mock.Anything, mock.AnythingOfType("*api.ExecutionAPI")).
			Return(nil, errors.New("insert failed")).Once()

		payload, _ := json.Marshal(validExecution(""))
		req := httptest.NewRequest(http.MethodPost, "/executions", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetExecutionChildren(t *testing.T) {
	mockSvc := new(serviceMocks.MockExecutionService)
	app := fiber.New()
	app.Get("/executions/:id/children", GetExecutionChildren(mockSvc))

	t.Run("success", func(t *testing.T) {
		parent := primitive.NewObjectID().Hex()
		child := primitive.NewObjectID().Hex()
		mockSvc.On("Children", mock.Anything, parent).
			Return([]api.ExecutionAPI{*validExecution(child)}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/executions/"+parent+"/children", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []api.ExecutionAPI
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result, 1)
		assert.Equal(t, child, result[0].ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing parent", func(t *testing.T) {
		parent := primitive.NewObjectID().Hex()
		mockSvc.On("Children", mock.Anything, parent).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/executions/"+parent+"/children", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetExecutionAttribute(t *testing.T) {
	mockSvc := new(serviceMocks.MockExecutionService)
	app := fiber.New()
	app.Get("/executions/:id/attribute/:attribute", GetExecutionAttribute(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := primitive.NewObjectID().Hex()
		mockSvc.On("Attribute", mock.Anything, id, "result").
			Return(map[string]any{"stdout": "hello"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/executions/"+id+"/attribute/result", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "hello", result["stdout"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing attribute", func(t *testing.T) {
		id := primitive.NewObjectID().Hex()
		mockSvc.On("Attribute", mock.Anything, id, "nope").
			Return(nil, service.ErrAttributeNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/executions/"+id+"/attribute/nope", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body faultPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "attribute not found", body.Faultstring)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteExecution(t *testing.T) {
	app := fiber.New()
	app.Delete("/executions/:id", DeleteExecution())

	req := httptest.NewRequest(http.MethodDelete, "/executions/"+primitive.NewObjectID().Hex(), nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	assert.Equal(t, "null", buf.String())
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockExecutionService)
	RegisterRoutes(app, new(mockPinger), mockSvc)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body faultPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "resource not found", body.Faultstring)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

		var body faultPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "method not allowed", body.Faultstring)
	})
}
