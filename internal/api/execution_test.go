package api

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func executionDoc() bson.M {
	return bson.M{
		"_id":    primitive.NewObjectID(),
		"action": bson.M{"name": "deploy", "pack": "ops"},
		"runner": bson.M{"name": "local-shell"},
		"liveaction": bson.M{
			"action":          "ops.deploy",
			"status":          "succeeded",
			"start_timestamp": time.Date(2024, 5, 17, 9, 30, 45, 123456000, time.UTC),
			"end_timestamp":   time.Date(2024, 5, 17, 9, 31, 0, 0, time.UTC),
			"result":          bson.M{"stdout": "ok"},
		},
	}
}

func TestExecutionFromDocument(t *testing.T) {
	t.Run("timestamps are rendered as ISO strings", func(t *testing.T) {
		m, err := ExecutionFromDocument(executionDoc())
		require.NoError(t, err)

		assert.Equal(t, "2024-05-17T09:30:45.123456Z", m.Liveaction.StartTimestamp)
		assert.Equal(t, "2024-05-17T09:31:00.000000Z", m.Liveaction.EndTimestamp)
	})

	t.Run("end timestamp is optional", func(t *testing.T) {
		doc := executionDoc()
		delete(doc["liveaction"].(bson.M), "end_timestamp")

		m, err := ExecutionFromDocument(doc)
		require.NoError(t, err)
		assert.Empty(t, m.Liveaction.EndTimestamp)
	})

	t.Run("bson datetimes are accepted", func(t *testing.T) {
		doc := executionDoc()
		la := doc["liveaction"].(bson.M)
		la["start_timestamp"] = primitive.NewDateTimeFromTime(
			time.Date(2024, 5, 17, 9, 30, 45, 0, time.UTC))
		delete(la, "end_timestamp")

		m, err := ExecutionFromDocument(doc)
		require.NoError(t, err)
		assert.Equal(t, "2024-05-17T09:30:45.000000Z", m.Liveaction.StartTimestamp)
	})

	t.Run("result_ref bookkeeping never surfaces", func(t *testing.T) {
		doc := executionDoc()
		doc["result_ref"] = "executions/abc/result.json"

		_, err := ExecutionFromDocument(doc)
		require.NoError(t, err)
	})

	t.Run("empty values are dropped", func(t *testing.T) {
		doc := executionDoc()
		doc["parent"] = ""
		doc["children"] = []any{}
		doc["rule"] = bson.M{}

		m, err := ExecutionFromDocument(doc)
		require.NoError(t, err)
		assert.Empty(t, m.Parent)
		assert.Nil(t, m.Children)
		assert.Nil(t, m.Rule)
	})

	t.Run("missing action fails validation", func(t *testing.T) {
		doc := executionDoc()
		delete(doc, "action")

		_, err := ExecutionFromDocument(doc)
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("unknown top-level property fails validation", func(t *testing.T) {
		doc := executionDoc()
		doc["surprise"] = "value"

		_, err := ExecutionFromDocument(doc)
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("missing liveaction", func(t *testing.T) {
		doc := executionDoc()
		delete(doc, "liveaction")

		_, err := ExecutionFromDocument(doc)
		assert.Error(t, err)
	})
}

func TestExecutionToDocument(t *testing.T) {
	exec := &ExecutionAPI{
		ID:     primitive.NewObjectID().Hex(),
		Action: &ActionAPI{Name: "deploy", Pack: "ops"},
		Runner: &RunnerTypeAPI{Name: "local-shell"},
		Liveaction: &LiveActionAPI{
			Action:         "ops.deploy",
			Status:         "running",
			StartTimestamp: "2024-05-17T09:30:45.123456Z",
		},
	}

	doc, err := exec.ToDocument()
	require.NoError(t, err)

	la := doc["liveaction"].(map[string]any)
	start, ok := la["start_timestamp"].(time.Time)
	require.True(t, ok, "start_timestamp is parsed into a native time")
	assert.True(t, start.Equal(time.Date(2024, 5, 17, 9, 30, 45, 123456000, time.UTC)))

	_, hasEnd := la["end_timestamp"]
	assert.False(t, hasEnd)

	t.Run("bad timestamp", func(t *testing.T) {
		bad := *exec
		badLA := *exec.Liveaction
		badLA.StartTimestamp = "not-a-time"
		bad.Liveaction = &badLA

		_, err := bad.ToDocument()
		assert.Error(t, err)
	})
}

func TestExecutionTimestampRoundTrip(t *testing.T) {
	m, err := ExecutionFromDocument(executionDoc())
	require.NoError(t, err)

	doc, err := m.ToDocument()
	require.NoError(t, err)

	again, err := ExecutionFromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, m.Liveaction.StartTimestamp, again.Liveaction.StartTimestamp)
	assert.Equal(t, m.Liveaction.EndTimestamp, again.Liveaction.EndTimestamp)
}
