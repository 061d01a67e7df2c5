package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/creative-task-api/internal/config"
	"github.com/yukikurage/creative-task-api/internal/models"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "notifications.user.u1", Subject("notifications.user", "u1"))
	assert.Equal(t, "inbox.u1", Subject("inbox.", "u1"))
	assert.Equal(t, "notifications.user.u1", Subject("", "u1"))
}

func TestNew_None(t *testing.T) {
	p, err := New(&config.Config{PushDriver: "none"})
	require.NoError(t, err)
	assert.IsType(t, NoopPusher{}, p)
	assert.NoError(t, p.Push(context.Background(), &models.Notification{UserID: "u1"}))
	assert.NoError(t, p.Close())
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(&config.Config{PushDriver: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNewKafkaPusher(t *testing.T) {
	_, err := NewKafkaPusher(nil, "topic")
	assert.Error(t, err)

	_, err = NewKafkaPusher([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	p, err := NewKafkaPusher([]string{"a:9092", "b:9092"}, "task-notifications")
	require.NoError(t, err)
	assert.Equal(t, "task-notifications", p.writer.Topic)
	assert.NoError(t, p.Close())
}

func TestEncode(t *testing.T) {
	taskID := "t1"
	b, err := encode(&models.Notification{ID: "n1", UserID: "u1", Title: "New Comment", TaskID: &taskID})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "n1", decoded["id"])
	assert.Equal(t, "t1", decoded["task_id"])
}
