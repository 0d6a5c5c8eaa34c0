package http

import (
	"net/http"
	"testing"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasksController_ListTaskTypes(t *testing.T) {
	router := NewRouter(RouterConfig{TaskClient: &fakeTaskQueue{}})

	w := performRequest(router, http.MethodGet, "/api/tasks/types", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[struct {
		TaskTypes []TaskTypeInfo `json:"task_types"`
	}](t, w)
	require.Len(t, resp.TaskTypes, 3)
	assert.Equal(t, "sync_collection", resp.TaskTypes[0].Queue)
	assert.Equal(t, "sync_plays", resp.TaskTypes[1].Queue)
	assert.Equal(t, "sync_all", resp.TaskTypes[2].Queue)
}

func TestTasksController_GetTaskStatus(t *testing.T) {
	queue := &fakeTaskQueue{statuses: map[string]backlite.TaskStatus{
		"task-1": backlite.TaskStatusRunning,
	}}
	router := NewRouter(RouterConfig{TaskClient: queue})

	w := performRequest(router, http.MethodGet, "/api/tasks/task-1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string]string](t, w)
	assert.Equal(t, "running", resp["status"])

	w = performRequest(router, http.MethodGet, "/api/tasks/missing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	queue.err = errBoom
	w = performRequest(router, http.MethodGet, "/api/tasks/task-1", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTaskStatusToString(t *testing.T) {
	assert.Equal(t, "pending", taskStatusToString(backlite.TaskStatusPending))
	assert.Equal(t, "running", taskStatusToString(backlite.TaskStatusRunning))
	assert.Equal(t, "success", taskStatusToString(backlite.TaskStatusSuccess))
	assert.Equal(t, "failure", taskStatusToString(backlite.TaskStatusFailure))
	assert.Equal(t, "not_found", taskStatusToString(backlite.TaskStatusNotFound))
}
