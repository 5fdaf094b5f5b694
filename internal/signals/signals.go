package signals

import (
	"context"

	"github.com/maniartech/signals"
)

// TasksChangedData identifies the group whose tasks were created, updated or
// deleted.
type TasksChangedData struct {
	GroupID string
	TaskID  string
}

// TasksChanged fires after any task mutation.
var TasksChanged = signals.New[TasksChangedData]()

// EmitTasksChanged notifies listeners that a group's task set changed
func EmitTasksChanged(ctx context.Context, groupID, taskID string) {
	TasksChanged.Emit(ctx, TasksChangedData{
		GroupID: groupID,
		TaskID:  taskID,
	})
}

// OnTasksChanged registers a handler for task changes
func OnTasksChanged(handler func(ctx context.Context, data TasksChangedData), key ...string) {
	if len(key) > 0 {
		TasksChanged.AddListener(handler, key[0])
	} else {
		TasksChanged.AddListener(handler)
	}
}

// RemoveTasksChangedListener unregisters a handler added with a key
func RemoveTasksChangedListener(key string) {
	TasksChanged.RemoveListener(key)
}
