package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crmhook-io/crmhook/pkg/crmhook"
)

// TasksClient implements crmhook.TasksClient. The task tracker API differs
// from the CRM namespace: items are addressed by "taskId", request fields
// travel under a "fields" key, and results nest under "task" (single) or
// "tasks" (listing). The client absorbs those quirks so callers see the
// same flat surface as the CRM entities.
type TasksClient struct {
	client *Client
}

// NewTasksClient creates a new tasks client.
func NewTasksClient(client *Client) *TasksClient {
	return &TasksClient{client: client}
}

// Get fetches one task by identifier.
func (c *TasksClient) Get(ctx context.Context, id int64) (crmhook.Entity, error) {
	result, err := c.client.Call(ctx, "tasks.task.get", crmhook.Fields{"taskId": id})
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}

	entity, err := result.Entity("task")
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}

	return entity, nil
}

// List returns an offset-cursor page iterator over the task listing.
func (c *TasksClient) List(ctx context.Context, params crmhook.Fields) *crmhook.ListIterator {
	return crmhook.NewListIterator(ctx, c.client, "tasks.task.list", params, crmhook.WithResultKey("tasks"))
}

// Add creates one task and returns its new identifier.
func (c *TasksClient) Add(ctx context.Context, fields crmhook.Fields) (int64, error) {
	result, err := c.client.Call(ctx, "tasks.task.add", crmhook.Fields{"fields": fields})
	if err != nil {
		return 0, fmt.Errorf("adding task: %w", err)
	}

	entity, err := result.Entity("task")
	if err != nil {
		return 0, fmt.Errorf("adding task: %w", err)
	}

	id, err := taskID(entity)
	if err != nil {
		return 0, fmt.Errorf("adding task: %w", err)
	}

	return id, nil
}

// Update modifies one task.
func (c *TasksClient) Update(ctx context.Context, id int64, fields crmhook.Fields) error {
	_, err := c.client.Call(ctx, "tasks.task.update", crmhook.Fields{"taskId": id, "fields": fields})
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}

	return nil
}

// Delete removes one task.
func (c *TasksClient) Delete(ctx context.Context, id int64) error {
	_, err := c.client.Call(ctx, "tasks.task.delete", crmhook.Fields{"taskId": id})
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}

	return nil
}

// AddMany creates many tasks through the bulk batch primitive and returns
// their new identifiers in item order.
func (c *TasksClient) AddMany(ctx context.Context, items []crmhook.Fields) ([]int64, error) {
	results, err := c.client.bulkBatch(ctx, "tasks.task.add", items, func(_ int, item crmhook.Fields) (crmhook.Fields, error) {
		return crmhook.Fields{"fields": item}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("adding tasks: %w", err)
	}

	ids := make([]int64, len(results))

	for i, raw := range results {
		var wrapper struct {
			Task crmhook.Entity `json:"task"`
		}

		err := json.Unmarshal(raw, &wrapper)
		if err != nil {
			return nil, fmt.Errorf("decoding task result %d: %w", i, err)
		}

		id, err := taskID(wrapper.Task)
		if err != nil {
			return nil, fmt.Errorf("decoding task result %d: %w", i, err)
		}

		ids[i] = id
	}

	return ids, nil
}

// UpdateMany modifies many tasks. Every item must carry an "ID" field; an
// item without one fails the operation before its chunk is sent.
func (c *TasksClient) UpdateMany(ctx context.Context, items []crmhook.Fields) error {
	_, err := c.client.bulkBatch(ctx, "tasks.task.update", items, func(index int, item crmhook.Fields) (crmhook.Fields, error) {
		id, ok := crmhook.Entity(item).ID()
		if !ok {
			return nil, &crmhook.IdentifierMissingError{Index: index}
		}

		fields := make(crmhook.Fields, len(item))

		for key, value := range item {
			if key == "ID" {
				continue
			}

			fields[key] = value
		}

		return crmhook.Fields{"taskId": id, "fields": fields}, nil
	})
	if err != nil {
		return fmt.Errorf("updating tasks: %w", err)
	}

	return nil
}

// DeleteMany removes many tasks by identifier.
func (c *TasksClient) DeleteMany(ctx context.Context, ids []int64) error {
	items := make([]crmhook.Fields, len(ids))
	for i, id := range ids {
		items[i] = crmhook.Fields{"taskId": id}
	}

	_, err := c.client.bulkBatch(ctx, "tasks.task.delete", items, func(_ int, item crmhook.Fields) (crmhook.Fields, error) {
		return item, nil
	})
	if err != nil {
		return fmt.Errorf("deleting tasks: %w", err)
	}

	return nil
}

// taskID reads a task's identifier, which the tracker reports lower-case.
func taskID(task crmhook.Entity) (int64, error) {
	id, ok := crmhook.Entity{"ID": task["id"]}.ID()
	if !ok {
		return 0, fmt.Errorf("%w: task id %v", crmhook.ErrNotAnIdentifier, task["id"])
	}

	return id, nil
}
