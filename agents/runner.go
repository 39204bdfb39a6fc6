package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"salonpro-retention/logger"
	"salonpro-retention/models"
)

type TaskStore interface {
	CreateTask(ctx context.Context, t *models.AgentTask) error
	SaveTask(ctx context.Context, t *models.AgentTask) error
}

// Result is the envelope returned for every task.
type Result struct {
	TaskID  uuid.UUID   `json:"taskId"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Runner executes agent tasks and keeps an AgentTask row per run.
type Runner struct {
	registry *Registry
	store    TaskStore
	log      *logger.Logger
	now      func() time.Time
}

func NewRunner(registry *Registry, store TaskStore, baseLog *logger.Logger) *Runner {
	return &Runner{
		registry: registry,
		store:    store,
		log:      baseLog.With("service", "AgentRunner"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Execute runs one task. The task row moves pending -> running ->
// completed or failed. The returned error is the task's own failure, or a
// lookup or persistence error when the task could not start.
func (r *Runner) Execute(ctx context.Context, businessID uuid.UUID, agentType AgentType, taskType string, input json.RawMessage) (Result, error) {
	agent, ok := r.registry.Get(agentType)
	if !ok {
		return Result{Error: ErrUnknownAgent.Error()}, fmt.Errorf("%w: %s", ErrUnknownAgent, agentType)
	}
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}

	task := &models.AgentTask{
		BusinessID: businessID,
		AgentType:  string(agentType),
		TaskType:   taskType,
		Input:      []byte(input),
		Status:     models.TaskPending,
	}
	if err := r.store.CreateTask(ctx, task); err != nil {
		return Result{Error: "could not create task"}, fmt.Errorf("create task: %w", err)
	}

	started := r.now()
	task.Status = models.TaskRunning
	task.StartedAt = &started
	if err := r.store.SaveTask(ctx, task); err != nil {
		r.log.Warn("task status update failed", "task_id", task.ID, "error", err)
	}

	data, runErr := agent.Execute(ctx, businessID, taskType, input)

	done := r.now()
	task.CompletedAt = &done
	res := Result{TaskID: task.ID}
	if runErr != nil {
		task.Status = models.TaskFailed
		task.Error = runErr.Error()
		res.Error = runErr.Error()
		r.log.Warn("agent task failed",
			"task_id", task.ID, "agent", agentType, "task", taskType, "error", runErr)
	} else {
		task.Status = models.TaskCompleted
		task.Output = models.ToJSON(data)
		res.Success = true
		res.Data = data
		r.log.Info("agent task completed",
			"task_id", task.ID, "agent", agentType, "task", taskType, "duration", done.Sub(started))
	}

	// Persist the final status even when ctx was cancelled mid-task.
	if err := r.store.SaveTask(context.WithoutCancel(ctx), task); err != nil {
		r.log.Warn("task status update failed", "task_id", task.ID, "error", err)
	}
	return res, runErr
}
