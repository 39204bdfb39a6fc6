package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salonpro-retention/agents"
	"salonpro-retention/models"
	"salonpro-retention/utils"
)

type TaskRunner interface {
	Execute(ctx context.Context, businessID uuid.UUID, agentType agents.AgentType, taskType string, input json.RawMessage) (agents.Result, error)
}

type AgentStore interface {
	GetTask(ctx context.Context, businessID, id uuid.UUID) (models.AgentTask, error)
	ListAlerts(ctx context.Context, businessID uuid.UUID, limit int) ([]models.AgentAlert, error)
}

// AgentController exposes the agent task endpoint and the alert feed.
type AgentController struct {
	runner TaskRunner
	store  AgentStore
}

func NewAgentController(runner TaskRunner, store AgentStore) *AgentController {
	return &AgentController{runner: runner, store: store}
}

type RunTaskInput struct {
	TaskType string          `json:"taskType" binding:"required"`
	Input    json.RawMessage `json:"input"`
}

// RunTask executes a task synchronously. A task that ran but failed still
// returns its task id in the body.
func (ac *AgentController) RunTask(c *gin.Context) {
	var input RunTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	res, err := ac.runner.Execute(c.Request.Context(), utils.BusinessID(c),
		agents.AgentType(c.Param("type")), input.TaskType, input.Input)
	if err != nil {
		if res.TaskID == uuid.Nil {
			respondError(c, err)
			return
		}
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			res.Error = "Internal server error"
		}
		c.JSON(status, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ac *AgentController) GetTask(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	task, err := ac.store.GetTask(c.Request.Context(), utils.BusinessID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, task)
}

func (ac *AgentController) ListAlerts(c *gin.Context) {
	out, err := ac.store.ListAlerts(c.Request.Context(), utils.BusinessID(c), utils.QueryLimit(c, 50))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, out)
}
