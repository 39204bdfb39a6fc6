package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"salonpro-retention/services"
)

type AgentType string

const (
	Retention  AgentType = services.AgentRetention
	Scheduling AgentType = services.AgentScheduling
)

var (
	ErrUnknownAgent = errors.New("unknown agent type")
	ErrUnknownTask  = fmt.Errorf("unknown task type: %w", services.ErrInvalidInput)
)

// Agent runs the task types it knows for one business.
type Agent interface {
	Type() AgentType
	Execute(ctx context.Context, businessID uuid.UUID, taskType string, input json.RawMessage) (interface{}, error)
}

// Services is everything an agent constructor may need.
type Services struct {
	Retention          *services.RetentionService
	Scheduling         *services.SchedulingService
	RecommendationSize int
}

type constructor func(Services) Agent

var constructors = map[AgentType]constructor{
	Retention:  func(s Services) Agent { return &retentionAgent{svc: s.Retention, limit: s.RecommendationSize} },
	Scheduling: func(s Services) Agent { return &schedulingAgent{svc: s.Scheduling, limit: s.RecommendationSize} },
}

// Registry holds one agent per type, built once at startup.
type Registry struct {
	agents map[AgentType]Agent
}

func NewRegistry(s Services) *Registry {
	r := &Registry{agents: make(map[AgentType]Agent, len(constructors))}
	for t, build := range constructors {
		r.agents[t] = build(s)
	}
	return r
}

func (r *Registry) Get(t AgentType) (Agent, bool) {
	a, ok := r.agents[t]
	return a, ok
}

// Types lists the registered agent types in name order.
func (r *Registry) Types() []AgentType {
	out := make([]AgentType, 0, len(r.agents))
	for t := range r.agents {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func decode(input json.RawMessage, v interface{}) error {
	if len(input) == 0 || string(input) == "null" {
		return nil
	}
	if err := json.Unmarshal(input, v); err != nil {
		return fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
	}
	return nil
}

func requireID(id uuid.UUID, field string) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: %s is required", services.ErrInvalidInput, field)
	}
	return nil
}
