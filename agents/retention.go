package agents

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"salonpro-retention/models"
	"salonpro-retention/services"
)

type retentionAgent struct {
	svc   *services.RetentionService
	limit int
}

func (a *retentionAgent) Type() AgentType { return Retention }

type clientInput struct {
	ClientID uuid.UUID `json:"clientId"`
}

type limitInput struct {
	Limit *int `json:"limit"`
}

func (in limitInput) or(def int) int {
	if in.Limit == nil {
		return def
	}
	return *in.Limit
}

func (a *retentionAgent) Execute(ctx context.Context, businessID uuid.UUID, taskType string, input json.RawMessage) (interface{}, error) {
	switch taskType {
	case "calculate_health":
		var in clientInput
		if err := decode(input, &in); err != nil {
			return nil, err
		}
		if err := requireID(in.ClientID, "clientId"); err != nil {
			return nil, err
		}
		return a.svc.CalculateHealthScore(ctx, businessID, in.ClientID)

	case "calculate_all_health":
		return a.svc.CalculateAllHealthScores(ctx, businessID)

	case "evaluate_vip":
		var in clientInput
		if err := decode(input, &in); err != nil {
			return nil, err
		}
		if err := requireID(in.ClientID, "clientId"); err != nil {
			return nil, err
		}
		return a.svc.EvaluateVipStatus(ctx, businessID, in.ClientID)

	case "check_triggers":
		return a.svc.CheckReengagementTriggers(ctx, businessID)

	case "create_campaign":
		var in models.RetentionCampaign
		if err := decode(input, &in); err != nil {
			return nil, err
		}
		return a.svc.CreateCampaign(ctx, businessID, in)

	case "get_at_risk":
		return a.svc.GetAtRiskClients(ctx, businessID)

	case "get_recommendations":
		var in limitInput
		if err := decode(input, &in); err != nil {
			return nil, err
		}
		return a.svc.GetRecommendations(ctx, businessID, in.or(a.limit))

	case "get_dashboard":
		return a.svc.GetDashboard(ctx, businessID)
	}
	return nil, ErrUnknownTask
}
