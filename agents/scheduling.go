package agents

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"salonpro-retention/services"
)

type schedulingAgent struct {
	svc   *services.SchedulingService
	limit int
}

func (a *schedulingAgent) Type() AgentType { return Scheduling }

type appointmentInput struct {
	AppointmentID uuid.UUID `json:"appointmentId"`
}

type rangeInput struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// slotInput leaves clientId empty to rank slots without a booking pattern.
type slotInput struct {
	ClientID      uuid.UUID `json:"clientId"`
	PreferredDate string    `json:"preferredDate"`
}

type fillInput struct {
	GapID    uuid.UUID `json:"gapId"`
	ClientID uuid.UUID `json:"clientId"`
}

func (a *schedulingAgent) Execute(ctx context.Context, businessID uuid.UUID, taskType string, input json.RawMessage) (interface{}, error) {
	switch taskType {
	case "predict_cancellation":
		var in appointmentInput
		if err := decode(input, &in); err != nil {
			return nil, err
		}
		if err := requireID(in.AppointmentID, "appointmentId"); err != nil {
			return nil, err
		}
		return a.svc.PredictCancellation(ctx, businessID, in.AppointmentID)

	case "predict_all":
		return a.svc.PredictAllUpcoming(ctx, businessID)

	case "analyze_gaps":
		var in rangeInput
		if err := decode(input, &in); err != nil {
			return nil, err
		}
		return a.svc.AnalyzeGaps(ctx, businessID, in.StartDate, in.EndDate)

	case "update_patterns":
		var in clientInput
		if err := decode(input, &in); err != nil {
			return nil, err
		}
		if err := requireID(in.ClientID, "clientId"); err != nil {
			return nil, err
		}
		return a.svc.UpdateClientPatterns(ctx, businessID, in.ClientID)

	case "get_optimal_slots":
		var in slotInput
		if err := decode(input, &in); err != nil {
			return nil, err
		}
		return a.svc.GetOptimalSlots(ctx, businessID, in.ClientID, in.PreferredDate)

	case "get_recommendations":
		var in limitInput
		if err := decode(input, &in); err != nil {
			return nil, err
		}
		return a.svc.GetRecommendations(ctx, businessID, in.or(a.limit))

	case "fill_gap":
		var in fillInput
		if err := decode(input, &in); err != nil {
			return nil, err
		}
		if err := requireID(in.GapID, "gapId"); err != nil {
			return nil, err
		}
		if err := requireID(in.ClientID, "clientId"); err != nil {
			return nil, err
		}
		return a.svc.FillGap(ctx, businessID, in.GapID, in.ClientID)
	}
	return nil, ErrUnknownTask
}
