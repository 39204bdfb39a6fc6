package services

import (
	"context"

	"github.com/google/uuid"

	"salonpro-retention/scoring"
)

// Advisor merges retention and scheduling recommendations into one ranked
// list.
type Advisor struct {
	retention  *RetentionService
	scheduling *SchedulingService
}

func NewAdvisor(retention *RetentionService, scheduling *SchedulingService) *Advisor {
	return &Advisor{retention: retention, scheduling: scheduling}
}

// Recommendations ranks client outreach, appointment reminders and gap
// fills together. limit <= 0 returns everything.
func (a *Advisor) Recommendations(ctx context.Context, businessID uuid.UUID, limit int) ([]scoring.Recommendation, error) {
	var all []scoring.Recommendation

	retention, err := a.retention.retentionItems(ctx, businessID)
	if err != nil {
		return nil, err
	}
	all = append(all, retention...)

	apts, err := a.scheduling.appointmentItems(ctx, businessID)
	if err != nil {
		return nil, err
	}
	all = append(all, apts...)

	gaps, err := a.scheduling.gapItems(ctx, businessID)
	if err != nil {
		return nil, err
	}
	all = append(all, gaps...)

	return scoring.Rank(all, limit), nil
}
