package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"salonpro-retention/models"
)

// UpsertHealthScore writes the row keyed on (business_id, client_id) and
// reloads it so row carries the stored id.
//
// Concurrent recomputes for the same client are not serialized; the last
// write wins. That is an accepted tradeoff, every write is a full recompute
// from the same source data.
func (s *Store) UpsertHealthScore(ctx context.Context, row *models.ClientHealthScore) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "business_id"}, {Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"health_score",
				"health_status",
				"recency_score",
				"frequency_score",
				"monetary_score",
				"churn_probability",
				"last_visit_days_ago",
				"lifetime_value",
				"risk_factors",
				"opportunities",
				"signals",
				"calculated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return err
	}
	stored, err := s.GetHealthScore(ctx, row.BusinessID, row.ClientID)
	if err != nil {
		return err
	}
	*row = stored
	return nil
}

func (s *Store) GetHealthScore(ctx context.Context, businessID, clientID uuid.UUID) (models.ClientHealthScore, error) {
	var h models.ClientHealthScore
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND client_id = ?", businessID, clientID).
		First(&h).Error
	return h, notFound(err)
}

// ListHealthScores returns scores with any of the given statuses (all when
// none are given), lowest health first.
func (s *Store) ListHealthScores(ctx context.Context, businessID uuid.UUID, statuses ...models.HealthStatus) ([]models.ClientHealthScore, error) {
	var out []models.ClientHealthScore
	q := s.db.WithContext(ctx).Where("business_id = ?", businessID)
	if len(statuses) > 0 {
		q = q.Where("health_status IN ?", statuses)
	}
	err := q.Order("health_score ASC").Find(&out).Error
	return out, err
}
