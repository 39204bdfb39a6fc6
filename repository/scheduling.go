package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"salonpro-retention/models"
)

// InsertPrediction appends a prediction. Predictions are never updated in
// place except for outcome tracking.
func (s *Store) InsertPrediction(ctx context.Context, p *models.CancellationPrediction) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Store) GetPrediction(ctx context.Context, businessID, id uuid.UUID) (models.CancellationPrediction, error) {
	var p models.CancellationPrediction
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, id).
		First(&p).Error
	return p, notFound(err)
}

// ListOpenPredictions returns predictions at the given levels that have no
// recorded outcome yet, riskiest first.
func (s *Store) ListOpenPredictions(ctx context.Context, businessID uuid.UUID, levels ...models.RiskLevel) ([]models.CancellationPrediction, error) {
	var out []models.CancellationPrediction
	q := s.db.WithContext(ctx).
		Where("business_id = ? AND actual_outcome IS NULL", businessID)
	if len(levels) > 0 {
		q = q.Where("risk_level IN ?", levels)
	}
	err := q.Order("risk_score DESC").Order("predicted_at DESC").Find(&out).Error
	return out, err
}

func (s *Store) RecordPredictionOutcome(ctx context.Context, businessID, id uuid.UUID, outcome string, actionTaken *string, at time.Time) error {
	updates := map[string]interface{}{"actual_outcome": outcome}
	if actionTaken != nil {
		updates["action_taken"] = *actionTaken
		updates["action_taken_at"] = at
	}
	res := s.db.WithContext(ctx).
		Model(&models.CancellationPrediction{}).
		Where("business_id = ? AND id = ?", businessID, id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpsertBookingPattern(ctx context.Context, row *models.ClientBookingPattern) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "business_id"}, {Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"preferred_days",
				"preferred_time_slots",
				"preferred_services",
				"avg_booking_frequency_days",
				"avg_lead_time_days",
				"cancellation_rate",
				"no_show_rate",
				"last_updated",
			}),
		}).
		Create(row).Error
	if err != nil {
		return err
	}
	stored, err := s.GetBookingPattern(ctx, row.BusinessID, row.ClientID)
	if err != nil {
		return err
	}
	*row = stored
	return nil
}

func (s *Store) GetBookingPattern(ctx context.Context, businessID, clientID uuid.UUID) (models.ClientBookingPattern, error) {
	var p models.ClientBookingPattern
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND client_id = ?", businessID, clientID).
		First(&p).Error
	return p, notFound(err)
}

// UpsertGap refreshes the gap's bounds and value but leaves its status, so
// re-analysis never reopens a filled gap. g is reloaded from the stored row.
func (s *Store) UpsertGap(ctx context.Context, g *models.ScheduleGap) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "business_id"}, {Name: "stylist_id"}, {Name: "gap_start"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"gap_end",
				"duration_minutes",
				"potential_revenue",
			}),
		}).
		Create(g).Error
	if err != nil {
		return err
	}
	var stored models.ScheduleGap
	err = s.db.WithContext(ctx).
		Where("business_id = ? AND stylist_id = ? AND gap_start = ?", g.BusinessID, g.StylistID, g.GapStart).
		First(&stored).Error
	if err != nil {
		return notFound(err)
	}
	*g = stored
	return nil
}

func (s *Store) GetGap(ctx context.Context, businessID, id uuid.UUID) (models.ScheduleGap, error) {
	var g models.ScheduleGap
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, id).
		First(&g).Error
	return g, notFound(err)
}

// ListOpenGaps returns open gaps starting at or after from, earliest first.
func (s *Store) ListOpenGaps(ctx context.Context, businessID uuid.UUID, from time.Time) ([]models.ScheduleGap, error) {
	var out []models.ScheduleGap
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND status = ? AND gap_start >= ?", businessID, models.GapOpen, from).
		Order("gap_start ASC").
		Find(&out).Error
	return out, err
}

// FillGap marks an open gap as filled. ErrNotFound covers both a missing gap
// and one that was already filled.
func (s *Store) FillGap(ctx context.Context, businessID, gapID, clientID uuid.UUID, at time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&models.ScheduleGap{}).
		Where("business_id = ? AND id = ? AND status = ?", businessID, gapID, models.GapOpen).
		Updates(map[string]interface{}{
			"status":    models.GapFilled,
			"filled_by": clientID,
			"filled_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
