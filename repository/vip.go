package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"salonpro-retention/models"
)

// ListTierDefinitions returns every tier for the business, active or not.
func (s *Store) ListTierDefinitions(ctx context.Context, businessID uuid.UUID) ([]models.VipTierDefinition, error) {
	var out []models.VipTierDefinition
	err := s.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("min_spend DESC").
		Find(&out).Error
	return out, err
}

func (s *Store) GetTierDefinition(ctx context.Context, businessID, id uuid.UUID) (models.VipTierDefinition, error) {
	var t models.VipTierDefinition
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, id).
		First(&t).Error
	return t, notFound(err)
}

func (s *Store) CreateTierDefinition(ctx context.Context, t *models.VipTierDefinition) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *Store) SaveTierDefinition(ctx context.Context, t *models.VipTierDefinition) error {
	return s.db.WithContext(ctx).Save(t).Error
}

func (s *Store) DeleteTierDefinition(ctx context.Context, businessID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, id).
		Delete(&models.VipTierDefinition{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetVipStatus(ctx context.Context, businessID, clientID uuid.UUID) (models.ClientVipStatus, error) {
	var v models.ClientVipStatus
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND client_id = ?", businessID, clientID).
		First(&v).Error
	return v, notFound(err)
}

// UpsertVipStatus writes the full status row keyed on (business_id,
// client_id) and reloads it. Last write wins, as with health scores.
func (s *Store) UpsertVipStatus(ctx context.Context, row *models.ClientVipStatus) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "business_id"}, {Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"current_tier",
				"tier_start_date",
				"total_spend",
				"total_visits",
				"next_tier_progress",
				"promoted_at",
				"demoted_at",
				"updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return err
	}
	stored, err := s.GetVipStatus(ctx, row.BusinessID, row.ClientID)
	if err != nil {
		return err
	}
	*row = stored
	return nil
}

// ListVipStatuses returns VIP status rows, biggest spenders first. Standard
// tier rows are skipped unless includeStandard is set.
func (s *Store) ListVipStatuses(ctx context.Context, businessID uuid.UUID, includeStandard bool) ([]models.ClientVipStatus, error) {
	var out []models.ClientVipStatus
	q := s.db.WithContext(ctx).Where("business_id = ?", businessID)
	if !includeStandard {
		q = q.Where("current_tier <> ?", models.TierStandard)
	}
	err := q.Order("total_spend DESC").Find(&out).Error
	return out, err
}
