package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"salonpro-retention/models"
)

func (s *Store) CreateCampaign(ctx context.Context, c *models.RetentionCampaign) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *Store) SaveCampaign(ctx context.Context, c *models.RetentionCampaign) error {
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *Store) GetCampaign(ctx context.Context, businessID, id uuid.UUID) (models.RetentionCampaign, error) {
	var c models.RetentionCampaign
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, id).
		First(&c).Error
	return c, notFound(err)
}

func (s *Store) ListCampaigns(ctx context.Context, businessID uuid.UUID, activeOnly bool) ([]models.RetentionCampaign, error) {
	var out []models.RetentionCampaign
	q := s.db.WithContext(ctx).Where("business_id = ?", businessID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("created_at").Find(&out).Error
	return out, err
}

func (s *Store) IncrementCampaignSent(ctx context.Context, campaignID uuid.UUID, n int) error {
	return s.db.WithContext(ctx).
		Model(&models.RetentionCampaign{}).
		Where("id = ?", campaignID).
		UpdateColumn("sent_count", gorm.Expr("sent_count + ?", n)).Error
}

func (s *Store) HasInProgressTrigger(ctx context.Context, campaignID, clientID uuid.UUID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.ReengagementTrigger{}).
		Where("campaign_id = ? AND client_id = ? AND status = ?", campaignID, clientID, models.TriggerInProgress).
		Count(&n).Error
	return n > 0, err
}

func (s *Store) CreateTrigger(ctx context.Context, t *models.ReengagementTrigger) error {
	return s.db.WithContext(ctx).Create(t).Error
}

type TriggerStat struct {
	TriggerType models.TriggerType `json:"triggerType"`
	Total       int                `json:"total"`
	Converted   int                `json:"converted"`
}

func (s *Store) TriggerStats(ctx context.Context, businessID uuid.UUID) ([]TriggerStat, error) {
	var out []TriggerStat
	err := s.db.WithContext(ctx).
		Model(&models.ReengagementTrigger{}).
		Select("trigger_type, COUNT(*) AS total, SUM(CASE WHEN converted_to_booking THEN 1 ELSE 0 END) AS converted").
		Where("business_id = ?", businessID).
		Group("trigger_type").
		Order("trigger_type").
		Scan(&out).Error
	return out, err
}

func (s *Store) CreateMessageLog(ctx context.Context, m *models.MessageLog) error {
	return s.db.WithContext(ctx).Create(m).Error
}
