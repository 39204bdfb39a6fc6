package repository

import (
	"context"

	"github.com/google/uuid"

	"salonpro-retention/models"
)

func (s *Store) CreateTask(ctx context.Context, t *models.AgentTask) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *Store) SaveTask(ctx context.Context, t *models.AgentTask) error {
	return s.db.WithContext(ctx).Save(t).Error
}

func (s *Store) GetTask(ctx context.Context, businessID, id uuid.UUID) (models.AgentTask, error) {
	var t models.AgentTask
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, id).
		First(&t).Error
	return t, notFound(err)
}

func (s *Store) CreateActivity(ctx context.Context, a *models.AgentActivity) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *Store) CreateAlert(ctx context.Context, a *models.AgentAlert) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *Store) ListAlerts(ctx context.Context, businessID uuid.UUID, limit int) ([]models.AgentAlert, error) {
	var out []models.AgentAlert
	q := s.db.WithContext(ctx).Where("business_id = ?", businessID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
