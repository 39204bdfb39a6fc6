package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salonpro-retention/models"
)

func (s *Store) ListActiveBusinesses(ctx context.Context) ([]models.Business, error) {
	var out []models.Business
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&out).Error
	return out, err
}

func (s *Store) GetBusiness(ctx context.Context, id uuid.UUID) (models.Business, error) {
	var b models.Business
	err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error
	return b, notFound(err)
}

func (s *Store) GetClient(ctx context.Context, businessID, clientID uuid.UUID) (models.Client, error) {
	var c models.Client
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, clientID).
		First(&c).Error
	return c, notFound(err)
}

func (s *Store) ListActiveClients(ctx context.Context, businessID uuid.UUID) ([]models.Client, error) {
	var out []models.Client
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND is_active = ?", businessID, true).
		Order("created_at").
		Find(&out).Error
	return out, err
}

func (s *Store) ClientsByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]models.Client, error) {
	var out []models.Client
	if len(ids) == 0 {
		return out, nil
	}
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND id IN ?", businessID, ids).
		Find(&out).Error
	return out, err
}

// ClientAppointments returns the client's appointments, newest first.
// limit <= 0 returns all of them.
func (s *Store) ClientAppointments(ctx context.Context, businessID, clientID uuid.UUID, limit int) ([]models.Appointment, error) {
	var out []models.Appointment
	q := s.db.WithContext(ctx).
		Where("business_id = ? AND client_id = ?", businessID, clientID).
		Order("start_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

func (s *Store) GetAppointment(ctx context.Context, businessID, id uuid.UUID) (models.Appointment, error) {
	var a models.Appointment
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, id).
		First(&a).Error
	return a, notFound(err)
}

// ListActiveStylists returns the business's active stylists in roster order.
func (s *Store) ListActiveStylists(ctx context.Context, businessID uuid.UUID) ([]models.Stylist, error) {
	var out []models.Stylist
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND is_active = ?", businessID, true).
		Order("created_at, id").
		Find(&out).Error
	return out, err
}

// AppointmentsInRange returns appointments starting in [start, end) with one
// of the given statuses, ordered by start time.
func (s *Store) AppointmentsInRange(ctx context.Context, businessID uuid.UUID, start, end time.Time, statuses ...models.AppointmentStatus) ([]models.Appointment, error) {
	var out []models.Appointment
	q := s.db.WithContext(ctx).
		Where("business_id = ? AND start_time >= ? AND start_time < ?", businessID, start, end)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Order("start_time").Find(&out).Error
	return out, err
}

func (s *Store) AppointmentsByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]models.Appointment, error) {
	var out []models.Appointment
	if len(ids) == 0 {
		return out, nil
	}
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND id IN ?", businessID, ids).
		Find(&out).Error
	return out, err
}

// ClientIDsWithAppointments lists every client that has at least one
// appointment with the business.
func (s *Store) ClientIDsWithAppointments(ctx context.Context, businessID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("business_id = ?", businessID).
		Distinct().
		Order("client_id").
		Pluck("client_id", &ids).Error
	return ids, err
}
