package scoring

import (
	"time"

	"github.com/google/uuid"

	"salonpro-retention/models"
)

var testNow = time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)

func price(v float64) *float64 { return &v }

func apt(status models.AppointmentStatus, start time.Time, total float64) models.Appointment {
	return models.Appointment{
		ID:         uuid.New(),
		Status:     status,
		StartTime:  start,
		TotalPrice: price(total),
	}
}

func daysAgo(n int) time.Time {
	return testNow.Add(-time.Duration(n) * 24 * time.Hour)
}
