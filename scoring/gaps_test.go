package scoring

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"salonpro-retention/models"
)

func booked(stylist *uuid.UUID, status models.AppointmentStatus, startHour, startMin, endHour, endMin int) models.Appointment {
	d := func(h, m int) time.Time { return time.Date(2026, 10, 21, h, m, 0, 0, time.UTC) }
	return models.Appointment{
		ID:        uuid.New(),
		StylistID: stylist,
		Status:    status,
		StartTime: d(startHour, startMin),
		EndTime:   d(endHour, endMin),
	}
}

func TestFindGaps(t *testing.T) {
	s1, s2, s3 := uuid.New(), uuid.New(), uuid.New()
	apts := []models.Appointment{
		booked(&s1, models.AppointmentConfirmed, 12, 0, 13, 0),
		booked(&s1, models.AppointmentScheduled, 9, 0, 10, 0),
		booked(&s1, models.AppointmentScheduled, 13, 30, 14, 30),
		booked(&s1, models.AppointmentCancelled, 10, 0, 12, 0),
		booked(&s2, models.AppointmentScheduled, 10, 0, 11, 0),
		booked(&s2, models.AppointmentScheduled, 12, 30, 13, 0),
		booked(&s3, models.AppointmentScheduled, 9, 0, 10, 0),
		booked(&s3, models.AppointmentScheduled, 11, 0, 12, 0),
		booked(nil, models.AppointmentScheduled, 8, 0, 9, 0),
	}
	start := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	res := FindGaps(apts, nil, start, start.Add(24*time.Hour))

	if len(res.Gaps) != 3 {
		t.Fatalf("expected 3 gaps, got %d: %+v", len(res.Gaps), res.Gaps)
	}
	want := []struct {
		stylist uuid.UUID
		minutes int
		revenue float64
	}{
		{s1, 120, 150},
		{s2, 90, 75},
		{s3, 60, 75},
	}
	for i, w := range want {
		g := res.Gaps[i]
		if g.StylistID != w.stylist || g.DurationMinutes != w.minutes || g.PotentialRevenue != w.revenue {
			t.Fatalf("gap %d = %+v, want %+v", i, g, w)
		}
	}
	if res.BookedMinutes != 390 || res.AvailableMinutes != 1440 {
		t.Fatalf("booked=%v available=%v", res.BookedMinutes, res.AvailableMinutes)
	}
	if res.UtilizationRate != 390.0/1440.0 {
		t.Fatalf("utilization=%v", res.UtilizationRate)
	}
	if res.TotalPotentialRevenue != 300 {
		t.Fatalf("revenue=%v", res.TotalPotentialRevenue)
	}
}

func TestFindGaps_Empty(t *testing.T) {
	start := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	res := FindGaps(nil, nil, start, start.Add(24*time.Hour))
	if res.Gaps == nil || len(res.Gaps) != 0 || res.UtilizationRate != 0 {
		t.Fatalf("expected empty analysis, got %+v", res)
	}
}

func TestFindGaps_IdleRosterStylist(t *testing.T) {
	busy, idle := uuid.New(), uuid.New()
	apts := []models.Appointment{
		booked(&busy, models.AppointmentScheduled, 9, 0, 13, 0),
	}
	start := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		roster    []uuid.UUID
		available float64
	}{
		{"appointments only", nil, 480},
		{"idle stylist on roster", []uuid.UUID{busy, idle}, 960},
		{"duplicate roster entries", []uuid.UUID{idle, idle, busy}, 960},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := FindGaps(apts, tc.roster, start, start.Add(24*time.Hour))
			if res.AvailableMinutes != tc.available || res.BookedMinutes != 240 {
				t.Fatalf("booked=%v available=%v, want 240/%v", res.BookedMinutes, res.AvailableMinutes, tc.available)
			}
			if res.UtilizationRate != 240/tc.available {
				t.Fatalf("utilization=%v", res.UtilizationRate)
			}
			if len(res.Gaps) != 0 {
				t.Fatalf("idle stylists have no gaps between bookings, got %+v", res.Gaps)
			}
		})
	}
}

func TestGapAdvice(t *testing.T) {
	mk := func(hour int) GapCandidate {
		return GapCandidate{Start: time.Date(2026, 10, 21, hour, 0, 0, 0, time.UTC)}
	}
	got := GapAdvice([]GapCandidate{mk(9), mk(10), mk(11), mk(14)}, 0.5, time.UTC)
	want := []string{
		"Consider running a promotional campaign to increase bookings",
		"Morning slots underbooked, consider morning special promotions",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("advice=%v want %v", got, want)
	}

	if got := GapAdvice([]GapCandidate{mk(9), mk(15)}, 0.9, time.UTC); len(got) != 0 {
		t.Fatalf("expected no advice for a balanced busy schedule, got %v", got)
	}
}
