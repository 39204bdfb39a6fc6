package scoring

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"salonpro-retention/models"
)

// Thursday.
var slotDay = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

func slotAt(hour, min int) time.Time {
	return slotDay.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestRankSlots_Preferences(t *testing.T) {
	stylist := []SlotStylist{{ID: uuid.New(), Name: "Mia Lopez"}}

	cases := []struct {
		name      string
		prefs     *SlotPreferences
		wantHours []int
		wantScore []float64
		firstWhy  []string
	}{
		{
			name:      "no pattern",
			wantHours: []int{9, 10, 11, 14, 15, 16},
			wantScore: []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
			firstWhy:  []string{"Available slot"},
		},
		{
			name:      "preferred slot",
			prefs:     &SlotPreferences{TimeSlots: []string{"afternoon"}},
			wantHours: []int{14, 15, 16, 9, 10, 11},
			wantScore: []float64{0.7, 0.7, 0.7, 0.5, 0.5, 0.5},
			firstWhy:  []string{"Matches preferred time slot"},
		},
		{
			name:      "preferred day",
			prefs:     &SlotPreferences{Days: []int{4}},
			wantHours: []int{9, 10, 11, 14, 15, 16},
			wantScore: []float64{0.7, 0.7, 0.7, 0.7, 0.7, 0.7},
			firstWhy:  []string{"Matches preferred day"},
		},
		{
			name:      "slot and day",
			prefs:     &SlotPreferences{Days: []int{1, 4}, TimeSlots: []string{"morning"}},
			wantHours: []int{9, 10, 11, 14, 15, 16},
			wantScore: []float64{0.9, 0.9, 0.9, 0.7, 0.7, 0.7},
			firstWhy:  []string{"Matches preferred time slot", "Matches preferred day"},
		},
		{
			name:      "nothing matches",
			prefs:     &SlotPreferences{Days: []int{1}, TimeSlots: []string{"evening"}},
			wantHours: []int{9, 10, 11, 14, 15, 16},
			wantScore: []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
			firstWhy:  []string{"Available slot"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RankSlots(stylist, nil, SlotRequest{Date: slotAt(8, 0), Preferences: tc.prefs})
			if len(got) != len(tc.wantHours) {
				t.Fatalf("got %d slots, want %d", len(got), len(tc.wantHours))
			}
			for i, s := range got {
				if s.Start.Hour() != tc.wantHours[i] || s.Score != tc.wantScore[i] {
					t.Fatalf("slot %d = %02d:00 score %v, want %02d:00 score %v",
						i, s.Start.Hour(), s.Score, tc.wantHours[i], tc.wantScore[i])
				}
				if s.Score > 1 {
					t.Fatalf("score %v above 1", s.Score)
				}
				if !s.End.Equal(s.Start.Add(time.Hour)) {
					t.Fatalf("slot %d ends at %v", i, s.End)
				}
			}
			if !reflect.DeepEqual(got[0].Reasons, tc.firstWhy) {
				t.Fatalf("reasons = %v, want %v", got[0].Reasons, tc.firstWhy)
			}
		})
	}
}

func TestRankSlots_AvailabilityAndLimit(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	stylists := []SlotStylist{{ID: a, Name: "Ana"}, {ID: b, Name: "Ben"}}
	booked := []models.Appointment{
		{StylistID: &a, Status: models.AppointmentConfirmed, StartTime: slotAt(14, 0), EndTime: slotAt(15, 0)},
		{StylistID: &a, Status: models.AppointmentScheduled, StartTime: slotAt(10, 30)},
		{StylistID: &b, Status: models.AppointmentCancelled, StartTime: slotAt(9, 0), EndTime: slotAt(10, 0)},
		{Status: models.AppointmentScheduled, StartTime: slotAt(16, 0), EndTime: slotAt(17, 0)},
	}

	cases := []struct {
		name      string
		req       SlotRequest
		wantCount int
	}{
		{"capped at limit", SlotRequest{Date: slotDay, Limit: MaxSlots}, 10},
		{"no limit", SlotRequest{Date: slotDay}, 10},
		{"afternoon only", SlotRequest{Date: slotDay, NotBefore: slotAt(12, 0)}, 5},
		{"day already over", SlotRequest{Date: slotDay, NotBefore: slotAt(18, 0)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RankSlots(stylists, booked, tc.req)
			if len(got) != tc.wantCount {
				t.Fatalf("got %d slots, want %d", len(got), tc.wantCount)
			}
			for _, s := range got {
				if s.StylistID == a && (s.Start.Hour() == 10 || s.Start.Hour() == 11 || s.Start.Hour() == 14) {
					t.Fatalf("offered a booked slot for Ana at %v", s.Start)
				}
			}
		})
	}

	got := RankSlots(stylists, booked, SlotRequest{Date: slotDay, Limit: 3})
	if len(got) != 3 || got[0].StylistName != "Ana" || got[0].Start.Hour() != 9 || got[2].StylistName != "Ana" || got[2].Start.Hour() != 16 {
		t.Fatalf("ties should keep roster then time order, got %+v", got)
	}
}
