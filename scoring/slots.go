package scoring

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"salonpro-retention/models"
)

// SlotHours are the hourly start times offered for every stylist.
var SlotHours = []int{9, 10, 11, 14, 15, 16}

const (
	SlotMinutes = 60
	// MaxSlots is how many suggestions GetOptimalSlots returns.
	MaxSlots = 10

	slotBasePoints       = 50
	slotPreferencePoints = 20
	slotMaxPoints        = 100
)

type SlotStylist struct {
	ID   uuid.UUID
	Name string
}

// SlotPreferences comes from a client's stored booking pattern.
type SlotPreferences struct {
	Days      []int
	TimeSlots []string
}

type SlotRequest struct {
	// Date is any instant on the target day in Location.
	Date      time.Time
	Location  *time.Location
	NotBefore time.Time
	// Preferences is nil when the client has no pattern.
	Preferences *SlotPreferences
	// Limit <= 0 keeps every candidate.
	Limit int
}

type SlotSuggestion struct {
	StylistID   uuid.UUID `json:"stylistId"`
	StylistName string    `json:"stylistName"`
	Start       time.Time `json:"startTime"`
	End         time.Time `json:"endTime"`
	Score       float64   `json:"score"`
	Reasons     []string  `json:"reasons"`
}

type rankedSlot struct {
	SlotSuggestion
	points int
}

// RankSlots scores each stylist's hourly candidates on the requested day.
// Candidates that overlap one of the stylist's scheduled or confirmed
// appointments, or start before NotBefore, are skipped. Matching the
// client's preferred time slot or day adds 0.2 each to a 0.5 base, capped
// at 1. Equal scores keep roster order, then time order.
func RankSlots(stylists []SlotStylist, booked []models.Appointment, req SlotRequest) []SlotSuggestion {
	loc := req.Location
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := req.Date.In(loc).Date()

	busy := map[uuid.UUID][]models.Appointment{}
	for _, a := range booked {
		if a.StylistID == nil {
			continue
		}
		if a.Status != models.AppointmentScheduled && a.Status != models.AppointmentConfirmed {
			continue
		}
		busy[*a.StylistID] = append(busy[*a.StylistID], a)
	}

	var ranked []rankedSlot
	for _, st := range stylists {
		for _, hour := range SlotHours {
			start := time.Date(y, m, d, hour, 0, 0, 0, loc)
			end := start.Add(SlotMinutes * time.Minute)
			if !req.NotBefore.IsZero() && start.Before(req.NotBefore) {
				continue
			}
			if overlapsAny(busy[st.ID], start, end) {
				continue
			}

			points := slotBasePoints
			reasons := []string{}
			if p := req.Preferences; p != nil {
				if containsString(p.TimeSlots, TimeSlot(hour)) {
					points += slotPreferencePoints
					reasons = append(reasons, "Matches preferred time slot")
				}
				if containsInt(p.Days, int(start.Weekday())) {
					points += slotPreferencePoints
					reasons = append(reasons, "Matches preferred day")
				}
			}
			if points > slotMaxPoints {
				points = slotMaxPoints
			}
			if len(reasons) == 0 {
				reasons = append(reasons, "Available slot")
			}
			ranked = append(ranked, rankedSlot{
				SlotSuggestion: SlotSuggestion{
					StylistID:   st.ID,
					StylistName: st.Name,
					Start:       start,
					End:         end,
					Score:       float64(points) / 100,
					Reasons:     reasons,
				},
				points: points,
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].points > ranked[j].points
	})
	if req.Limit > 0 && len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}
	out := make([]SlotSuggestion, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.SlotSuggestion)
	}
	return out
}

func overlapsAny(apts []models.Appointment, start, end time.Time) bool {
	for _, a := range apts {
		aEnd := a.EndTime
		if !aEnd.After(a.StartTime) {
			aEnd = a.StartTime.Add(SlotMinutes * time.Minute)
		}
		if a.StartTime.Before(end) && aEnd.After(start) {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, n := range list {
		if n == v {
			return true
		}
	}
	return false
}
