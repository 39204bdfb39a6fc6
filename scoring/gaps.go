package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"salonpro-retention/models"
)

const (
	// AvgServicePrice values an open hour when estimating gap revenue.
	AvgServicePrice   = 75.0
	MinGapMinutes     = 60
	StylistDayMinutes = 8 * 60
)

type GapCandidate struct {
	StylistID        uuid.UUID `json:"stylistId"`
	Start            time.Time `json:"gapStart"`
	End              time.Time `json:"gapEnd"`
	DurationMinutes  int       `json:"durationMinutes"`
	PotentialRevenue float64   `json:"potentialRevenue"`
}

type GapAnalysis struct {
	Gaps                  []GapCandidate `json:"gaps"`
	BookedMinutes         float64        `json:"bookedMinutes"`
	AvailableMinutes      float64        `json:"availableMinutes"`
	UtilizationRate       float64        `json:"utilizationRate"`
	TotalPotentialRevenue float64        `json:"totalLostRevenue"`
}

// FindGaps scans each stylist's booked appointments in [start, end] for idle
// stretches of at least an hour. Every roster stylist counts toward available
// time even with nothing booked; stylists that appear only on appointments
// are added after the roster. Appointments without a stylist are ignored.
func FindGaps(appointments []models.Appointment, roster []uuid.UUID, start, end time.Time) GapAnalysis {
	byStylist := map[uuid.UUID][]models.Appointment{}
	var order []uuid.UUID
	for _, id := range roster {
		if _, seen := byStylist[id]; seen {
			continue
		}
		byStylist[id] = nil
		order = append(order, id)
	}
	for _, a := range appointments {
		if a.StylistID == nil {
			continue
		}
		if a.Status != models.AppointmentScheduled && a.Status != models.AppointmentConfirmed {
			continue
		}
		id := *a.StylistID
		if _, seen := byStylist[id]; !seen {
			order = append(order, id)
		}
		byStylist[id] = append(byStylist[id], a)
	}

	res := GapAnalysis{Gaps: []GapCandidate{}}
	days := math.Ceil(float64(end.Sub(start)) / float64(day))

	for _, stylist := range order {
		apts := byStylist[stylist]
		sort.SliceStable(apts, func(i, j int) bool {
			return apts[i].StartTime.Before(apts[j].StartTime)
		})

		for i, a := range apts {
			if !a.EndTime.IsZero() && a.EndTime.After(a.StartTime) {
				res.BookedMinutes += a.EndTime.Sub(a.StartTime).Minutes()
			}
			if i == len(apts)-1 {
				continue
			}
			next := apts[i+1]
			gapMinutes := next.StartTime.Sub(a.EndTime).Minutes()
			if gapMinutes < MinGapMinutes {
				continue
			}
			revenue := math.Floor(gapMinutes/60) * AvgServicePrice
			res.TotalPotentialRevenue += revenue
			res.Gaps = append(res.Gaps, GapCandidate{
				StylistID:        stylist,
				Start:            a.EndTime,
				End:              next.StartTime,
				DurationMinutes:  int(gapMinutes),
				PotentialRevenue: revenue,
			})
		}
		res.AvailableMinutes += days * StylistDayMinutes
	}

	if res.AvailableMinutes > 0 {
		res.UtilizationRate = res.BookedMinutes / res.AvailableMinutes
	}
	return res
}

// GapAdvice suggests scheduling actions from the detected gaps.
func GapAdvice(gaps []GapCandidate, utilization float64, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	advice := []string{}
	if utilization < 0.6 {
		advice = append(advice, "Consider running a promotional campaign to increase bookings")
	}
	if len(gaps) > 10 {
		advice = append(advice, "Many gaps detected, review stylist availability settings")
	}

	var morning, afternoon int
	for _, g := range gaps {
		if g.Start.In(loc).Hour() < 12 {
			morning++
		} else {
			afternoon++
		}
	}
	if morning > afternoon*2 {
		advice = append(advice, "Morning slots underbooked, consider morning special promotions")
	} else if afternoon > morning*2 {
		advice = append(advice, "Afternoon slots underbooked, consider afternoon specials")
	}
	return advice
}
