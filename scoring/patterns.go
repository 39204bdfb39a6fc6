package scoring

import (
	"math"
	"sort"
	"time"

	"salonpro-retention/models"
)

// PatternWindow is how many of the most recent appointments feed a booking
// pattern.
const PatternWindow = 50

type BookingPattern struct {
	PreferredDays           []int    `json:"preferredDays"`
	PreferredTimeSlots      []string `json:"preferredTimeSlots"`
	PreferredServices       []string `json:"preferredServices"`
	AvgBookingFrequencyDays int      `json:"avgBookingFrequencyDays"`
	AvgLeadTimeDays         int      `json:"avgLeadTimeDays"`
	CancellationRate        float64  `json:"cancellationRate"`
	NoShowRate              float64  `json:"noShowRate"`
	SampleSize              int      `json:"sampleSize"`
}

// TimeSlot buckets an hour of the day.
func TimeSlot(hour int) string {
	switch {
	case hour < 12:
		return "morning"
	case hour < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

type tally struct {
	key   string
	count int
	first int
}

// topKeys orders by count desc, then first appearance.
func topKeys(counts map[string]*tally, n int) []string {
	all := make([]*tally, 0, len(counts))
	for _, t := range counts {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].first < all[j].first
	})
	out := []string{}
	for i := 0; i < len(all) && i < n; i++ {
		out = append(out, all[i].key)
	}
	return out
}

// AnalyzeBookingPattern derives booking statistics from up to the
// PatternWindow most recent appointments. ok is false when there is no
// history at all.
func AnalyzeBookingPattern(history []models.Appointment, loc *time.Location) (BookingPattern, bool) {
	if len(history) == 0 {
		return BookingPattern{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	apts := append([]models.Appointment(nil), history...)
	sort.SliceStable(apts, func(i, j int) bool {
		return apts[i].StartTime.After(apts[j].StartTime)
	})
	if len(apts) > PatternWindow {
		apts = apts[:PatternWindow]
	}

	var dayCount [7]int
	slots := map[string]*tally{}
	services := map[string]*tally{}
	var cancellations, noShows int
	var leadSum, freqSum float64
	var leadCount, freqCount int

	for i, a := range apts {
		local := a.StartTime.In(loc)
		dayCount[local.Weekday()]++

		slot := TimeSlot(local.Hour())
		if slots[slot] == nil {
			slots[slot] = &tally{key: slot, first: i}
		}
		slots[slot].count++

		if a.ServiceID != nil {
			key := a.ServiceID.String()
			if services[key] == nil {
				services[key] = &tally{key: key, first: i}
			}
			services[key].count++
		}

		switch a.Status {
		case models.AppointmentCancelled:
			cancellations++
		case models.AppointmentNoShow:
			noShows++
		}

		if !a.CreatedAt.IsZero() {
			leadSum += float64(a.StartTime.Sub(a.CreatedAt)) / float64(day)
			leadCount++
		}

		if i < len(apts)-1 {
			freqSum += float64(a.StartTime.Sub(apts[i+1].StartTime)) / float64(day)
			freqCount++
		}
	}

	p := BookingPattern{
		PreferredTimeSlots: topKeys(slots, 2),
		PreferredServices:  topKeys(services, 3),
		CancellationRate:   float64(cancellations) / float64(len(apts)),
		NoShowRate:         float64(noShows) / float64(len(apts)),
		SampleSize:         len(apts),
	}
	if freqCount > 0 {
		p.AvgBookingFrequencyDays = int(math.Round(freqSum / float64(freqCount)))
	}
	if leadCount > 0 {
		p.AvgLeadTimeDays = int(math.Round(leadSum / float64(leadCount)))
	}

	days := []int{0, 1, 2, 3, 4, 5, 6}
	sort.SliceStable(days, func(i, j int) bool {
		return dayCount[days[i]] > dayCount[days[j]]
	})
	p.PreferredDays = []int{}
	for _, d := range days {
		if dayCount[d] == 0 || len(p.PreferredDays) == 2 {
			break
		}
		p.PreferredDays = append(p.PreferredDays, d)
	}
	return p, true
}
