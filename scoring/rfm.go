package scoring

import (
	"sort"
	"time"

	"salonpro-retention/models"
)

// RFM holds the 1-5 sub-scores and the facts they were derived from.
type RFM struct {
	Recency   int `json:"recency"`
	Frequency int `json:"frequency"`
	Monetary  int `json:"monetary"`

	DaysSinceLastVisit int     `json:"daysSinceLastVisit"`
	RecentVisitCount   int     `json:"recentVisitCount"`
	TotalSpend         float64 `json:"totalSpend"`
	CompletedCount     int     `json:"completedCount"`
}

// ScoreRFM scores a client's appointment history as of now. History may be
// in any order and any status; only completed appointments count. A
// completed appointment without a start time still counts toward spend but
// is ignored for recency and the trailing-year frequency window.
func ScoreRFM(history []models.Appointment, now time.Time) RFM {
	var completed []models.Appointment
	for _, a := range history {
		if a.Status == models.AppointmentCompleted {
			completed = append(completed, a)
		}
	}

	r := RFM{
		Recency:            1,
		DaysSinceLastVisit: NoVisitSentinel,
		CompletedCount:     len(completed),
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].StartTime.After(completed[j].StartTime)
	})

	if len(completed) > 0 && !completed[0].StartTime.IsZero() {
		r.DaysSinceLastVisit = int(now.Sub(completed[0].StartTime) / day)
		r.Recency = RecencyScore(r.DaysSinceLastVisit)
	}

	oneYearAgo := now.Add(-365 * day)
	for _, a := range completed {
		r.TotalSpend += a.Price()
		if !a.StartTime.IsZero() && !a.StartTime.Before(oneYearAgo) {
			r.RecentVisitCount++
		}
	}

	r.Frequency = FrequencyScore(r.RecentVisitCount)
	r.Monetary = MonetaryScore(r.TotalSpend)
	return r
}

func RecencyScore(daysSinceLastVisit int) int {
	switch {
	case daysSinceLastVisit <= 30:
		return 5
	case daysSinceLastVisit <= 60:
		return 4
	case daysSinceLastVisit <= 90:
		return 3
	case daysSinceLastVisit <= 180:
		return 2
	default:
		return 1
	}
}

func FrequencyScore(visitsLastYear int) int {
	switch {
	case visitsLastYear >= 12:
		return 5
	case visitsLastYear >= 8:
		return 4
	case visitsLastYear >= 4:
		return 3
	case visitsLastYear >= 2:
		return 2
	default:
		return 1
	}
}

func MonetaryScore(totalSpend float64) int {
	switch {
	case totalSpend >= 2000:
		return 5
	case totalSpend >= 1000:
		return 4
	case totalSpend >= 500:
		return 3
	case totalSpend >= 200:
		return 2
	default:
		return 1
	}
}
