package scoring

import (
	"fmt"
	"math"
	"time"

	"salonpro-retention/models"
)

// Risk contributions are kept in hundredths so that sums such as
// 0.30 + 0.15 + 0.05 land exactly on the level thresholds.
const (
	pointsHighCancellation     = 30
	pointsModerateCancellation = 15
	pointsHighNoShow           = 25
	pointsLongLeadTime         = 15
	pointsNewClient            = 10
	pointsHighRiskWeekday      = 5
	pointsMax                  = 100
)

type CancellationAssessment struct {
	RiskScore        float64          `json:"riskScore"`
	RiskLevel        models.RiskLevel `json:"riskLevel"`
	RiskFactors      []string         `json:"riskFactors"`
	Signals          []Signal         `json:"signals"`
	Recommendations  []string         `json:"recommendations"`
	LeadTimeDays     int              `json:"leadTimeDays"`
	CancellationRate float64          `json:"cancellationRate"`
	NoShowRate       float64          `json:"noShowRate"`
	HistoryCount     int              `json:"historyCount"`
}

// LeadTimeDays rounds the time until start up to whole days.
func LeadTimeDays(start, now time.Time) int {
	return int(math.Ceil(float64(start.Sub(now)) / float64(day)))
}

// PredictCancellation scores one appointment starting at start against the
// client's recent history (any status). start should already be in the
// business's local time so the weekday check matches the salon calendar.
// The sum is clamped at 1, so several saturating factors read the same.
func PredictCancellation(start time.Time, history []models.Appointment, now time.Time) CancellationAssessment {
	total := len(history)
	var cancellations, noShows int
	for _, a := range history {
		switch a.Status {
		case models.AppointmentCancelled:
			cancellations++
		case models.AppointmentNoShow:
			noShows++
		}
	}

	c := CancellationAssessment{
		RiskFactors:  []string{},
		Signals:      []Signal{},
		HistoryCount: total,
	}
	if total > 0 {
		c.CancellationRate = float64(cancellations) / float64(total)
		c.NoShowRate = float64(noShows) / float64(total)
	}
	c.LeadTimeDays = LeadTimeDays(start, now)

	points := 0
	add := func(p int, signal Signal, factor string) {
		points += p
		c.Signals = append(c.Signals, signal)
		c.RiskFactors = append(c.RiskFactors, factor)
	}

	if c.CancellationRate > 0.3 {
		add(pointsHighCancellation, Signal{Type: SignalHighCancellation, Value: c.CancellationRate},
			fmt.Sprintf("High cancellation rate (%d%%)", percent(c.CancellationRate)))
	} else if c.CancellationRate > 0.15 {
		add(pointsModerateCancellation, Signal{Type: SignalModerateCancel, Value: c.CancellationRate},
			fmt.Sprintf("Moderate cancellation rate (%d%%)", percent(c.CancellationRate)))
	}

	if c.NoShowRate > 0.2 {
		add(pointsHighNoShow, Signal{Type: SignalHighNoShow, Value: c.NoShowRate},
			fmt.Sprintf("High no-show rate (%d%%)", percent(c.NoShowRate)))
	}

	if c.LeadTimeDays > 14 {
		add(pointsLongLeadTime, Signal{Type: SignalLongLeadTime, Value: float64(c.LeadTimeDays)},
			"Booked more than 2 weeks in advance")
	}

	if total <= 1 {
		add(pointsNewClient, Signal{Type: SignalNewClient, Value: float64(total)},
			"New client with limited history")
	}

	if wd := start.Weekday(); wd == time.Monday || wd == time.Friday {
		add(pointsHighRiskWeekday, Signal{Type: SignalHighRiskWeekday, Value: float64(wd)},
			fmt.Sprintf("%s appointments have higher cancellation rates", wd))
	}

	if points > pointsMax {
		points = pointsMax
	}
	c.RiskScore = float64(points) / 100
	c.RiskLevel = RiskLevelFor(c.RiskScore)
	c.Recommendations = CancellationRecommendations(c.RiskLevel, c.LeadTimeDays)
	return c
}

// RiskLevelFor evaluates the fixed thresholds from high to low.
func RiskLevelFor(score float64) models.RiskLevel {
	switch {
	case score >= 0.7:
		return models.RiskCritical
	case score >= 0.5:
		return models.RiskHigh
	case score >= 0.3:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func CancellationRecommendations(level models.RiskLevel, leadTimeDays int) []string {
	switch level {
	case models.RiskCritical, models.RiskHigh:
		recs := []string{
			"Send additional reminder 48 hours before appointment",
			"Consider requiring deposit for this client",
		}
		if leadTimeDays > 7 {
			recs = append(recs, "Send confirmation request closer to appointment date")
		}
		return recs
	case models.RiskMedium:
		return []string{"Send friendly reminder 24 hours before"}
	}
	return []string{}
}

func percent(rate float64) int {
	return int(math.Round(rate * 100))
}
