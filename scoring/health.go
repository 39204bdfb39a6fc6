package scoring

import (
	"fmt"
	"math"

	"salonpro-retention/models"
)

type HealthAssessment struct {
	RFM              RFM                 `json:"rfmScores"`
	HealthScore      int                 `json:"healthScore"`
	HealthStatus     models.HealthStatus `json:"healthStatus"`
	ChurnProbability float64             `json:"churnProbability"`
	RiskFactors      []string            `json:"riskFactors"`
	Opportunities    []string            `json:"opportunities"`
	Signals          []Signal            `json:"signals"`
	Recommendations  []string            `json:"recommendations"`
}

// HealthScore maps the three sub-scores onto 0-100.
func HealthScore(recency, frequency, monetary int) int {
	return int(math.Round(float64(recency+frequency+monetary) / 15 * 100))
}

// ChurnProbability is (100 - score) / 100 clamped to [0, 1].
func ChurnProbability(healthScore int) float64 {
	p := float64(100-healthScore) / 100
	return math.Max(0, math.Min(1, p))
}

// HealthStatusFor applies the status rules in order. A client with no
// completed appointments is new whatever the score says.
func HealthStatusFor(healthScore, completedCount int) models.HealthStatus {
	switch {
	case completedCount == 0:
		return models.HealthNew
	case healthScore >= 70:
		return models.HealthHealthy
	case healthScore >= 50:
		return models.HealthAtRisk
	case healthScore >= 30:
		return models.HealthChurning
	default:
		return models.HealthChurned
	}
}

// ClassifyHealth turns RFM facts into the full health assessment.
func ClassifyHealth(r RFM) HealthAssessment {
	score := HealthScore(r.Recency, r.Frequency, r.Monetary)
	h := HealthAssessment{
		RFM:              r,
		HealthScore:      score,
		HealthStatus:     HealthStatusFor(score, r.CompletedCount),
		ChurnProbability: ChurnProbability(score),
		RiskFactors:      []string{},
		Opportunities:    []string{},
		Signals:          []Signal{},
	}

	if r.DaysSinceLastVisit > 90 {
		h.RiskFactors = append(h.RiskFactors, fmt.Sprintf("No visit in %d days", r.DaysSinceLastVisit))
		h.Signals = append(h.Signals, Signal{Type: SignalInactive, Value: float64(r.DaysSinceLastVisit)})
	}
	if r.RecentVisitCount < 4 {
		h.RiskFactors = append(h.RiskFactors, "Low visit frequency")
		h.Signals = append(h.Signals, Signal{Type: SignalLowFrequency, Value: float64(r.RecentVisitCount)})
	}
	if r.TotalSpend < 200 {
		h.RiskFactors = append(h.RiskFactors, "Below average lifetime spend")
		h.Signals = append(h.Signals, Signal{Type: SignalLowSpend, Value: r.TotalSpend})
	}

	if r.Frequency >= 4 && r.Recency <= 2 {
		h.Opportunities = append(h.Opportunities, "Was a frequent visitor, high win-back potential")
		h.Signals = append(h.Signals, Signal{Type: SignalWinBack, Value: float64(r.Frequency)})
	}
	if r.Monetary >= 4 {
		h.Opportunities = append(h.Opportunities, "High spender, worth extra retention effort")
		h.Signals = append(h.Signals, Signal{Type: SignalHighSpender, Value: float64(r.Monetary)})
	}

	h.Recommendations = HealthRecommendations(h.HealthStatus)
	return h
}

// HealthRecommendations is a fixed set of suggestions per status.
func HealthRecommendations(status models.HealthStatus) []string {
	switch status {
	case models.HealthAtRisk:
		return []string{
			"Send personalized re-engagement email",
			"Offer a special discount on next visit",
		}
	case models.HealthChurning:
		return []string{
			"Urgent: schedule personal outreach call",
			"Create compelling win-back offer",
		}
	case models.HealthChurned:
		return []string{"Launch win-back campaign with significant offer"}
	case models.HealthHealthy:
		return []string{"Nurture relationship with loyalty rewards"}
	}
	return []string{}
}
