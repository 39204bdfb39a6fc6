package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"salonpro-retention/models"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

const (
	RecommendationWinBack  = "win_back"
	RecommendationOutreach = "outreach"
	RecommendationReminder = "reminder"
	RecommendationFillGap  = "fill_gap"
)

// DefaultAppointmentValue is used when an at-risk appointment has no price.
const DefaultAppointmentValue = 50.0

type Recommendation struct {
	Type            string   `json:"type"`
	Priority        Priority `json:"priority"`
	ClientID        string   `json:"clientId,omitempty"`
	ClientName      string   `json:"clientName,omitempty"`
	AppointmentID   string   `json:"appointmentId,omitempty"`
	GapID           string   `json:"gapId,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	SuggestedAction string   `json:"suggestedAction"`
	SuggestedOffer  string   `json:"suggestedOffer,omitempty"`
	EstimatedValue  float64  `json:"estimatedValue"`
}

// RetentionItems turns at-risk and churning health scores into outreach
// items. names maps client id strings to display names.
func RetentionItems(scores []models.ClientHealthScore, names map[string]string) []Recommendation {
	out := []Recommendation{}
	for _, s := range scores {
		name := names[s.ClientID.String()]
		if name == "" {
			name = "Unknown"
		}
		switch s.HealthStatus {
		case models.HealthChurning:
			out = append(out, Recommendation{
				Type:            RecommendationWinBack,
				Priority:        PriorityCritical,
				ClientID:        s.ClientID.String(),
				ClientName:      name,
				Title:           "Win back " + name,
				Description:     fmt.Sprintf("Health score: %d. %d days since last visit.", s.HealthScore, s.LastVisitDaysAgo),
				SuggestedAction: "Send urgent win-back offer",
				SuggestedOffer:  "25% off next service",
				EstimatedValue:  s.LifetimeValue,
			})
		case models.HealthAtRisk:
			out = append(out, Recommendation{
				Type:            RecommendationOutreach,
				Priority:        PriorityHigh,
				ClientID:        s.ClientID.String(),
				ClientName:      name,
				Title:           "Re-engage " + name,
				Description:     fmt.Sprintf("Health score: %d. Risk factors: %s", s.HealthScore, strings.Join(models.Strings(s.RiskFactors), ", ")),
				SuggestedAction: "Send personalized check-in message",
				SuggestedOffer:  "15% off next visit",
				EstimatedValue:  s.LifetimeValue,
			})
		}
	}
	return out
}

// AppointmentItems turns high and critical predictions into reminder items.
// values maps appointment id strings to the revenue at stake.
func AppointmentItems(preds []models.CancellationPrediction, values map[string]float64) []Recommendation {
	out := []Recommendation{}
	for _, p := range preds {
		var priority Priority
		switch p.RiskLevel {
		case models.RiskCritical:
			priority = PriorityCritical
		case models.RiskHigh:
			priority = PriorityHigh
		default:
			continue
		}
		value, ok := values[p.AppointmentID.String()]
		if !ok || value <= 0 {
			value = DefaultAppointmentValue
		}
		out = append(out, Recommendation{
			Type:            RecommendationReminder,
			Priority:        priority,
			ClientID:        p.ClientID.String(),
			AppointmentID:   p.AppointmentID.String(),
			Title:           "High-risk appointment requires attention",
			Description:     fmt.Sprintf("Appointment has %d%% cancellation risk", int(math.Round(p.RiskScore*100))),
			SuggestedAction: "Send additional reminder or confirmation request",
			EstimatedValue:  value,
		})
	}
	return out
}

// GapItems turns open schedule gaps into fill suggestions.
func GapItems(gaps []models.ScheduleGap) []Recommendation {
	out := []Recommendation{}
	for _, g := range gaps {
		priority := PriorityMedium
		if g.PotentialRevenue > 100 {
			priority = PriorityHigh
		}
		out = append(out, Recommendation{
			Type:            RecommendationFillGap,
			Priority:        priority,
			GapID:           g.ID.String(),
			Title:           fmt.Sprintf("%d-minute gap available", g.DurationMinutes),
			Description:     fmt.Sprintf("Open slot could generate $%.0f in revenue", g.PotentialRevenue),
			SuggestedAction: "Send promotional offer to interested clients",
			EstimatedValue:  g.PotentialRevenue,
		})
	}
	return out
}

// Rank orders by priority bucket, then by descending estimated value, and
// keeps at most limit items. limit <= 0 keeps everything.
func Rank(recs []Recommendation, limit int) []Recommendation {
	out := append([]Recommendation(nil), recs...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := rankOf(out[i].Priority), rankOf(out[j].Priority)
		if pi != pj {
			return pi < pj
		}
		return out[i].EstimatedValue > out[j].EstimatedValue
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Recommendation{}
	}
	return out
}

func rankOf(p Priority) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}
