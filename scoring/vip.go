package scoring

import (
	"sort"

	"salonpro-retention/models"
)

type NextTierRequirements struct {
	Tier         models.VipTier `json:"tier"`
	SpendNeeded  float64        `json:"spendNeeded"`
	VisitsNeeded int            `json:"visitsNeeded"`
}

type VipEvaluation struct {
	CurrentTier          models.VipTier        `json:"currentTier"`
	RecommendedTier      models.VipTier        `json:"recommendedTier"`
	ShouldPromote        bool                  `json:"shouldPromote"`
	ShouldDemote         bool                  `json:"shouldDemote"`
	TotalSpend           float64               `json:"totalSpend"`
	TotalVisits          int                   `json:"totalVisits"`
	NextTierRequirements *NextTierRequirements `json:"nextTierRequirements,omitempty"`
	NextTierProgress     float64               `json:"nextTierProgress"`
}

// VipTotals sums spend and counts visits over completed appointments only.
func VipTotals(history []models.Appointment) (float64, int) {
	var spend float64
	var visits int
	for _, a := range history {
		if a.Status != models.AppointmentCompleted {
			continue
		}
		spend += a.Price()
		visits++
	}
	return spend, visits
}

// SortTiers returns the active, known tier definitions ordered by descending
// minimum spend. Equal spend thresholds put the higher tier first so the
// first match is always the highest satisfied tier.
func SortTiers(tiers []models.VipTierDefinition) []models.VipTierDefinition {
	out := make([]models.VipTierDefinition, 0, len(tiers))
	for _, t := range tiers {
		if !t.IsActive {
			continue
		}
		if _, ok := t.TierName.Ordinal(); !ok {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MinSpend != out[j].MinSpend {
			return out[i].MinSpend > out[j].MinSpend
		}
		oi, _ := out[i].TierName.Ordinal()
		oj, _ := out[j].TierName.Ordinal()
		return oi > oj
	})
	return out
}

// EvaluateVip compares the client's totals against the tier definitions.
// The caller's ordering of tiers does not matter.
func EvaluateVip(tiers []models.VipTierDefinition, current models.VipTier, totalSpend float64, totalVisits int) VipEvaluation {
	if _, ok := current.Ordinal(); !ok {
		current = models.TierStandard
	}
	sorted := SortTiers(tiers)

	recommended := models.TierStandard
	for _, t := range sorted {
		if totalSpend >= t.MinSpend && totalVisits >= t.MinVisits {
			recommended = t.TierName
			break
		}
	}

	recOrd, _ := recommended.Ordinal()
	curOrd, _ := current.Ordinal()
	ev := VipEvaluation{
		CurrentTier:      current,
		RecommendedTier:  recommended,
		ShouldPromote:    recOrd > curOrd,
		ShouldDemote:     recOrd < curOrd,
		TotalSpend:       totalSpend,
		TotalVisits:      totalVisits,
		NextTierProgress: 100,
	}

	for _, t := range sorted {
		if o, _ := t.TierName.Ordinal(); o == recOrd+1 {
			req := &NextTierRequirements{
				Tier:         t.TierName,
				SpendNeeded:  maxFloat(0, t.MinSpend-totalSpend),
				VisitsNeeded: maxInt(0, t.MinVisits-totalVisits),
			}
			ev.NextTierRequirements = req
			if denom := totalSpend + req.SpendNeeded; denom > 0 {
				ev.NextTierProgress = totalSpend / denom * 100
			}
			break
		}
	}
	return ev
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
