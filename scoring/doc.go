// Package scoring holds the deterministic client retention and cancellation
// heuristics. Every function is pure: callers fetch the data, pass "now"
// explicitly and persist whatever they get back.
package scoring

import "time"

const day = 24 * time.Hour

// NoVisitSentinel is reported as days-since-last-visit for clients with no
// completed appointment.
const NoVisitSentinel = 999

// Signal is the machine-checkable fact behind a human-readable factor.
type Signal struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

const (
	SignalInactive         = "inactive_days"
	SignalLowFrequency     = "low_frequency"
	SignalLowSpend         = "low_spend"
	SignalWinBack          = "win_back_potential"
	SignalHighSpender      = "high_spender"
	SignalHighCancellation = "high_cancellation_rate"
	SignalModerateCancel   = "moderate_cancellation_rate"
	SignalHighNoShow       = "high_no_show_rate"
	SignalLongLeadTime     = "long_lead_time"
	SignalNewClient        = "new_client"
	SignalHighRiskWeekday  = "high_risk_weekday"
)
