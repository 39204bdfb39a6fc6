package models

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

type HealthStatus string

const (
	HealthNew      HealthStatus = "new"
	HealthHealthy  HealthStatus = "healthy"
	HealthAtRisk   HealthStatus = "at_risk"
	HealthChurning HealthStatus = "churning"
	HealthChurned  HealthStatus = "churned"
)

// ValidHealthStatus reports whether s is one of the known health statuses.
func ValidHealthStatus(s HealthStatus) bool {
	switch s {
	case HealthNew, HealthHealthy, HealthAtRisk, HealthChurning, HealthChurned:
		return true
	}
	return false
}

// VipTier is ordered: standard < silver < gold < platinum.
type VipTier string

const (
	TierStandard VipTier = "standard"
	TierSilver   VipTier = "silver"
	TierGold     VipTier = "gold"
	TierPlatinum VipTier = "platinum"
)

var tierOrder = map[VipTier]int{
	TierStandard: 0,
	TierSilver:   1,
	TierGold:     2,
	TierPlatinum: 3,
}

// Ordinal returns the tier's rank and whether the tier is known.
func (t VipTier) Ordinal() (int, bool) {
	o, ok := tierOrder[t]
	return o, ok
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type TriggerType string

const (
	TriggerDaysInactive      TriggerType = "days_inactive"
	TriggerMissedAppointment TriggerType = "missed_appointment"
	TriggerBirthday          TriggerType = "birthday"
	TriggerAnniversary       TriggerType = "anniversary"
)

var TriggerTypes = []TriggerType{
	TriggerDaysInactive,
	TriggerMissedAppointment,
	TriggerBirthday,
	TriggerAnniversary,
}

const (
	TriggerInProgress = "in_progress"
	TriggerConverted  = "converted"
	TriggerExpired    = "expired"
)

const (
	GapOpen   = "open"
	GapFilled = "filled"
)
