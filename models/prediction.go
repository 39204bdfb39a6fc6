package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CancellationPrediction rows are append-only: every prediction run for an
// appointment inserts a new row so later outcomes can be compared against
// each run.
type CancellationPrediction struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID    uuid.UUID `gorm:"type:uuid;index;not null" json:"businessId"`
	AppointmentID uuid.UUID `gorm:"type:uuid;index;not null" json:"appointmentId"`
	ClientID      uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`

	RiskScore   float64        `json:"riskScore"`
	RiskLevel   RiskLevel      `gorm:"type:varchar(20);index;not null" json:"riskLevel"`
	RiskFactors datatypes.JSON `json:"riskFactors"`
	Signals     datatypes.JSON `json:"signals"`
	PredictedAt time.Time      `json:"predictedAt"`

	ActionTaken   *string    `json:"actionTaken,omitempty"`
	ActionTakenAt *time.Time `json:"actionTakenAt,omitempty"`
	ActualOutcome *string    `gorm:"type:varchar(20)" json:"actualOutcome"`

	CreatedAt time.Time `json:"createdAt"`
}

func (p *CancellationPrediction) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

type ClientBookingPattern struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pattern_business_client,priority:1" json:"businessId"`
	ClientID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pattern_business_client,priority:2" json:"clientId"`

	PreferredDays           datatypes.JSON `json:"preferredDays"`
	PreferredTimeSlots      datatypes.JSON `json:"preferredTimeSlots"`
	PreferredServices       datatypes.JSON `json:"preferredServices"`
	AvgBookingFrequencyDays int            `json:"avgBookingFrequencyDays"`
	AvgLeadTimeDays         int            `json:"avgLeadTimeDays"`
	CancellationRate        float64        `json:"cancellationRate"`
	NoShowRate              float64        `json:"noShowRate"`

	LastUpdated time.Time `json:"lastUpdated"`
}

func (p *ClientBookingPattern) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

type ScheduleGap struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_gap_business_stylist_start,priority:1" json:"businessId"`
	StylistID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_gap_business_stylist_start,priority:2" json:"stylistId"`
	GapStart   time.Time `gorm:"not null;uniqueIndex:idx_gap_business_stylist_start,priority:3" json:"gapStart"`
	GapEnd     time.Time `gorm:"not null" json:"gapEnd"`

	DurationMinutes  int     `json:"durationMinutes"`
	PotentialRevenue float64 `gorm:"type:decimal(10,2)" json:"potentialRevenue"`
	Status           string  `gorm:"type:varchar(20);index;not null" json:"status"`

	FilledBy *uuid.UUID `gorm:"type:uuid" json:"filledBy,omitempty"`
	FilledAt *time.Time `json:"filledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (g *ScheduleGap) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return
}
