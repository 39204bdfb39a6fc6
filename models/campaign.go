package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RetentionCampaign struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null" json:"businessId"`

	Name            string       `gorm:"not null" json:"name"`
	TargetSegment   HealthStatus `gorm:"type:varchar(20);not null" json:"targetSegment"`
	TriggerType     TriggerType  `gorm:"type:varchar(30);not null" json:"triggerType"`
	TriggerDays     int          `json:"triggerDays"`
	MessageTemplate string       `gorm:"type:text;not null" json:"messageTemplate"`
	OfferType       string       `json:"offerType"`
	OfferValue      *float64     `gorm:"type:decimal(10,2)" json:"offerValue,omitempty"`
	IsActive        bool         `json:"isActive"`
	SentCount       int          `json:"sentCount"`
	ConvertedCount  int          `json:"convertedCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *RetentionCampaign) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

type ReengagementTrigger struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null" json:"businessId"`
	ClientID   uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`
	CampaignID uuid.UUID `gorm:"type:uuid;index;not null" json:"campaignId"`

	TriggerType        TriggerType `gorm:"type:varchar(30)" json:"triggerType"`
	TriggeredAt        time.Time   `json:"triggeredAt"`
	MessagesSent       int         `json:"messagesSent"`
	LastMessageAt      *time.Time  `json:"lastMessageAt,omitempty"`
	Status             string      `gorm:"type:varchar(20);index" json:"status"`
	ConvertedToBooking bool        `json:"convertedToBooking"`

	CreatedAt time.Time `json:"createdAt"`
}

func (r *ReengagementTrigger) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
