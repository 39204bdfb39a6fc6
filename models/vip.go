package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VipTierDefinition is configured per business.
type VipTierDefinition struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vip_tier_business_name,priority:1" json:"businessId"`
	TierName   VipTier   `gorm:"type:varchar(20);not null;uniqueIndex:idx_vip_tier_business_name,priority:2" json:"tierName"`
	MinSpend   float64   `gorm:"type:decimal(12,2);not null" json:"minSpend"`
	MinVisits  int       `gorm:"not null" json:"minVisits"`
	Benefits   string    `json:"benefits"`
	IsActive   bool      `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (v *VipTierDefinition) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}

type ClientVipStatus struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vip_status_business_client,priority:1" json:"businessId"`
	ClientID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vip_status_business_client,priority:2" json:"clientId"`

	CurrentTier      VipTier    `gorm:"type:varchar(20);not null" json:"currentTier"`
	TierStartDate    time.Time  `json:"tierStartDate"`
	TotalSpend       float64    `gorm:"type:decimal(12,2)" json:"totalSpend"`
	TotalVisits      int        `json:"totalVisits"`
	NextTierProgress float64    `json:"nextTierProgress"`
	PromotedAt       *time.Time `json:"promotedAt,omitempty"`
	DemotedAt        *time.Time `json:"demotedAt,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

func (v *ClientVipStatus) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}
