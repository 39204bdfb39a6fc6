package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ClientHealthScore is upserted on (business_id, client_id) every time the
// client is scored.
type ClientHealthScore struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_health_business_client,priority:1" json:"businessId"`
	ClientID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_health_business_client,priority:2" json:"clientId"`

	HealthScore      int          `gorm:"not null" json:"healthScore"`
	HealthStatus     HealthStatus `gorm:"type:varchar(20);index;not null" json:"healthStatus"`
	RecencyScore     int          `json:"recencyScore"`
	FrequencyScore   int          `json:"frequencyScore"`
	MonetaryScore    int          `json:"monetaryScore"`
	ChurnProbability float64      `json:"churnProbability"`
	LastVisitDaysAgo int          `json:"lastVisitDaysAgo"`
	LifetimeValue    float64      `gorm:"type:decimal(12,2)" json:"lifetimeValue"`

	RiskFactors   datatypes.JSON `json:"riskFactors"`
	Opportunities datatypes.JSON `json:"opportunities"`
	Signals       datatypes.JSON `json:"signals"`

	CalculatedAt time.Time `json:"calculatedAt"`
}

func (h *ClientHealthScore) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return
}
