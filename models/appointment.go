package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment is owned by the booking system; this service only reads it.
type Appointment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID  `gorm:"type:uuid;index;not null" json:"businessId"`
	ClientID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"clientId"`
	StylistID  *uuid.UUID `gorm:"type:uuid;index" json:"stylistId,omitempty"`
	ServiceID  *uuid.UUID `gorm:"type:uuid" json:"serviceId,omitempty"`

	StartTime  time.Time         `gorm:"index" json:"startTime"`
	EndTime    time.Time         `json:"endTime"`
	Status     AppointmentStatus `gorm:"type:varchar(20);not null" json:"status"`
	TotalPrice *float64          `gorm:"type:decimal(10,2)" json:"totalPrice"`

	CreatedAt time.Time `json:"createdAt"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// Price returns the total price, treating a missing value as zero.
func (a Appointment) Price() float64 {
	if a.TotalPrice == nil {
		return 0
	}
	return *a.TotalPrice
}
