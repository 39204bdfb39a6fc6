package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stylist is owned by the booking system; this service only reads the
// active roster.
type Stylist struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null" json:"businessId"`

	FirstName string `gorm:"not null" json:"firstName"`
	LastName  string `json:"lastName"`
	IsActive  bool   `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
}

func (s *Stylist) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

func (s Stylist) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
