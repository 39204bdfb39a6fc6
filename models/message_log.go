// models/message_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageLog records every outbound client message, sent or failed.
type MessageLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID   uuid.UUID `gorm:"type:uuid;index;not null" json:"businessId"`
	ClientID     uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`
	ReferenceID  uuid.UUID `gorm:"type:uuid;index" json:"referenceId"`
	Purpose      string    `gorm:"type:varchar(20)" json:"purpose"` // reengagement, reminder
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage string    `gorm:"type:text" json:"errorMessage"`
	Channel      string    `gorm:"type:varchar(20)" json:"channel"` // whatsapp, sms
	SentAt       time.Time `json:"sentAt"`
}

func (m *MessageLog) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
