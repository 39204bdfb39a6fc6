package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TaskPending   = "pending"
	TaskRunning   = "running"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
)

type AgentTask struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null" json:"businessId"`
	AgentType  string    `gorm:"type:varchar(20);not null" json:"agentType"`
	TaskType   string    `gorm:"type:varchar(40);not null" json:"taskType"`

	Input  datatypes.JSON `json:"input"`
	Output datatypes.JSON `json:"output,omitempty"`
	Status string         `gorm:"type:varchar(20);index" json:"status"`
	Error  string         `gorm:"type:text" json:"error,omitempty"`

	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (t *AgentTask) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

type AgentActivity struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID      `gorm:"type:uuid;index;not null" json:"businessId"`
	AgentType  string         `gorm:"type:varchar(20)" json:"agentType"`
	Action     string         `gorm:"type:varchar(40);index" json:"action"`
	Details    datatypes.JSON `json:"details"`
	Severity   string         `gorm:"type:varchar(10)" json:"severity"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (AgentActivity) TableName() string { return "agent_activity_log" }

func (a *AgentActivity) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

type AgentAlert struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID      `gorm:"type:uuid;index;not null" json:"businessId"`
	AlertType  string         `gorm:"type:varchar(40)" json:"alertType"`
	Severity   string         `gorm:"type:varchar(10)" json:"severity"`
	Title      string         `json:"title"`
	Message    string         `gorm:"type:text" json:"message"`
	Data       datatypes.JSON `json:"data"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (a *AgentAlert) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// All lists every table for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Business{},
		&Client{},
		&Appointment{},
		&Stylist{},
		&ClientHealthScore{},
		&VipTierDefinition{},
		&ClientVipStatus{},
		&CancellationPrediction{},
		&ClientBookingPattern{},
		&ScheduleGap{},
		&RetentionCampaign{},
		&ReengagementTrigger{},
		&MessageLog{},
		&AgentTask{},
		&AgentActivity{},
		&AgentAlert{},
	}
}
