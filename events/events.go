package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salonpro-retention/logger"
	"salonpro-retention/models"
	"salonpro-retention/notify"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Activity is one agent action worth keeping a record of.
type Activity struct {
	BusinessID uuid.UUID   `json:"businessId"`
	AgentType  string      `json:"agentType"`
	Action     string      `json:"action"`
	Severity   string      `json:"severity"`
	Details    interface{} `json:"details"`
	At         time.Time   `json:"at"`
}

// Sink receives activities. Implementations must be safe to call from
// request handlers.
type Sink interface {
	Publish(ctx context.Context, a Activity) error
}

type Store interface {
	CreateActivity(ctx context.Context, a *models.AgentActivity) error
	CreateAlert(ctx context.Context, a *models.AgentAlert) error
}

// DBSink writes activities to the agent_activity_log table.
type DBSink struct {
	store Store
}

func NewDBSink(store Store) *DBSink {
	return &DBSink{store: store}
}

func (s *DBSink) Publish(ctx context.Context, a Activity) error {
	return s.store.CreateActivity(ctx, &models.AgentActivity{
		BusinessID: a.BusinessID,
		AgentType:  a.AgentType,
		Action:     a.Action,
		Details:    models.ToJSON(a.Details),
		Severity:   a.Severity,
		CreatedAt:  a.At,
	})
}

// Recorder fans activities out to every sink and persists alerts. Failures
// are logged and never returned, recording must not fail the operation that
// triggered it.
type Recorder struct {
	sinks   []Sink
	store   Store
	alerter notify.Alerter
	log     *logger.Logger
	now     func() time.Time
}

func NewRecorder(store Store, alerter notify.Alerter, baseLog *logger.Logger, sinks ...Sink) *Recorder {
	if alerter == nil {
		alerter = notify.NopAlerter{}
	}
	return &Recorder{
		sinks:   sinks,
		store:   store,
		alerter: alerter,
		log:     baseLog.With("service", "Recorder"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *Recorder) Record(ctx context.Context, businessID uuid.UUID, agentType, action string, details interface{}) {
	a := Activity{
		BusinessID: businessID,
		AgentType:  agentType,
		Action:     action,
		Severity:   SeverityInfo,
		Details:    details,
		At:         r.now(),
	}
	for _, s := range r.sinks {
		if err := s.Publish(ctx, a); err != nil {
			r.log.Warn("activity sink failed", "action", action, "business_id", businessID, "error", err)
		}
	}
}

// Alert stores an alert row and forwards it to the configured alerter.
func (r *Recorder) Alert(ctx context.Context, businessID uuid.UUID, alertType, severity, title, message string, data interface{}) {
	row := &models.AgentAlert{
		BusinessID: businessID,
		AlertType:  alertType,
		Severity:   severity,
		Title:      title,
		Message:    message,
		Data:       models.ToJSON(data),
		CreatedAt:  r.now(),
	}
	if err := r.store.CreateAlert(ctx, row); err != nil {
		r.log.Warn("alert insert failed", "alert_type", alertType, "business_id", businessID, "error", err)
	}
	if err := r.alerter.Alert(ctx, severity, title, message); err != nil {
		r.log.Warn("alert delivery failed", "alert_type", alertType, "business_id", businessID, "error", err)
	}
	r.log.Info("alert raised", "alert_type", alertType, "business_id", businessID, "severity", severity)
}
