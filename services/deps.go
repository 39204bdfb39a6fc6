package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salonpro-retention/cache"
	"salonpro-retention/llm"
	"salonpro-retention/logger"
	"salonpro-retention/models"
	"salonpro-retention/notify"
	"salonpro-retention/repository"
)

const (
	AgentRetention  = "retention"
	AgentScheduling = "scheduling"
)

// ClientStore reads the booking system's clients and appointments.
type ClientStore interface {
	GetBusiness(ctx context.Context, id uuid.UUID) (models.Business, error)
	GetClient(ctx context.Context, businessID, clientID uuid.UUID) (models.Client, error)
	ClientsByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]models.Client, error)
	ClientAppointments(ctx context.Context, businessID, clientID uuid.UUID, limit int) ([]models.Appointment, error)
	CreateMessageLog(ctx context.Context, m *models.MessageLog) error
}

type RetentionStore interface {
	ClientStore
	ClientIDsWithAppointments(ctx context.Context, businessID uuid.UUID) ([]uuid.UUID, error)

	UpsertHealthScore(ctx context.Context, row *models.ClientHealthScore) error
	GetHealthScore(ctx context.Context, businessID, clientID uuid.UUID) (models.ClientHealthScore, error)
	ListHealthScores(ctx context.Context, businessID uuid.UUID, statuses ...models.HealthStatus) ([]models.ClientHealthScore, error)

	ListTierDefinitions(ctx context.Context, businessID uuid.UUID) ([]models.VipTierDefinition, error)
	GetTierDefinition(ctx context.Context, businessID, id uuid.UUID) (models.VipTierDefinition, error)
	CreateTierDefinition(ctx context.Context, t *models.VipTierDefinition) error
	SaveTierDefinition(ctx context.Context, t *models.VipTierDefinition) error
	DeleteTierDefinition(ctx context.Context, businessID, id uuid.UUID) error
	GetVipStatus(ctx context.Context, businessID, clientID uuid.UUID) (models.ClientVipStatus, error)
	UpsertVipStatus(ctx context.Context, row *models.ClientVipStatus) error
	ListVipStatuses(ctx context.Context, businessID uuid.UUID, includeStandard bool) ([]models.ClientVipStatus, error)

	CreateCampaign(ctx context.Context, c *models.RetentionCampaign) error
	SaveCampaign(ctx context.Context, c *models.RetentionCampaign) error
	GetCampaign(ctx context.Context, businessID, id uuid.UUID) (models.RetentionCampaign, error)
	ListCampaigns(ctx context.Context, businessID uuid.UUID, activeOnly bool) ([]models.RetentionCampaign, error)
	IncrementCampaignSent(ctx context.Context, campaignID uuid.UUID, n int) error
	HasInProgressTrigger(ctx context.Context, campaignID, clientID uuid.UUID) (bool, error)
	CreateTrigger(ctx context.Context, t *models.ReengagementTrigger) error
	TriggerStats(ctx context.Context, businessID uuid.UUID) ([]repository.TriggerStat, error)
}

type SchedulingStore interface {
	ClientStore
	GetAppointment(ctx context.Context, businessID, id uuid.UUID) (models.Appointment, error)
	AppointmentsInRange(ctx context.Context, businessID uuid.UUID, start, end time.Time, statuses ...models.AppointmentStatus) ([]models.Appointment, error)
	AppointmentsByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]models.Appointment, error)
	ListActiveStylists(ctx context.Context, businessID uuid.UUID) ([]models.Stylist, error)

	InsertPrediction(ctx context.Context, p *models.CancellationPrediction) error
	GetPrediction(ctx context.Context, businessID, id uuid.UUID) (models.CancellationPrediction, error)
	ListOpenPredictions(ctx context.Context, businessID uuid.UUID, levels ...models.RiskLevel) ([]models.CancellationPrediction, error)
	RecordPredictionOutcome(ctx context.Context, businessID, id uuid.UUID, outcome string, actionTaken *string, at time.Time) error

	UpsertBookingPattern(ctx context.Context, row *models.ClientBookingPattern) error
	GetBookingPattern(ctx context.Context, businessID, clientID uuid.UUID) (models.ClientBookingPattern, error)
	UpsertGap(ctx context.Context, g *models.ScheduleGap) error
	GetGap(ctx context.Context, businessID, id uuid.UUID) (models.ScheduleGap, error)
	ListOpenGaps(ctx context.Context, businessID uuid.UUID, from time.Time) ([]models.ScheduleGap, error)
	FillGap(ctx context.Context, businessID, gapID, clientID uuid.UUID, at time.Time) error
}

// ActivityRecorder keeps the activity log and raises alerts. It never
// returns errors.
type ActivityRecorder interface {
	Record(ctx context.Context, businessID uuid.UUID, agentType, action string, details interface{})
	Alert(ctx context.Context, businessID uuid.UUID, alertType, severity, title, message string, data interface{})
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, uuid.UUID, string, string, interface{}) {}
func (nopRecorder) Alert(context.Context, uuid.UUID, string, string, string, string, interface{}) {
}

// Deps carries the collaborators shared by the services. Nil fields fall
// back to no-op implementations.
type Deps struct {
	Recorder  ActivityRecorder
	Messenger notify.Messenger
	Composer  llm.Composer
	Cache     cache.Cache
	CacheTTL  time.Duration
	Location  *time.Location
	Log       *logger.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Recorder == nil {
		d.Recorder = nopRecorder{}
	}
	if d.Messenger == nil {
		d.Messenger = notify.Unconfigured{}
	}
	if d.Composer == nil {
		d.Composer = llm.TemplateComposer{}
	}
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// businessLocation resolves the business's timezone, falling back to the
// configured default.
func businessLocation(ctx context.Context, store ClientStore, businessID uuid.UUID, fallback *time.Location) *time.Location {
	b, err := store.GetBusiness(ctx, businessID)
	if err != nil || b.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}

// clientNames maps client ids to display names.
func clientNames(ctx context.Context, store ClientStore, businessID uuid.UUID, ids []uuid.UUID) map[string]string {
	names := make(map[string]string, len(ids))
	clients, err := store.ClientsByIDs(ctx, businessID, ids)
	if err != nil {
		return names
	}
	for _, c := range clients {
		names[c.ID.String()] = c.FullName()
	}
	return names
}

// Failure names one item a batch run could not process.
type Failure struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error"`
}
