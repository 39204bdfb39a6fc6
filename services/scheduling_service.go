package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"salonpro-retention/events"
	"salonpro-retention/logger"
	"salonpro-retention/models"
	"salonpro-retention/repository"
	"salonpro-retention/scoring"
	"salonpro-retention/utils"
)

const (
	predictionHistory  = 20
	upcomingWindow     = 7 * 24 * time.Hour
	reminderWindow     = 48 * time.Hour
	lowUtilization     = 0.5
	reminderDateLayout = "Mon Jan 2 at 3:04 PM"
)

type SchedulingService struct {
	store SchedulingStore
	deps  Deps
	log   *logger.Logger
}

func NewSchedulingService(store SchedulingStore, deps Deps) *SchedulingService {
	deps = deps.withDefaults()
	return &SchedulingService{
		store: store,
		deps:  deps,
		log:   deps.Log.With("service", "SchedulingService"),
	}
}

type PredictionResult struct {
	PredictionID  uuid.UUID `json:"predictionId"`
	AppointmentID uuid.UUID `json:"appointmentId"`
	ClientID      uuid.UUID `json:"clientId"`
	StartTime     time.Time `json:"startTime"`
	scoring.CancellationAssessment
}

// PredictCancellation scores one appointment against the client's 20 most
// recent appointments and appends a prediction row. Repeated calls append
// repeated rows.
func (s *SchedulingService) PredictCancellation(ctx context.Context, businessID, appointmentID uuid.UUID) (PredictionResult, error) {
	apt, err := s.store.GetAppointment(ctx, businessID, appointmentID)
	if err != nil {
		return PredictionResult{}, storeErr("get appointment", err)
	}
	loc := businessLocation(ctx, s.store, businessID, s.deps.Location)
	return s.predict(ctx, apt, loc)
}

func (s *SchedulingService) predict(ctx context.Context, apt models.Appointment, loc *time.Location) (PredictionResult, error) {
	history, err := s.store.ClientAppointments(ctx, apt.BusinessID, apt.ClientID, predictionHistory)
	if err != nil {
		return PredictionResult{}, storeErr("load history", err)
	}

	now := s.deps.Now()
	a := scoring.PredictCancellation(apt.StartTime.In(loc), history, now)

	row := &models.CancellationPrediction{
		BusinessID:    apt.BusinessID,
		AppointmentID: apt.ID,
		ClientID:      apt.ClientID,
		RiskScore:     a.RiskScore,
		RiskLevel:     a.RiskLevel,
		RiskFactors:   models.ToJSON(a.RiskFactors),
		Signals:       models.ToJSON(a.Signals),
		PredictedAt:   now,
	}
	if err := s.store.InsertPrediction(ctx, row); err != nil {
		return PredictionResult{}, storeErr("save prediction", err)
	}

	s.deps.Recorder.Record(ctx, apt.BusinessID, AgentScheduling, "cancellation_predicted", map[string]interface{}{
		"appointmentId": apt.ID,
		"riskScore":     a.RiskScore,
		"riskLevel":     a.RiskLevel,
	})

	return PredictionResult{
		PredictionID:           row.ID,
		AppointmentID:          apt.ID,
		ClientID:               apt.ClientID,
		StartTime:              apt.StartTime,
		CancellationAssessment: a,
	}, nil
}

type UpcomingResult struct {
	Predicted     int                `json:"predicted"`
	AtRisk        []PredictionResult `json:"atRisk"`
	RemindersSent int                `json:"remindersSent"`
	Failures      []Failure          `json:"failures"`
}

// PredictAllUpcoming scores every scheduled appointment in the next seven
// days. Appointments that fail are skipped and listed. High and critical
// appointments starting within 48 hours get an extra reminder.
func (s *SchedulingService) PredictAllUpcoming(ctx context.Context, businessID uuid.UUID) (UpcomingResult, error) {
	now := s.deps.Now()
	apts, err := s.store.AppointmentsInRange(ctx, businessID, now, now.Add(upcomingWindow), models.AppointmentScheduled)
	if err != nil {
		return UpcomingResult{}, storeErr("list upcoming", err)
	}
	loc := businessLocation(ctx, s.store, businessID, s.deps.Location)

	res := UpcomingResult{AtRisk: []PredictionResult{}, Failures: []Failure{}}
	for _, apt := range apts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p, err := s.predict(ctx, apt, loc)
		if err != nil {
			s.log.Warn("prediction failed", "business_id", businessID, "appointment_id", apt.ID, "error", err)
			res.Failures = append(res.Failures, Failure{ID: apt.ID, Error: err.Error()})
			continue
		}
		res.Predicted++
		if p.RiskLevel == models.RiskLow {
			continue
		}
		res.AtRisk = append(res.AtRisk, p)

		if (p.RiskLevel == models.RiskHigh || p.RiskLevel == models.RiskCritical) &&
			apt.StartTime.Sub(now) <= reminderWindow {
			if s.sendReminder(ctx, apt, loc) {
				res.RemindersSent++
			}
		}
	}

	sort.SliceStable(res.AtRisk, func(i, j int) bool {
		return res.AtRisk[i].RiskScore > res.AtRisk[j].RiskScore
	})

	s.log.Info("upcoming appointments predicted",
		"business_id", businessID, "predicted", res.Predicted, "at_risk", len(res.AtRisk),
		"reminders", res.RemindersSent, "failed", len(res.Failures))
	return res, nil
}

// sendReminder texts the client about a risky appointment and logs the
// attempt. It reports whether the message went out.
func (s *SchedulingService) sendReminder(ctx context.Context, apt models.Appointment, loc *time.Location) bool {
	client, err := s.store.GetClient(ctx, apt.BusinessID, apt.ClientID)
	if err != nil || !utils.ValidatePhone(client.Phone) {
		return false
	}
	bizName := "us"
	if b, err := s.store.GetBusiness(ctx, apt.BusinessID); err == nil && b.Name != "" {
		bizName = b.Name
	}
	body := fmt.Sprintf("Hi %s, a reminder of your appointment with %s on %s. Reply YES to confirm or call us to reschedule.",
		client.FirstName, bizName, apt.StartTime.In(loc).Format(reminderDateLayout))

	d, err := s.deps.Messenger.Send(ctx, client.Phone, body)
	entry := &models.MessageLog{
		BusinessID:  apt.BusinessID,
		ClientID:    client.ID,
		ReferenceID: apt.ID,
		Purpose:     "reminder",
		Message:     body,
		Status:      "sent",
		Channel:     d.Channel,
		SentAt:      s.deps.Now(),
	}
	if err != nil {
		entry.Status = "failed"
		entry.ErrorMessage = err.Error()
	}
	if lerr := s.store.CreateMessageLog(ctx, entry); lerr != nil {
		s.log.Warn("message log failed", "appointment_id", apt.ID, "error", lerr)
	}
	return err == nil
}

// GetAtRiskAppointments returns the latest open high or critical prediction
// per appointment, riskiest first.
func (s *SchedulingService) GetAtRiskAppointments(ctx context.Context, businessID uuid.UUID) ([]models.CancellationPrediction, error) {
	preds, err := s.store.ListOpenPredictions(ctx, businessID, models.RiskHigh, models.RiskCritical)
	if err != nil {
		return nil, storeErr("list predictions", err)
	}
	return latestPerAppointment(preds), nil
}

func latestPerAppointment(preds []models.CancellationPrediction) []models.CancellationPrediction {
	latest := map[uuid.UUID]int{}
	out := make([]models.CancellationPrediction, 0, len(preds))
	for _, p := range preds {
		i, seen := latest[p.AppointmentID]
		if !seen {
			latest[p.AppointmentID] = len(out)
			out = append(out, p)
			continue
		}
		if p.PredictedAt.After(out[i].PredictedAt) {
			out[i] = p
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RiskScore > out[j].RiskScore
	})
	return out
}

var validOutcomes = map[string]bool{
	string(models.AppointmentCompleted): true,
	string(models.AppointmentCancelled): true,
	string(models.AppointmentNoShow):    true,
}

// RecordOutcome stores what actually happened to a predicted appointment.
func (s *SchedulingService) RecordOutcome(ctx context.Context, businessID, predictionID uuid.UUID, outcome string, actionTaken *string) (models.CancellationPrediction, error) {
	if !validOutcomes[outcome] {
		return models.CancellationPrediction{}, invalid("outcome must be completed, cancelled or no_show")
	}
	if err := s.store.RecordPredictionOutcome(ctx, businessID, predictionID, outcome, actionTaken, s.deps.Now()); err != nil {
		return models.CancellationPrediction{}, storeErr("record outcome", err)
	}
	p, err := s.store.GetPrediction(ctx, businessID, predictionID)
	if err != nil {
		return p, storeErr("get prediction", err)
	}
	return p, nil
}

// UpdateClientPatterns rebuilds the client's booking pattern from their 50
// most recent appointments.
func (s *SchedulingService) UpdateClientPatterns(ctx context.Context, businessID, clientID uuid.UUID) (models.ClientBookingPattern, error) {
	if _, err := s.store.GetClient(ctx, businessID, clientID); err != nil {
		return models.ClientBookingPattern{}, storeErr("get client", err)
	}
	history, err := s.store.ClientAppointments(ctx, businessID, clientID, scoring.PatternWindow)
	if err != nil {
		return models.ClientBookingPattern{}, storeErr("load history", err)
	}
	loc := businessLocation(ctx, s.store, businessID, s.deps.Location)
	p, ok := scoring.AnalyzeBookingPattern(history, loc)
	if !ok {
		return models.ClientBookingPattern{}, ErrNoHistory
	}

	row := &models.ClientBookingPattern{
		BusinessID:              businessID,
		ClientID:                clientID,
		PreferredDays:           models.ToJSON(p.PreferredDays),
		PreferredTimeSlots:      models.ToJSON(p.PreferredTimeSlots),
		PreferredServices:       models.ToJSON(p.PreferredServices),
		AvgBookingFrequencyDays: p.AvgBookingFrequencyDays,
		AvgLeadTimeDays:         p.AvgLeadTimeDays,
		CancellationRate:        p.CancellationRate,
		NoShowRate:              p.NoShowRate,
		LastUpdated:             s.deps.Now(),
	}
	if err := s.store.UpsertBookingPattern(ctx, row); err != nil {
		return models.ClientBookingPattern{}, storeErr("save pattern", err)
	}
	return *row, nil
}

func (s *SchedulingService) GetClientPattern(ctx context.Context, businessID, clientID uuid.UUID) (models.ClientBookingPattern, error) {
	p, err := s.store.GetBookingPattern(ctx, businessID, clientID)
	if err != nil {
		return p, storeErr("get pattern", err)
	}
	return p, nil
}

type GapResult struct {
	Gaps            []models.ScheduleGap `json:"gaps"`
	TotalGaps       int                  `json:"totalGaps"`
	TotalLost       float64              `json:"totalLostRevenue"`
	UtilizationRate float64              `json:"utilizationRate"`
	BookedMinutes   float64              `json:"bookedMinutes"`
	Available       float64              `json:"availableMinutes"`
	Recommendations []string             `json:"recommendations"`
}

// AnalyzeGaps finds idle stretches of an hour or more between booked
// appointments starting between start and end and stores them as schedule
// gaps. A zero start means now and a zero end means seven days after start.
func (s *SchedulingService) AnalyzeGaps(ctx context.Context, businessID uuid.UUID, start, end time.Time) (GapResult, error) {
	if start.IsZero() {
		start = s.deps.Now()
	}
	if end.IsZero() {
		end = start.Add(upcomingWindow)
	}
	if !end.After(start) {
		return GapResult{}, invalid("end must be after start")
	}
	apts, err := s.store.AppointmentsInRange(ctx, businessID, start, end,
		models.AppointmentScheduled, models.AppointmentConfirmed)
	if err != nil {
		return GapResult{}, storeErr("list appointments", err)
	}

	stylists, err := s.store.ListActiveStylists(ctx, businessID)
	if err != nil {
		return GapResult{}, storeErr("list stylists", err)
	}
	roster := make([]uuid.UUID, 0, len(stylists))
	for _, st := range stylists {
		roster = append(roster, st.ID)
	}

	analysis := scoring.FindGaps(apts, roster, start, end)
	res := GapResult{
		Gaps:            []models.ScheduleGap{},
		UtilizationRate: analysis.UtilizationRate,
		BookedMinutes:   analysis.BookedMinutes,
		Available:       analysis.AvailableMinutes,
		TotalLost:       analysis.TotalPotentialRevenue,
	}
	for _, g := range analysis.Gaps {
		row := &models.ScheduleGap{
			BusinessID:       businessID,
			StylistID:        g.StylistID,
			GapStart:         g.Start,
			GapEnd:           g.End,
			DurationMinutes:  g.DurationMinutes,
			PotentialRevenue: g.PotentialRevenue,
			Status:           models.GapOpen,
		}
		if err := s.store.UpsertGap(ctx, row); err != nil {
			s.log.Warn("gap save failed", "business_id", businessID, "stylist_id", g.StylistID, "error", err)
			continue
		}
		res.Gaps = append(res.Gaps, *row)
	}
	res.TotalGaps = len(res.Gaps)

	loc := businessLocation(ctx, s.store, businessID, s.deps.Location)
	res.Recommendations = scoring.GapAdvice(analysis.Gaps, analysis.UtilizationRate, loc)

	if analysis.AvailableMinutes > 0 && analysis.UtilizationRate < lowUtilization {
		s.deps.Recorder.Alert(ctx, businessID, "low_utilization", events.SeverityWarning,
			"Low schedule utilization",
			fmt.Sprintf("Only %.0f%% of stylist time is booked between %s and %s",
				analysis.UtilizationRate*100, start.In(loc).Format("Jan 2"), end.In(loc).Format("Jan 2")),
			map[string]interface{}{"utilizationRate": analysis.UtilizationRate, "gaps": res.TotalGaps})
	}
	s.deps.Recorder.Record(ctx, businessID, AgentScheduling, "gaps_analyzed", map[string]interface{}{
		"gaps":            res.TotalGaps,
		"utilizationRate": analysis.UtilizationRate,
		"lostRevenue":     analysis.TotalPotentialRevenue,
	})
	return res, nil
}

type SlotResult struct {
	Date        string                   `json:"date"`
	PatternUsed bool                     `json:"patternUsed"`
	Slots       []scoring.SlotSuggestion `json:"slots"`
}

// GetOptimalSlots suggests up to ten open hourly slots on date (YYYY-MM-DD
// in the business timezone, today when empty), ranked against the client's
// stored booking pattern. A nil client ranks every slot equally.
func (s *SchedulingService) GetOptimalSlots(ctx context.Context, businessID, clientID uuid.UUID, date string) (SlotResult, error) {
	loc := businessLocation(ctx, s.store, businessID, s.deps.Location)
	now := s.deps.Now()
	var dayStart time.Time
	if date == "" {
		y, m, d := now.In(loc).Date()
		dayStart = time.Date(y, m, d, 0, 0, 0, 0, loc)
	} else {
		parsed, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return SlotResult{}, invalid("date must be YYYY-MM-DD")
		}
		dayStart = parsed
	}

	var prefs *scoring.SlotPreferences
	if clientID != uuid.Nil {
		if _, err := s.store.GetClient(ctx, businessID, clientID); err != nil {
			return SlotResult{}, storeErr("get client", err)
		}
		pattern, err := s.store.GetBookingPattern(ctx, businessID, clientID)
		switch {
		case err == nil:
			prefs = &scoring.SlotPreferences{
				Days:      models.Ints(pattern.PreferredDays),
				TimeSlots: models.Strings(pattern.PreferredTimeSlots),
			}
		case !errors.Is(err, repository.ErrNotFound):
			return SlotResult{}, storeErr("get booking pattern", err)
		}
	}

	stylists, err := s.store.ListActiveStylists(ctx, businessID)
	if err != nil {
		return SlotResult{}, storeErr("list stylists", err)
	}
	roster := make([]scoring.SlotStylist, 0, len(stylists))
	for _, st := range stylists {
		roster = append(roster, scoring.SlotStylist{ID: st.ID, Name: st.FullName()})
	}

	booked, err := s.store.AppointmentsInRange(ctx, businessID, dayStart, dayStart.AddDate(0, 0, 1),
		models.AppointmentScheduled, models.AppointmentConfirmed)
	if err != nil {
		return SlotResult{}, storeErr("list appointments", err)
	}

	slots := scoring.RankSlots(roster, booked, scoring.SlotRequest{
		Date:        dayStart,
		Location:    loc,
		NotBefore:   now,
		Preferences: prefs,
		Limit:       scoring.MaxSlots,
	})
	s.log.Debug("slots ranked", "business_id", businessID, "client_id", clientID, "date", dayStart.Format("2006-01-02"), "slots", len(slots))
	return SlotResult{
		Date:        dayStart.Format("2006-01-02"),
		PatternUsed: prefs != nil,
		Slots:       slots,
	}, nil
}

// GetOpenGaps lists open gaps that have not started yet.
func (s *SchedulingService) GetOpenGaps(ctx context.Context, businessID uuid.UUID) ([]models.ScheduleGap, error) {
	gaps, err := s.store.ListOpenGaps(ctx, businessID, s.deps.Now())
	if err != nil {
		return nil, storeErr("list gaps", err)
	}
	return gaps, nil
}

// FillGap books a client into an open gap.
func (s *SchedulingService) FillGap(ctx context.Context, businessID, gapID, clientID uuid.UUID) (models.ScheduleGap, error) {
	if _, err := s.store.GetClient(ctx, businessID, clientID); err != nil {
		return models.ScheduleGap{}, storeErr("get client", err)
	}
	if err := s.store.FillGap(ctx, businessID, gapID, clientID, s.deps.Now()); err != nil {
		return models.ScheduleGap{}, storeErr("fill gap", err)
	}
	g, err := s.store.GetGap(ctx, businessID, gapID)
	if err != nil {
		return g, storeErr("get gap", err)
	}
	s.deps.Recorder.Record(ctx, businessID, AgentScheduling, "gap_filled", map[string]interface{}{
		"gapId":    gapID,
		"clientId": clientID,
	})
	return g, nil
}

// appointmentItems builds reminder recommendations for open high and
// critical predictions, valued at the appointment price.
func (s *SchedulingService) appointmentItems(ctx context.Context, businessID uuid.UUID) ([]scoring.Recommendation, error) {
	preds, err := s.GetAtRiskAppointments(ctx, businessID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(preds))
	clientIDs := make([]uuid.UUID, 0, len(preds))
	for _, p := range preds {
		ids = append(ids, p.AppointmentID)
		clientIDs = append(clientIDs, p.ClientID)
	}
	values := map[string]float64{}
	apts, err := s.store.AppointmentsByIDs(ctx, businessID, ids)
	if err != nil {
		s.log.Warn("appointment values unavailable", "business_id", businessID, "error", err)
	}
	for _, a := range apts {
		values[a.ID.String()] = a.Price()
	}

	items := scoring.AppointmentItems(preds, values)
	names := clientNames(ctx, s.store, businessID, clientIDs)
	for i := range items {
		items[i].ClientName = names[items[i].ClientID]
	}
	return items, nil
}

func (s *SchedulingService) gapItems(ctx context.Context, businessID uuid.UUID) ([]scoring.Recommendation, error) {
	gaps, err := s.GetOpenGaps(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return scoring.GapItems(gaps), nil
}

// GetRecommendations ranks reminder and gap-fill items. limit <= 0 returns
// all of them.
func (s *SchedulingService) GetRecommendations(ctx context.Context, businessID uuid.UUID, limit int) ([]scoring.Recommendation, error) {
	apts, err := s.appointmentItems(ctx, businessID)
	if err != nil {
		return nil, err
	}
	gaps, err := s.gapItems(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return scoring.Rank(append(apts, gaps...), limit), nil
}
