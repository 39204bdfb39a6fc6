package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"salonpro-retention/llm"
	"salonpro-retention/models"
	"salonpro-retention/utils"
)

const (
	defaultCelebrationDays = 7
	defaultInactiveDays    = 30
	defaultMissedDays      = 30
	missedLookback         = 20
)

func validTriggerType(t models.TriggerType) bool {
	for _, tt := range models.TriggerTypes {
		if tt == t {
			return true
		}
	}
	return false
}

func validateCampaign(c *models.RetentionCampaign) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return invalid("campaign name is required")
	}
	if strings.TrimSpace(c.MessageTemplate) == "" {
		return invalid("message template is required")
	}
	if !models.ValidHealthStatus(c.TargetSegment) {
		return invalid("unknown target segment %q", c.TargetSegment)
	}
	if !validTriggerType(c.TriggerType) {
		return invalid("unknown trigger type %q", c.TriggerType)
	}
	if c.TriggerDays < 0 {
		return invalid("trigger days must not be negative")
	}
	if c.OfferValue != nil && *c.OfferValue < 0 {
		return invalid("offer value must not be negative")
	}
	return nil
}

func (s *RetentionService) ListCampaigns(ctx context.Context, businessID uuid.UUID) ([]models.RetentionCampaign, error) {
	out, err := s.store.ListCampaigns(ctx, businessID, false)
	if err != nil {
		return nil, storeErr("list campaigns", err)
	}
	return out, nil
}

func (s *RetentionService) GetCampaign(ctx context.Context, businessID, id uuid.UUID) (models.RetentionCampaign, error) {
	c, err := s.store.GetCampaign(ctx, businessID, id)
	if err != nil {
		return c, storeErr("get campaign", err)
	}
	return c, nil
}

// CreateCampaign stores a new active campaign.
func (s *RetentionService) CreateCampaign(ctx context.Context, businessID uuid.UUID, c models.RetentionCampaign) (models.RetentionCampaign, error) {
	c.ID = uuid.Nil
	c.BusinessID = businessID
	c.IsActive = true
	c.SentCount = 0
	c.ConvertedCount = 0
	if err := validateCampaign(&c); err != nil {
		return c, err
	}
	if err := s.store.CreateCampaign(ctx, &c); err != nil {
		return c, storeErr("create campaign", err)
	}
	s.deps.Recorder.Record(ctx, businessID, AgentRetention, "campaign_created", map[string]interface{}{
		"campaignId":  c.ID,
		"name":        c.Name,
		"triggerType": c.TriggerType,
	})
	return c, nil
}

// CampaignUpdate holds the editable campaign fields; nil fields are left
// unchanged.
type CampaignUpdate struct {
	Name            *string              `json:"name"`
	TargetSegment   *models.HealthStatus `json:"targetSegment"`
	TriggerType     *models.TriggerType  `json:"triggerType"`
	TriggerDays     *int                 `json:"triggerDays"`
	MessageTemplate *string              `json:"messageTemplate"`
	OfferType       *string              `json:"offerType"`
	OfferValue      *float64             `json:"offerValue"`
	IsActive        *bool                `json:"isActive"`
}

func (s *RetentionService) UpdateCampaign(ctx context.Context, businessID, id uuid.UUID, u CampaignUpdate) (models.RetentionCampaign, error) {
	c, err := s.store.GetCampaign(ctx, businessID, id)
	if err != nil {
		return c, storeErr("get campaign", err)
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.TargetSegment != nil {
		c.TargetSegment = *u.TargetSegment
	}
	if u.TriggerType != nil {
		c.TriggerType = *u.TriggerType
	}
	if u.TriggerDays != nil {
		c.TriggerDays = *u.TriggerDays
	}
	if u.MessageTemplate != nil {
		c.MessageTemplate = *u.MessageTemplate
	}
	if u.OfferType != nil {
		c.OfferType = *u.OfferType
	}
	if u.OfferValue != nil {
		c.OfferValue = u.OfferValue
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
	if err := validateCampaign(&c); err != nil {
		return c, err
	}
	if err := s.store.SaveCampaign(ctx, &c); err != nil {
		return c, storeErr("save campaign", err)
	}
	return c, nil
}

// DeactivateCampaign stops a campaign from triggering. Its history is kept.
func (s *RetentionService) DeactivateCampaign(ctx context.Context, businessID, id uuid.UUID) error {
	inactive := false
	_, err := s.UpdateCampaign(ctx, businessID, id, CampaignUpdate{IsActive: &inactive})
	return err
}

type TriggerResult struct {
	Triggered int `json:"triggered"`
	Sent      int `json:"sent"`
}

// CheckReengagementTriggers starts one trigger per eligible client and
// active campaign and sends the campaign's message. A failed send still
// records the trigger; the message log shows the failure.
func (s *RetentionService) CheckReengagementTriggers(ctx context.Context, businessID uuid.UUID) (TriggerResult, error) {
	res := TriggerResult{}

	biz, err := s.store.GetBusiness(ctx, businessID)
	if err != nil {
		return res, storeErr("get business", err)
	}
	campaigns, err := s.store.ListCampaigns(ctx, businessID, true)
	if err != nil {
		return res, storeErr("list campaigns", err)
	}
	loc := businessLocation(ctx, s.store, businessID, s.deps.Location)

	for _, camp := range campaigns {
		scores, err := s.store.ListHealthScores(ctx, businessID, camp.TargetSegment)
		if err != nil {
			return res, storeErr("list segment", err)
		}
		if len(scores) == 0 {
			continue
		}
		ids := make([]uuid.UUID, 0, len(scores))
		for _, sc := range scores {
			ids = append(ids, sc.ClientID)
		}
		clients, err := s.store.ClientsByIDs(ctx, businessID, ids)
		if err != nil {
			return res, storeErr("load clients", err)
		}
		byID := make(map[uuid.UUID]models.Client, len(clients))
		for _, c := range clients {
			byID[c.ID] = c
		}

		sent := 0
		for _, sc := range scores {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			client, ok := byID[sc.ClientID]
			if !ok || !client.IsActive {
				continue
			}
			open, err := s.store.HasInProgressTrigger(ctx, camp.ID, client.ID)
			if err != nil {
				s.log.Warn("trigger lookup failed", "campaign_id", camp.ID, "client_id", client.ID, "error", err)
				continue
			}
			if open || !s.eligible(ctx, camp, client, sc, loc) {
				continue
			}

			ok, err = s.startTrigger(ctx, biz, camp, client, sc)
			if err != nil {
				s.log.Warn("trigger failed", "campaign_id", camp.ID, "client_id", client.ID, "error", err)
				continue
			}
			res.Triggered++
			if ok {
				sent++
			}
		}

		if sent > 0 {
			if err := s.store.IncrementCampaignSent(ctx, camp.ID, sent); err != nil {
				s.log.Warn("sent count update failed", "campaign_id", camp.ID, "error", err)
			}
			res.Sent += sent
		}
	}

	s.log.Info("re-engagement triggers checked", "business_id", businessID, "triggered", res.Triggered, "sent", res.Sent)
	s.deps.Recorder.Record(ctx, businessID, AgentRetention, "triggers_checked", res)
	return res, nil
}

func (s *RetentionService) eligible(ctx context.Context, camp models.RetentionCampaign, client models.Client, score models.ClientHealthScore, loc *time.Location) bool {
	now := s.deps.Now().In(loc)
	switch camp.TriggerType {
	case models.TriggerDaysInactive:
		return score.LastVisitDaysAgo >= daysOr(camp.TriggerDays, defaultInactiveDays)
	case models.TriggerBirthday:
		return client.Birthday != nil && utils.WithinDays(*client.Birthday, now, daysOr(camp.TriggerDays, defaultCelebrationDays))
	case models.TriggerAnniversary:
		return client.Anniversary != nil && utils.WithinDays(*client.Anniversary, now, daysOr(camp.TriggerDays, defaultCelebrationDays))
	case models.TriggerMissedAppointment:
		history, err := s.store.ClientAppointments(ctx, camp.BusinessID, client.ID, missedLookback)
		if err != nil {
			s.log.Warn("history lookup failed", "client_id", client.ID, "error", err)
			return false
		}
		since := now.AddDate(0, 0, -daysOr(camp.TriggerDays, defaultMissedDays))
		for _, a := range history {
			if a.StartTime.Before(since) || a.StartTime.After(now) {
				continue
			}
			if a.Status == models.AppointmentCancelled || a.Status == models.AppointmentNoShow {
				return true
			}
		}
	}
	return false
}

func daysOr(days, fallback int) int {
	if days > 0 {
		return days
	}
	return fallback
}

// startTrigger composes and sends one message, logs it and records the
// trigger. It reports whether the message was delivered.
func (s *RetentionService) startTrigger(ctx context.Context, biz models.Business, camp models.RetentionCampaign, client models.Client, score models.ClientHealthScore) (bool, error) {
	now := s.deps.Now()
	body, err := s.deps.Composer.Compose(ctx, llm.MessageContext{
		ClientName:       client.FirstName,
		BusinessName:     biz.Name,
		Template:         camp.MessageTemplate,
		Offer:            offerText(camp),
		HealthStatus:     string(score.HealthStatus),
		LastVisitDaysAgo: score.LastVisitDaysAgo,
	})
	if err != nil {
		return false, err
	}

	trigger := &models.ReengagementTrigger{
		BusinessID:  biz.ID,
		ClientID:    client.ID,
		CampaignID:  camp.ID,
		TriggerType: camp.TriggerType,
		TriggeredAt: now,
		Status:      models.TriggerInProgress,
	}

	delivered := false
	msgLog := &models.MessageLog{
		BusinessID:  biz.ID,
		ClientID:    client.ID,
		ReferenceID: camp.ID,
		Purpose:     "reengagement",
		Message:     body,
		SentAt:      now,
	}
	if !utils.ValidatePhone(client.Phone) {
		msgLog.Status = "failed"
		msgLog.ErrorMessage = "client has no valid phone number"
	} else {
		d, err := s.deps.Messenger.Send(ctx, client.Phone, body)
		msgLog.Channel = d.Channel
		if err != nil {
			msgLog.Status = "failed"
			msgLog.ErrorMessage = err.Error()
		} else {
			msgLog.Status = "sent"
			delivered = true
			trigger.MessagesSent = 1
			trigger.LastMessageAt = &now
		}
	}

	if err := s.store.CreateTrigger(ctx, trigger); err != nil {
		return delivered, err
	}
	if err := s.store.CreateMessageLog(ctx, msgLog); err != nil {
		s.log.Warn("message log failed", "client_id", client.ID, "error", err)
	}
	return delivered, nil
}

// offerText renders the campaign offer for the {{offer}} placeholder.
func offerText(c models.RetentionCampaign) string {
	if c.OfferValue == nil {
		return c.OfferType
	}
	v := *c.OfferValue
	switch c.OfferType {
	case "percentage", "percent_off":
		return fmt.Sprintf("%g%% off", v)
	case "fixed", "amount_off":
		return fmt.Sprintf("$%.2f off", v)
	case "":
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("%s %g", c.OfferType, v)
}

func validateTier(t *models.VipTierDefinition) error {
	if _, ok := t.TierName.Ordinal(); !ok || t.TierName == models.TierStandard {
		return invalid("tier name must be silver, gold or platinum")
	}
	if t.MinSpend < 0 || t.MinVisits < 0 {
		return invalid("tier thresholds must not be negative")
	}
	return nil
}

func (s *RetentionService) ListTiers(ctx context.Context, businessID uuid.UUID) ([]models.VipTierDefinition, error) {
	out, err := s.store.ListTierDefinitions(ctx, businessID)
	if err != nil {
		return nil, storeErr("list tiers", err)
	}
	return out, nil
}

func (s *RetentionService) CreateTier(ctx context.Context, businessID uuid.UUID, t models.VipTierDefinition) (models.VipTierDefinition, error) {
	t.ID = uuid.Nil
	t.BusinessID = businessID
	t.IsActive = true
	if err := validateTier(&t); err != nil {
		return t, err
	}
	if err := s.store.CreateTierDefinition(ctx, &t); err != nil {
		return t, storeErr("create tier", err)
	}
	return t, nil
}

type TierUpdate struct {
	MinSpend  *float64 `json:"minSpend"`
	MinVisits *int     `json:"minVisits"`
	Benefits  *string  `json:"benefits"`
	IsActive  *bool    `json:"isActive"`
}

func (s *RetentionService) UpdateTier(ctx context.Context, businessID, id uuid.UUID, u TierUpdate) (models.VipTierDefinition, error) {
	t, err := s.store.GetTierDefinition(ctx, businessID, id)
	if err != nil {
		return t, storeErr("get tier", err)
	}
	if u.MinSpend != nil {
		t.MinSpend = *u.MinSpend
	}
	if u.MinVisits != nil {
		t.MinVisits = *u.MinVisits
	}
	if u.Benefits != nil {
		t.Benefits = *u.Benefits
	}
	if u.IsActive != nil {
		t.IsActive = *u.IsActive
	}
	if err := validateTier(&t); err != nil {
		return t, err
	}
	if err := s.store.SaveTierDefinition(ctx, &t); err != nil {
		return t, storeErr("save tier", err)
	}
	return t, nil
}

func (s *RetentionService) DeleteTier(ctx context.Context, businessID, id uuid.UUID) error {
	if err := s.store.DeleteTierDefinition(ctx, businessID, id); err != nil {
		return storeErr("delete tier", err)
	}
	return nil
}
