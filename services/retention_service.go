package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"salonpro-retention/cache"
	"salonpro-retention/events"
	"salonpro-retention/logger"
	"salonpro-retention/models"
	"salonpro-retention/repository"
	"salonpro-retention/scoring"
)

// atRiskAlertShare is the share of at-risk or churning clients in a batch
// above which an alert is raised.
const atRiskAlertShare = 0.3

type RetentionService struct {
	store RetentionStore
	deps  Deps
	log   *logger.Logger
}

func NewRetentionService(store RetentionStore, deps Deps) *RetentionService {
	deps = deps.withDefaults()
	return &RetentionService{
		store: store,
		deps:  deps,
		log:   deps.Log.With("service", "RetentionService"),
	}
}

type HealthResult struct {
	ClientID uuid.UUID `json:"clientId"`
	scoring.HealthAssessment
	LastVisitDaysAgo int       `json:"lastVisitDaysAgo"`
	LifetimeValue    float64   `json:"lifetimeValue"`
	CalculatedAt     time.Time `json:"calculatedAt"`
}

// CalculateHealthScore scores one client from their full appointment history
// and upserts the result.
func (s *RetentionService) CalculateHealthScore(ctx context.Context, businessID, clientID uuid.UUID) (HealthResult, error) {
	if _, err := s.store.GetClient(ctx, businessID, clientID); err != nil {
		return HealthResult{}, storeErr("get client", err)
	}
	history, err := s.store.ClientAppointments(ctx, businessID, clientID, 0)
	if err != nil {
		return HealthResult{}, storeErr("load appointments", err)
	}

	now := s.deps.Now()
	assessment := scoring.ClassifyHealth(scoring.ScoreRFM(history, now))

	row := &models.ClientHealthScore{
		BusinessID:       businessID,
		ClientID:         clientID,
		HealthScore:      assessment.HealthScore,
		HealthStatus:     assessment.HealthStatus,
		RecencyScore:     assessment.RFM.Recency,
		FrequencyScore:   assessment.RFM.Frequency,
		MonetaryScore:    assessment.RFM.Monetary,
		ChurnProbability: assessment.ChurnProbability,
		LastVisitDaysAgo: assessment.RFM.DaysSinceLastVisit,
		LifetimeValue:    assessment.RFM.TotalSpend,
		RiskFactors:      models.ToJSON(assessment.RiskFactors),
		Opportunities:    models.ToJSON(assessment.Opportunities),
		Signals:          models.ToJSON(assessment.Signals),
		CalculatedAt:     now,
	}
	if err := s.store.UpsertHealthScore(ctx, row); err != nil {
		return HealthResult{}, storeErr("save health score", err)
	}

	s.deps.Recorder.Record(ctx, businessID, AgentRetention, "health_calculated", map[string]interface{}{
		"clientId":     clientID,
		"healthScore":  assessment.HealthScore,
		"healthStatus": assessment.HealthStatus,
	})

	return HealthResult{
		ClientID:         clientID,
		HealthAssessment: assessment,
		LastVisitDaysAgo: assessment.RFM.DaysSinceLastVisit,
		LifetimeValue:    assessment.RFM.TotalSpend,
		CalculatedAt:     now,
	}, nil
}

// GetHealthScore returns the stored score for one client.
func (s *RetentionService) GetHealthScore(ctx context.Context, businessID, clientID uuid.UUID) (models.ClientHealthScore, error) {
	h, err := s.store.GetHealthScore(ctx, businessID, clientID)
	if err != nil {
		return h, storeErr("get health score", err)
	}
	return h, nil
}

type BatchResult struct {
	Calculated int       `json:"calculated"`
	AtRisk     int       `json:"atRisk"`
	Failures   []Failure `json:"failures"`
}

// CalculateAllHealthScores rescores every client with appointment history,
// one at a time. A client that fails is logged and listed in Failures; the
// batch itself only fails when the client list cannot be loaded.
func (s *RetentionService) CalculateAllHealthScores(ctx context.Context, businessID uuid.UUID) (BatchResult, error) {
	ids, err := s.store.ClientIDsWithAppointments(ctx, businessID)
	if err != nil {
		return BatchResult{}, storeErr("list clients", err)
	}

	res := BatchResult{Failures: []Failure{}}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		r, err := s.CalculateHealthScore(ctx, businessID, id)
		if err != nil {
			s.log.Warn("health score failed", "business_id", businessID, "client_id", id, "error", err)
			res.Failures = append(res.Failures, Failure{ID: id, Error: err.Error()})
			continue
		}
		res.Calculated++
		if r.HealthStatus == models.HealthAtRisk || r.HealthStatus == models.HealthChurning {
			res.AtRisk++
		}
	}

	s.log.Info("health scores recalculated",
		"business_id", businessID, "calculated", res.Calculated, "at_risk", res.AtRisk, "failed", len(res.Failures))
	s.deps.Recorder.Record(ctx, businessID, AgentRetention, "all_health_calculated", res)

	if res.Calculated > 0 && float64(res.AtRisk) > float64(res.Calculated)*atRiskAlertShare {
		share := float64(res.AtRisk) / float64(res.Calculated) * 100
		s.deps.Recorder.Alert(ctx, businessID, "high_churn_risk", events.SeverityHigh,
			"High churn risk detected",
			fmt.Sprintf("%d of %d clients (%.0f%%) are at risk or churning", res.AtRisk, res.Calculated, share),
			res)
	}

	s.invalidateDashboard(ctx, businessID)
	return res, nil
}

type ClientHealth struct {
	models.ClientHealthScore
	ClientName string `json:"clientName"`
}

// GetAtRiskClients lists at-risk and churning clients, least healthy first.
func (s *RetentionService) GetAtRiskClients(ctx context.Context, businessID uuid.UUID) ([]ClientHealth, error) {
	scores, err := s.store.ListHealthScores(ctx, businessID, models.HealthAtRisk, models.HealthChurning)
	if err != nil {
		return nil, storeErr("list at-risk clients", err)
	}
	ids := make([]uuid.UUID, 0, len(scores))
	for _, sc := range scores {
		ids = append(ids, sc.ClientID)
	}
	names := clientNames(ctx, s.store, businessID, ids)

	out := make([]ClientHealth, 0, len(scores))
	for _, sc := range scores {
		out = append(out, ClientHealth{ClientHealthScore: sc, ClientName: names[sc.ClientID.String()]})
	}
	return out, nil
}

type VipResult struct {
	ClientID uuid.UUID `json:"clientId"`
	scoring.VipEvaluation
}

// EvaluateVipStatus compares the client's completed-appointment totals with
// the business's tier definitions. A status row is written only on a tier
// change or when none exists yet.
func (s *RetentionService) EvaluateVipStatus(ctx context.Context, businessID, clientID uuid.UUID) (VipResult, error) {
	if _, err := s.store.GetClient(ctx, businessID, clientID); err != nil {
		return VipResult{}, storeErr("get client", err)
	}
	tiers, err := s.store.ListTierDefinitions(ctx, businessID)
	if err != nil {
		return VipResult{}, storeErr("load tiers", err)
	}
	history, err := s.store.ClientAppointments(ctx, businessID, clientID, 0)
	if err != nil {
		return VipResult{}, storeErr("load appointments", err)
	}

	var prior *models.ClientVipStatus
	current := models.TierStandard
	if st, err := s.store.GetVipStatus(ctx, businessID, clientID); err == nil {
		prior = &st
		current = st.CurrentTier
	} else if !errors.Is(err, repository.ErrNotFound) {
		return VipResult{}, storeErr("load vip status", err)
	}

	spend, visits := scoring.VipTotals(history)
	ev := scoring.EvaluateVip(tiers, current, spend, visits)

	if ev.ShouldPromote || ev.ShouldDemote || prior == nil {
		now := s.deps.Now()
		row := &models.ClientVipStatus{
			BusinessID:       businessID,
			ClientID:         clientID,
			CurrentTier:      ev.RecommendedTier,
			TierStartDate:    now,
			TotalSpend:       spend,
			TotalVisits:      visits,
			NextTierProgress: ev.NextTierProgress,
		}
		if prior != nil {
			row.PromotedAt = prior.PromotedAt
			row.DemotedAt = prior.DemotedAt
		}
		if ev.ShouldPromote {
			row.PromotedAt = &now
		}
		if ev.ShouldDemote {
			row.DemotedAt = &now
		}
		if err := s.store.UpsertVipStatus(ctx, row); err != nil {
			return VipResult{}, storeErr("save vip status", err)
		}

		if ev.ShouldPromote {
			s.deps.Recorder.Record(ctx, businessID, AgentRetention, "vip_promotion", map[string]interface{}{
				"clientId": clientID,
				"fromTier": ev.CurrentTier,
				"toTier":   ev.RecommendedTier,
			})
		}
		s.invalidateDashboard(ctx, businessID)
	}

	return VipResult{ClientID: clientID, VipEvaluation: ev}, nil
}

type VipClient struct {
	models.ClientVipStatus
	ClientName string `json:"clientName"`
}

// GetVipClients lists clients above the standard tier by descending spend.
func (s *RetentionService) GetVipClients(ctx context.Context, businessID uuid.UUID) ([]VipClient, error) {
	rows, err := s.store.ListVipStatuses(ctx, businessID, false)
	if err != nil {
		return nil, storeErr("list vip clients", err)
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ClientID)
	}
	names := clientNames(ctx, s.store, businessID, ids)
	out := make([]VipClient, 0, len(rows))
	for _, r := range rows {
		out = append(out, VipClient{ClientVipStatus: r, ClientName: names[r.ClientID.String()]})
	}
	return out, nil
}

// retentionItems builds outreach recommendations for at-risk and churning
// clients.
func (s *RetentionService) retentionItems(ctx context.Context, businessID uuid.UUID) ([]scoring.Recommendation, error) {
	atRisk, err := s.GetAtRiskClients(ctx, businessID)
	if err != nil {
		return nil, err
	}
	scores := make([]models.ClientHealthScore, 0, len(atRisk))
	names := make(map[string]string, len(atRisk))
	for _, c := range atRisk {
		scores = append(scores, c.ClientHealthScore)
		names[c.ClientID.String()] = c.ClientName
	}
	return scoring.RetentionItems(scores, names), nil
}

// GetRecommendations ranks retention outreach items. limit <= 0 returns all.
func (s *RetentionService) GetRecommendations(ctx context.Context, businessID uuid.UUID, limit int) ([]scoring.Recommendation, error) {
	items, err := s.retentionItems(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return scoring.Rank(items, limit), nil
}

type DashboardSummary struct {
	TotalClients    int `json:"totalClients"`
	HealthyClients  int `json:"healthyClients"`
	AtRiskClients   int `json:"atRiskClients"`
	ChurningClients int `json:"churningClients"`
	ChurnedClients  int `json:"churnedClients"`
	NewClients      int `json:"newClients"`
	AvgHealthScore  int `json:"avgHealthScore"`
}

type VipSummary struct {
	Platinum        int     `json:"platinum"`
	Gold            int     `json:"gold"`
	Silver          int     `json:"silver"`
	Standard        int     `json:"standard"`
	TotalVipRevenue float64 `json:"totalVipRevenue"`
}

type ReengagementStat struct {
	TriggerType    models.TriggerType `json:"triggerType"`
	TotalSent      int                `json:"totalSent"`
	TotalConverted int                `json:"totalConverted"`
	ConversionRate float64            `json:"conversionRate"`
}

type AtRiskSummary struct {
	ClientID         uuid.UUID `json:"clientId"`
	ClientName       string    `json:"clientName"`
	HealthScore      int       `json:"healthScore"`
	ChurnProbability float64   `json:"churnProbability"`
	LifetimeValue    float64   `json:"lifetimeValue"`
}

type Dashboard struct {
	Summary           DashboardSummary   `json:"summary"`
	VipSummary        VipSummary         `json:"vipSummary"`
	ReengagementStats []ReengagementStat `json:"reengagementStats"`
	TopAtRisk         []AtRiskSummary    `json:"topAtRisk"`
	GeneratedAt       time.Time          `json:"generatedAt"`
}

const topAtRiskCount = 5

// GetDashboard aggregates the stored scores, VIP statuses and trigger stats.
// Results are cached per business until the next batch recompute.
func (s *RetentionService) GetDashboard(ctx context.Context, businessID uuid.UUID) (Dashboard, error) {
	key := cache.DashboardKey(businessID.String())
	var cached Dashboard
	if hit, err := s.deps.Cache.Get(ctx, key, &cached); err != nil {
		s.log.Warn("dashboard cache read failed", "business_id", businessID, "error", err)
	} else if hit {
		return cached, nil
	}

	scores, err := s.store.ListHealthScores(ctx, businessID)
	if err != nil {
		return Dashboard{}, storeErr("list health scores", err)
	}
	vips, err := s.store.ListVipStatuses(ctx, businessID, true)
	if err != nil {
		return Dashboard{}, storeErr("list vip statuses", err)
	}
	stats, err := s.store.TriggerStats(ctx, businessID)
	if err != nil {
		return Dashboard{}, storeErr("trigger stats", err)
	}

	d := Dashboard{GeneratedAt: s.deps.Now()}

	var scoreSum int
	var atRisk []models.ClientHealthScore
	for _, sc := range scores {
		d.Summary.TotalClients++
		scoreSum += sc.HealthScore
		switch sc.HealthStatus {
		case models.HealthHealthy:
			d.Summary.HealthyClients++
		case models.HealthAtRisk:
			d.Summary.AtRiskClients++
			atRisk = append(atRisk, sc)
		case models.HealthChurning:
			d.Summary.ChurningClients++
			atRisk = append(atRisk, sc)
		case models.HealthChurned:
			d.Summary.ChurnedClients++
		case models.HealthNew:
			d.Summary.NewClients++
		}
	}
	if d.Summary.TotalClients > 0 {
		d.Summary.AvgHealthScore = int(float64(scoreSum)/float64(d.Summary.TotalClients) + 0.5)
	}

	for _, v := range vips {
		switch v.CurrentTier {
		case models.TierPlatinum:
			d.VipSummary.Platinum++
		case models.TierGold:
			d.VipSummary.Gold++
		case models.TierSilver:
			d.VipSummary.Silver++
		default:
			d.VipSummary.Standard++
			continue
		}
		d.VipSummary.TotalVipRevenue += v.TotalSpend
	}

	byType := map[models.TriggerType]repository.TriggerStat{}
	for _, st := range stats {
		byType[st.TriggerType] = st
	}
	for _, tt := range models.TriggerTypes {
		st := byType[tt]
		rs := ReengagementStat{TriggerType: tt, TotalSent: st.Total, TotalConverted: st.Converted}
		if st.Total > 0 {
			rs.ConversionRate = float64(st.Converted) / float64(st.Total)
		}
		d.ReengagementStats = append(d.ReengagementStats, rs)
	}

	sort.SliceStable(atRisk, func(i, j int) bool {
		return atRisk[i].LifetimeValue > atRisk[j].LifetimeValue
	})
	if len(atRisk) > topAtRiskCount {
		atRisk = atRisk[:topAtRiskCount]
	}
	ids := make([]uuid.UUID, 0, len(atRisk))
	for _, sc := range atRisk {
		ids = append(ids, sc.ClientID)
	}
	names := clientNames(ctx, s.store, businessID, ids)
	d.TopAtRisk = make([]AtRiskSummary, 0, len(atRisk))
	for _, sc := range atRisk {
		d.TopAtRisk = append(d.TopAtRisk, AtRiskSummary{
			ClientID:         sc.ClientID,
			ClientName:       names[sc.ClientID.String()],
			HealthScore:      sc.HealthScore,
			ChurnProbability: scoring.ChurnProbability(sc.HealthScore),
			LifetimeValue:    sc.LifetimeValue,
		})
	}

	if err := s.deps.Cache.Set(ctx, key, d, s.deps.CacheTTL); err != nil {
		s.log.Warn("dashboard cache write failed", "business_id", businessID, "error", err)
	}
	return d, nil
}

func (s *RetentionService) invalidateDashboard(ctx context.Context, businessID uuid.UUID) {
	if err := s.deps.Cache.Delete(ctx, cache.DashboardKey(businessID.String())); err != nil {
		s.log.Warn("dashboard cache invalidate failed", "business_id", businessID, "error", err)
	}
}
