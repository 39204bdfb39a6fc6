package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"salonpro-retention/logger"
	"salonpro-retention/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db, logger.Nop())
}

func TestUpsertHealthScore_OneRowPerClient(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	biz, client := uuid.New(), uuid.New()

	first := &models.ClientHealthScore{
		BusinessID: biz, ClientID: client, HealthScore: 40, HealthStatus: models.HealthAtRisk,
		RiskFactors: models.ToJSON([]string{"Low visit frequency"}), Opportunities: models.ToJSON(nil),
		Signals: models.ToJSON(nil), CalculatedAt: time.Now().UTC(),
	}
	if err := s.UpsertHealthScore(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	storedID := first.ID

	second := &models.ClientHealthScore{
		BusinessID: biz, ClientID: client, HealthScore: 87, HealthStatus: models.HealthHealthy,
		RiskFactors: models.ToJSON(nil), Opportunities: models.ToJSON(nil),
		Signals: models.ToJSON(nil), CalculatedAt: time.Now().UTC(),
	}
	if err := s.UpsertHealthScore(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != storedID {
		t.Fatalf("expected reload to carry stored id %s, got %s", storedID, second.ID)
	}

	all, err := s.ListHealthScores(ctx, biz)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].HealthScore != 87 || all[0].HealthStatus != models.HealthHealthy {
		t.Fatalf("expected single overwritten row, got %+v", all)
	}
	if got := models.Strings(all[0].RiskFactors); len(got) != 0 {
		t.Fatalf("risk factors should be overwritten, got %v", got)
	}
}

func TestListHealthScores_FiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	biz := uuid.New()
	for _, row := range []struct {
		score  int
		status models.HealthStatus
	}{{55, models.HealthAtRisk}, {20, models.HealthChurning}, {90, models.HealthHealthy}, {45, models.HealthAtRisk}} {
		h := &models.ClientHealthScore{BusinessID: biz, ClientID: uuid.New(), HealthScore: row.score, HealthStatus: row.status}
		if err := s.UpsertHealthScore(ctx, h); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	// another business must not leak in
	other := &models.ClientHealthScore{BusinessID: uuid.New(), ClientID: uuid.New(), HealthScore: 10, HealthStatus: models.HealthChurning}
	if err := s.UpsertHealthScore(ctx, other); err != nil {
		t.Fatalf("upsert other: %v", err)
	}

	got, err := s.ListHealthScores(ctx, biz, models.HealthAtRisk, models.HealthChurning)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].HealthScore != 20 || got[1].HealthScore != 45 || got[2].HealthScore != 55 {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestGetClient_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetClient(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVipStatusUpsertAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	biz := uuid.New()
	clientA, clientB := uuid.New(), uuid.New()
	now := time.Now().UTC()

	rows := []*models.ClientVipStatus{
		{BusinessID: biz, ClientID: clientA, CurrentTier: models.TierSilver, TierStartDate: now, TotalSpend: 600},
		{BusinessID: biz, ClientID: clientB, CurrentTier: models.TierStandard, TierStartDate: now, TotalSpend: 100},
	}
	for _, r := range rows {
		if err := s.UpsertVipStatus(ctx, r); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	promoted := &models.ClientVipStatus{BusinessID: biz, ClientID: clientB, CurrentTier: models.TierGold, TierStartDate: now, TotalSpend: 2500, PromotedAt: &now}
	if err := s.UpsertVipStatus(ctx, promoted); err != nil {
		t.Fatalf("upsert promoted: %v", err)
	}

	vips, err := s.ListVipStatuses(ctx, biz, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(vips) != 2 || vips[0].ClientID != clientB || vips[0].CurrentTier != models.TierGold {
		t.Fatalf("unexpected vip list: %+v", vips)
	}
	if vips[0].PromotedAt == nil {
		t.Fatalf("promotedAt not stored")
	}
	std := &models.ClientVipStatus{BusinessID: biz, ClientID: uuid.New(), CurrentTier: models.TierStandard, TierStartDate: now, TotalSpend: 50}
	if err := s.UpsertVipStatus(ctx, std); err != nil {
		t.Fatalf("upsert standard: %v", err)
	}
	if all, _ := s.ListVipStatuses(ctx, biz, true); len(all) != 3 {
		t.Fatalf("expected standard row included, got %d", len(all))
	}
}

func TestPredictionsAppendAndOutcome(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	biz, apt := uuid.New(), uuid.New()

	for _, score := range []float64{0.5, 0.75} {
		p := &models.CancellationPrediction{
			BusinessID: biz, AppointmentID: apt, ClientID: uuid.New(),
			RiskScore: score, RiskLevel: models.RiskHigh, PredictedAt: time.Now().UTC(),
			RiskFactors: models.ToJSON(nil), Signals: models.ToJSON(nil),
		}
		if score >= 0.7 {
			p.RiskLevel = models.RiskCritical
		}
		if err := s.InsertPrediction(ctx, p); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	open, err := s.ListOpenPredictions(ctx, biz, models.RiskHigh, models.RiskCritical)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(open) != 2 || open[0].RiskScore != 0.75 {
		t.Fatalf("expected both rows riskiest first, got %+v", open)
	}

	action := "sent_reminder"
	if err := s.RecordPredictionOutcome(ctx, biz, open[0].ID, "completed", &action, time.Now().UTC()); err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	open, _ = s.ListOpenPredictions(ctx, biz)
	if len(open) != 1 {
		t.Fatalf("expected one open prediction after outcome, got %d", len(open))
	}
	if err := s.RecordPredictionOutcome(ctx, biz, uuid.New(), "completed", nil, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGapUpsertKeepsFilledStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	biz, stylist, client := uuid.New(), uuid.New(), uuid.New()
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)

	g := &models.ScheduleGap{BusinessID: biz, StylistID: stylist, GapStart: start, GapEnd: start.Add(2 * time.Hour),
		DurationMinutes: 120, PotentialRevenue: 150, Status: models.GapOpen}
	if err := s.UpsertGap(ctx, g); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	open, err := s.ListOpenGaps(ctx, biz, time.Now().UTC())
	if err != nil || len(open) != 1 {
		t.Fatalf("expected one open gap, got %d (%v)", len(open), err)
	}
	if err := s.FillGap(ctx, biz, open[0].ID, client, time.Now().UTC()); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if err := s.FillGap(ctx, biz, open[0].ID, client, time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second fill should report ErrNotFound, got %v", err)
	}

	again := &models.ScheduleGap{BusinessID: biz, StylistID: stylist, GapStart: start, GapEnd: start.Add(3 * time.Hour),
		DurationMinutes: 180, PotentialRevenue: 225, Status: models.GapOpen}
	if err := s.UpsertGap(ctx, again); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	stored, err := s.GetGap(ctx, biz, open[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != models.GapFilled || stored.DurationMinutes != 180 {
		t.Fatalf("expected refreshed but still filled gap, got %+v", stored)
	}
}

func TestTriggerStatsAndCampaignCounters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	biz, client := uuid.New(), uuid.New()

	c := &models.RetentionCampaign{BusinessID: biz, Name: "Win back", TargetSegment: models.HealthChurning,
		TriggerType: models.TriggerDaysInactive, MessageTemplate: "Hi {{name}}", IsActive: true}
	if err := s.CreateCampaign(ctx, c); err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	has, err := s.HasInProgressTrigger(ctx, c.ID, client)
	if err != nil || has {
		t.Fatalf("expected no trigger yet (%v)", err)
	}
	for _, converted := range []bool{false, true} {
		tr := &models.ReengagementTrigger{BusinessID: biz, ClientID: client, CampaignID: c.ID,
			TriggerType: models.TriggerDaysInactive, TriggeredAt: time.Now().UTC(),
			Status: models.TriggerInProgress, ConvertedToBooking: converted}
		if err := s.CreateTrigger(ctx, tr); err != nil {
			t.Fatalf("create trigger: %v", err)
		}
	}
	if has, _ := s.HasInProgressTrigger(ctx, c.ID, client); !has {
		t.Fatalf("expected in-progress trigger")
	}

	if err := s.IncrementCampaignSent(ctx, c.ID, 2); err != nil {
		t.Fatalf("increment: %v", err)
	}
	stored, _ := s.GetCampaign(ctx, biz, c.ID)
	if stored.SentCount != 2 {
		t.Fatalf("expected sent count 2, got %d", stored.SentCount)
	}

	stats, err := s.TriggerStats(ctx, biz)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 1 || stats[0].Total != 2 || stats[0].Converted != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
