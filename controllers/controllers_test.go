package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"salonpro-retention/agents"
	"salonpro-retention/logger"
	"salonpro-retention/models"
	"salonpro-retention/repository"
	"salonpro-retention/scheduler"
	"salonpro-retention/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type fakeJobs struct {
	retentionRuns  int
	schedulingRuns int
}

func (f *fakeJobs) RunRetention(context.Context) scheduler.RunSummary {
	f.retentionRuns++
	return scheduler.RunSummary{BusinessesProcessed: 2}
}

func (f *fakeJobs) RunScheduling(context.Context) scheduler.RunSummary {
	f.schedulingRuns++
	return scheduler.RunSummary{BusinessesProcessed: 1}
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	biz    models.Business
	jobs   *fakeJobs
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	biz := models.Business{Name: "Glow Studio", Timezone: "UTC", IsActive: true}
	if err := db.Create(&biz).Error; err != nil {
		t.Fatalf("create business: %v", err)
	}

	store := repository.New(db, logger.Nop())
	deps := services.Deps{Log: logger.Nop(), Now: func() time.Time { return testNow }}
	retention := services.NewRetentionService(store, deps)
	scheduling := services.NewSchedulingService(store, deps)
	registry := agents.NewRegistry(agents.Services{Retention: retention, Scheduling: scheduling, RecommendationSize: 10})
	jobs := &fakeJobs{}

	rc := NewRetentionController(retention, 10)
	sc := NewSchedulingController(scheduling, 10)
	ac := NewAgentController(agents.NewRunner(registry, store, logger.Nop()), store)
	recs := NewRecommendationController(services.NewAdvisor(retention, scheduling), 10)
	cc := NewCronController(jobs)

	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		c.Set("businessId", biz.ID)
		c.Next()
	})
	api.GET("/recommendations", recs.GetRecommendations)
	api.GET("/clients/:id/health", rc.GetClientHealth)
	api.POST("/clients/:id/health", rc.CalculateClientHealth)
	api.POST("/clients/:id/vip/evaluate", rc.EvaluateVip)
	api.POST("/clients/:id/patterns", sc.UpdatePatterns)
	api.GET("/retention/dashboard", rc.GetDashboard)
	api.GET("/retention/campaigns/:id", rc.GetCampaign)
	api.POST("/retention/campaigns", rc.CreateCampaign)
	api.DELETE("/retention/campaigns/:id", rc.DeactivateCampaign)
	api.POST("/retention/vip-tiers", rc.CreateTier)
	api.POST("/scheduling/predictions", sc.Predict)
	api.PATCH("/scheduling/predictions/:id", sc.RecordOutcome)
	api.POST("/scheduling/gaps", sc.AnalyzeGaps)
	api.GET("/scheduling/slots", sc.GetOptimalSlots)
	api.POST("/agents/:type/tasks", ac.RunTask)
	api.GET("/agents/tasks/:id", ac.GetTask)
	r.POST("/cron/retention", cc.Retention)
	r.POST("/cron/scheduling", cc.Scheduling)

	return &testServer{router: r, db: db, biz: biz, jobs: jobs}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func (s *testServer) client(t *testing.T) models.Client {
	t.Helper()
	c := models.Client{BusinessID: s.biz.ID, FirstName: "Ava", LastName: "Stone", Phone: "+15550100001", IsActive: true}
	if err := s.db.Create(&c).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

func (s *testServer) appointment(t *testing.T, clientID uuid.UUID, status models.AppointmentStatus, start time.Time, price float64) models.Appointment {
	t.Helper()
	a := models.Appointment{
		BusinessID: s.biz.ID,
		ClientID:   clientID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Status:     status,
		TotalPrice: &price,
		CreatedAt:  start.Add(-7 * 24 * time.Hour),
	}
	if err := s.db.Create(&a).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return a
}

func TestClientHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)
	for i := 1; i <= 4; i++ {
		s.appointment(t, c.ID, models.AppointmentCompleted, testNow.Add(-time.Duration(i*20)*24*time.Hour), 80)
	}

	if code, _ := s.do(t, http.MethodGet, "/api/clients/"+c.ID.String()+"/health", nil); code != http.StatusNotFound {
		t.Fatalf("health before calculation: status %d, want 404", code)
	}

	code, env := s.do(t, http.MethodPost, "/api/clients/"+c.ID.String()+"/health", nil)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("calculate: status %d body %+v", code, env)
	}
	var calculated struct {
		ClientID      uuid.UUID `json:"clientId"`
		LifetimeValue float64   `json:"lifetimeValue"`
	}
	if err := json.Unmarshal(env.Data, &calculated); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if calculated.ClientID != c.ID || calculated.LifetimeValue != 320 {
		t.Fatalf("unexpected result %+v", calculated)
	}

	code, env = s.do(t, http.MethodGet, "/api/clients/"+c.ID.String()+"/health", nil)
	if code != http.StatusOK {
		t.Fatalf("get health: status %d", code)
	}
	var stored models.ClientHealthScore
	if err := json.Unmarshal(env.Data, &stored); err != nil {
		t.Fatalf("decode stored score: %v", err)
	}
	if stored.ClientID != c.ID || stored.LastVisitDaysAgo != 20 {
		t.Fatalf("unexpected stored score %+v", stored)
	}
}

func TestClientEndpointErrors(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	cases := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"malformed id", http.MethodPost, "/api/clients/not-a-uuid/health", http.StatusBadRequest},
		{"unknown client", http.MethodPost, "/api/clients/" + uuid.NewString() + "/health", http.StatusNotFound},
		{"unknown client vip", http.MethodPost, "/api/clients/" + uuid.NewString() + "/vip/evaluate", http.StatusNotFound},
		{"patterns without history", http.MethodPost, "/api/clients/" + c.ID.String() + "/patterns", http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := s.do(t, tc.method, tc.path, nil)
			if code != tc.status {
				t.Fatalf("status %d, want %d (%s)", code, tc.status, env.Error)
			}
			if env.Success || env.Error == "" {
				t.Fatalf("expected error envelope, got %+v", env)
			}
		})
	}
}

func TestCampaignLifecycle(t *testing.T) {
	s := newTestServer(t)

	bad := map[string]interface{}{
		"name":            "Winback",
		"targetSegment":   "sleepy",
		"triggerType":     "days_inactive",
		"messageTemplate": "We miss you {name}",
	}
	if code, _ := s.do(t, http.MethodPost, "/api/retention/campaigns", bad); code != http.StatusBadRequest {
		t.Fatalf("unknown segment: status %d, want 400", code)
	}
	if code, _ := s.do(t, http.MethodPost, "/api/retention/campaigns", map[string]interface{}{"name": "x"}); code != http.StatusBadRequest {
		t.Fatalf("missing fields: status %d, want 400", code)
	}

	good := map[string]interface{}{
		"name":            "Winback",
		"targetSegment":   "at_risk",
		"triggerType":     "days_inactive",
		"triggerDays":     45,
		"messageTemplate": "We miss you {name}",
		"offerType":       "percentage",
		"offerValue":      20,
	}
	code, env := s.do(t, http.MethodPost, "/api/retention/campaigns", good)
	if code != http.StatusCreated {
		t.Fatalf("create: status %d (%s)", code, env.Error)
	}
	var created models.RetentionCampaign
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode campaign: %v", err)
	}
	if !created.IsActive || created.BusinessID != s.biz.ID {
		t.Fatalf("unexpected campaign %+v", created)
	}

	path := "/api/retention/campaigns/" + created.ID.String()
	if code, _ := s.do(t, http.MethodDelete, path, nil); code != http.StatusOK {
		t.Fatalf("deactivate: status %d", code)
	}
	_, env = s.do(t, http.MethodGet, path, nil)
	var reloaded models.RetentionCampaign
	if err := json.Unmarshal(env.Data, &reloaded); err != nil {
		t.Fatalf("decode campaign: %v", err)
	}
	if reloaded.IsActive {
		t.Fatal("campaign still active after deactivation")
	}
}

func TestCreateTierRejectsStandard(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(t, http.MethodPost, "/api/retention/vip-tiers", map[string]interface{}{
		"tierName": "standard", "minSpend": 0, "minVisits": 0,
	})
	if code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", code)
	}
	code, _ = s.do(t, http.MethodPost, "/api/retention/vip-tiers", map[string]interface{}{
		"tierName": "gold", "minSpend": 1000, "minVisits": 10, "benefits": "Free blowout",
	})
	if code != http.StatusCreated {
		t.Fatalf("gold tier: status %d, want 201", code)
	}
}

func TestPredictionAndOutcome(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)
	apt := s.appointment(t, c.ID, models.AppointmentScheduled, testNow.Add(24*time.Hour), 90)

	code, env := s.do(t, http.MethodPost, "/api/scheduling/predictions", map[string]string{"appointmentId": apt.ID.String()})
	if code != http.StatusCreated {
		t.Fatalf("predict: status %d (%s)", code, env.Error)
	}
	var pred services.PredictionResult
	if err := json.Unmarshal(env.Data, &pred); err != nil {
		t.Fatalf("decode prediction: %v", err)
	}
	if pred.AppointmentID != apt.ID || pred.PredictionID == uuid.Nil {
		t.Fatalf("unexpected prediction %+v", pred)
	}

	path := "/api/scheduling/predictions/" + pred.PredictionID.String()
	if code, _ := s.do(t, http.MethodPatch, path, map[string]string{"outcome": "maybe"}); code != http.StatusBadRequest {
		t.Fatalf("bad outcome: status %d, want 400", code)
	}
	code, env = s.do(t, http.MethodPatch, path, map[string]string{"outcome": "completed"})
	if code != http.StatusOK {
		t.Fatalf("record outcome: status %d (%s)", code, env.Error)
	}
	var updated models.CancellationPrediction
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode prediction: %v", err)
	}
	if updated.ActualOutcome == nil || *updated.ActualOutcome != "completed" {
		t.Fatalf("outcome not stored: %+v", updated)
	}

	if code, _ := s.do(t, http.MethodPost, "/api/scheduling/predictions", map[string]string{"appointmentId": uuid.NewString()}); code != http.StatusNotFound {
		t.Fatalf("unknown appointment: status %d, want 404", code)
	}
}

func TestPredictAllWithoutBody(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)
	s.appointment(t, c.ID, models.AppointmentScheduled, testNow.Add(72*time.Hour), 60)

	code, env := s.do(t, http.MethodPost, "/api/scheduling/predictions", nil)
	if code != http.StatusOK {
		t.Fatalf("status %d (%s)", code, env.Error)
	}
	var res services.UpcomingResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Predicted != 1 {
		t.Fatalf("predicted %d, want 1", res.Predicted)
	}
}

func TestAnalyzeGapsReversedRange(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(t, http.MethodPost, "/api/scheduling/gaps", map[string]time.Time{
		"startDate": testNow.Add(48 * time.Hour),
		"endDate":   testNow,
	})
	if code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", code)
	}
}

func TestOptimalSlots(t *testing.T) {
	s := newTestServer(t)
	st := models.Stylist{BusinessID: s.biz.ID, FirstName: "Ivy", IsActive: true}
	if err := s.db.Create(&st).Error; err != nil {
		t.Fatalf("create stylist: %v", err)
	}
	c := s.client(t)

	code, env := s.do(t, http.MethodGet, "/api/scheduling/slots?date=2026-10-15&clientId="+c.ID.String(), nil)
	if code != http.StatusOK {
		t.Fatalf("status %d (%s)", code, env.Error)
	}
	var res services.SlotResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Date != "2026-10-15" || res.PatternUsed || len(res.Slots) != 6 || res.Slots[0].StylistName != "Ivy" {
		t.Fatalf("unexpected slots %+v", res)
	}

	for _, path := range []string{
		"/api/scheduling/slots?date=2026-13-01",
		"/api/scheduling/slots?clientId=not-a-uuid",
	} {
		if code, _ := s.do(t, http.MethodGet, path, nil); code != http.StatusBadRequest {
			t.Fatalf("%s: status %d, want 400", path, code)
		}
	}
	if code, _ := s.do(t, http.MethodGet, "/api/scheduling/slots?clientId="+uuid.NewString(), nil); code != http.StatusNotFound {
		t.Fatalf("unknown client: status %d, want 404", code)
	}
}

func TestRunAgentTask(t *testing.T) {
	s := newTestServer(t)

	if code, _ := s.do(t, http.MethodPost, "/api/agents/marketing/tasks", map[string]string{"taskType": "get_dashboard"}); code != http.StatusBadRequest {
		t.Fatalf("unknown agent: status %d, want 400", code)
	}

	w := httptest.NewRecorder()
	body, _ := json.Marshal(map[string]interface{}{"taskType": "calculate_health", "input": map[string]string{}})
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/agents/retention/tasks", bytes.NewReader(body)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing client id: status %d, want 400", w.Code)
	}
	var failed agents.Result
	if err := json.Unmarshal(w.Body.Bytes(), &failed); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if failed.Success || failed.TaskID == uuid.Nil {
		t.Fatalf("expected failed task with id, got %+v", failed)
	}

	code, env := s.do(t, http.MethodGet, "/api/agents/tasks/"+failed.TaskID.String(), nil)
	if code != http.StatusOK {
		t.Fatalf("get task: status %d", code)
	}
	var task models.AgentTask
	if err := json.Unmarshal(env.Data, &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if task.Status != models.TaskFailed {
		t.Fatalf("task status %q, want failed", task.Status)
	}

	w = httptest.NewRecorder()
	body, _ = json.Marshal(map[string]string{"taskType": "get_dashboard"})
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/agents/retention/tasks", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard task: status %d body %s", w.Code, w.Body.String())
	}
}

func TestRecommendationsEmpty(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(t, http.MethodGet, "/api/recommendations?limit=5", nil)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if string(env.Data) != "[]" {
		t.Fatalf("data = %s, want []", env.Data)
	}
}

func TestCronEndpoints(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(t, http.MethodPost, "/cron/retention", nil)
	if code != http.StatusOK {
		t.Fatalf("retention: status %d", code)
	}
	var summary scheduler.RunSummary
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.BusinessesProcessed != 2 {
		t.Fatalf("businesses processed %d, want 2", summary.BusinessesProcessed)
	}
	s.do(t, http.MethodPost, "/cron/scheduling", nil)
	if s.jobs.retentionRuns != 1 || s.jobs.schedulingRuns != 1 {
		t.Fatalf("runs = %d/%d, want 1/1", s.jobs.retentionRuns, s.jobs.schedulingRuns)
	}
}
