package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"salonpro-retention/logger"
	"salonpro-retention/models"
	"salonpro-retention/notify"
	"salonpro-retention/repository"
)

// Wednesday.
var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func day(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

type fakeRecorder struct {
	mu      sync.Mutex
	actions []string
	alerts  []string
}

func (r *fakeRecorder) Record(_ context.Context, _ uuid.UUID, _, action string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *fakeRecorder) Alert(_ context.Context, _ uuid.UUID, alertType, _, _, _ string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alertType)
}

func (r *fakeRecorder) count(action string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.actions {
		if a == action {
			n++
		}
	}
	return n
}

type sentMessage struct {
	to   string
	body string
}

type fakeMessenger struct {
	sent    []sentMessage
	failFor map[string]bool
}

func (m *fakeMessenger) Send(_ context.Context, to, body string) (notify.Delivery, error) {
	if m.failFor[to] {
		return notify.Delivery{Channel: notify.ChannelSMS}, errors.New("undeliverable")
	}
	m.sent = append(m.sent, sentMessage{to: to, body: body})
	return notify.Delivery{Channel: notify.ChannelSMS, SID: "SM" + to}, nil
}

type memCache struct {
	items map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string, target interface{}) (bool, error) {
	b, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, target)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = b
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	delete(c.items, key)
	return nil
}

type testEnv struct {
	store *repository.Store
	rec   *fakeRecorder
	msg   *fakeMessenger
	cache *memCache
	biz   models.Business
}

func newTestEnv(t *testing.T) *testEnv {
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
	return &testEnv{
		store: repository.New(db, logger.Nop()),
		rec:   &fakeRecorder{},
		msg:   &fakeMessenger{failFor: map[string]bool{}},
		cache: &memCache{items: map[string][]byte{}},
		biz:   biz,
	}
}

func (e *testEnv) deps() Deps {
	return Deps{
		Recorder:  e.rec,
		Messenger: e.msg,
		Cache:     e.cache,
		CacheTTL:  time.Minute,
		Log:       logger.Nop(),
		Now:       func() time.Time { return testNow },
	}
}

func (e *testEnv) retention() *RetentionService {
	return NewRetentionService(e.store, e.deps())
}

func (e *testEnv) scheduling() *SchedulingService {
	return NewSchedulingService(e.store, e.deps())
}

func (e *testEnv) client(t *testing.T, firstName, phone string) models.Client {
	t.Helper()
	c := models.Client{BusinessID: e.biz.ID, FirstName: firstName, LastName: "Test", Phone: phone, IsActive: true}
	if err := e.store.DB().Create(&c).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

type aptOpt func(*models.Appointment)

func withStylist(id uuid.UUID) aptOpt {
	return func(a *models.Appointment) { a.StylistID = &id }
}

func withDuration(d time.Duration) aptOpt {
	return func(a *models.Appointment) { a.EndTime = a.StartTime.Add(d) }
}

func (e *testEnv) appointment(t *testing.T, clientID uuid.UUID, start time.Time, status models.AppointmentStatus, total float64, opts ...aptOpt) models.Appointment {
	t.Helper()
	a := models.Appointment{
		BusinessID: e.biz.ID,
		ClientID:   clientID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Status:     status,
		TotalPrice: &total,
		CreatedAt:  start.Add(-day(7)),
	}
	for _, o := range opts {
		o(&a)
	}
	if err := e.store.DB().Create(&a).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return a
}

// healthyClient has 15 completed visits in the last year, the latest ten
// days ago, totalling 3000.
func (e *testEnv) healthyClient(t *testing.T, name, phone string) models.Client {
	t.Helper()
	c := e.client(t, name, phone)
	for i := 0; i < 15; i++ {
		e.appointment(t, c.ID, testNow.Add(-day(10+20*i)), models.AppointmentCompleted, 200)
	}
	return c
}

// atRiskClient last visited 80 days ago with four visits totalling 240,
// which scores 3+3+2 = 53.
func (e *testEnv) atRiskClient(t *testing.T, name, phone string) models.Client {
	t.Helper()
	c := e.client(t, name, phone)
	for _, d := range []int{80, 120, 160, 200} {
		e.appointment(t, c.ID, testNow.Add(-day(d)), models.AppointmentCompleted, 60)
	}
	return c
}

// churningClient last visited 100 days ago with two visits totalling 500,
// which scores 2+2+3 = 47.
func (e *testEnv) churningClient(t *testing.T, name, phone string) models.Client {
	t.Helper()
	c := e.client(t, name, phone)
	for _, d := range []int{100, 150} {
		e.appointment(t, c.ID, testNow.Add(-day(d)), models.AppointmentCompleted, 250)
	}
	return c
}
