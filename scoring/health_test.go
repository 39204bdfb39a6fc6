package scoring

import (
	"reflect"
	"testing"

	"salonpro-retention/models"
)

func TestClassifyHealth_NewClientOverridesScoreBucket(t *testing.T) {
	h := ClassifyHealth(ScoreRFM(nil, testNow))
	if h.HealthScore != 20 {
		t.Fatalf("expected score 20, got %d", h.HealthScore)
	}
	if h.HealthStatus != models.HealthNew {
		t.Fatalf("expected status new, got %s", h.HealthStatus)
	}
	if h.ChurnProbability != 0.8 {
		t.Fatalf("expected churn 0.8, got %v", h.ChurnProbability)
	}
	if len(h.Recommendations) != 0 {
		t.Fatalf("expected no recommendations for new clients, got %v", h.Recommendations)
	}
}

func TestClassifyHealth_LoyalHighSpender(t *testing.T) {
	var history []models.Appointment
	for i := 0; i < 15; i++ {
		history = append(history, apt(models.AppointmentCompleted, daysAgo(10+i*20), 2500.0/15))
	}
	h := ClassifyHealth(ScoreRFM(history, testNow))
	if h.RFM.Recency != 5 || h.RFM.Frequency != 5 || h.RFM.Monetary != 5 {
		t.Fatalf("expected {5,5,5}, got %+v", h.RFM)
	}
	if h.HealthScore != 100 || h.HealthStatus != models.HealthHealthy {
		t.Fatalf("expected 100/healthy, got %d/%s", h.HealthScore, h.HealthStatus)
	}
	if h.ChurnProbability != 0 {
		t.Fatalf("expected churn 0, got %v", h.ChurnProbability)
	}
	if len(h.RiskFactors) != 0 {
		t.Fatalf("expected no risk factors, got %v", h.RiskFactors)
	}
	if !reflect.DeepEqual(h.Opportunities, []string{"High spender, worth extra retention effort"}) {
		t.Fatalf("unexpected opportunities: %v", h.Opportunities)
	}
}

func TestHealthStatusFor_OrderOfRules(t *testing.T) {
	cases := []struct {
		score, completed int
		want             models.HealthStatus
	}{
		{100, 0, models.HealthNew},
		{20, 0, models.HealthNew},
		{70, 3, models.HealthHealthy},
		{69, 3, models.HealthAtRisk},
		{50, 3, models.HealthAtRisk},
		{49, 3, models.HealthChurning},
		{30, 3, models.HealthChurning},
		{29, 3, models.HealthChurned},
	}
	for _, tc := range cases {
		if got := HealthStatusFor(tc.score, tc.completed); got != tc.want {
			t.Fatalf("HealthStatusFor(%d,%d)=%s want %s", tc.score, tc.completed, got, tc.want)
		}
	}
}

func TestHealthScoreAndChurnRange(t *testing.T) {
	for r := 1; r <= 5; r++ {
		for f := 1; f <= 5; f++ {
			for m := 1; m <= 5; m++ {
				s := HealthScore(r, f, m)
				if s < 0 || s > 100 {
					t.Fatalf("score out of range: %d", s)
				}
				p := ChurnProbability(s)
				if p < 0 || p > 1 {
					t.Fatalf("churn out of range: %v", p)
				}
				if p != float64(100-s)/100 {
					t.Fatalf("churn %v does not match score %d", p, s)
				}
			}
		}
	}
}

func TestClassifyHealth_RiskFactorsInFixedOrder(t *testing.T) {
	history := []models.Appointment{
		apt(models.AppointmentCompleted, daysAgo(120), 40),
		apt(models.AppointmentCompleted, daysAgo(300), 40),
	}
	h := ClassifyHealth(ScoreRFM(history, testNow))
	want := []string{
		"No visit in 120 days",
		"Low visit frequency",
		"Below average lifetime spend",
	}
	if !reflect.DeepEqual(h.RiskFactors, want) {
		t.Fatalf("risk factors=%v want %v", h.RiskFactors, want)
	}
	wantSignals := []Signal{
		{Type: SignalInactive, Value: 120},
		{Type: SignalLowFrequency, Value: 2},
		{Type: SignalLowSpend, Value: 80},
	}
	if !reflect.DeepEqual(h.Signals, wantSignals) {
		t.Fatalf("signals=%v want %v", h.Signals, wantSignals)
	}
	// recency 2, frequency 2, monetary 1 => round(5/15*100) = 33
	if h.HealthScore != 33 || h.HealthStatus != models.HealthChurning {
		t.Fatalf("expected 33/churning, got %d/%s", h.HealthScore, h.HealthStatus)
	}
}

func TestClassifyHealth_WinBackOpportunity(t *testing.T) {
	var history []models.Appointment
	for i := 0; i < 10; i++ {
		history = append(history, apt(models.AppointmentCompleted, daysAgo(100+i*10), 30))
	}
	h := ClassifyHealth(ScoreRFM(history, testNow))
	if h.RFM.Frequency != 4 || h.RFM.Recency != 2 {
		t.Fatalf("expected frequency 4 recency 2, got %+v", h.RFM)
	}
	if len(h.Opportunities) != 1 || h.Opportunities[0] != "Was a frequent visitor, high win-back potential" {
		t.Fatalf("unexpected opportunities: %v", h.Opportunities)
	}
}

func TestClassifyHealth_SpendMonotonicity(t *testing.T) {
	prevScore, prevMonetary := -1, -1
	for _, spend := range []float64{0, 100, 200, 350, 500, 900, 1000, 1500, 2000, 5000} {
		history := []models.Appointment{
			apt(models.AppointmentCompleted, daysAgo(40), spend/2),
			apt(models.AppointmentCompleted, daysAgo(80), spend/2),
		}
		h := ClassifyHealth(ScoreRFM(history, testNow))
		if h.RFM.Monetary < prevMonetary || h.HealthScore < prevScore {
			t.Fatalf("spend %v decreased scores: monetary %d (prev %d), health %d (prev %d)",
				spend, h.RFM.Monetary, prevMonetary, h.HealthScore, prevScore)
		}
		prevScore, prevMonetary = h.HealthScore, h.RFM.Monetary
	}
}

func TestHealthRecommendationsPerStatus(t *testing.T) {
	if n := len(HealthRecommendations(models.HealthAtRisk)); n != 2 {
		t.Fatalf("expected 2 at_risk recommendations, got %d", n)
	}
	if n := len(HealthRecommendations(models.HealthChurning)); n != 2 {
		t.Fatalf("expected 2 churning recommendations, got %d", n)
	}
	if n := len(HealthRecommendations(models.HealthChurned)); n != 1 {
		t.Fatalf("expected 1 churned recommendation, got %d", n)
	}
	if n := len(HealthRecommendations(models.HealthHealthy)); n != 1 {
		t.Fatalf("expected 1 healthy recommendation, got %d", n)
	}
}
