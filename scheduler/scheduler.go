package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	cron "github.com/robfig/cron/v3"

	"salonpro-retention/logger"
	"salonpro-retention/models"
	"salonpro-retention/services"
)

type BusinessLister interface {
	ListActiveBusinesses(ctx context.Context) ([]models.Business, error)
}

type RetentionJobs interface {
	CalculateAllHealthScores(ctx context.Context, businessID uuid.UUID) (services.BatchResult, error)
	CheckReengagementTriggers(ctx context.Context, businessID uuid.UUID) (services.TriggerResult, error)
}

type SchedulingJobs interface {
	PredictAllUpcoming(ctx context.Context, businessID uuid.UUID) (services.UpcomingResult, error)
	AnalyzeGaps(ctx context.Context, businessID uuid.UUID, start, end time.Time) (services.GapResult, error)
}

// jobTimeout bounds one nightly run across all businesses.
const jobTimeout = 30 * time.Minute

type BusinessRun struct {
	BusinessID             uuid.UUID `json:"businessId"`
	HealthScoresCalculated int       `json:"healthScoresCalculated,omitempty"`
	AtRiskClients          int       `json:"atRiskClients,omitempty"`
	TriggersStarted        int       `json:"triggersStarted,omitempty"`
	MessagesSent           int       `json:"messagesSent,omitempty"`
	PredictionsCreated     int       `json:"predictionsCreated,omitempty"`
	RemindersSent          int       `json:"remindersSent,omitempty"`
	GapsDetected           int       `json:"gapsDetected,omitempty"`
	Errors                 []string  `json:"errors"`
}

type RunSummary struct {
	BusinessesProcessed int           `json:"businessesProcessed"`
	Errors              int           `json:"errors"`
	Details             []BusinessRun `json:"details"`
	StartedAt           time.Time     `json:"startedAt"`
	FinishedAt          time.Time     `json:"finishedAt"`
}

type Scheduler struct {
	cron       *cron.Cron
	businesses BusinessLister
	retention  RetentionJobs
	scheduling SchedulingJobs
	log        *logger.Logger
}

func New(businesses BusinessLister, retention RetentionJobs, scheduling SchedulingJobs, loc *time.Location, baseLog *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		businesses: businesses,
		retention:  retention,
		scheduling: scheduling,
		log:        baseLog.With("service", "Scheduler"),
	}
}

// Start registers the nightly jobs and starts the cron loop.
func (s *Scheduler) Start(retentionSpec, schedulingSpec string) error {
	if _, err := s.cron.AddFunc(retentionSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.RunRetention(ctx)
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(schedulingSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.RunScheduling(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("scheduler started", "retention", retentionSpec, "scheduling", schedulingSpec)
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

// RunRetention recalculates health scores and checks re-engagement triggers
// for every active business. Failures are collected per business.
func (s *Scheduler) RunRetention(ctx context.Context) RunSummary {
	return s.each(ctx, "retention", func(ctx context.Context, run *BusinessRun) {
		if res, err := s.retention.CalculateAllHealthScores(ctx, run.BusinessID); err != nil {
			run.Errors = append(run.Errors, "health calculation: "+err.Error())
		} else {
			run.HealthScoresCalculated = res.Calculated
			run.AtRiskClients = res.AtRisk
			for _, f := range res.Failures {
				run.Errors = append(run.Errors, "client "+f.ID.String()+": "+f.Error)
			}
		}
		if res, err := s.retention.CheckReengagementTriggers(ctx, run.BusinessID); err != nil {
			run.Errors = append(run.Errors, "trigger check: "+err.Error())
		} else {
			run.TriggersStarted = res.Triggered
			run.MessagesSent = res.Sent
		}
	})
}

// RunScheduling predicts cancellations for the coming week and refreshes
// schedule gaps for every active business.
func (s *Scheduler) RunScheduling(ctx context.Context) RunSummary {
	return s.each(ctx, "scheduling", func(ctx context.Context, run *BusinessRun) {
		if res, err := s.scheduling.PredictAllUpcoming(ctx, run.BusinessID); err != nil {
			run.Errors = append(run.Errors, "prediction: "+err.Error())
		} else {
			run.PredictionsCreated = res.Predicted
			run.RemindersSent = res.RemindersSent
		}
		if res, err := s.scheduling.AnalyzeGaps(ctx, run.BusinessID, time.Time{}, time.Time{}); err != nil {
			run.Errors = append(run.Errors, "gap analysis: "+err.Error())
		} else {
			run.GapsDetected = res.TotalGaps
		}
	})
}

func (s *Scheduler) each(ctx context.Context, job string, fn func(context.Context, *BusinessRun)) RunSummary {
	sum := RunSummary{StartedAt: time.Now().UTC(), Details: []BusinessRun{}}
	businesses, err := s.businesses.ListActiveBusinesses(ctx)
	if err != nil {
		s.log.Error("list businesses failed", "job", job, "error", err)
		sum.Errors = 1
		sum.FinishedAt = time.Now().UTC()
		return sum
	}

	for _, b := range businesses {
		if ctx.Err() != nil {
			s.log.Warn("job cancelled", "job", job, "processed", sum.BusinessesProcessed)
			break
		}
		run := BusinessRun{BusinessID: b.ID, Errors: []string{}}
		fn(ctx, &run)
		sum.BusinessesProcessed++
		sum.Errors += len(run.Errors)
		sum.Details = append(sum.Details, run)
	}

	sum.FinishedAt = time.Now().UTC()
	s.log.Info("job finished", "job", job,
		"businesses", sum.BusinessesProcessed, "errors", sum.Errors, "duration", sum.FinishedAt.Sub(sum.StartedAt))
	return sum
}
