package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/medflow/medsupply-backend/pkg/logger"
)

// ReminderScheduler periodically recomputes the alert views, reports them
// and refreshes the operator banner.
type ReminderScheduler struct {
	svc       *PharmacyService
	scheduler gocron.Scheduler
	interval  time.Duration
	logger    *logger.Logger
	cancel    context.CancelFunc
}

// NewReminderScheduler creates a scheduler. A zero interval means one hour.
func NewReminderScheduler(svc *PharmacyService, interval time.Duration, log *logger.Logger) (*ReminderScheduler, error) {
	if interval <= 0 {
		interval = time.Hour
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &ReminderScheduler{
		svc:       svc,
		scheduler: scheduler,
		interval:  interval,
		logger:    log.WithComponent("reminder_scheduler"),
	}, nil
}

// Start registers the reminder job, runs it once immediately and starts
// the scheduler.
func (s *ReminderScheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.RunOnce, ctx),
		gocron.WithName("pharmacy-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		s.cancel()
		return fmt.Errorf("register reminder job: %w", err)
	}

	s.scheduler.Start()
	s.logger.Info().Dur("interval", s.interval).Msg("reminder scheduler started")
	return nil
}

// Stop shuts the scheduler down and waits for a running pass
func (s *ReminderScheduler) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	err := s.scheduler.Shutdown()
	s.logger.Info().Msg("reminder scheduler stopped")
	return err
}

// RunOnce performs one reminder pass
func (s *ReminderScheduler) RunOnce(ctx context.Context) {
	start := time.Now()
	report := s.svc.Report()

	s.logger.Info().
		Int("expired", len(report.Expiry.Expired)).
		Int("expiring_soon", len(report.Expiry.ExpiringSoon)).
		Int("low_stock", len(report.LowStock.LowStock)).
		Int("already_ordered", len(report.LowStock.AlreadyOrdered)).
		Int("patients_to_contact", len(report.PatientsNeedingContact)).
		Dur("duration", time.Since(start)).
		Msg("reminder pass complete")

	if report.Message == "" && len(report.Expiry.Expired) == 0 && len(report.PatientsNeedingContact) == 0 {
		return
	}

	s.svc.events.PublishAlertGenerated(ctx, report)
	s.svc.RefreshBanner()
}
