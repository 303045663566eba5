// Package scheduler provides the daily reminder for redemptions awaiting an admin decision.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zetarewards/recognition-api/internal/config"
	"github.com/zetarewards/recognition-api/internal/mattermost"
	prommetrics "github.com/zetarewards/recognition-api/internal/metrics"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

const defaultMinAge = 4 * time.Hour

// RedemptionLister returns redemptions still pending before a cutoff.
type RedemptionLister interface {
	ListPendingRedemptionsBefore(ctx context.Context, cutoff time.Time) ([]models.Redemption, error)
}

// Reminder delivers the pending redemption digest.
type Reminder interface {
	SendPendingRedemptionReminder(ctx context.Context, pending []mattermost.PendingRedemption, now time.Time) error
}

// Service handles daily reminder scheduling.
type Service struct {
	config      *config.Config
	redemptions RedemptionLister
	reminder    Reminder
	log         *logger.Logger
	cron        *cron.Cron
	now         func() time.Time
}

// NewService creates a new scheduler service.
func NewService(
	cfg *config.Config,
	ledgerRepo *repository.LedgerRepository,
	mattermostClient *mattermost.Client,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(cfg, ledgerRepo, mattermostClient, log)
}

// NewServiceWithInterfaces creates a new scheduler service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(cfg *config.Config, redemptions RedemptionLister, reminder Reminder, log *logger.Logger) *Service {
	return &Service{
		config:      cfg,
		redemptions: redemptions,
		reminder:    reminder,
		log:         log.Component("scheduler"),
		now:         time.Now,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := time.LoadLocation(s.config.Scheduler.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Scheduler.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	cronExpr, err := s.buildCronExpression()
	if err != nil {
		return fmt.Errorf("failed to build cron expression: %w", err)
	}

	_, err = s.cron.AddFunc(cronExpr, func() {
		s.runPendingRedemptionReminder(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register reminder job: %w", err)
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("schedule", cronExpr).
		Str("timezone", s.config.Scheduler.Timezone).
		Str("time", s.config.Scheduler.Time).
		Bool("skip_weekends", s.config.Scheduler.SkipWeekends).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for a running job.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// buildCronExpression generates a cron expression from config.
func (s *Service) buildCronExpression() (string, error) {
	// Parse time string (format: "HH:MM")
	parts := strings.Split(s.config.Scheduler.Time, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format %q, expected HH:MM", s.config.Scheduler.Time)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %q", parts[1])
	}

	// Format: "minute hour day month weekday"
	if s.config.Scheduler.SkipWeekends {
		return fmt.Sprintf("%d %d * * 1-5", minute, hour), nil
	}

	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

func (s *Service) minAge() time.Duration {
	if s.config.Scheduler.MinAgeHours <= 0 {
		return defaultMinAge
	}
	return time.Duration(s.config.Scheduler.MinAgeHours) * time.Hour
}

// runPendingRedemptionReminder executes the daily reminder job.
func (s *Service) runPendingRedemptionReminder(ctx context.Context) {
	start := time.Now()

	defer func() {
		prommetrics.ObserveSchedulerJobDuration(time.Since(start).Seconds())
		prommetrics.SetSchedulerLastRun()
	}()

	s.log.Info().Msg("Running pending redemption reminder job")

	now := s.now()
	redemptions, err := s.redemptions.ListPendingRedemptionsBefore(ctx, now.Add(-s.minAge()))
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list pending redemptions")
		prommetrics.RecordSchedulerJobRun("error")
		return
	}

	pending := buildPendingRedemptions(redemptions)
	prommetrics.SetSchedulerPendingRedemptions(len(pending))

	if len(pending) == 0 {
		s.log.Debug().Msg("No pending redemptions to remind about")
		prommetrics.RecordSchedulerJobRun("success")
		return
	}

	sendStart := time.Now()
	if err := s.reminder.SendPendingRedemptionReminder(ctx, pending, now); err != nil {
		s.log.Error().
			Err(err).
			Dur("send_duration", time.Since(sendStart)).
			Msg("Failed to send pending redemption reminder")
		prommetrics.RecordSchedulerJobRun("error")
		return
	}

	prommetrics.RecordSchedulerJobRun("success")
	prommetrics.RecordSchedulerReminderSent()

	s.log.Info().
		Int("redemption_count", len(pending)).
		Dur("total_duration", time.Since(start)).
		Msg("Sent pending redemption reminder")
}
