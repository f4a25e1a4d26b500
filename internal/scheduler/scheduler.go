package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"dukaan-guru/internal/app"
	"dukaan-guru/internal/config"
)

// Scheduler pushes the daily ledger summary to the shopkeeper's WhatsApp
// number on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	svc    app.ApplicationService
	cfg    config.ReminderConfig
	logger *zap.Logger
}

func New(cfg config.ReminderConfig, svc app.ApplicationService, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(),
		svc:    svc,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the summary job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendDailySummary); err != nil {
		return err
	}
	s.logger.Info("reminder scheduler started", zap.String("schedule", s.cfg.CronSchedule))
	s.cron.Start()
	return nil
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping reminder scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sendDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.svc.ShareReport(ctx, s.cfg.To); err != nil {
		s.logger.Error("failed to send daily summary", zap.Error(err))
		return
	}
	s.logger.Info("daily summary sent", zap.String("to", s.cfg.To))
}
