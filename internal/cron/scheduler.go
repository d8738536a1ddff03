package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"storebot/internal/config"
	"storebot/internal/repository"
)

// Notifier delivers messages outside the telebot update loop.
// *telegram.BotAPI satisfies it.
type Notifier interface {
	SendMessage(chatID string, text string, replyMarkup interface{}) (string, error)
	SendDocument(chatID string, fileData []byte, filename, caption string) (string, error)
}

// Scheduler manages all cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	logger   *zap.Logger
	repos    *CronRepos
	notifier Notifier
	now      func() time.Time
}

// CronRepos bundles repositories needed by cron jobs.
type CronRepos struct {
	Order   *repository.OrderRepository
	Cart    *repository.CartRepository
	Admin   *repository.AdminRepository
	CronJob *repository.CronJobRepository
}

// finishedJobRetention is how long delivered notification jobs are kept.
const finishedJobRetention = 7 * 24 * time.Hour

// New creates a new cron scheduler.
func New(cfg *config.Config, repos *CronRepos, notifier Notifier, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		cfg:      cfg,
		logger:   logger,
		repos:    repos,
		notifier: notifier,
		now:      time.Now,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting cron scheduler...")

	// Queued order notifications - every minute
	s.addFunc("0 * * * * *", "queued notifications", s.processQueuedJobs)

	// Daily order report - at 23:45
	s.addFunc("0 45 23 * * *", "daily order report", s.dailyOrderReport)

	// Cart and job cleanup - daily at 3 AM
	s.addFunc("0 0 3 * * *", "cleanup", s.cleanup)

	s.cron.Start()
	s.logger.Info("Cron scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler; the returned context is done once running jobs
// finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) addFunc(spec, name string, job func()) {
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Debug("Running: " + name)
		job()
	})
	if err != nil {
		s.logger.Error("Failed to register cron job", zap.String("job", name), zap.Error(err))
	}
}

// ── Cleanup ──────────────────────────────────────────────────────────

func (s *Scheduler) cleanup() {
	defer s.recoverFromPanic("cleanup")

	now := s.now()
	if ttl := s.cfg.Cart.TTL; ttl > 0 {
		removed, err := s.repos.Cart.DeleteStale(now.Add(-ttl))
		if err != nil {
			s.logger.Error("Failed to delete stale cart items", zap.Error(err))
		} else if removed > 0 {
			s.logger.Info("Stale cart items removed", zap.Int64("count", removed))
		}
	}

	purged, err := s.repos.CronJob.PurgeFinished(now.Add(-finishedJobRetention))
	if err != nil {
		s.logger.Error("Failed to purge finished jobs", zap.Error(err))
		return
	}
	if purged > 0 {
		s.logger.Info("Finished jobs purged", zap.Int64("count", purged))
	}
}

func (s *Scheduler) recoverFromPanic(jobName string) {
	if r := recover(); r != nil {
		s.logger.Error("Cron job panicked", zap.String("job", jobName), zap.Any("error", r))
	}
}
