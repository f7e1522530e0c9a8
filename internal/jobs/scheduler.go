// Package jobs runs periodic housekeeping on a cron schedule. Nothing in the
// request path depends on these jobs having run.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const jobTimeout = time.Minute

// SessionPurger deletes expired sessions.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// RosterPurger deletes rosters older than the retention window.
type RosterPurger interface {
	PurgeBefore(ctx context.Context, retentionDays int) (int64, error)
}

// Config holds the schedules of the housekeeping jobs.
type Config struct {
	SessionPurgeSchedule string
	RosterPurgeSchedule  string
	RosterRetentionDays  int
	Location             *time.Location
}

// Scheduler owns the cron engine and the registered jobs.
type Scheduler struct {
	cron     *cron.Cron
	sessions SessionPurger
	roster   RosterPurger
	cfg      Config
	logger   zerolog.Logger
}

// NewScheduler creates a Scheduler. Call Start to register and run the jobs.
func NewScheduler(cfg Config, sessions SessionPurger, roster RosterPurger, logger zerolog.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(cfg.Location)),
		sessions: sessions,
		roster:   roster,
		cfg:      cfg,
		logger:   logger.With().Str("component", "jobs").Logger(),
	}
}

// Start registers the jobs and starts the cron engine in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.SessionPurgeSchedule, s.wrap("session_purge", s.purgeSessions)); err != nil {
		return fmt.Errorf("schedule session purge %q: %w", s.cfg.SessionPurgeSchedule, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.RosterPurgeSchedule, s.wrap("roster_purge", s.purgeRosters)); err != nil {
		return fmt.Errorf("schedule roster purge %q: %w", s.cfg.RosterPurgeSchedule, err)
	}
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
	return nil
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("Scheduler stop timed out with jobs still running")
	}
}

func (s *Scheduler) purgeSessions(ctx context.Context) (int64, error) {
	return s.sessions.PurgeExpired(ctx)
}

func (s *Scheduler) purgeRosters(ctx context.Context) (int64, error) {
	return s.roster.PurgeBefore(ctx, s.cfg.RosterRetentionDays)
}

func (s *Scheduler) wrap(name string, job func(context.Context) (int64, error)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		n, err := job(ctx)
		jobRuns.WithLabelValues(name, outcome(err)).Inc()
		if err != nil {
			s.logger.Error().Err(err).Str("job", name).Msg("Housekeeping job failed")
			return
		}
		s.logger.Info().
			Str("job", name).
			Int64("deleted", n).
			Dur("duration", time.Since(start)).
			Msg("Housekeeping job completed")
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
