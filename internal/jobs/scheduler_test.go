package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPurger struct {
	sessionCalls  int
	rosterCalls   int
	retentionDays int
	err           error
}

func (s *stubPurger) PurgeExpired(context.Context) (int64, error) {
	s.sessionCalls++
	return 2, s.err
}

func (s *stubPurger) PurgeBefore(_ context.Context, retentionDays int) (int64, error) {
	s.rosterCalls++
	s.retentionDays = retentionDays
	return 5, s.err
}

func testConfig() Config {
	return Config{
		SessionPurgeSchedule: "@daily",
		RosterPurgeSchedule:  "@every 1h",
		RosterRetentionDays:  30,
		Location:             time.UTC,
	}
}

func TestScheduler_StartRegistersJobs(t *testing.T) {
	p := &stubPurger{}
	s := NewScheduler(testConfig(), p, p, zerolog.Nop())

	require.NoError(t, s.Start())
	t.Cleanup(func() { s.Stop(context.Background()) })

	assert.Len(t, s.cron.Entries(), 2)
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.RosterPurgeSchedule = "every tuesday"
	p := &stubPurger{}
	s := NewScheduler(cfg, p, p, zerolog.Nop())

	err := s.Start()
	assert.ErrorContains(t, err, "roster purge")
}

func TestScheduler_JobsCallPurgers(t *testing.T) {
	p := &stubPurger{}
	s := NewScheduler(testConfig(), p, p, zerolog.Nop())

	s.wrap("session_purge", s.purgeSessions)()
	s.wrap("roster_purge", s.purgeRosters)()

	assert.Equal(t, 1, p.sessionCalls)
	assert.Equal(t, 1, p.rosterCalls)
	assert.Equal(t, 30, p.retentionDays)
}

func TestScheduler_JobErrorIsContained(t *testing.T) {
	p := &stubPurger{err: errors.New("db down")}
	s := NewScheduler(testConfig(), p, p, zerolog.Nop())

	assert.NotPanics(t, s.wrap("session_purge", s.purgeSessions))
	assert.Equal(t, 1, p.sessionCalls)
}
