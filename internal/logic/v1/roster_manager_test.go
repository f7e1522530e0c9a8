package v1

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/internal/core/repository/memory"
)

type failingRoster struct {
	*memory.Roster
	err error
}

func (f failingRoster) Mutate(context.Context, string, domain.RosterMutation) error {
	return f.err
}

func newRosterFixture(t *testing.T, staffNames ...string) (*RosterManager, []domain.Staff) {
	t.Helper()
	ctx := context.Background()

	staffRepo := memory.NewStaff()
	var staff []domain.Staff
	for _, name := range staffNames {
		s, err := staffRepo.Create(ctx, name)
		require.NoError(t, err)
		staff = append(staff, *s)
	}

	m := NewRosterManager(memory.NewRoster(), staffRepo, time.UTC)
	m.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return m, staff
}

func TestRosterManager_AddAndList(t *testing.T) {
	ctx := context.Background()
	m, staff := newRosterFixture(t, "Anna", "Bee", "Cat")

	for i, s := range staff {
		e, err := m.AddToRoster(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, i+1, e.Position)
		assert.Equal(t, domain.StatusWaiting, e.Status)
	}

	entries, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anna", "Bee", "Cat"}, names(entries))
	assertContiguous(t, entries)
}

func TestRosterManager_AddErrors(t *testing.T) {
	ctx := context.Background()
	m, staff := newRosterFixture(t, "Anna")

	_, err := m.AddToRoster(ctx, staff[0].ID)
	require.NoError(t, err)

	_, err = m.AddToRoster(ctx, staff[0].ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = m.AddToRoster(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRosterManager_AddInactiveStaff(t *testing.T) {
	ctx := context.Background()
	m, staff := newRosterFixture(t, "Anna")
	_, err := m.staff.Update(ctx, staff[0].ID, "Anna", false)
	require.NoError(t, err)

	_, err = m.AddToRoster(ctx, staff[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRosterManager_RemoveShiftsLaterEntries(t *testing.T) {
	ctx := context.Background()
	m, staff := newRosterFixture(t, "Anna", "Bee", "Cat")
	for _, s := range staff {
		_, err := m.AddToRoster(ctx, s.ID)
		require.NoError(t, err)
	}

	require.NoError(t, m.RemoveFromRoster(ctx, 1))

	entries, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bee", "Cat"}, names(entries))
	assertContiguous(t, entries)

	assert.ErrorIs(t, m.RemoveFromRoster(ctx, 3), ErrNotFound)
	assert.ErrorIs(t, m.RemoveFromRoster(ctx, 0), ErrValidation)
}

func TestRosterManager_MoveBoundaries(t *testing.T) {
	ctx := context.Background()
	m, staff := newRosterFixture(t, "Anna", "Bee")
	for _, s := range staff {
		_, err := m.AddToRoster(ctx, s.ID)
		require.NoError(t, err)
	}

	assert.ErrorIs(t, m.MoveUp(ctx, 1), ErrInvalidMove)
	assert.ErrorIs(t, m.MoveDown(ctx, 2), ErrInvalidMove)

	require.NoError(t, m.MoveDown(ctx, 1))
	entries, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bee", "Anna"}, names(entries))

	require.NoError(t, m.MoveUp(ctx, 2))
	entries, err = m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anna", "Bee"}, names(entries))
}

func TestRosterManager_SetStatusAndServeNext(t *testing.T) {
	ctx := context.Background()
	m, staff := newRosterFixture(t, "Anna", "Bee", "Cat")
	for _, s := range staff {
		_, err := m.AddToRoster(ctx, s.ID)
		require.NoError(t, err)
	}

	_, err := m.SetStatus(ctx, 2, domain.StatusServing)
	require.NoError(t, err)

	served, found, err := m.ServeNext(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Anna", served.StaffName)
	assert.Equal(t, 1, served.ServedCount)

	entries, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusServing, entries[0].Status)
	assert.Equal(t, domain.StatusServing, entries[1].Status)
	assert.Equal(t, domain.StatusWaiting, entries[2].Status)

	served, found, err = m.ServeNext(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Cat", served.StaffName)

	_, found, err = m.ServeNext(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = m.SetStatus(ctx, 1, domain.RosterStatus(0))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

// writeCountingRoster counts mutations that committed a replacement roster.
type writeCountingRoster struct {
	*memory.Roster
	writes int
}

func (r *writeCountingRoster) Mutate(ctx context.Context, day string, fn domain.RosterMutation) error {
	err := r.Roster.Mutate(ctx, day, fn)
	if err == nil {
		r.writes++
	}
	return err
}

func TestRosterManager_ServeNextWithNobodyWaitingWritesNothing(t *testing.T) {
	ctx := context.Background()
	staffRepo := memory.NewStaff()
	anna, err := staffRepo.Create(ctx, "Anna")
	require.NoError(t, err)

	roster := &writeCountingRoster{Roster: memory.NewRoster()}
	m := NewRosterManager(roster, staffRepo, time.UTC)
	m.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }

	_, found, err := m.ServeNext(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, roster.writes)

	_, err = m.AddToRoster(ctx, anna.ID)
	require.NoError(t, err)
	_, err = m.SetStatus(ctx, 1, domain.StatusBreak)
	require.NoError(t, err)
	require.Equal(t, 2, roster.writes)

	_, found, err = m.ServeNext(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 2, roster.writes)

	entries, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatusBreak, entries[0].Status)
}

func TestRosterManager_Clear(t *testing.T) {
	ctx := context.Background()
	m, staff := newRosterFixture(t, "Anna")
	_, err := m.AddToRoster(ctx, staff[0].ID)
	require.NoError(t, err)

	require.NoError(t, m.ClearRoster(ctx))

	entries, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRosterManager_ConcurrentAddsStayContiguous(t *testing.T) {
	ctx := context.Background()
	staffNames := make([]string, 20)
	for i := range staffNames {
		staffNames[i] = string(rune('A' + i))
	}
	m, staff := newRosterFixture(t, staffNames...)

	var wg sync.WaitGroup
	for _, s := range staff {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := m.AddToRoster(ctx, id)
			assert.NoError(t, err)
		}(s.ID)
	}
	wg.Wait()

	entries, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, len(staff))
	assertContiguous(t, entries)
}

func TestRosterManager_StorageFailure(t *testing.T) {
	ctx := context.Background()
	m, staff := newRosterFixture(t, "Anna")
	m.roster = failingRoster{Roster: memory.NewRoster(), err: errors.New("connection reset")}

	_, err := m.AddToRoster(ctx, staff[0].ID)
	assert.ErrorIs(t, err, ErrStorage)

	_, _, err = m.ServeNext(ctx)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestRosterManager_DayFollowsShopTimezone(t *testing.T) {
	loc := time.FixedZone("ICT", 7*60*60)
	m := NewRosterManager(memory.NewRoster(), memory.NewStaff(), loc)
	m.now = func() time.Time { return time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC) }

	assert.Equal(t, "2026-03-15", m.Today())
}

func TestRosterManager_PurgeBefore(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRoster()
	staffRepo := memory.NewStaff()
	s, err := staffRepo.Create(ctx, "Anna")
	require.NoError(t, err)

	m := NewRosterManager(repo, staffRepo, time.UTC)
	m.now = func() time.Time { return time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC) }
	_, err = m.AddToRoster(ctx, s.ID)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	_, err = m.AddToRoster(ctx, s.ID)
	require.NoError(t, err)

	n, err := m.PurgeBefore(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, err := repo.List(ctx, "2026-03-01")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
