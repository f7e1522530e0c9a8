package v1

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/middleware"
)

// errNoneWaiting aborts a serve-next mutation so an unchanged roster is not rewritten.
var errNoneWaiting = errors.New("no staff waiting")

// RosterManager owns today's staff roster. Every mutation runs through
// RosterRepository.Mutate, which serialises writers per business day and
// commits all-or-nothing.
type RosterManager struct {
	roster domain.RosterRepository
	staff  domain.StaffRepository
	loc    *time.Location
	now    func() time.Time
}

// NewRosterManager creates a RosterManager whose business day follows loc.
func NewRosterManager(roster domain.RosterRepository, staff domain.StaffRepository, loc *time.Location) *RosterManager {
	if loc == nil {
		loc = time.UTC
	}
	return &RosterManager{roster: roster, staff: staff, loc: loc, now: time.Now}
}

// Today returns the current business day as YYYY-MM-DD.
func (m *RosterManager) Today() string {
	return m.now().In(m.loc).Format(domain.DayLayout)
}

// List returns today's roster ordered by position.
func (m *RosterManager) List(ctx context.Context) ([]domain.RosterEntry, error) {
	entries, err := m.roster.List(ctx, m.Today())
	if err != nil {
		return nil, fmt.Errorf("list roster: %w: %w", ErrStorage, err)
	}
	return entries, nil
}

// AddToRoster appends an active staff member at position N+1 with status Waiting.
func (m *RosterManager) AddToRoster(ctx context.Context, staffID int) (domain.RosterEntry, error) {
	ctx, span := m.startSpan(ctx, "roster.add", attribute.Int("staff.id", staffID))
	defer span.End()

	staff, err := m.staff.Get(ctx, staffID)
	if err != nil {
		span.RecordError(err)
		return domain.RosterEntry{}, fmt.Errorf("load staff %d: %w: %w", staffID, ErrStorage, err)
	}
	if staff == nil || !staff.Active {
		return domain.RosterEntry{}, fmt.Errorf("staff %d: %w", staffID, ErrNotFound)
	}

	var added domain.RosterEntry
	err = m.roster.Mutate(ctx, m.Today(), func(entries []domain.RosterEntry) ([]domain.RosterEntry, error) {
		next, entry, err := appendStaff(entries, *staff)
		if err != nil {
			return nil, err
		}
		added = entry
		return next, nil
	})
	if err != nil {
		span.RecordError(err)
		return domain.RosterEntry{}, mutationError("add to roster", err)
	}

	rosterMutations.WithLabelValues("add").Inc()
	return added, nil
}

// RemoveFromRoster deletes the entry at position and closes the gap.
func (m *RosterManager) RemoveFromRoster(ctx context.Context, position int) error {
	if err := validatePosition(position); err != nil {
		return err
	}
	ctx, span := m.startSpan(ctx, "roster.remove", attribute.Int("roster.position", position))
	defer span.End()

	err := m.roster.Mutate(ctx, m.Today(), func(entries []domain.RosterEntry) ([]domain.RosterEntry, error) {
		next, _, err := removePosition(entries, position)
		return next, err
	})
	if err != nil {
		span.RecordError(err)
		return mutationError("remove from roster", err)
	}

	rosterMutations.WithLabelValues("remove").Inc()
	return nil
}

// MoveUp swaps the entry at position with the one above it.
func (m *RosterManager) MoveUp(ctx context.Context, position int) error {
	return m.move(ctx, position, -1, "move_up")
}

// MoveDown swaps the entry at position with the one below it.
func (m *RosterManager) MoveDown(ctx context.Context, position int) error {
	return m.move(ctx, position, 1, "move_down")
}

func (m *RosterManager) move(ctx context.Context, position, delta int, op string) error {
	if err := validatePosition(position); err != nil {
		return err
	}
	ctx, span := m.startSpan(ctx, "roster."+op, attribute.Int("roster.position", position))
	defer span.End()

	err := m.roster.Mutate(ctx, m.Today(), func(entries []domain.RosterEntry) ([]domain.RosterEntry, error) {
		return movePosition(entries, position, delta)
	})
	if err != nil {
		span.RecordError(err)
		return mutationError(op, err)
	}

	rosterMutations.WithLabelValues(op).Inc()
	return nil
}

// SetStatus overwrites the status of the entry at position.
func (m *RosterManager) SetStatus(ctx context.Context, position int, status domain.RosterStatus) (domain.RosterEntry, error) {
	if err := validatePosition(position); err != nil {
		return domain.RosterEntry{}, err
	}
	if !status.Valid() {
		return domain.RosterEntry{}, fmt.Errorf("status %d: %w", int(status), ErrInvalidStatus)
	}
	ctx, span := m.startSpan(ctx, "roster.set_status",
		attribute.Int("roster.position", position),
		attribute.String("roster.status", status.String()),
	)
	defer span.End()

	var updated domain.RosterEntry
	err := m.roster.Mutate(ctx, m.Today(), func(entries []domain.RosterEntry) ([]domain.RosterEntry, error) {
		next, entry, err := setPositionStatus(entries, position, status)
		if err != nil {
			return nil, err
		}
		updated = entry
		return next, nil
	})
	if err != nil {
		span.RecordError(err)
		return domain.RosterEntry{}, mutationError("set status", err)
	}

	rosterMutations.WithLabelValues("set_status").Inc()
	return updated, nil
}

// ClearRoster removes every entry for today. Confirmation is the caller's job.
func (m *RosterManager) ClearRoster(ctx context.Context) error {
	ctx, span := m.startSpan(ctx, "roster.clear")
	defer span.End()

	err := m.roster.Mutate(ctx, m.Today(), func([]domain.RosterEntry) ([]domain.RosterEntry, error) {
		return nil, nil
	})
	if err != nil {
		span.RecordError(err)
		return mutationError("clear roster", err)
	}

	rosterMutations.WithLabelValues("clear").Inc()
	return nil
}

// ServeNext moves the earliest Waiting entry to Serving and returns it.
// found is false, with a nil error, when nobody is waiting.
func (m *RosterManager) ServeNext(ctx context.Context) (entry domain.RosterEntry, found bool, err error) {
	ctx, span := m.startSpan(ctx, "roster.serve_next")
	defer span.End()

	err = m.roster.Mutate(ctx, m.Today(), func(entries []domain.RosterEntry) ([]domain.RosterEntry, error) {
		var next []domain.RosterEntry
		next, entry, found = serveFirstWaiting(entries)
		if !found {
			return nil, errNoneWaiting
		}
		return next, nil
	})
	if errors.Is(err, errNoneWaiting) {
		span.SetAttributes(attribute.Bool("roster.served", false))
		return domain.RosterEntry{}, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return domain.RosterEntry{}, false, mutationError("serve next", err)
	}

	span.SetAttributes(attribute.Bool("roster.served", found))
	if found {
		rosterMutations.WithLabelValues("serve_next").Inc()
	}
	return entry, found, nil
}

// PurgeBefore drops rosters of days older than retentionDays before today.
func (m *RosterManager) PurgeBefore(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := m.now().In(m.loc).AddDate(0, 0, -retentionDays).Format(domain.DayLayout)
	n, err := m.roster.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge rosters before %s: %w: %w", cutoff, ErrStorage, err)
	}
	return n, nil
}

func (m *RosterManager) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("layer", "logic"), attribute.String("roster.day", m.Today()))
	return middleware.StartSpan(ctx, name, trace.WithAttributes(attrs...))
}

func validatePosition(position int) error {
	if position < 1 {
		return fmt.Errorf("roster position %d must be >= 1: %w", position, ErrValidation)
	}
	return nil
}

// mutationError keeps business errors from the mutation callback intact and
// classifies anything else as a storage failure.
func mutationError(op string, err error) error {
	if isBusinessError(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
