package v1

import (
	"fmt"

	"github.com/duynhne/pos-service/internal/core/domain"
)

// The functions below operate on a roster already ordered by position. Each
// returns a new slice with positions renumbered 1..N and leaves its input
// untouched, so a failed operation has nothing to roll back.

func cloneRoster(entries []domain.RosterEntry) []domain.RosterEntry {
	out := make([]domain.RosterEntry, len(entries))
	copy(out, entries)
	return out
}

func renumber(entries []domain.RosterEntry) []domain.RosterEntry {
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

func indexOfPosition(entries []domain.RosterEntry, position int) (int, error) {
	for i, e := range entries {
		if e.Position == position {
			return i, nil
		}
	}
	return -1, fmt.Errorf("roster position %d: %w", position, ErrNotFound)
}

// appendStaff adds staff at the end of the roster in Waiting status.
func appendStaff(entries []domain.RosterEntry, staff domain.Staff) ([]domain.RosterEntry, domain.RosterEntry, error) {
	for _, e := range entries {
		if e.StaffID == staff.ID {
			return nil, domain.RosterEntry{}, fmt.Errorf("staff %q already on roster at position %d: %w", staff.Name, e.Position, ErrConflict)
		}
	}

	entry := domain.RosterEntry{
		StaffID:   staff.ID,
		StaffName: staff.Name,
		Status:    domain.StatusWaiting,
	}
	next := renumber(append(cloneRoster(entries), entry))
	return next, next[len(next)-1], nil
}

// removePosition deletes the entry at position; later entries shift down by one.
func removePosition(entries []domain.RosterEntry, position int) ([]domain.RosterEntry, domain.RosterEntry, error) {
	i, err := indexOfPosition(entries, position)
	if err != nil {
		return nil, domain.RosterEntry{}, err
	}

	removed := entries[i]
	next := make([]domain.RosterEntry, 0, len(entries)-1)
	next = append(next, entries[:i]...)
	next = append(next, entries[i+1:]...)
	return renumber(next), removed, nil
}

// movePosition swaps the entry at position with its neighbour delta away (-1 up, +1 down).
func movePosition(entries []domain.RosterEntry, position, delta int) ([]domain.RosterEntry, error) {
	i, err := indexOfPosition(entries, position)
	if err != nil {
		return nil, err
	}

	j := i + delta
	if j < 0 || j >= len(entries) {
		direction := "down"
		if delta < 0 {
			direction = "up"
		}
		return nil, fmt.Errorf("position %d cannot move %s: %w", position, direction, ErrInvalidMove)
	}

	next := cloneRoster(entries)
	next[i], next[j] = next[j], next[i]
	return renumber(next), nil
}

// setPositionStatus overwrites the status at position. Any status may follow any other.
func setPositionStatus(entries []domain.RosterEntry, position int, status domain.RosterStatus) ([]domain.RosterEntry, domain.RosterEntry, error) {
	if !status.Valid() {
		return nil, domain.RosterEntry{}, fmt.Errorf("status %d: %w", int(status), ErrInvalidStatus)
	}
	i, err := indexOfPosition(entries, position)
	if err != nil {
		return nil, domain.RosterEntry{}, err
	}

	next := renumber(cloneRoster(entries))
	next[i].Status = status
	return next, next[i], nil
}

// serveFirstWaiting moves the earliest Waiting entry to Serving and counts the
// service. found is false when nobody is waiting.
func serveFirstWaiting(entries []domain.RosterEntry) (next []domain.RosterEntry, served domain.RosterEntry, found bool) {
	next = renumber(cloneRoster(entries))
	for i := range next {
		if next[i].Status == domain.StatusWaiting {
			next[i].Status = domain.StatusServing
			next[i].ServedCount++
			return next, next[i], true
		}
	}
	return next, domain.RosterEntry{}, false
}
