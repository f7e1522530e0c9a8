package domain

import (
	"context"
	"fmt"
)

// RosterStatus is the on-duty state of a roster entry.
type RosterStatus int

const (
	StatusWaiting RosterStatus = iota + 1
	StatusServing
	StatusBreak
	StatusFinished
	StatusNextUp
)

var rosterStatusNames = map[RosterStatus]string{
	StatusWaiting:  "waiting",
	StatusServing:  "serving",
	StatusBreak:    "break",
	StatusFinished: "finished",
	StatusNextUp:   "next_up",
}

// RosterStatuses lists every status in display order.
var RosterStatuses = []RosterStatus{StatusWaiting, StatusServing, StatusBreak, StatusFinished, StatusNextUp}

func (s RosterStatus) String() string {
	if name, ok := rosterStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("RosterStatus(%d)", int(s))
}

// Valid reports whether s is one of the defined statuses.
func (s RosterStatus) Valid() bool {
	_, ok := rosterStatusNames[s]
	return ok
}

// ParseRosterStatus converts the wire name of a status.
func ParseRosterStatus(name string) (RosterStatus, error) {
	for status, n := range rosterStatusNames {
		if n == name {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown roster status %q", name)
}

func (s RosterStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid roster status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *RosterStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseRosterStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// RosterEntry is one staff member on today's roster.
type RosterEntry struct {
	Position    int          `json:"position"`
	StaffID     int          `json:"staff_id"`
	StaffName   string       `json:"staff_name"`
	Status      RosterStatus `json:"status"`
	ServedCount int          `json:"served_count"`
}

// DayLayout formats business days as stored in roster tables.
const DayLayout = "2006-01-02"

// RosterMutation receives the locked roster ordered by position and returns
// its replacement.
type RosterMutation func(entries []RosterEntry) ([]RosterEntry, error)

// RosterRepository defines the data-access contract for the daily roster.
type RosterRepository interface {
	// List returns the roster for day ordered by position.
	List(ctx context.Context, day string) ([]RosterEntry, error)

	// Mutate runs fn against the roster for day while holding an exclusive lock
	// on it. When fn succeeds its result replaces the stored roster in the same
	// transaction; when fn fails nothing is written and its error is returned.
	Mutate(ctx context.Context, day string, fn RosterMutation) error

	// DeleteBefore removes roster rows for days strictly before day.
	DeleteBefore(ctx context.Context, day string) (int64, error)
}
