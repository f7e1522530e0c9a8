package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/pos-service/internal/core/domain"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgxRosterRepository implements domain.RosterRepository using pgxpool.
type PgxRosterRepository struct {
	pool *pgxpool.Pool
}

// NewRosterRepository creates a new PgxRosterRepository.
func NewRosterRepository(pool *pgxpool.Pool) *PgxRosterRepository {
	return &PgxRosterRepository{pool: pool}
}

// List returns the roster for day ordered by position.
func (r *PgxRosterRepository) List(ctx context.Context, day string) ([]domain.RosterEntry, error) {
	return listRoster(ctx, r.pool, day)
}

// Mutate locks the roster_days row for day, hands the current entries to fn
// and rewrites the day's entries with its result. Everything happens in one
// transaction: a failing fn, a cancelled ctx or a write error leaves the
// stored roster untouched.
func (r *PgxRosterRepository) Mutate(ctx context.Context, day string, fn domain.RosterMutation) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `INSERT INTO roster_days (day) VALUES ($1::date) ON CONFLICT (day) DO NOTHING`, day); err != nil {
		return fmt.Errorf("ensure roster day: %w", err)
	}
	var locked int
	if err = tx.QueryRow(ctx, `SELECT 1 FROM roster_days WHERE day = $1::date FOR UPDATE`, day).Scan(&locked); err != nil {
		return fmt.Errorf("lock roster day: %w", err)
	}

	current, err := listRoster(ctx, tx, day)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM roster_entries WHERE day = $1::date`, day); err != nil {
		return fmt.Errorf("clear roster rows: %w", err)
	}

	if len(next) > 0 {
		batch := &pgx.Batch{}
		for _, e := range next {
			batch.Queue(`
				INSERT INTO roster_entries (day, position, staff_id, status, served_count)
				VALUES ($1::date, $2, $3, $4, $5)
			`, day, e.Position, e.StaffID, e.Status.String(), e.ServedCount)
		}
		if err = tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("write roster rows: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// DeleteBefore removes roster days (and, by cascade, their entries) older than day.
func (r *PgxRosterRepository) DeleteBefore(ctx context.Context, day string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roster_days WHERE day < $1::date`, day)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func listRoster(ctx context.Context, q querier, day string) ([]domain.RosterEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT e.position, e.staff_id, s.name, e.status, e.served_count
		FROM roster_entries e
		JOIN staff s ON s.id = e.staff_id
		WHERE e.day = $1::date
		ORDER BY e.position ASC
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.RosterEntry{}
	for rows.Next() {
		var e domain.RosterEntry
		var status string
		if err := rows.Scan(&e.Position, &e.StaffID, &e.StaffName, &status, &e.ServedCount); err != nil {
			return nil, err
		}
		if e.Status, err = domain.ParseRosterStatus(status); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
