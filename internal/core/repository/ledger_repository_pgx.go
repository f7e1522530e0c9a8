package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/pos-service/internal/core/domain"
)

// PgxTransactionRepository implements domain.TransactionRepository using pgxpool.
type PgxTransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{pool: pool}
}

func (r *PgxTransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transactions (id, staff_id, service_id, amount, tip, payment_method, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, 0), $9)
	`, t.ID, t.StaffID, t.ServiceID, t.Amount, t.Tip, string(t.PaymentMethod), t.Note, t.CreatedBy, t.CreatedAt)
	return err
}

// ListBetween returns transactions with from <= created_at < to, oldest first.
func (r *PgxTransactionRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id::text, t.staff_id, st.name, t.service_id, sv.name, t.amount, t.tip,
		       t.payment_method, t.note, COALESCE(t.created_by, 0), t.created_at
		FROM transactions t
		JOIN staff st ON st.id = t.staff_id
		JOIN services sv ON sv.id = t.service_id
		WHERE t.created_at >= $1 AND t.created_at < $2
		ORDER BY t.created_at ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.StaffID, &t.StaffName, &t.ServiceID, &t.ServiceName,
			&t.Amount, &t.Tip, &t.PaymentMethod, &t.Note, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *PgxTransactionRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1::uuid`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// PgxExpenseRepository implements domain.ExpenseRepository using pgxpool.
type PgxExpenseRepository struct {
	pool *pgxpool.Pool
}

func NewExpenseRepository(pool *pgxpool.Pool) *PgxExpenseRepository {
	return &PgxExpenseRepository{pool: pool}
}

func (r *PgxExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO expenses (id, category, description, amount, spent_on, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5::date, NULLIF($6, 0), $7)
	`, e.ID, e.Category, e.Description, e.Amount, e.SpentOn, e.CreatedBy, e.CreatedAt)
	return err
}

// ListBetween returns expenses spent on fromDay..toDay inclusive.
func (r *PgxExpenseRepository) ListBetween(ctx context.Context, fromDay, toDay string) ([]domain.Expense, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, category, description, amount, to_char(spent_on, 'YYYY-MM-DD'),
		       COALESCE(created_by, 0), created_at
		FROM expenses
		WHERE spent_on BETWEEN $1::date AND $2::date
		ORDER BY spent_on ASC, created_at ASC
	`, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.Category, &e.Description, &e.Amount, &e.SpentOn, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *PgxExpenseRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1::uuid`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
