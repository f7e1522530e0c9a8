package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/pos-service/internal/core/domain"
)

// PgxStaffRepository implements domain.StaffRepository using pgxpool.
type PgxStaffRepository struct {
	pool *pgxpool.Pool
}

func NewStaffRepository(pool *pgxpool.Pool) *PgxStaffRepository {
	return &PgxStaffRepository{pool: pool}
}

func (r *PgxStaffRepository) List(ctx context.Context, includeInactive bool) ([]domain.Staff, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, active, created_at
		FROM staff
		WHERE active OR $1
		ORDER BY name ASC
	`, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staff := []domain.Staff{}
	for rows.Next() {
		var s domain.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

// Get returns (nil, nil) when no staff member has the id.
func (r *PgxStaffRepository) Get(ctx context.Context, id int) (*domain.Staff, error) {
	var s domain.Staff
	err := r.pool.QueryRow(ctx, `SELECT id, name, active, created_at FROM staff WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PgxStaffRepository) Create(ctx context.Context, name string) (*domain.Staff, error) {
	var s domain.Staff
	err := r.pool.QueryRow(ctx, `
		INSERT INTO staff (name) VALUES ($1)
		RETURNING id, name, active, created_at
	`, name).Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, err
	}
	return &s, nil
}

// Update returns (nil, nil) when the id does not exist.
func (r *PgxStaffRepository) Update(ctx context.Context, id int, name string, active bool) (*domain.Staff, error) {
	var s domain.Staff
	err := r.pool.QueryRow(ctx, `
		UPDATE staff SET name = $2, active = $3
		WHERE id = $1
		RETURNING id, name, active, created_at
	`, id, name, active).Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, err
	}
	return &s, nil
}

// PgxServiceRepository implements domain.ServiceRepository using pgxpool.
type PgxServiceRepository struct {
	pool *pgxpool.Pool
}

func NewServiceRepository(pool *pgxpool.Pool) *PgxServiceRepository {
	return &PgxServiceRepository{pool: pool}
}

func (r *PgxServiceRepository) List(ctx context.Context, includeInactive bool) ([]domain.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, duration_minutes, price, active
		FROM services
		WHERE active OR $1
		ORDER BY name ASC
	`, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []domain.Service{}
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.DurationMinutes, &s.Price, &s.Active); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// Get returns (nil, nil) when no service has the id.
func (r *PgxServiceRepository) Get(ctx context.Context, id int) (*domain.Service, error) {
	var s domain.Service
	err := r.pool.QueryRow(ctx, `SELECT id, name, duration_minutes, price, active FROM services WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.DurationMinutes, &s.Price, &s.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PgxServiceRepository) Create(ctx context.Context, svc domain.Service) (*domain.Service, error) {
	var s domain.Service
	err := r.pool.QueryRow(ctx, `
		INSERT INTO services (name, duration_minutes, price, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, duration_minutes, price, active
	`, svc.Name, svc.DurationMinutes, svc.Price, svc.Active).
		Scan(&s.ID, &s.Name, &s.DurationMinutes, &s.Price, &s.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, err
	}
	return &s, nil
}

// Update returns (nil, nil) when the id does not exist.
func (r *PgxServiceRepository) Update(ctx context.Context, svc domain.Service) (*domain.Service, error) {
	var s domain.Service
	err := r.pool.QueryRow(ctx, `
		UPDATE services SET name = $2, duration_minutes = $3, price = $4, active = $5
		WHERE id = $1
		RETURNING id, name, duration_minutes, price, active
	`, svc.ID, svc.Name, svc.DurationMinutes, svc.Price, svc.Active).
		Scan(&s.ID, &s.Name, &s.DurationMinutes, &s.Price, &s.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, err
	}
	return &s, nil
}
