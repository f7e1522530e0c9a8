package domain

import (
	"context"
	"time"
)

// Staff is a member of the master staff list.
type Staff struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Service is a priced item on the shop menu.
type Service struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Price           int64  `json:"price"`
	Active          bool   `json:"active"`
}

type CreateStaffRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateStaffRequest struct {
	Name   string `json:"name" binding:"required"`
	Active *bool  `json:"active"`
}

type ServiceRequest struct {
	Name            string `json:"name" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	Price           int64  `json:"price"`
	Active          *bool  `json:"active"`
}

// StaffRepository defines the data-access contract for the staff list.
type StaffRepository interface {
	List(ctx context.Context, includeInactive bool) ([]Staff, error)

	// Get returns (nil, nil) when no staff member has the id.
	Get(ctx context.Context, id int) (*Staff, error)

	// Create returns ErrDuplicateKey when the name is taken.
	Create(ctx context.Context, name string) (*Staff, error)

	// Update returns (nil, nil) when the id does not exist and
	// ErrDuplicateKey when the new name is taken.
	Update(ctx context.Context, id int, name string, active bool) (*Staff, error)
}

// ServiceRepository defines the data-access contract for the price list.
type ServiceRepository interface {
	List(ctx context.Context, includeInactive bool) ([]Service, error)

	// Get returns (nil, nil) when no service has the id.
	Get(ctx context.Context, id int) (*Service, error)

	// Create returns ErrDuplicateKey when the name is taken.
	Create(ctx context.Context, svc Service) (*Service, error)

	// Update returns (nil, nil) when the id does not exist.
	Update(ctx context.Context, svc Service) (*Service, error)
}
