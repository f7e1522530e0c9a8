package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/middleware"
)

const (
	maxNameLength          = 100
	defaultServiceDuration = 60
)

// CatalogService manages the staff list and the service price list.
type CatalogService struct {
	staff    domain.StaffRepository
	services domain.ServiceRepository
}

func NewCatalogService(staff domain.StaffRepository, services domain.ServiceRepository) *CatalogService {
	return &CatalogService{staff: staff, services: services}
}

func (s *CatalogService) ListStaff(ctx context.Context, includeInactive bool) ([]domain.Staff, error) {
	staff, err := s.staff.List(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w: %w", ErrStorage, err)
	}
	return staff, nil
}

func (s *CatalogService) CreateStaff(ctx context.Context, req domain.CreateStaffRequest) (*domain.Staff, error) {
	ctx, span := middleware.StartSpan(ctx, "catalog.create_staff", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}

	staff, err := s.staff.Create(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, fmt.Errorf("staff name %q already exists: %w", name, ErrConflict)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("insert staff: %w: %w", ErrStorage, err)
	}
	return staff, nil
}

// UpdateStaff renames a staff member and optionally toggles Active. Deactivated
// staff stay on any roster they are already on.
func (s *CatalogService) UpdateStaff(ctx context.Context, id int, req domain.UpdateStaffRequest) (*domain.Staff, error) {
	ctx, span := middleware.StartSpan(ctx, "catalog.update_staff", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("staff.id", id),
	))
	defer span.End()

	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}

	current, err := s.staff.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load staff %d: %w: %w", id, ErrStorage, err)
	}
	if current == nil {
		return nil, fmt.Errorf("staff %d: %w", id, ErrNotFound)
	}

	active := current.Active
	if req.Active != nil {
		active = *req.Active
	}

	updated, err := s.staff.Update(ctx, id, name, active)
	switch {
	case errors.Is(err, domain.ErrDuplicateKey):
		return nil, fmt.Errorf("staff name %q already exists: %w", name, ErrConflict)
	case err != nil:
		span.RecordError(err)
		return nil, fmt.Errorf("update staff %d: %w: %w", id, ErrStorage, err)
	case updated == nil:
		return nil, fmt.Errorf("staff %d: %w", id, ErrNotFound)
	}
	return updated, nil
}

func (s *CatalogService) ListServices(ctx context.Context, includeInactive bool) ([]domain.Service, error) {
	services, err := s.services.List(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list services: %w: %w", ErrStorage, err)
	}
	return services, nil
}

func (s *CatalogService) CreateService(ctx context.Context, req domain.ServiceRequest) (*domain.Service, error) {
	ctx, span := middleware.StartSpan(ctx, "catalog.create_service", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	svc, err := serviceFromRequest(req)
	if err != nil {
		return nil, err
	}
	svc.Active = req.Active == nil || *req.Active

	created, err := s.services.Create(ctx, svc)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, fmt.Errorf("service name %q already exists: %w", svc.Name, ErrConflict)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("insert service: %w: %w", ErrStorage, err)
	}
	return created, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, id int, req domain.ServiceRequest) (*domain.Service, error) {
	ctx, span := middleware.StartSpan(ctx, "catalog.update_service", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("service.id", id),
	))
	defer span.End()

	svc, err := serviceFromRequest(req)
	if err != nil {
		return nil, err
	}

	current, err := s.services.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load service %d: %w: %w", id, ErrStorage, err)
	}
	if current == nil {
		return nil, fmt.Errorf("service %d: %w", id, ErrNotFound)
	}

	svc.ID = id
	svc.Active = current.Active
	if req.Active != nil {
		svc.Active = *req.Active
	}

	updated, err := s.services.Update(ctx, svc)
	switch {
	case errors.Is(err, domain.ErrDuplicateKey):
		return nil, fmt.Errorf("service name %q already exists: %w", svc.Name, ErrConflict)
	case err != nil:
		span.RecordError(err)
		return nil, fmt.Errorf("update service %d: %w: %w", id, ErrStorage, err)
	case updated == nil:
		return nil, fmt.Errorf("service %d: %w", id, ErrNotFound)
	}
	return updated, nil
}

func serviceFromRequest(req domain.ServiceRequest) (domain.Service, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return domain.Service{}, err
	}
	if req.Price < 0 {
		return domain.Service{}, fmt.Errorf("price %d is negative: %w", req.Price, ErrValidation)
	}
	duration := req.DurationMinutes
	switch {
	case duration < 0:
		return domain.Service{}, fmt.Errorf("duration %d is negative: %w", duration, ErrValidation)
	case duration == 0:
		duration = defaultServiceDuration
	}
	return domain.Service{
		Name:            name,
		DurationMinutes: duration,
		Price:           req.Price,
	}, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(sanitize(name))
	if name == "" {
		return "", fmt.Errorf("name is required: %w", ErrValidation)
	}
	if len(name) > maxNameLength {
		return "", fmt.Errorf("name longer than %d characters: %w", maxNameLength, ErrValidation)
	}
	return name, nil
}
