package v1

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/internal/core/repository/memory"
)

func boolPtr(b bool) *bool { return &b }

func TestCatalogService_Staff(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(memory.NewStaff(), memory.NewServices())

	anna, err := svc.CreateStaff(ctx, domain.CreateStaffRequest{Name: " <b>Anna</b> "})
	require.NoError(t, err)
	assert.Equal(t, "Anna", anna.Name)
	assert.True(t, anna.Active)

	_, err = svc.CreateStaff(ctx, domain.CreateStaffRequest{Name: "Anna"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateStaff(ctx, domain.CreateStaffRequest{Name: "<i></i>"})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateStaff(ctx, anna.ID, domain.UpdateStaffRequest{Name: "Anna K", Active: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Anna K", updated.Name)
	assert.False(t, updated.Active)

	// Omitting Active keeps the current flag.
	updated, err = svc.UpdateStaff(ctx, anna.ID, domain.UpdateStaffRequest{Name: "Anna"})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	active, err := svc.ListStaff(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := svc.ListStaff(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.UpdateStaff(ctx, 404, domain.UpdateStaffRequest{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogService_Services(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(memory.NewStaff(), memory.NewServices())

	thai, err := svc.CreateService(ctx, domain.ServiceRequest{Name: "Thai massage 60", DurationMinutes: 60, Price: 40000})
	require.NoError(t, err)
	assert.True(t, thai.Active)
	assert.Equal(t, int64(40000), thai.Price)

	_, err = svc.CreateService(ctx, domain.ServiceRequest{Name: "Foot", Price: -1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateService(ctx, domain.ServiceRequest{Name: "thai massage 60", Price: 1})
	assert.ErrorIs(t, err, ErrConflict)

	updated, err := svc.UpdateService(ctx, thai.ID, domain.ServiceRequest{Name: "Thai massage 60", DurationMinutes: 60, Price: 45000})
	require.NoError(t, err)
	assert.Equal(t, int64(45000), updated.Price)
	assert.True(t, updated.Active)

	_, err = svc.UpdateService(ctx, 99, domain.ServiceRequest{Name: "X", Price: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Foot & Back", sanitize("Foot & Back"))
	assert.Equal(t, "hello", sanitize(`<script>alert(1)</script>hello`))
	assert.Equal(t, "bold", sanitize("  <b>bold</b> "))
}
