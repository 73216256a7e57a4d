package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/repository"
)

func TestReferenceCodes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	v1, err := env.references.CreateVehicle(ctx, CreateVehicleInput{PlateNumber: "ab-123 cd", Make: "Volvo"})
	require.NoError(t, err)
	assert.Equal(t, "VEH-0001", v1.Code)
	assert.Equal(t, "AB123CD", v1.PlateNumber)

	v2, err := env.references.CreateVehicle(ctx, CreateVehicleInput{PlateNumber: "XY 9"})
	require.NoError(t, err)
	assert.Equal(t, "VEH-0002", v2.Code)

	d, err := env.references.CreateDriver(ctx, CreateDriverInput{FullName: "  Ana Pop "})
	require.NoError(t, err)
	assert.Equal(t, "DRV-0001", d.Code)
	assert.Equal(t, "Ana Pop", d.FullName)
	assert.True(t, d.IsActive)

	c, err := env.references.CreateClient(ctx, CreateClientInput{Name: "Quarry Ltd"})
	require.NoError(t, err)
	assert.Equal(t, "CLI-0001", c.Code)

	p, err := env.references.CreateProduct(ctx, CreateProductInput{Name: "Gravel", UnitPrice: decimal.RequireFromString("10.005")})
	require.NoError(t, err)
	assert.Equal(t, "PRD-0001", p.Code)
	assert.True(t, p.UnitPrice.Equal(decimal.RequireFromString("10.01")))

	tr, err := env.references.CreateTrailer(ctx, CreateTrailerInput{PlateNumber: "t-1"})
	require.NoError(t, err)
	assert.Equal(t, "TRL-0001", tr.Code)

	vehicles, err := env.references.ListVehicles(ctx, repository.Page{})
	require.NoError(t, err)
	assert.Len(t, vehicles, 2)
}

func TestCreateVehicleDuplicatePlate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.references.CreateVehicle(ctx, CreateVehicleInput{PlateNumber: "AB 123"})
	require.NoError(t, err)

	_, err = env.references.CreateVehicle(ctx, CreateVehicleInput{PlateNumber: "ab-123"})
	require.ErrorIs(t, err, ErrConflict)

	current, err := env.codes.GetCurrentCounter(ctx, "VEH")
	require.NoError(t, err)
	assert.Equal(t, int64(1), current, "the rejected vehicle gives its number back")
}

func TestReferenceValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.references.CreateDriver(ctx, CreateDriverInput{FullName: " "})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.references.CreateVehicle(ctx, CreateVehicleInput{PlateNumber: " - "})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.references.CreateVehicle(ctx, CreateVehicleInput{PlateNumber: "A1", CapacityTons: ptr(0.0)})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.references.CreateProduct(ctx, CreateProductInput{Name: "Sand", UnitPrice: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.references.UpdateProductPrice(ctx, uuid.New(), decimal.NewFromInt(5))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = env.references.GetDriver(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReferenceCodesRestartEachYear(t *testing.T) {
	year := 2025
	env := newTestEnv(t, WithClock(func() time.Time {
		return time.Date(year, time.December, 31, 23, 0, 0, 0, time.UTC)
	}))
	ctx := context.Background()

	first, err := env.references.CreateDriver(ctx, CreateDriverInput{FullName: "Ana Pop"})
	require.NoError(t, err)

	year = 2026
	second, err := env.references.CreateDriver(ctx, CreateDriverInput{FullName: "Ion Rus"})
	require.NoError(t, err)

	assert.Equal(t, "DRV-0001", first.Code)
	assert.Equal(t, first.Code, second.Code, "yearless codes repeat once the counter year changes")
	assert.NotEqual(t, first.ID, second.ID)
}
