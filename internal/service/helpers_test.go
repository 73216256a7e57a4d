package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

var testYear = 2025

func fixedClock() time.Time {
	return time.Date(testYear, time.June, 1, 12, 0, 0, 0, time.UTC)
}

type testEnv struct {
	db         *gorm.DB
	codes      *CodeService
	guard      *ConflictGuard
	shifts     *ShiftService
	jobs       *JobService
	invoices   *InvoiceService
	references *ReferenceService
}

// newTestDB opens a private in-memory sqlite database. A single connection
// makes concurrent transactions queue the way row locks do on postgres.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(
		&model.Driver{},
		&model.Vehicle{},
		&model.Trailer{},
		&model.Client{},
		&model.Product{},
		&model.Counter{},
		&model.Shift{},
		&model.Job{},
		&model.JobLine{},
		&model.Invoice{},
		&model.InvoiceItem{},
	))
	return database
}

func newTestEnv(t *testing.T, opts ...CodeServiceOption) *testEnv {
	t.Helper()

	database := newTestDB(t)
	log := zerolog.Nop()

	driverRepo := repository.NewDriverRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	trailerRepo := repository.NewTrailerRepository(database)
	clientRepo := repository.NewClientRepository(database)
	productRepo := repository.NewProductRepository(database)
	shiftRepo := repository.NewShiftRepository(database)
	jobRepo := repository.NewJobRepository(database)
	invoiceRepo := repository.NewInvoiceRepository(database)
	counterRepo := repository.NewCounterRepository(database)

	opts = append([]CodeServiceOption{WithClock(fixedClock)}, opts...)
	codes := NewCodeService(database, counterRepo, log, opts...)
	guard := NewConflictGuard(shiftRepo, jobRepo)

	invoices := NewInvoiceService(database, invoiceRepo, jobRepo, productRepo, codes, log)
	invoices.now = fixedClock

	return &testEnv{
		db:       database,
		codes:    codes,
		guard:    guard,
		shifts:   NewShiftService(database, shiftRepo, driverRepo, guard, codes, log),
		jobs:     NewJobService(database, jobRepo, shiftRepo, clientRepo, driverRepo, vehicleRepo, trailerRepo, productRepo, guard, codes, log),
		invoices: invoices,
		references: NewReferenceService(database, driverRepo, vehicleRepo, trailerRepo,
			clientRepo, productRepo, codes, log),
	}
}

func at(hour, minute int) time.Time {
	return time.Date(testYear, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func clock(hour, minute int) model.ClockTime {
	return model.NewClockTime(hour, minute, 0)
}

func (e *testEnv) driver(t *testing.T) *model.Driver {
	t.Helper()
	d, err := e.references.CreateDriver(context.Background(), CreateDriverInput{FullName: "Driver " + uuid.NewString()[:8]})
	require.NoError(t, err)
	return d
}

func (e *testEnv) vehicle(t *testing.T) *model.Vehicle {
	t.Helper()
	v, err := e.references.CreateVehicle(context.Background(), CreateVehicleInput{PlateNumber: uuid.NewString()[:8]})
	require.NoError(t, err)
	return v
}

func (e *testEnv) client(t *testing.T) *model.Client {
	t.Helper()
	c, err := e.references.CreateClient(context.Background(), CreateClientInput{Name: "Client " + uuid.NewString()[:8]})
	require.NoError(t, err)
	return c
}

func (e *testEnv) product(t *testing.T, name, price string) *model.Product {
	t.Helper()
	p, err := e.references.CreateProduct(context.Background(), CreateProductInput{
		Name:      name,
		Unit:      "t",
		UnitPrice: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) shift(t *testing.T, driverID uuid.UUID, start, end time.Time) *model.Shift {
	t.Helper()
	s, err := e.shifts.Create(context.Background(), CreateShiftInput{DriverID: driverID, StartTime: start, EndTime: end})
	require.NoError(t, err)
	return s
}

func (e *testEnv) job(t *testing.T, shiftID, clientID uuid.UUID, lines ...JobLineInput) *model.Job {
	t.Helper()
	j, err := e.jobs.Create(context.Background(), CreateJobInput{
		ShiftID:  shiftID,
		ClientID: clientID,
		JobDate:  at(0, 0),
		Lines:    lines,
	})
	require.NoError(t, err)
	return j
}

func line(pickup, delivery model.ClockTime, driverID, vehicleID *uuid.UUID) JobLineInput {
	return JobLineInput{
		PickupTime:   pickup,
		DeliveryTime: delivery,
		DriverID:     driverID,
		VehicleID:    vehicleID,
		Qty:          decimal.NewFromInt(1),
		DocketNo:     "D-" + uuid.NewString()[:6],
	}
}

func (e *testEnv) completeJob(t *testing.T, jobID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	_, err := e.jobs.ChangeStatus(ctx, jobID, model.JobStatusAssigned)
	require.NoError(t, err)
	_, err = e.jobs.ChangeStatus(ctx, jobID, model.JobStatusCompleted)
	require.NoError(t, err)
}

func ptr[T any](v T) *T {
	return &v
}
