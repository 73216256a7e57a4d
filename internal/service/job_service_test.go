package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

func TestJobLinesConflictWithinShiftOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client(t)
	lineDriver := env.driver(t)

	shiftA := env.shift(t, env.driver(t).ID, at(6, 0), at(18, 0))
	shiftB := env.shift(t, env.driver(t).ID, at(6, 0), at(18, 0))

	jobA := env.job(t, shiftA.ID, c.ID, line(clock(9, 0), clock(11, 0), &lineDriver.ID, nil))
	require.Len(t, jobA.Lines, 1)

	// Same driver, identical window, different shift.
	env.job(t, shiftB.ID, c.ID, line(clock(9, 0), clock(11, 0), &lineDriver.ID, nil))

	// Same shift, overlapping window, another job.
	jobA2 := env.job(t, shiftA.ID, c.ID)
	_, err := env.jobs.AddLine(ctx, jobA2.ID, line(clock(10, 0), clock(12, 0), &lineDriver.ID, nil))
	var ce *ConflictError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Contains(t, ce.Message, "driver")

	// Touching windows do not overlap.
	_, err = env.jobs.AddLine(ctx, jobA2.ID, line(clock(11, 0), clock(12, 0), &lineDriver.ID, nil))
	require.NoError(t, err)
}

func TestJobLineVehicleConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client(t)
	v := env.vehicle(t)
	s := env.shift(t, env.driver(t).ID, at(6, 0), at(18, 0))

	j := env.job(t, s.ID, c.ID, line(clock(8, 0), clock(9, 30), nil, &v.ID))

	_, err := env.jobs.AddLine(ctx, j.ID, line(clock(9, 0), clock(10, 0), nil, &v.ID))
	var ce *ConflictError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Contains(t, ce.Message, "vehicle")

	other := env.vehicle(t)
	_, err = env.jobs.AddLine(ctx, j.ID, line(clock(9, 0), clock(10, 0), nil, &other.ID))
	require.NoError(t, err)
}

func TestJobLineTrailerIsNotChecked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client(t)
	s := env.shift(t, env.driver(t).ID, at(6, 0), at(18, 0))

	trailer, err := env.references.CreateTrailer(ctx, CreateTrailerInput{PlateNumber: "tr 100"})
	require.NoError(t, err)
	assert.Equal(t, "TR100", trailer.PlateNumber)

	first := line(clock(8, 0), clock(10, 0), nil, nil)
	first.TrailerID = &trailer.ID
	second := line(clock(8, 0), clock(10, 0), nil, nil)
	second.TrailerID = &trailer.ID

	j := env.job(t, s.ID, c.ID, first, second)
	assert.Len(t, j.Lines, 2)
}

func TestCreateJobChecksLinesAgainstEachOther(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client(t)
	d := env.driver(t)
	s := env.shift(t, env.driver(t).ID, at(6, 0), at(18, 0))

	_, err := env.jobs.Create(ctx, CreateJobInput{
		ShiftID:  s.ID,
		ClientID: c.ID,
		JobDate:  at(0, 0),
		Lines: []JobLineInput{
			line(clock(8, 0), clock(10, 0), &d.ID, nil),
			line(clock(9, 0), clock(11, 0), &d.ID, nil),
		},
	})
	require.ErrorIs(t, err, ErrConflict)

	jobs, err := env.jobs.List(ctx, repository.JobListFilter{ShiftID: &s.ID})
	require.NoError(t, err)
	assert.Empty(t, jobs, "nothing is left behind")

	current, err := env.codes.GetCurrentCounter(ctx, model.CodeTypeJob)
	require.NoError(t, err)
	assert.Equal(t, int64(0), current, "the JOB number is rolled back too")

	j := env.job(t, s.ID, c.ID, line(clock(8, 0), clock(10, 0), &d.ID, nil))
	assert.Equal(t, "JOB-2025-0001", j.Code)
}

func TestUpdateJobLineIgnoresItself(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client(t)
	d := env.driver(t)
	s := env.shift(t, env.driver(t).ID, at(6, 0), at(18, 0))

	j := env.job(t, s.ID, c.ID,
		line(clock(8, 0), clock(10, 0), &d.ID, nil),
		line(clock(12, 0), clock(14, 0), &d.ID, nil),
	)
	first := j.Lines[0]

	updated, err := env.jobs.UpdateLine(ctx, first.ID, line(clock(8, 30), clock(11, 0), &d.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, clock(8, 30), updated.PickupTime)

	_, err = env.jobs.UpdateLine(ctx, first.ID, line(clock(8, 30), clock(12, 30), &d.ID, nil))
	require.ErrorIs(t, err, ErrConflict)

	require.NoError(t, env.jobs.DeleteLine(ctx, j.Lines[1].ID))
	_, err = env.jobs.UpdateLine(ctx, first.ID, line(clock(8, 30), clock(12, 30), &d.ID, nil))
	require.NoError(t, err)

	stored, err := env.jobs.Get(ctx, j.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, clock(12, 30), stored.Lines[0].DeliveryTime)
}

func TestCancelledJobLinesDoNotBlock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client(t)
	d := env.driver(t)
	s := env.shift(t, env.driver(t).ID, at(6, 0), at(18, 0))

	cancelled := env.job(t, s.ID, c.ID, line(clock(8, 0), clock(10, 0), &d.ID, nil))
	_, err := env.jobs.ChangeStatus(ctx, cancelled.ID, model.JobStatusCancelled)
	require.NoError(t, err)

	env.job(t, s.ID, c.ID, line(clock(8, 0), clock(10, 0), &d.ID, nil))
}

func TestJobLineValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client(t)
	s := env.shift(t, env.driver(t).ID, at(6, 0), at(18, 0))
	j := env.job(t, s.ID, c.ID)

	_, err := env.jobs.AddLine(ctx, j.ID, line(clock(10, 0), clock(10, 0), nil, nil))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.jobs.AddLine(ctx, j.ID, line(clock(11, 0), clock(10, 0), nil, nil))
	require.ErrorIs(t, err, ErrInvalidInput)

	zero := line(clock(8, 0), clock(9, 0), nil, nil)
	zero.Qty = decimal.Zero
	_, err = env.jobs.AddLine(ctx, j.ID, zero)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.jobs.AddLine(ctx, j.ID, line(clock(8, 0), clock(9, 0), ptr(uuid.New()), nil))
	require.ErrorIs(t, err, ErrNotFound)

	unknownProduct := line(clock(8, 0), clock(9, 0), nil, nil)
	unknownProduct.ProductID = ptr(uuid.New())
	_, err = env.jobs.AddLine(ctx, j.ID, unknownProduct)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = env.jobs.AddLine(ctx, uuid.New(), line(clock(8, 0), clock(9, 0), nil, nil))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCheckJobLineConflictsDirect(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.guard.CheckJobLineConflicts(ctx, uuid.New(), LineWindow{PickupTime: clock(8, 0), DeliveryTime: clock(9, 0)}, nil)
	require.ErrorIs(t, err, ErrNotFound)

	c := env.client(t)
	s := env.shift(t, env.driver(t).ID, at(6, 0), at(18, 0))
	j := env.job(t, s.ID, c.ID)

	err = env.guard.CheckJobLineConflicts(ctx, j.ID, LineWindow{PickupTime: clock(9, 0), DeliveryTime: clock(8, 0)}, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestJobLinesFrozenAfterCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client(t)
	s := env.shift(t, env.driver(t).ID, at(6, 0), at(18, 0))
	j := env.job(t, s.ID, c.ID, line(clock(8, 0), clock(9, 0), nil, nil))

	env.completeJob(t, j.ID)

	_, err := env.jobs.AddLine(ctx, j.ID, line(clock(10, 0), clock(11, 0), nil, nil))
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, env.jobs.DeleteLine(ctx, j.Lines[0].ID), ErrInvalidInput)
}

func TestCreateJobOnClosedShift(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client(t)
	s := env.shift(t, env.driver(t).ID, at(6, 0), at(18, 0))

	_, err := env.shifts.ChangeStatus(ctx, s.ID, model.ShiftStatusCancelled)
	require.NoError(t, err)

	_, err = env.jobs.Create(ctx, CreateJobInput{ShiftID: s.ID, ClientID: c.ID, JobDate: at(0, 0)})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.jobs.Create(ctx, CreateJobInput{ShiftID: uuid.New(), ClientID: c.ID, JobDate: at(0, 0)})
	require.ErrorIs(t, err, ErrNotFound)

	open := env.shift(t, env.driver(t).ID, at(6, 0), at(18, 0))
	_, err = env.jobs.Create(ctx, CreateJobInput{ShiftID: open.ID, ClientID: uuid.New(), JobDate: at(0, 0)})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestJobLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client(t)
	s := env.shift(t, env.driver(t).ID, at(6, 0), at(18, 0))
	j := env.job(t, s.ID, c.ID)
	assert.Equal(t, model.JobStatusDraft, j.Status)

	_, err := env.jobs.ChangeStatus(ctx, j.ID, model.JobStatusCompleted)
	require.ErrorIs(t, err, ErrInvalidInput)

	env.completeJob(t, j.ID)

	stored, err := env.jobs.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, stored.Status)

	_, err = env.jobs.ChangeStatus(ctx, j.ID, model.JobStatusCancelled)
	require.ErrorIs(t, err, ErrInvalidInput)
}
