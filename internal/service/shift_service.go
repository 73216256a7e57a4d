package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

const defaultTimezone = "UTC"

type ShiftService struct {
	db         *gorm.DB
	shiftRepo  *repository.ShiftRepository
	driverRepo *repository.DriverRepository
	guard      *ConflictGuard
	codes      *CodeService
	log        zerolog.Logger
}

func NewShiftService(
	db *gorm.DB,
	shiftRepo *repository.ShiftRepository,
	driverRepo *repository.DriverRepository,
	guard *ConflictGuard,
	codes *CodeService,
	log zerolog.Logger,
) *ShiftService {
	return &ShiftService{
		db:         db,
		shiftRepo:  shiftRepo,
		driverRepo: driverRepo,
		guard:      guard,
		codes:      codes,
		log:        log,
	}
}

type CreateShiftInput struct {
	DriverID  uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Timezone  string
	Notes     string
}

// Create books a new DRAFT shift. The driver row is locked while the overlap
// check and the insert run, so two requests for one driver cannot both pass
// the check.
func (s *ShiftService) Create(ctx context.Context, input CreateShiftInput) (*model.Shift, error) {
	if input.DriverID == uuid.Nil {
		return nil, validationf("driver_id is required")
	}
	timezone, err := normalizeTimezone(input.Timezone)
	if err != nil {
		return nil, err
	}
	if !input.StartTime.Before(input.EndTime) {
		return nil, validationf("shift start %s must be before end %s",
			input.StartTime.Format(time.RFC3339), input.EndTime.Format(time.RFC3339))
	}

	shift := &model.Shift{
		DriverID:  input.DriverID,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Status:    model.ShiftStatusDraft,
		Timezone:  timezone,
		Notes:     input.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.driverRepo.WithTx(tx).LockByID(ctx, input.DriverID); err != nil {
			return translateStoreError(err, "driver", input.DriverID)
		}
		if err := s.guard.WithTx(tx).CheckShiftOverlap(ctx, input.DriverID, input.StartTime, input.EndTime, nil); err != nil {
			return err
		}

		code, err := s.codes.NextCodeTx(ctx, tx, model.CodeTypeShift)
		if err != nil {
			return err
		}
		shift.Code = code

		if err := s.shiftRepo.WithTx(tx).Create(ctx, shift); err != nil {
			return translateStoreError(err, "shift", shift.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.codes.forget(ctx, model.CodeTypeShift)

	s.log.Info().Str("shift_id", shift.ID.String()).Str("code", shift.Code).Str("driver_id", shift.DriverID.String()).Msg("shift created")
	return shift, nil
}

type UpdateShiftWindowInput struct {
	StartTime time.Time
	EndTime   time.Time
	Timezone  *string
}

// UpdateWindow moves a DRAFT or ACTIVE shift, re-running the overlap check
// against every other shift of the driver.
func (s *ShiftService) UpdateWindow(ctx context.Context, id uuid.UUID, input UpdateShiftWindowInput) (*model.Shift, error) {
	if !input.StartTime.Before(input.EndTime) {
		return nil, validationf("shift start %s must be before end %s",
			input.StartTime.Format(time.RFC3339), input.EndTime.Format(time.RFC3339))
	}

	var shift *model.Shift
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shifts := s.shiftRepo.WithTx(tx)

		var err error
		shift, err = shifts.LockByID(ctx, id)
		if err != nil {
			return translateStoreError(err, "shift", id)
		}
		if model.ShiftLifecycle.Terminal(shift.Status) {
			return validationf("cannot reschedule a %s shift", shift.Status)
		}

		timezone := shift.Timezone
		if input.Timezone != nil {
			if timezone, err = normalizeTimezone(*input.Timezone); err != nil {
				return err
			}
		}

		if _, err := s.driverRepo.WithTx(tx).LockByID(ctx, shift.DriverID); err != nil {
			return translateStoreError(err, "driver", shift.DriverID)
		}
		if err := s.guard.WithTx(tx).CheckShiftOverlap(ctx, shift.DriverID, input.StartTime, input.EndTime, &shift.ID); err != nil {
			return err
		}

		if err := shifts.UpdateWindow(ctx, id, input.StartTime, input.EndTime, timezone); err != nil {
			return translateStoreError(err, "shift", id)
		}
		shift.StartTime = input.StartTime
		shift.EndTime = input.EndTime
		shift.Timezone = timezone
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("shift_id", id.String()).Msg("shift rescheduled")
	return shift, nil
}

// ChangeStatus applies one step of the shift lifecycle.
func (s *ShiftService) ChangeStatus(ctx context.Context, id uuid.UUID, to model.ShiftStatus) (*model.Shift, error) {
	var (
		shift *model.Shift
		from  model.ShiftStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shifts := s.shiftRepo.WithTx(tx)

		var err error
		shift, err = shifts.LockByID(ctx, id)
		if err != nil {
			return translateStoreError(err, "shift", id)
		}
		from = shift.Status

		if err := model.ShiftLifecycle.Validate(from, to); err != nil {
			return translateStoreError(err, "shift", id)
		}
		if err := shifts.UpdateStatus(ctx, id, to); err != nil {
			return err
		}
		shift.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("shift_id", id.String()).Str("from", string(from)).Str("to", string(to)).Msg("shift status changed")
	return shift, nil
}

func (s *ShiftService) Get(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	shift, err := s.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "shift", id)
	}
	return shift, nil
}

func (s *ShiftService) List(ctx context.Context, filter repository.ShiftListFilter) ([]model.Shift, error) {
	return s.shiftRepo.List(ctx, filter)
}

// Delete removes a shift that has no jobs. Shifts with jobs are cancelled
// instead.
func (s *ShiftService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shifts := s.shiftRepo.WithTx(tx)

		if _, err := shifts.LockByID(ctx, id); err != nil {
			return translateStoreError(err, "shift", id)
		}
		count, err := shifts.CountJobs(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return conflictf("shift %s has %d jobs and cannot be deleted", id, count)
		}
		return shifts.Delete(ctx, id)
	})
}

func normalizeTimezone(raw string) (string, error) {
	tz := strings.TrimSpace(raw)
	if tz == "" {
		return defaultTimezone, nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return "", validationf("unknown timezone %q", tz)
	}
	return tz, nil
}
