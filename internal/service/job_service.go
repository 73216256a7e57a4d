package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

type JobService struct {
	db          *gorm.DB
	jobRepo     *repository.JobRepository
	shiftRepo   *repository.ShiftRepository
	clientRepo  *repository.ClientRepository
	driverRepo  *repository.DriverRepository
	vehicleRepo *repository.VehicleRepository
	trailerRepo *repository.TrailerRepository
	productRepo *repository.ProductRepository
	guard       *ConflictGuard
	codes       *CodeService
	log         zerolog.Logger
}

func NewJobService(
	db *gorm.DB,
	jobRepo *repository.JobRepository,
	shiftRepo *repository.ShiftRepository,
	clientRepo *repository.ClientRepository,
	driverRepo *repository.DriverRepository,
	vehicleRepo *repository.VehicleRepository,
	trailerRepo *repository.TrailerRepository,
	productRepo *repository.ProductRepository,
	guard *ConflictGuard,
	codes *CodeService,
	log zerolog.Logger,
) *JobService {
	return &JobService{
		db:          db,
		jobRepo:     jobRepo,
		shiftRepo:   shiftRepo,
		clientRepo:  clientRepo,
		driverRepo:  driverRepo,
		vehicleRepo: vehicleRepo,
		trailerRepo: trailerRepo,
		productRepo: productRepo,
		guard:       guard,
		codes:       codes,
		log:         log,
	}
}

type JobLineInput struct {
	PickupTime   model.ClockTime
	DeliveryTime model.ClockTime
	DriverID     *uuid.UUID
	VehicleID    *uuid.UUID
	TrailerID    *uuid.UUID
	ProductID    *uuid.UUID
	Qty          decimal.Decimal
	DocketNo     string
	PickupSite   string
	DeliverySite string
}

func (in JobLineInput) window() LineWindow {
	return LineWindow{
		PickupTime:   in.PickupTime,
		DeliveryTime: in.DeliveryTime,
		DriverID:     in.DriverID,
		VehicleID:    in.VehicleID,
	}
}

func (in JobLineInput) validate() error {
	if !in.PickupTime.Valid() || !in.DeliveryTime.Valid() {
		return validationf("pickup and delivery must be times of day")
	}
	if !in.PickupTime.Before(in.DeliveryTime) {
		return validationf("pickup time %s must be before delivery time %s", in.PickupTime, in.DeliveryTime)
	}
	if !in.Qty.IsPositive() {
		return validationf("qty must be positive")
	}
	return nil
}

func (in JobLineInput) applyTo(line *model.JobLine) {
	line.PickupTime = in.PickupTime
	line.DeliveryTime = in.DeliveryTime
	line.DriverID = in.DriverID
	line.VehicleID = in.VehicleID
	line.TrailerID = in.TrailerID
	line.ProductID = in.ProductID
	line.Qty = in.Qty
	line.DocketNo = in.DocketNo
	line.PickupSite = in.PickupSite
	line.DeliverySite = in.DeliverySite
}

type CreateJobInput struct {
	ShiftID  uuid.UUID
	ClientID uuid.UUID
	JobDate  time.Time
	Notes    string
	Lines    []JobLineInput
}

// Create inserts a DRAFT job and its lines in one transaction. Every line is
// checked against the lines already on the shift, including the ones
// inserted earlier in the same call.
func (s *JobService) Create(ctx context.Context, input CreateJobInput) (*model.Job, error) {
	if input.ShiftID == uuid.Nil || input.ClientID == uuid.Nil {
		return nil, validationf("shift_id and client_id are required")
	}
	if input.JobDate.IsZero() {
		return nil, validationf("job_date is required")
	}
	for i, line := range input.Lines {
		if err := line.validate(); err != nil {
			return nil, validationf("line %d: %s", i+1, err.Error())
		}
	}

	job := &model.Job{
		ShiftID:  input.ShiftID,
		ClientID: input.ClientID,
		JobDate:  datatypes.Date(input.JobDate),
		Status:   model.JobStatusDraft,
		Notes:    input.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shift, err := s.shiftRepo.WithTx(tx).LockByID(ctx, input.ShiftID)
		if err != nil {
			return translateStoreError(err, "shift", input.ShiftID)
		}
		if model.ShiftLifecycle.Terminal(shift.Status) {
			return validationf("cannot add jobs to a %s shift", shift.Status)
		}
		if _, err := s.clientRepo.WithTx(tx).GetByID(ctx, input.ClientID); err != nil {
			return translateStoreError(err, "client", input.ClientID)
		}

		code, err := s.codes.NextCodeTx(ctx, tx, model.CodeTypeJob)
		if err != nil {
			return err
		}
		job.Code = code

		jobs := s.jobRepo.WithTx(tx)
		if err := jobs.Create(ctx, job); err != nil {
			return translateStoreError(err, "job", job.ID)
		}

		guard := s.guard.WithTx(tx)
		for _, in := range input.Lines {
			if err := s.checkReferences(ctx, tx, in); err != nil {
				return err
			}
			if err := guard.CheckJobLineConflicts(ctx, job.ID, in.window(), nil); err != nil {
				return err
			}
			line := &model.JobLine{JobID: job.ID}
			in.applyTo(line)
			if err := jobs.CreateLine(ctx, line); err != nil {
				return err
			}
			job.Lines = append(job.Lines, *line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.codes.forget(ctx, model.CodeTypeJob)

	s.log.Info().Str("job_id", job.ID.String()).Str("code", job.Code).Str("shift_id", job.ShiftID.String()).Int("lines", len(job.Lines)).Msg("job created")
	return job, nil
}

// AddLine checks and inserts one line while holding the shift lock.
func (s *JobService) AddLine(ctx context.Context, jobID uuid.UUID, input JobLineInput) (*model.JobLine, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	line := &model.JobLine{JobID: jobID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lockEditableJob(ctx, tx, jobID); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, tx, input); err != nil {
			return err
		}
		if err := s.guard.WithTx(tx).CheckJobLineConflicts(ctx, jobID, input.window(), nil); err != nil {
			return err
		}
		input.applyTo(line)
		return s.jobRepo.WithTx(tx).CreateLine(ctx, line)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("job_id", jobID.String()).Str("line_id", line.ID.String()).Msg("job line added")
	return line, nil
}

// UpdateLine replaces a line's fields, ignoring the line's own stored window
// in the conflict check.
func (s *JobService) UpdateLine(ctx context.Context, lineID uuid.UUID, input JobLineInput) (*model.JobLine, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var line *model.JobLine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		jobs := s.jobRepo.WithTx(tx)

		var err error
		line, err = jobs.GetLineByID(ctx, lineID)
		if err != nil {
			return translateStoreError(err, "job line", lineID)
		}
		if _, err := s.lockEditableJob(ctx, tx, line.JobID); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, tx, input); err != nil {
			return err
		}
		if err := s.guard.WithTx(tx).CheckJobLineConflicts(ctx, line.JobID, input.window(), &line.ID); err != nil {
			return err
		}
		input.applyTo(line)
		return jobs.UpdateLine(ctx, line)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("job_id", line.JobID.String()).Str("line_id", lineID.String()).Msg("job line updated")
	return line, nil
}

func (s *JobService) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		jobs := s.jobRepo.WithTx(tx)

		line, err := jobs.GetLineByID(ctx, lineID)
		if err != nil {
			return translateStoreError(err, "job line", lineID)
		}
		if _, err := s.lockEditableJob(ctx, tx, line.JobID); err != nil {
			return err
		}
		return jobs.DeleteLine(ctx, lineID)
	})
}

// ChangeStatus applies one step of the job lifecycle.
func (s *JobService) ChangeStatus(ctx context.Context, id uuid.UUID, to model.JobStatus) (*model.Job, error) {
	var (
		job  *model.Job
		from model.JobStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		jobs := s.jobRepo.WithTx(tx)

		var err error
		job, err = jobs.LockByID(ctx, id)
		if err != nil {
			return translateStoreError(err, "job", id)
		}
		from = job.Status

		if err := model.JobLifecycle.Validate(from, to); err != nil {
			return translateStoreError(err, "job", id)
		}
		if err := jobs.UpdateStatus(ctx, id, to); err != nil {
			return err
		}
		job.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("job_id", id.String()).Str("from", string(from)).Str("to", string(to)).Msg("job status changed")
	return job, nil
}

func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := s.jobRepo.GetWithLines(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "job", id)
	}
	return job, nil
}

func (s *JobService) List(ctx context.Context, filter repository.JobListFilter) ([]model.Job, error) {
	return s.jobRepo.List(ctx, filter)
}

// lockEditableJob locks the job's shift, which is the conflict scope for its
// lines, and rejects jobs whose lines are frozen.
func (s *JobService) lockEditableJob(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*model.Job, error) {
	job, err := s.jobRepo.WithTx(tx).GetByID(ctx, jobID)
	if err != nil {
		return nil, translateStoreError(err, "job", jobID)
	}
	if _, err := s.shiftRepo.WithTx(tx).LockByID(ctx, job.ShiftID); err != nil {
		return nil, translateStoreError(err, "shift", job.ShiftID)
	}
	if !job.LinesEditable() {
		return nil, validationf("lines of a %s job cannot be changed", job.Status)
	}
	return job, nil
}

func (s *JobService) checkReferences(ctx context.Context, tx *gorm.DB, in JobLineInput) error {
	if in.DriverID != nil {
		if _, err := s.driverRepo.WithTx(tx).GetByID(ctx, *in.DriverID); err != nil {
			return translateStoreError(err, "driver", *in.DriverID)
		}
	}
	if in.VehicleID != nil {
		if _, err := s.vehicleRepo.WithTx(tx).GetByID(ctx, *in.VehicleID); err != nil {
			return translateStoreError(err, "vehicle", *in.VehicleID)
		}
	}
	if in.TrailerID != nil {
		if _, err := s.trailerRepo.WithTx(tx).GetByID(ctx, *in.TrailerID); err != nil {
			return translateStoreError(err, "trailer", *in.TrailerID)
		}
	}
	if in.ProductID != nil {
		if _, err := s.productRepo.WithTx(tx).GetByID(ctx, *in.ProductID); err != nil {
			return translateStoreError(err, "product", *in.ProductID)
		}
	}
	return nil
}
