package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) WithTx(tx *gorm.DB) *JobRepository {
	return &JobRepository{db: tx}
}

// Create inserts the job row only; lines go through CreateLine so each one
// can be checked first.
func (r *JobRepository) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Omit("Lines").Create(job).Error
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// LockByID reads the job with a row lock held until the transaction ends.
func (r *JobRepository) LockByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) GetWithLines(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("pickup_time ASC")
		}).
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.JobStatus) error {
	return r.db.WithContext(ctx).Model(&model.Job{}).
		Where("id = ?", id).
		Update("status", status).Error
}

type JobListFilter struct {
	ShiftID  *uuid.UUID
	ClientID *uuid.UUID
	Status   *model.JobStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     Page
}

func (r *JobRepository) List(ctx context.Context, filter JobListFilter) ([]model.Job, error) {
	var jobs []model.Job
	query := r.db.WithContext(ctx).Model(&model.Job{})

	if filter.ShiftID != nil {
		query = query.Where("shift_id = ?", *filter.ShiftID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("job_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("job_date <= ?", *filter.DateTo)
	}

	if err := filter.Page.apply(query.Order("job_date DESC, code DESC")).Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *JobRepository) CreateLine(ctx context.Context, line *model.JobLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *JobRepository) GetLineByID(ctx context.Context, id uuid.UUID) (*model.JobLine, error) {
	var line model.JobLine
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *JobRepository) UpdateLine(ctx context.Context, line *model.JobLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *JobRepository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.JobLine{}).Error
}

func (r *JobRepository) ListLines(ctx context.Context, jobID uuid.UUID) ([]model.JobLine, error) {
	var lines []model.JobLine
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("pickup_time ASC").
		Find(&lines).Error
	return lines, err
}

// ListShiftLines returns the lines of every non-cancelled job on the shift,
// leaving out excludeLineID when set. This is the job-line conflict scope.
// Lines of CANCELLED jobs are dropped on purpose: a cancelled job no longer
// holds its driver or vehicle, so its lines must not block new bookings.
func (r *JobRepository) ListShiftLines(ctx context.Context, shiftID uuid.UUID, excludeLineID *uuid.UUID) ([]model.JobLine, error) {
	jobIDs := r.db.Model(&model.Job{}).
		Select("id").
		Where("shift_id = ? AND status <> ?", shiftID, model.JobStatusCancelled)

	var lines []model.JobLine
	query := r.db.WithContext(ctx).Where("job_id IN (?)", jobIDs)
	if excludeLineID != nil {
		query = query.Where("id <> ?", *excludeLineID)
	}
	err := query.Order("pickup_time ASC").Find(&lines).Error
	return lines, err
}
