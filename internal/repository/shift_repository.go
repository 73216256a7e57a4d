package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service/internal/model"
)

type ShiftRepository struct {
	db *gorm.DB
}

func NewShiftRepository(db *gorm.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

func (r *ShiftRepository) WithTx(tx *gorm.DB) *ShiftRepository {
	return &ShiftRepository{db: tx}
}

func (r *ShiftRepository) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *ShiftRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	var shift model.Shift
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&shift).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

// LockByID reads the shift with a row lock. Job-line writes within one shift
// serialize on it.
func (r *ShiftRepository) LockByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *ShiftRepository) UpdateWindow(ctx context.Context, id uuid.UUID, start, end time.Time, timezone string) error {
	return r.db.WithContext(ctx).Model(&model.Shift{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"start_time": start,
			"end_time":   end,
			"timezone":   timezone,
		}).Error
}

func (r *ShiftRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ShiftStatus) error {
	return r.db.WithContext(ctx).Model(&model.Shift{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *ShiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Shift{}).Error
}

// ListBlockingByDriver returns the driver's shifts that are not cancelled,
// leaving out excludeID when set.
func (r *ShiftRepository) ListBlockingByDriver(ctx context.Context, driverID uuid.UUID, excludeID *uuid.UUID) ([]model.Shift, error) {
	var shifts []model.Shift
	query := r.db.WithContext(ctx).
		Where("driver_id = ? AND status <> ?", driverID, model.ShiftStatusCancelled)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.Order("start_time ASC").Find(&shifts).Error
	return shifts, err
}

func (r *ShiftRepository) CountJobs(ctx context.Context, shiftID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Job{}).
		Where("shift_id = ?", shiftID).
		Count(&count).Error
	return count, err
}

type ShiftListFilter struct {
	DriverID  *uuid.UUID
	Status    *model.ShiftStatus
	StartFrom *time.Time
	StartTo   *time.Time
	Page      Page
}

func (r *ShiftRepository) List(ctx context.Context, filter ShiftListFilter) ([]model.Shift, error) {
	var shifts []model.Shift
	query := r.db.WithContext(ctx).Model(&model.Shift{})

	if filter.DriverID != nil {
		query = query.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StartFrom != nil {
		query = query.Where("start_time >= ?", *filter.StartFrom)
	}
	if filter.StartTo != nil {
		query = query.Where("start_time <= ?", *filter.StartTo)
	}

	if err := filter.Page.apply(query.Order("start_time DESC")).Find(&shifts).Error; err != nil {
		return nil, err
	}
	return shifts, nil
}
