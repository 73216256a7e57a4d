package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/utils"
)

// ConflictGuard answers whether a proposed booking double-books a driver or
// vehicle. It only reads; callers that need the answer to hold must run the
// check and the write in one transaction (see WithTx).
type ConflictGuard struct {
	shiftRepo *repository.ShiftRepository
	jobRepo   *repository.JobRepository
}

func NewConflictGuard(shiftRepo *repository.ShiftRepository, jobRepo *repository.JobRepository) *ConflictGuard {
	return &ConflictGuard{shiftRepo: shiftRepo, jobRepo: jobRepo}
}

func (g *ConflictGuard) WithTx(tx *gorm.DB) *ConflictGuard {
	return &ConflictGuard{
		shiftRepo: g.shiftRepo.WithTx(tx),
		jobRepo:   g.jobRepo.WithTx(tx),
	}
}

// CheckShiftOverlap fails with a ConflictError when the driver already holds
// a non-cancelled shift intersecting [start, end). excludeShiftID lets an
// updated shift ignore its own stored window.
func (g *ConflictGuard) CheckShiftOverlap(ctx context.Context, driverID uuid.UUID, start, end time.Time, excludeShiftID *uuid.UUID) error {
	if !start.Before(end) {
		return validationf("shift start %s must be before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	shifts, err := g.shiftRepo.ListBlockingByDriver(ctx, driverID, excludeShiftID)
	if err != nil {
		return err
	}

	for _, existing := range shifts {
		if utils.Overlaps(start, end, existing.StartTime, existing.EndTime) {
			return conflictf("driver %s already has shift %s (%s) from %s to %s",
				driverID, existing.Code, existing.ID,
				existing.StartTime.Format(time.RFC3339), existing.EndTime.Format(time.RFC3339))
		}
	}
	return nil
}

// LineWindow is the part of a job line the conflict check looks at.
type LineWindow struct {
	PickupTime   model.ClockTime
	DeliveryTime model.ClockTime
	DriverID     *uuid.UUID
	VehicleID    *uuid.UUID
}

// CheckJobLineConflicts looks for lines on the same shift that already use
// the driver or the vehicle during an intersecting time of day. Other shifts
// are out of scope and trailers are never checked.
func (g *ConflictGuard) CheckJobLineConflicts(ctx context.Context, jobID uuid.UUID, line LineWindow, excludeLineID *uuid.UUID) error {
	job, err := g.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return translateStoreError(err, "job", jobID)
	}

	if !line.PickupTime.Before(line.DeliveryTime) {
		return validationf("pickup time %s must be before delivery time %s", line.PickupTime, line.DeliveryTime)
	}
	if line.DriverID == nil && line.VehicleID == nil {
		return nil
	}

	candidates, err := g.jobRepo.ListShiftLines(ctx, job.ShiftID, excludeLineID)
	if err != nil {
		return err
	}

	if line.DriverID != nil {
		for _, other := range candidates {
			if other.DriverID == nil || *other.DriverID != *line.DriverID {
				continue
			}
			if utils.Overlaps(line.PickupTime, line.DeliveryTime, other.PickupTime, other.DeliveryTime) {
				return conflictf("driver %s is already booked on job %s line %s from %s to %s",
					*line.DriverID, other.JobID, other.ID, other.PickupTime, other.DeliveryTime)
			}
		}
	}

	if line.VehicleID != nil {
		for _, other := range candidates {
			if other.VehicleID == nil || *other.VehicleID != *line.VehicleID {
				continue
			}
			if utils.Overlaps(line.PickupTime, line.DeliveryTime, other.PickupTime, other.DeliveryTime) {
				return conflictf("vehicle %s is already booked on job %s line %s from %s to %s",
					*line.VehicleID, other.JobID, other.ID, other.PickupTime, other.DeliveryTime)
			}
		}
	}

	return nil
}
