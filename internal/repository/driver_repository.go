package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service/internal/model"
)

type DriverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) WithTx(tx *gorm.DB) *DriverRepository {
	return &DriverRepository{db: tx}
}

func (r *DriverRepository) Create(ctx context.Context, driver *model.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *DriverRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	var driver model.Driver
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&driver).Error; err != nil {
		return nil, err
	}
	return &driver, nil
}

// LockByID takes a row lock on the driver for the rest of the transaction.
// Shift writes for one driver serialize on it.
func (r *DriverRepository) LockByID(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	var driver model.Driver
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *DriverRepository) List(ctx context.Context, page Page) ([]model.Driver, error) {
	var drivers []model.Driver
	err := page.apply(r.db.WithContext(ctx).Order("code ASC")).Find(&drivers).Error
	return drivers, err
}
