package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service/internal/model"
)

type CounterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

func (r *CounterRepository) WithTx(tx *gorm.DB) *CounterRepository {
	return &CounterRepository{db: tx}
}

// Ensure inserts the (year, type) row at zero unless it already exists.
func (r *CounterRepository) Ensure(ctx context.Context, year int, codeType model.CodeType) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Counter{Year: year, Type: codeType, Current: 0}).Error
}

// Lock reads the counter row with SELECT ... FOR UPDATE. The lock is held
// until the surrounding transaction ends.
func (r *CounterRepository) Lock(ctx context.Context, year int, codeType model.CodeType) (*model.Counter, error) {
	var counter model.Counter
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("year = ? AND type = ?", year, codeType).
		First(&counter).Error
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

func (r *CounterRepository) SetCurrent(ctx context.Context, year int, codeType model.CodeType, current int64) error {
	return r.db.WithContext(ctx).Model(&model.Counter{}).
		Where("year = ? AND type = ?", year, codeType).
		Update("current", current).Error
}

// Get is a plain read without locking.
func (r *CounterRepository) Get(ctx context.Context, year int, codeType model.CodeType) (*model.Counter, error) {
	var counter model.Counter
	err := r.db.WithContext(ctx).
		Where("year = ? AND type = ?", year, codeType).
		First(&counter).Error
	if err != nil {
		return nil, err
	}
	return &counter, nil
}
