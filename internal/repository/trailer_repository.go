package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type TrailerRepository struct {
	db *gorm.DB
}

func NewTrailerRepository(db *gorm.DB) *TrailerRepository {
	return &TrailerRepository{db: db}
}

func (r *TrailerRepository) WithTx(tx *gorm.DB) *TrailerRepository {
	return &TrailerRepository{db: tx}
}

func (r *TrailerRepository) Create(ctx context.Context, trailer *model.Trailer) error {
	return r.db.WithContext(ctx).Create(trailer).Error
}

func (r *TrailerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Trailer, error) {
	var trailer model.Trailer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&trailer).Error; err != nil {
		return nil, err
	}
	return &trailer, nil
}

func (r *TrailerRepository) GetByPlate(ctx context.Context, plate string) (*model.Trailer, error) {
	var trailer model.Trailer
	err := r.db.WithContext(ctx).Where("plate_number = ?", plate).First(&trailer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trailer, nil
}

func (r *TrailerRepository) List(ctx context.Context, page Page) ([]model.Trailer, error) {
	var trailers []model.Trailer
	err := page.apply(r.db.WithContext(ctx).Order("code ASC")).Find(&trailers).Error
	return trailers, err
}
