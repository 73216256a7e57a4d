package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Vehicle struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code         string    `gorm:"type:varchar(32);index;not null" json:"code"`
	PlateNumber  string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"plate_number"`
	Make         string    `gorm:"type:varchar(64)" json:"make"`
	Model        string    `gorm:"type:varchar(64)" json:"model"`
	CapacityTons *float64  `json:"capacity_tons"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Trailer is attached to job lines but never conflict-checked.
type Trailer struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(32);index;not null" json:"code"`
	PlateNumber string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"plate_number"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Trailer) TableName() string {
	return "trailers"
}

func (t *Trailer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
