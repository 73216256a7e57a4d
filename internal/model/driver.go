package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Driver struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code          string    `gorm:"type:varchar(32);index;not null" json:"code"`
	FullName      string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone         string    `gorm:"type:varchar(32)" json:"phone"`
	LicenseNumber string    `gorm:"type:varchar(64)" json:"license_number"`
	IsActive      bool      `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Driver) TableName() string {
	return "drivers"
}

func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
