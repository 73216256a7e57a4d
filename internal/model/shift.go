package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/lifecycle"
)

type ShiftStatus string

const (
	ShiftStatusDraft     ShiftStatus = "DRAFT"
	ShiftStatusActive    ShiftStatus = "ACTIVE"
	ShiftStatusCompleted ShiftStatus = "COMPLETED"
	ShiftStatusCancelled ShiftStatus = "CANCELLED"
)

var ShiftLifecycle = lifecycle.New("shift", map[ShiftStatus][]ShiftStatus{
	ShiftStatusDraft:     {ShiftStatusActive, ShiftStatusCancelled},
	ShiftStatusActive:    {ShiftStatusCompleted, ShiftStatusCancelled},
	ShiftStatusCompleted: {},
	ShiftStatusCancelled: {},
})

type Shift struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string      `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	DriverID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"driver_id"`
	StartTime time.Time   `gorm:"not null" json:"start_time"`
	EndTime   time.Time   `gorm:"not null" json:"end_time"`
	Status    ShiftStatus `gorm:"type:shift_status;not null" json:"status"`
	Timezone  string      `gorm:"type:varchar(64);not null" json:"timezone"`
	Notes     string      `gorm:"type:text" json:"notes"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Shift) TableName() string {
	return "shifts"
}

func (s *Shift) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = ShiftStatusDraft
	}
	return nil
}

// Blocking reports whether the shift still occupies its driver's time.
func (s *Shift) Blocking() bool {
	return s.Status != ShiftStatusCancelled
}
