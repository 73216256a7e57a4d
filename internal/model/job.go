package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fleet-service/internal/lifecycle"
)

type JobStatus string

const (
	JobStatusDraft     JobStatus = "DRAFT"
	JobStatusAssigned  JobStatus = "ASSIGNED"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusCancelled JobStatus = "CANCELLED"
)

var JobLifecycle = lifecycle.New("job", map[JobStatus][]JobStatus{
	JobStatusDraft:     {JobStatusAssigned, JobStatusCancelled},
	JobStatusAssigned:  {JobStatusCompleted, JobStatusCancelled},
	JobStatusCompleted: {},
	JobStatusCancelled: {},
})

type Job struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	ShiftID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"shift_id"`
	ClientID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"client_id"`
	JobDate   datatypes.Date `gorm:"not null" json:"job_date"`
	Status    JobStatus      `gorm:"type:job_status;not null" json:"status"`
	Notes     string         `gorm:"type:text" json:"notes"`
	Lines     []JobLine      `gorm:"foreignKey:JobID" json:"lines,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = JobStatusDraft
	}
	return nil
}

// LinesEditable reports whether lines may still be added, changed or removed.
func (j *Job) LinesEditable() bool {
	return j.Status == JobStatusDraft || j.Status == JobStatusAssigned
}

type JobLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	JobID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"job_id"`
	PickupTime   ClockTime       `gorm:"not null" json:"pickup_time"`
	DeliveryTime ClockTime       `gorm:"not null" json:"delivery_time"`
	DriverID     *uuid.UUID      `gorm:"type:uuid;index" json:"driver_id"`
	VehicleID    *uuid.UUID      `gorm:"type:uuid;index" json:"vehicle_id"`
	TrailerID    *uuid.UUID      `gorm:"type:uuid" json:"trailer_id"`
	ProductID    *uuid.UUID      `gorm:"type:uuid" json:"product_id"`
	Qty          decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"qty"`
	DocketNo     string          `gorm:"type:varchar(64)" json:"docket_no"`
	PickupSite   string          `gorm:"type:varchar(255)" json:"pickup_site"`
	DeliverySite string          `gorm:"type:varchar(255)" json:"delivery_site"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (JobLine) TableName() string {
	return "job_lines"
}

func (l *JobLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
