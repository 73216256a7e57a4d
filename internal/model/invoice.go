package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fleet-service/internal/lifecycle"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusIssued    InvoiceStatus = "ISSUED"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// InvoiceLifecycle gates issuing only. Cancellation is accepted from any
// status and does not consult this table.
var InvoiceLifecycle = lifecycle.New("invoice", map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:     {InvoiceStatusIssued},
	InvoiceStatusIssued:    {},
	InvoiceStatusCancelled: {},
})

type Invoice struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	JobID       uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_job_id,where:deleted_at IS NULL" json:"job_id"`
	ClientID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"client_id"`
	Number      string            `gorm:"type:varchar(32);uniqueIndex;not null" json:"number"`
	Status      InvoiceStatus     `gorm:"type:invoice_status;not null" json:"status"`
	TotalAmount decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	Currency    string            `gorm:"type:varchar(3);not null" json:"currency"`
	Notes       string            `gorm:"type:text" json:"notes"`
	DueDate     *datatypes.Date   `json:"due_date"`
	Metadata    datatypes.JSONMap `json:"metadata"`
	IssuedAt    *time.Time        `json:"issued_at"`
	CancelledAt *time.Time        `json:"cancelled_at"`
	Items       []InvoiceItem     `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = InvoiceStatusDraft
	}
	return nil
}

func (i *Invoice) Editable() bool {
	return i.Status == InvoiceStatusDraft
}

// InvoiceItem is written once with the invoice. Name and price are copies
// taken at invoicing time.
type InvoiceItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	JobLineID       *uuid.UUID      `gorm:"type:uuid" json:"job_line_id"`
	ProductID       *uuid.UUID      `gorm:"type:uuid" json:"product_id"`
	ProductNameSnap string          `gorm:"type:varchar(255);not null" json:"product_name_snap"`
	Qty             decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"qty"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
