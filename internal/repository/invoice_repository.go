package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service/internal/model"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) WithTx(tx *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: tx}
}

// Create inserts the invoice together with its items.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) ExistsForJob(ctx context.Context, jobID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("job_id = ?", jobID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// LockByID reads the invoice and its items with a row lock on the invoice
// held until the transaction ends.
func (r *InvoiceRepository) LockByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete soft-deletes the invoice so the job can be invoiced again.
func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Invoice{}).Error
}

type InvoiceListFilter struct {
	ClientID *uuid.UUID
	JobID    *uuid.UUID
	Status   *model.InvoiceStatus
	Page     Page
}

func (r *InvoiceRepository) List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, error) {
	var invoices []model.Invoice
	query := r.db.WithContext(ctx).Model(&model.Invoice{})

	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.JobID != nil {
		query = query.Where("job_id = ?", *filter.JobID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := filter.Page.apply(query.Order("created_at DESC")).Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
