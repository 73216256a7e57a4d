package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

const defaultCurrency = "EUR"

type InvoiceService struct {
	db          *gorm.DB
	invoiceRepo *repository.InvoiceRepository
	jobRepo     *repository.JobRepository
	productRepo *repository.ProductRepository
	codes       *CodeService
	now         func() time.Time
	log         zerolog.Logger
}

func NewInvoiceService(
	db *gorm.DB,
	invoiceRepo *repository.InvoiceRepository,
	jobRepo *repository.JobRepository,
	productRepo *repository.ProductRepository,
	codes *CodeService,
	log zerolog.Logger,
) *InvoiceService {
	return &InvoiceService{
		db:          db,
		invoiceRepo: invoiceRepo,
		jobRepo:     jobRepo,
		productRepo: productRepo,
		codes:       codes,
		now:         time.Now,
		log:         log,
	}
}

type CreateInvoiceInput struct {
	JobID    uuid.UUID
	Currency string
	Notes    string
	DueDate  *time.Time
	Metadata map[string]interface{}
}

// CreateFromJob bills a completed job. The job row lock, the one-per-job
// check, the INV allocation and the inserts share one transaction, so a
// failure at any step leaves neither an invoice nor a consumed number.
func (s *InvoiceService) CreateFromJob(ctx context.Context, input CreateInvoiceInput) (*model.Invoice, error) {
	if input.JobID == uuid.Nil {
		return nil, validationf("job_id is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if len(currency) != 3 {
		return nil, validationf("currency must be a 3 letter code, got %q", input.Currency)
	}

	var invoice *model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		jobs := s.jobRepo.WithTx(tx)
		invoices := s.invoiceRepo.WithTx(tx)

		job, err := jobs.LockByID(ctx, input.JobID)
		if err != nil {
			return translateStoreError(err, "job", input.JobID)
		}
		if job.Status != model.JobStatusCompleted {
			return validationf("job %s is %s, only COMPLETED jobs can be invoiced", job.Code, job.Status)
		}

		exists, err := invoices.ExistsForJob(ctx, job.ID)
		if err != nil {
			return err
		}
		if exists {
			return conflictf("job %s already has an invoice", job.Code)
		}

		lines, err := jobs.ListLines(ctx, job.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return validationf("job %s has no lines to invoice", job.Code)
		}

		number, err := s.codes.NextCodeTx(ctx, tx, model.CodeTypeInvoice)
		if err != nil {
			return err
		}

		items, total, err := s.snapshotItems(ctx, tx, lines)
		if err != nil {
			return err
		}

		invoice = &model.Invoice{
			JobID:       job.ID,
			ClientID:    job.ClientID,
			Number:      number,
			Status:      model.InvoiceStatusDraft,
			TotalAmount: total,
			Currency:    currency,
			Notes:       input.Notes,
			Metadata:    datatypes.JSONMap(input.Metadata),
			Items:       items,
		}
		if input.DueDate != nil {
			due := datatypes.Date(*input.DueDate)
			invoice.DueDate = &due
		}

		if err := invoices.Create(ctx, invoice); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflictf("job %s already has an invoice", job.Code)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.codes.forget(ctx, model.CodeTypeInvoice)

	s.log.Info().
		Str("invoice_id", invoice.ID.String()).
		Str("number", invoice.Number).
		Str("job_id", invoice.JobID.String()).
		Str("total", invoice.TotalAmount.StringFixed(2)).
		Msg("invoice created")
	return invoice, nil
}

// snapshotItems prices every line at the current product price and copies
// name and price into the item.
func (s *InvoiceService) snapshotItems(ctx context.Context, tx *gorm.DB, lines []model.JobLine) ([]model.InvoiceItem, decimal.Decimal, error) {
	var productIDs []uuid.UUID
	for _, line := range lines {
		if line.ProductID != nil {
			productIDs = append(productIDs, *line.ProductID)
		}
	}
	products, err := s.productRepo.WithTx(tx).GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, decimal.Zero, err
	}

	items := make([]model.InvoiceItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		lineID := line.ID
		item := model.InvoiceItem{
			JobLineID:       &lineID,
			ProductNameSnap: line.DocketNo,
			Qty:             line.Qty,
			UnitPrice:       decimal.Zero,
		}
		if line.ProductID != nil {
			product, ok := products[*line.ProductID]
			if !ok {
				return nil, decimal.Zero, notFound("product", *line.ProductID)
			}
			productID := product.ID
			item.ProductID = &productID
			item.ProductNameSnap = product.Name
			item.UnitPrice = product.UnitPrice
		}
		if item.ProductNameSnap == "" {
			item.ProductNameSnap = "line " + lineID.String()
		}
		item.Amount = item.UnitPrice.Mul(item.Qty).Round(2)
		total = total.Add(item.Amount)
		items = append(items, item)
	}
	return items, total, nil
}

type UpdateInvoiceInput struct {
	Notes    *string
	DueDate  *time.Time
	Metadata map[string]interface{}
}

// Update edits the free fields of a DRAFT invoice. Items never change.
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*model.Invoice, error) {
	fields := map[string]interface{}{}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}
	if input.DueDate != nil {
		fields["due_date"] = datatypes.Date(*input.DueDate)
	}
	if input.Metadata != nil {
		fields["metadata"] = datatypes.JSONMap(input.Metadata)
	}

	return s.mutate(ctx, id, func(invoices *repository.InvoiceRepository, invoice *model.Invoice) error {
		if !invoice.Editable() {
			return validationf("invoice %s is %s, only DRAFT invoices can be edited", invoice.Number, invoice.Status)
		}
		if len(fields) == 0 {
			return nil
		}
		return invoices.Update(ctx, id, fields)
	})
}

// Issue moves a DRAFT invoice to ISSUED.
func (s *InvoiceService) Issue(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	return s.mutate(ctx, id, func(invoices *repository.InvoiceRepository, invoice *model.Invoice) error {
		if err := model.InvoiceLifecycle.Validate(invoice.Status, model.InvoiceStatusIssued); err != nil {
			return translateStoreError(err, "invoice", id)
		}
		return invoices.Update(ctx, id, map[string]interface{}{
			"status":    model.InvoiceStatusIssued,
			"issued_at": s.now().UTC(),
		})
	})
}

// Cancel is accepted from any status, including ISSUED and CANCELLED.
func (s *InvoiceService) Cancel(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	return s.mutate(ctx, id, func(invoices *repository.InvoiceRepository, invoice *model.Invoice) error {
		return invoices.Update(ctx, id, map[string]interface{}{
			"status":       model.InvoiceStatusCancelled,
			"cancelled_at": s.now().UTC(),
		})
	})
}

// Delete soft-deletes a DRAFT invoice, freeing its job to be invoiced again.
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := s.invoiceRepo.WithTx(tx)
		invoice, err := invoices.LockByID(ctx, id)
		if err != nil {
			return translateStoreError(err, "invoice", id)
		}
		if !invoice.Editable() {
			return validationf("invoice %s is %s, only DRAFT invoices can be deleted", invoice.Number, invoice.Status)
		}
		return invoices.Delete(ctx, id)
	})
}

func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "invoice", id)
	}
	return invoice, nil
}

func (s *InvoiceService) List(ctx context.Context, filter repository.InvoiceListFilter) ([]model.Invoice, error) {
	return s.invoiceRepo.List(ctx, filter)
}

// mutate applies one change to a locked invoice, so the status the change was
// checked against is still the status it writes over.
func (s *InvoiceService) mutate(ctx context.Context, id uuid.UUID, apply func(*repository.InvoiceRepository, *model.Invoice) error) (*model.Invoice, error) {
	var (
		invoice *model.Invoice
		from    model.InvoiceStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := s.invoiceRepo.WithTx(tx)

		current, err := invoices.LockByID(ctx, id)
		if err != nil {
			return translateStoreError(err, "invoice", id)
		}
		from = current.Status

		if err := apply(invoices, current); err != nil {
			return err
		}
		invoice, err = invoices.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if from != invoice.Status {
		s.log.Info().Str("invoice_id", id.String()).Str("from", string(from)).Str("to", string(invoice.Status)).Msg("invoice status changed")
	}
	return invoice, nil
}
