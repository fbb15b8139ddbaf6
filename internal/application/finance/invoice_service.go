package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/domain/partner"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxNumberAttempts bounds retries when two invoices race for one number
const maxNumberAttempts = 3

// InvoiceService manages invoices and their status lifecycle
type InvoiceService struct {
	invoiceRepo    finance.InvoiceRepository
	customerRepo   partner.CustomerRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo finance.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		customerRepo:   customerRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

// Create assigns the next invoice number and saves a draft
func (s *InvoiceService) Create(ctx context.Context, userID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if err := s.checkCustomer(ctx, userID, req.CustomerID); err != nil {
		return nil, err
	}

	var inv *finance.Invoice
	for attempt := 1; ; attempt++ {
		number, err := s.invoiceRepo.NextNumber(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("next invoice number: %w", err)
		}
		inv, err = finance.NewInvoice(userID, number, req.details())
		if err != nil {
			return nil, err
		}
		err = s.invoiceRepo.Save(ctx, inv)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrAlreadyExists) || attempt == maxNumberAttempts {
			return nil, err
		}
		s.logger.Debug("Invoice number taken, retrying",
			zap.String("invoice_number", number),
			zap.Int("attempt", attempt))
	}

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// GetByID retrieves an invoice with its items
func (s *InvoiceService) GetByID(ctx context.Context, userID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// List retrieves a page of invoices
func (s *InvoiceService) List(ctx context.Context, userID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  map[string]any{},
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}

	invoices, total, err := s.invoiceRepo.FindAll(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = ToInvoiceResponse(inv)
	}
	return out, total, nil
}

// Update replaces the contents of a draft invoice
func (s *InvoiceService) Update(ctx context.Context, userID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	if err := s.checkCustomer(ctx, userID, req.CustomerID); err != nil {
		return nil, err
	}
	inv, err := s.invoiceRepo.FindByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// ChangeStatus moves an invoice to a new status
func (s *InvoiceService) ChangeStatus(ctx context.Context, userID, invoiceID uuid.UUID, req ChangeInvoiceStatusRequest) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.ChangeStatus(finance.InvoiceStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Delete removes an invoice. Paid invoices are kept for the record.
func (s *InvoiceService) Delete(ctx context.Context, userID, invoiceID uuid.UUID) error {
	inv, err := s.invoiceRepo.FindByID(ctx, userID, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status == finance.InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Paid invoices cannot be deleted")
	}
	return s.invoiceRepo.Delete(ctx, userID, invoiceID)
}

// MarkOverdue flips every sent invoice past its due date to overdue and
// publishes an InvoiceOverdue event for each. It returns how many changed.
func (s *InvoiceService) MarkOverdue(ctx context.Context) (int, error) {
	invoices, err := s.invoiceRepo.FindOverdue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("find overdue invoices: %w", err)
	}

	marked := 0
	for _, inv := range invoices {
		if !inv.MarkOverdue(s.now()) {
			continue
		}
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			s.logger.Error("Failed to mark invoice overdue",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err))
			continue
		}
		marked++
		if s.eventPublisher != nil {
			if err := s.eventPublisher.Publish(ctx, inv.GetDomainEvents()...); err != nil {
				s.logger.Warn("Failed to publish invoice overdue event",
					zap.String("invoice_id", inv.ID.String()),
					zap.Error(err))
			}
		}
		inv.ClearDomainEvents()
	}
	return marked, nil
}

func (s *InvoiceService) checkCustomer(ctx context.Context, userID uuid.UUID, customerID *uuid.UUID) error {
	if customerID == nil {
		return nil
	}
	ok, err := s.customerRepo.ExistsForOwner(ctx, userID, *customerID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer not found")
	}
	return nil
}
