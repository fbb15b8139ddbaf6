package partner

import (
	"context"
	"strings"

	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeCustomer = "Customer"

// Customer is someone the business sells to or invoices
type Customer struct {
	shared.OwnedAggregateRoot
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
}

// CustomerDetails are the editable fields of a customer
type CustomerDetails struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
}

// NewCustomer creates a customer owned by userID
func NewCustomer(userID uuid.UUID, d CustomerDetails) (*Customer, error) {
	c := &Customer{OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID)}
	if err := c.apply(d); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the customer's details
func (c *Customer) Update(d CustomerDetails) error {
	if err := c.apply(d); err != nil {
		return err
	}
	c.IncrementVersion()
	return nil
}

func (c *Customer) apply(d CustomerDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	c.Name = name
	c.Email = strings.ToLower(strings.TrimSpace(d.Email))
	c.Phone = strings.TrimSpace(d.Phone)
	c.Address = strings.TrimSpace(d.Address)
	c.Notes = d.Notes
	return nil
}

// CustomerRepository persists customers
type CustomerRepository interface {
	shared.OwnedRepository[Customer]
	ExistsForOwner(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
}
