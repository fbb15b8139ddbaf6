package billing

import (
	"strings"

	"github.com/bizhub/backend/internal/domain/shared"
)

// ResourceType is a record kind counted against plan ceilings
type ResourceType string

const (
	ResourceInvoices ResourceType = "invoices"
	ResourceExpenses ResourceType = "expenses"
	ResourceProducts ResourceType = "products"
	ResourceSales    ResourceType = "sales"
)

// AllResources returns every counted resource
func AllResources() []ResourceType {
	return []ResourceType{ResourceInvoices, ResourceExpenses, ResourceProducts, ResourceSales}
}

func (r ResourceType) IsValid() bool {
	switch r {
	case ResourceInvoices, ResourceExpenses, ResourceProducts, ResourceSales:
		return true
	}
	return false
}

func (r ResourceType) String() string { return string(r) }

// Singular returns the display name of one record, e.g. "invoice"
func (r ResourceType) Singular() string {
	return strings.TrimSuffix(string(r), "s")
}

// ParseResourceType parses a resource name
func ParseResourceType(s string) (ResourceType, error) {
	r := ResourceType(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewDomainError("INVALID_RESOURCE", "Unknown usage resource: "+s)
	}
	return r, nil
}
