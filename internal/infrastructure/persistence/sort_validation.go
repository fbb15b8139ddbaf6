package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Anything other than asc falls back to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

func sortFields(extra ...string) map[string]bool {
	m := map[string]bool{"id": true, "created_at": true, "updated_at": true}
	for _, f := range extra {
		m[f] = true
	}
	return m
}

var (
	CustomerSortFields = sortFields("name", "email")
	ProductSortFields  = sortFields("name", "sku", "category", "price", "quantity")
	SaleSortFields     = sortFields("sold_at", "total", "quantity")
	InvoiceSortFields  = sortFields("invoice_number", "issue_date", "due_date", "status", "total")
	ExpenseSortFields  = sortFields("expense_date", "amount", "category")
)
