package notification

import (
	"strings"
	"time"

	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ToastType is the severity of a toast
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastInfo    ToastType = "info"
	ToastWarning ToastType = "warning"
	ToastError   ToastType = "error"
)

// IsValid checks if the type is a known ToastType
func (t ToastType) IsValid() bool {
	switch t {
	case ToastSuccess, ToastInfo, ToastWarning, ToastError:
		return true
	}
	return false
}

// ParseToastType parses a toast type. Empty input means info.
func ParseToastType(s string) (ToastType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ToastInfo, nil
	}
	t := ToastType(s)
	if !t.IsValid() {
		return "", shared.NewDomainError("INVALID_TOAST_TYPE", "Invalid toast type: "+s)
	}
	return t, nil
}

// DefaultDurations are the auto-dismiss times per type. Errors stay longest.
var DefaultDurations = map[ToastType]time.Duration{
	ToastSuccess: 3 * time.Second,
	ToastInfo:    4 * time.Second,
	ToastWarning: 5 * time.Second,
	ToastError:   8 * time.Second,
}

// ToastStatus is the lifecycle state of a toast: queued -> visible -> dismissed
type ToastStatus string

const (
	ToastQueued    ToastStatus = "queued"
	ToastVisible   ToastStatus = "visible"
	ToastDismissed ToastStatus = "dismissed"
)

// Category groups toasts raised by the system so users can mute them
type Category string

const (
	CategoryLowStock       Category = "low_stock"
	CategoryUsageLimit     Category = "usage_limit"
	CategoryInvoiceOverdue Category = "invoice_overdue"
	CategorySaleRecorded   Category = "sale_recorded"
	CategorySystem         Category = "system"
)

// IsValid checks if the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryLowStock, CategoryUsageLimit, CategoryInvoiceOverdue, CategorySaleRecorded, CategorySystem:
		return true
	}
	return false
}

// Toast is a transient user-facing notification
type Toast struct {
	ID          uuid.UUID     `json:"id"`
	Type        ToastType     `json:"type"`
	Category    Category      `json:"category,omitempty"`
	Title       string        `json:"title,omitempty"`
	Message     string        `json:"message"`
	Status      ToastStatus   `json:"status"`
	Duration    time.Duration `json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
	ShownAt     *time.Time    `json:"shown_at,omitempty"`
	ExpiresAt   *time.Time    `json:"expires_at,omitempty"`
	DismissedAt *time.Time    `json:"dismissed_at,omitempty"`
}

// ToastInput describes a toast to enqueue
type ToastInput struct {
	Type     ToastType
	Category Category
	Title    string
	Message  string
	// Duration overrides the per-type default when positive
	Duration time.Duration
}

func (t *Toast) show(at time.Time) {
	t.Status = ToastVisible
	shown := at
	expires := at.Add(t.Duration)
	t.ShownAt = &shown
	t.ExpiresAt = &expires
}

func (t *Toast) dismiss(at time.Time) {
	t.Status = ToastDismissed
	d := at
	t.DismissedAt = &d
}

func (t *Toast) dedupKey() string {
	return string(t.Type) + "\x00" + t.Message
}
