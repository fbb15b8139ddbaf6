package notification

import (
	"context"
	"time"

	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Preference holds a user's notification settings. Quiet hours are local
// "HH:MM" times and may wrap past midnight. During quiet hours only error
// toasts are delivered.
type Preference struct {
	UserID          uuid.UUID
	LowStock        bool
	UsageLimit      bool
	InvoiceOverdue  bool
	SaleRecorded    bool
	System          bool
	QuietHoursStart string
	QuietHoursEnd   string
	UpdatedAt       time.Time
}

// DefaultPreference enables every category with no quiet hours
func DefaultPreference(userID uuid.UUID) *Preference {
	return &Preference{
		UserID:         userID,
		LowStock:       true,
		UsageLimit:     true,
		InvoiceOverdue: true,
		SaleRecorded:   true,
		System:         true,
		UpdatedAt:      time.Now(),
	}
}

// Enabled reports whether toasts of the category should be delivered.
// Toasts with no category are always enabled.
func (p *Preference) Enabled(c Category) bool {
	switch c {
	case CategoryLowStock:
		return p.LowStock
	case CategoryUsageLimit:
		return p.UsageLimit
	case CategoryInvoiceOverdue:
		return p.InvoiceOverdue
	case CategorySaleRecorded:
		return p.SaleRecorded
	case CategorySystem:
		return p.System
	}
	return true
}

// SetQuietHours validates and stores the quiet window. Two empty values
// clear it.
func (p *Preference) SetQuietHours(start, end string) error {
	if start == "" && end == "" {
		p.QuietHoursStart, p.QuietHoursEnd = "", ""
		return nil
	}
	if _, err := parseClock(start); err != nil {
		return err
	}
	if _, err := parseClock(end); err != nil {
		return err
	}
	if start == end {
		return shared.NewDomainError("INVALID_QUIET_HOURS", "Quiet hours start and end must differ")
	}
	p.QuietHoursStart, p.QuietHoursEnd = start, end
	return nil
}

// InQuietHours reports whether t falls inside the quiet window
func (p *Preference) InQuietHours(t time.Time) bool {
	if p.QuietHoursStart == "" || p.QuietHoursEnd == "" {
		return false
	}
	start, err1 := parseClock(p.QuietHoursStart)
	end, err2 := parseClock(p.QuietHoursEnd)
	if err1 != nil || err2 != nil {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	if start < end {
		return m >= start && m < end
	}
	return m >= start || m < end
}

// Allows reports whether a toast of the given type and category should be
// shown at t
func (p *Preference) Allows(typ ToastType, c Category, t time.Time) bool {
	if !p.Enabled(c) {
		return false
	}
	if typ != ToastError && p.InQuietHours(t) {
		return false
	}
	return true
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, shared.NewDomainError("INVALID_QUIET_HOURS", "Quiet hours must be HH:MM")
	}
	return t.Hour()*60 + t.Minute(), nil
}

// PreferenceRepository persists preferences
type PreferenceRepository interface {
	// FindByUser returns shared.ErrNotFound when the user never saved any
	FindByUser(ctx context.Context, userID uuid.UUID) (*Preference, error)
	Save(ctx context.Context, p *Preference) error
}
