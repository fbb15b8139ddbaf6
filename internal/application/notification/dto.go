package notification

import (
	"time"

	"github.com/bizhub/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// PushToastRequest enqueues a client-raised toast
type PushToastRequest struct {
	Type       string `json:"type" binding:"omitempty,oneof=success info warning error"`
	Title      string `json:"title" binding:"max=120"`
	Message    string `json:"message" binding:"required,max=500"`
	DurationMS int64  `json:"duration_ms" binding:"min=0,max=60000"`
}

// Input converts the request to a queue input
func (r PushToastRequest) Input() notification.ToastInput {
	return notification.ToastInput{
		Type:     notification.ToastType(r.Type),
		Title:    r.Title,
		Message:  r.Message,
		Duration: time.Duration(r.DurationMS) * time.Millisecond,
	}
}

// ToastResponse represents a toast in API responses
type ToastResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Category    string     `json:"category,omitempty"`
	Title       string     `json:"title,omitempty"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	DurationMS  int64      `json:"duration_ms"`
	CreatedAt   time.Time  `json:"created_at"`
	ShownAt     *time.Time `json:"shown_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	DismissedAt *time.Time `json:"dismissed_at,omitempty"`
}

// ToastsResponse is the state of a user's queue
type ToastsResponse struct {
	MaxVisible int             `json:"max_visible"`
	MaxQueued  int             `json:"max_queued"`
	Visible    []ToastResponse `json:"visible"`
	Queued     []ToastResponse `json:"queued"`
}

func toToastResponse(t *notification.Toast) ToastResponse {
	return ToastResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Category:    string(t.Category),
		Title:       t.Title,
		Message:     t.Message,
		Status:      string(t.Status),
		DurationMS:  t.Duration.Milliseconds(),
		CreatedAt:   t.CreatedAt,
		ShownAt:     t.ShownAt,
		ExpiresAt:   t.ExpiresAt,
		DismissedAt: t.DismissedAt,
	}
}

func toToastsResponse(q *notification.Queue) *ToastsResponse {
	out := &ToastsResponse{
		MaxVisible: q.MaxVisible(),
		MaxQueued:  q.MaxQueued(),
		Visible:    []ToastResponse{},
		Queued:     []ToastResponse{},
	}
	for _, t := range q.Visible() {
		out.Visible = append(out.Visible, toToastResponse(t))
	}
	for _, t := range q.Queued() {
		out.Queued = append(out.Queued, toToastResponse(t))
	}
	return out
}

// UpdatePreferenceRequest changes notification settings. Nil fields are left as is.
type UpdatePreferenceRequest struct {
	LowStock        *bool   `json:"low_stock"`
	UsageLimit      *bool   `json:"usage_limit"`
	InvoiceOverdue  *bool   `json:"invoice_overdue"`
	SaleRecorded    *bool   `json:"sale_recorded"`
	System          *bool   `json:"system"`
	QuietHoursStart *string `json:"quiet_hours_start"`
	QuietHoursEnd   *string `json:"quiet_hours_end"`
}

func (r UpdatePreferenceRequest) apply(p *notification.Preference) {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.LowStock, r.LowStock)
	set(&p.UsageLimit, r.UsageLimit)
	set(&p.InvoiceOverdue, r.InvoiceOverdue)
	set(&p.SaleRecorded, r.SaleRecorded)
	set(&p.System, r.System)
}

// PreferenceResponse represents notification settings in API responses
type PreferenceResponse struct {
	LowStock        bool      `json:"low_stock"`
	UsageLimit      bool      `json:"usage_limit"`
	InvoiceOverdue  bool      `json:"invoice_overdue"`
	SaleRecorded    bool      `json:"sale_recorded"`
	System          bool      `json:"system"`
	QuietHoursStart string    `json:"quiet_hours_start"`
	QuietHoursEnd   string    `json:"quiet_hours_end"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toPreferenceResponse(p *notification.Preference) PreferenceResponse {
	return PreferenceResponse{
		LowStock:        p.LowStock,
		UsageLimit:      p.UsageLimit,
		InvoiceOverdue:  p.InvoiceOverdue,
		SaleRecorded:    p.SaleRecorded,
		System:          p.System,
		QuietHoursStart: p.QuietHoursStart,
		QuietHoursEnd:   p.QuietHoursEnd,
		UpdatedAt:       p.UpdatedAt,
	}
}
