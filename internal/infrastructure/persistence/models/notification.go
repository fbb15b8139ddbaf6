package models

import (
	"time"

	"github.com/bizhub/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationPreferenceModel stores one row of toast settings per user
type NotificationPreferenceModel struct {
	UserID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	LowStock        bool      `gorm:"not null"`
	UsageLimit      bool      `gorm:"not null"`
	InvoiceOverdue  bool      `gorm:"not null"`
	SaleRecorded    bool      `gorm:"not null"`
	System          bool      `gorm:"not null"`
	QuietHoursStart string    `gorm:"type:varchar(5)"`
	QuietHoursEnd   string    `gorm:"type:varchar(5)"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (NotificationPreferenceModel) TableName() string {
	return "notification_preferences"
}

func (m *NotificationPreferenceModel) ToDomain() *notification.Preference {
	return &notification.Preference{
		UserID:          m.UserID,
		LowStock:        m.LowStock,
		UsageLimit:      m.UsageLimit,
		InvoiceOverdue:  m.InvoiceOverdue,
		SaleRecorded:    m.SaleRecorded,
		System:          m.System,
		QuietHoursStart: m.QuietHoursStart,
		QuietHoursEnd:   m.QuietHoursEnd,
		UpdatedAt:       m.UpdatedAt,
	}
}

func NotificationPreferenceModelFromDomain(p *notification.Preference) *NotificationPreferenceModel {
	return &NotificationPreferenceModel{
		UserID:          p.UserID,
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
