package persistence

import (
	"context"

	"github.com/bizhub/backend/internal/domain/notification"
	"github.com/bizhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPreferenceRepository implements notification.PreferenceRepository
type GormPreferenceRepository struct {
	db *gorm.DB
}

// NewGormPreferenceRepository creates a new GormPreferenceRepository
func NewGormPreferenceRepository(db *gorm.DB) *GormPreferenceRepository {
	return &GormPreferenceRepository{db: db}
}

// FindByUser returns shared.ErrNotFound when the user never saved preferences
func (r *GormPreferenceRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*notification.Preference, error) {
	var m models.NotificationPreferenceModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// Save upserts the user's preferences
func (r *GormPreferenceRepository) Save(ctx context.Context, p *notification.Preference) error {
	return translateError(r.db.WithContext(ctx).Save(models.NotificationPreferenceModelFromDomain(p)).Error)
}

var _ notification.PreferenceRepository = (*GormPreferenceRepository)(nil)
