package persistence

import (
	"context"
	"time"

	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVerificationTokenRepository implements identity.VerificationTokenRepository
type GormVerificationTokenRepository struct {
	db *gorm.DB
}

// NewGormVerificationTokenRepository creates a new GormVerificationTokenRepository
func NewGormVerificationTokenRepository(db *gorm.DB) *GormVerificationTokenRepository {
	return &GormVerificationTokenRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *GormVerificationTokenRepository) WithTx(tx *gorm.DB) *GormVerificationTokenRepository {
	return &GormVerificationTokenRepository{db: tx}
}

// FindByToken finds a token by its value
func (r *GormVerificationTokenRepository) FindByToken(ctx context.Context, token string) (*identity.EmailVerificationToken, error) {
	var m models.VerificationTokenModel
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByUser returns every token of a user, oldest first
func (r *GormVerificationTokenRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*identity.EmailVerificationToken, error) {
	var rows []models.VerificationTokenModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*identity.EmailVerificationToken, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts a new token
func (r *GormVerificationTokenRepository) Create(ctx context.Context, t *identity.EmailVerificationToken) error {
	return translateError(r.db.WithContext(ctx).Omit("User").Create(models.VerificationTokenModelFromDomain(t)).Error)
}

// InvalidateForUser marks every unused token of the user used
func (r *GormVerificationTokenRepository) InvalidateForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.VerificationTokenModel{}).
		Where("user_id = ? AND used = ?", userID, false).
		Updates(map[string]any{"used": true, "used_at": now, "updated_at": now})
	return result.RowsAffected, result.Error
}

// DeleteStale removes tokens that were used, or expired, before cutoff
func (r *GormVerificationTokenRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("(used = ? AND used_at < ?) OR expires_at < ?", true, cutoff, cutoff).
		Delete(&models.VerificationTokenModel{})
	return result.RowsAffected, result.Error
}

var _ identity.VerificationTokenRepository = (*GormVerificationTokenRepository)(nil)
