package persistence

import (
	"context"
	"time"

	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: tx}
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, arg any) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail finds a user by normalized email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByPhone finds a user by normalized phone
func (r *GormUserRepository) FindByPhone(ctx context.Context, phone string) (*identity.User, error) {
	return r.findOne(ctx, "phone = ?", phone)
}

// Save inserts or updates a user
func (r *GormUserRepository) Save(ctx context.Context, u *identity.User) error {
	return translateError(r.db.WithContext(ctx).Save(models.UserModelFromDomain(u)).Error)
}

// Create inserts a new user and fails on a duplicate email or phone
func (r *GormUserRepository) Create(ctx context.Context, u *identity.User) error {
	return translateError(r.db.WithContext(ctx).Create(models.UserModelFromDomain(u)).Error)
}

// FindLapsedTrials returns active trial accounts whose trial ended before now
func (r *GormUserRepository) FindLapsedTrials(ctx context.Context, now time.Time) ([]*identity.User, error) {
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).
		Where("subscription_status = ? AND trial_ends_at IS NOT NULL AND trial_ends_at <= ?",
			string(identity.SubscriptionTrial), now).
		Order("trial_ends_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*identity.User, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
