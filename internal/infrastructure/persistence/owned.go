package persistence

import (
	"context"
	"strings"

	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// domainModel is a pointer to a GORM model that converts to a domain aggregate
type domainModel[T, M any] interface {
	*M
	ToDomain() *T
}

// ownedQueries implements the owner-scoped half of shared.OwnedRepository
// for one model. Repositories embed it and add Save and their own finders.
type ownedQueries[T, M any, PM domainModel[T, M]] struct {
	db           *gorm.DB
	sortFields   map[string]bool
	defaultSort  string
	searchFields []string
	// filters maps a Filters key onto a WHERE clause with one placeholder
	filters map[string]string
	// preload attaches associations to single and list reads
	preload func(*gorm.DB) *gorm.DB
}

func (q ownedQueries[T, M, PM]) withPreload(query *gorm.DB) *gorm.DB {
	if q.preload == nil {
		return query
	}
	return q.preload(query)
}

func (q ownedQueries[T, M, PM]) scoped(ctx context.Context, ownerID uuid.UUID) *gorm.DB {
	return q.db.WithContext(ctx).Model(new(M)).Where("user_id = ?", ownerID)
}

// FindByID returns shared.ErrNotFound for rows of another owner
func (q ownedQueries[T, M, PM]) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*T, error) {
	var m M
	if err := q.withPreload(q.scoped(ctx, ownerID)).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return PM(&m).ToDomain(), nil
}

// FindAll returns one page of the owner's rows and the total match count
func (q ownedQueries[T, M, PM]) FindAll(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]*T, int64, error) {
	filter = filter.Normalize()

	var total int64
	if err := q.applyFilter(q.scoped(ctx, ownerID), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []M
	query := q.withPreload(q.applyFilter(q.scoped(ctx, ownerID), filter))
	query = q.applyOrder(query, filter).Offset(filter.Offset()).Limit(filter.PageSize)
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = PM(&rows[i]).ToDomain()
	}
	return out, total, nil
}

// Delete removes the owner's row, or returns shared.ErrNotFound
func (q ownedQueries[T, M, PM]) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := q.db.WithContext(ctx).Where("user_id = ? AND id = ?", ownerID, id).Delete(new(M))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts every row the owner has
func (q ownedQueries[T, M, PM]) Count(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var n int64
	err := q.scoped(ctx, ownerID).Count(&n).Error
	return n, err
}

func (q ownedQueries[T, M, PM]) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if s := strings.TrimSpace(filter.Search); s != "" && len(q.searchFields) > 0 {
		pattern := "%" + strings.ToLower(s) + "%"
		clauses := make([]string, len(q.searchFields))
		args := make([]any, len(q.searchFields))
		for i, f := range q.searchFields {
			clauses[i] = "LOWER(" + f + ") LIKE ?"
			args[i] = pattern
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	for key, clause := range q.filters {
		if v, ok := filter.Filters[key]; ok && v != nil && v != "" {
			query = query.Where(clause, v)
		}
	}
	return query
}

func (q ownedQueries[T, M, PM]) applyOrder(query *gorm.DB, filter shared.Filter) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, q.sortFields, q.defaultSort)
	return query.Order(field + " " + ValidateSortOrder(filter.OrderDir)).Order("id ASC")
}
