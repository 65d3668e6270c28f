package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/tax"
	"github.com/taxpilot/backend/internal/infrastructure/persistence/models"
)

// GormTaxReturnRepository implements tax.TaxReturnRepository using GORM
type GormTaxReturnRepository struct {
	db *gorm.DB
}

// NewGormTaxReturnRepository creates a new GormTaxReturnRepository
func NewGormTaxReturnRepository(db *gorm.DB) *GormTaxReturnRepository {
	return &GormTaxReturnRepository{db: db}
}

// Save creates or updates a tax return
func (r *GormTaxReturnRepository) Save(ctx context.Context, tr *tax.TaxReturn) error {
	model := models.TaxReturnModelFromDomain(tr)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a tax return by its ID
func (r *GormTaxReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*tax.TaxReturn, error) {
	var model models.TaxReturnModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClientAndYear finds a client's return for a tax year
func (r *GormTaxReturnRepository) FindByClientAndYear(ctx context.Context, clientID uuid.UUID, taxYear int) (*tax.TaxReturn, error) {
	var model models.TaxReturnModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND tax_year = ?", clientID, taxYear).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClient finds all of a client's returns
func (r *GormTaxReturnRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (*shared.Paginated[*tax.TaxReturn], error) {
	query := r.db.WithContext(ctx).Model(&models.TaxReturnModel{}).Where("client_id = ?", clientID)
	return r.findPage(ctx, query, filter)
}

// FindByPreparer finds returns assigned to a preparer
func (r *GormTaxReturnRepository) FindByPreparer(ctx context.Context, preparerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*tax.TaxReturn], error) {
	query := r.db.WithContext(ctx).Model(&models.TaxReturnModel{}).Where("preparer_id = ?", preparerID)
	return r.findPage(ctx, query, filter)
}

// FindByStatus finds returns in the given state
func (r *GormTaxReturnRepository) FindByStatus(ctx context.Context, status tax.ReturnStatus, filter shared.Filter) (*shared.Paginated[*tax.TaxReturn], error) {
	query := r.db.WithContext(ctx).Model(&models.TaxReturnModel{}).Where("status = ?", status)
	return r.findPage(ctx, query, filter)
}

// CountByStatus counts returns in the given state
func (r *GormTaxReturnRepository) CountByStatus(ctx context.Context, status tax.ReturnStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TaxReturnModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormTaxReturnRepository) findPage(ctx context.Context, query *gorm.DB, filter shared.Filter) (*shared.Paginated[*tax.TaxReturn], error) {
	if taxYear, ok := filter.Filters["tax_year"]; ok {
		query = query.Where("tax_year = ?", taxYear)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var returnModels []models.TaxReturnModel
	query = applySort(query, filter, TaxReturnSortFields, "created_at")
	if err := applyPagination(query, filter).Find(&returnModels).Error; err != nil {
		return nil, err
	}

	returns := make([]*tax.TaxReturn, len(returnModels))
	for i := range returnModels {
		returns[i] = returnModels[i].ToDomain()
	}

	page, pageSize := normalizedPage(filter)
	result := shared.NewPaginated(returns, total, page, pageSize)
	return &result, nil
}
