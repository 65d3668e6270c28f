package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/storefront"
	"github.com/taxpilot/backend/internal/infrastructure/persistence/models"
)

// GormPrintProductRepository implements storefront.PrintProductRepository using GORM
type GormPrintProductRepository struct {
	db *gorm.DB
}

// NewGormPrintProductRepository creates a new GormPrintProductRepository
func NewGormPrintProductRepository(db *gorm.DB) *GormPrintProductRepository {
	return &GormPrintProductRepository{db: db}
}

// Save persists the product and its pricing children in one transaction.
// Children are replaced wholesale; the aggregate is small enough that
// diffing rows is not worth the complexity.
func (r *GormPrintProductRepository) Save(ctx context.Context, product *storefront.PrintProduct) error {
	model := models.PrintProductModelFromDomain(product)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&models.QuantityTierModel{},
			&models.PaperStockModel{},
			&models.TurnaroundOptionModel{},
			&models.AddOnModel{},
		} {
			if err := tx.Where("product_id = ?", model.ID).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Save(model).Error
	})
}

// FindByID loads the full product aggregate by ID
func (r *GormPrintProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*storefront.PrintProduct, error) {
	var model models.PrintProductModel
	if err := r.preloaded(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySlug loads the full product aggregate by slug
func (r *GormPrintProductRepository) FindBySlug(ctx context.Context, slug string) (*storefront.PrintProduct, error) {
	var model models.PrintProductModel
	if err := r.preloaded(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all products matching the filter
func (r *GormPrintProductRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*storefront.PrintProduct], error) {
	return r.findPage(ctx, r.preloaded(ctx).Model(&models.PrintProductModel{}), filter)
}

// FindActive finds products currently on sale
func (r *GormPrintProductRepository) FindActive(ctx context.Context, filter shared.Filter) (*shared.Paginated[*storefront.PrintProduct], error) {
	query := r.preloaded(ctx).Model(&models.PrintProductModel{}).Where("active = ?", true)
	return r.findPage(ctx, query, filter)
}

// Delete deletes a product and its pricing children
func (r *GormPrintProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&models.QuantityTierModel{},
			&models.PaperStockModel{},
			&models.TurnaroundOptionModel{},
			&models.AddOnModel{},
		} {
			if err := tx.Where("product_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&models.PrintProductModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormPrintProductRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Tiers").
		Preload("Papers").
		Preload("Turnarounds").
		Preload("AddOns")
}

func (r *GormPrintProductRepository) findPage(ctx context.Context, query *gorm.DB, filter shared.Filter) (*shared.Paginated[*storefront.PrintProduct], error) {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR slug ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var productModels []models.PrintProductModel
	query = applySort(query, filter, ProductSortFields, "name")
	if err := applyPagination(query, filter).Find(&productModels).Error; err != nil {
		return nil, err
	}

	products := make([]*storefront.PrintProduct, len(productModels))
	for i := range productModels {
		products[i] = productModels[i].ToDomain()
	}

	page, pageSize := normalizedPage(filter)
	result := shared.NewPaginated(products, total, page, pageSize)
	return &result, nil
}
