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

// GormDocumentRepository implements tax.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Save creates or updates a document
func (r *GormDocumentRepository) Save(ctx context.Context, doc *tax.Document) error {
	model := models.DocumentModelFromDomain(doc)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a document by its ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*tax.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClient finds a client's documents
func (r *GormDocumentRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (*shared.Paginated[*tax.Document], error) {
	query := r.db.WithContext(ctx).Model(&models.DocumentModel{}).Where("client_id = ?", clientID)
	return r.findPage(ctx, query, filter)
}

// FindByTaxReturn finds documents attached to a return
func (r *GormDocumentRepository) FindByTaxReturn(ctx context.Context, taxReturnID uuid.UUID, filter shared.Filter) (*shared.Paginated[*tax.Document], error) {
	query := r.db.WithContext(ctx).Model(&models.DocumentModel{}).Where("tax_return_id = ?", taxReturnID)
	return r.findPage(ctx, query, filter)
}

// Delete deletes a document record
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DocumentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormDocumentRepository) findPage(ctx context.Context, query *gorm.DB, filter shared.Filter) (*shared.Paginated[*tax.Document], error) {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if kind, ok := filter.Filters["kind"]; ok {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var documentModels []models.DocumentModel
	query = applySort(query, filter, DocumentSortFields, "created_at")
	if err := applyPagination(query, filter).Find(&documentModels).Error; err != nil {
		return nil, err
	}

	documents := make([]*tax.Document, len(documentModels))
	for i := range documentModels {
		documents[i] = documentModels[i].ToDomain()
	}

	page, pageSize := normalizedPage(filter)
	result := shared.NewPaginated(documents, total, page, pageSize)
	return &result, nil
}
