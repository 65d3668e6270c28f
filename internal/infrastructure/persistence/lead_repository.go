package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taxpilot/backend/internal/domain/lead"
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/infrastructure/persistence/models"
)

// GormLeadRepository implements lead.LeadRepository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// Save creates or updates a lead
func (r *GormLeadRepository) Save(ctx context.Context, l *lead.Lead) error {
	model := models.LeadModelFromDomain(l)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a lead by its ID
func (r *GormLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*lead.Lead, error) {
	var model models.LeadModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByEmail finds the open lead for an email, if one exists.
// Converted and lost leads are skipped so a returning prospect opens a
// fresh lead instead of resurrecting a closed one.
func (r *GormLeadRepository) FindOpenByEmail(ctx context.Context, email string) (*lead.Lead, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	var model models.LeadModel
	if err := r.db.WithContext(ctx).
		Where("email = ? AND status NOT IN ?", strings.ToLower(email),
			[]lead.LeadStatus{lead.LeadStatusConverted, lead.LeadStatusLost}).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all leads matching the filter
func (r *GormLeadRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*lead.Lead], error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Model(&models.LeadModel{}), filter)
}

// FindByStatus finds leads in the given state
func (r *GormLeadRepository) FindByStatus(ctx context.Context, status lead.LeadStatus, filter shared.Filter) (*shared.Paginated[*lead.Lead], error) {
	query := r.db.WithContext(ctx).Model(&models.LeadModel{}).Where("status = ?", status)
	return r.findPage(ctx, query, filter)
}

// FindByAssignee finds leads assigned to a preparer
func (r *GormLeadRepository) FindByAssignee(ctx context.Context, preparerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*lead.Lead], error) {
	query := r.db.WithContext(ctx).Model(&models.LeadModel{}).Where("assigned_to = ?", preparerID)
	return r.findPage(ctx, query, filter)
}

// Delete deletes a lead
func (r *GormLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LeadModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByStatus counts leads in the given state
func (r *GormLeadRepository) CountByStatus(ctx context.Context, status lead.LeadStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormLeadRepository) findPage(ctx context.Context, query *gorm.DB, filter shared.Filter) (*shared.Paginated[*lead.Lead], error) {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR phone ILIKE ?",
			pattern, pattern, pattern, pattern)
	}
	if source, ok := filter.Filters["source"]; ok {
		query = query.Where("source = ?", source)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var leadModels []models.LeadModel
	query = applySort(query, filter, LeadSortFields, "created_at")
	if err := applyPagination(query, filter).Find(&leadModels).Error; err != nil {
		return nil, err
	}

	leads := make([]*lead.Lead, len(leadModels))
	for i := range leadModels {
		leads[i] = leadModels[i].ToDomain()
	}

	page, pageSize := normalizedPage(filter)
	result := shared.NewPaginated(leads, total, page, pageSize)
	return &result, nil
}
