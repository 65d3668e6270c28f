package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taxpilot/backend/internal/domain/crm"
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/infrastructure/persistence/models"
)

// GormContactRepository implements crm.ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// Save creates or updates a contact
func (r *GormContactRepository) Save(ctx context.Context, contact *crm.Contact) error {
	model := models.ContactModelFromDomain(contact)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a contact by its ID
func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Contact, error) {
	var model models.ContactModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a contact by email
func (r *GormContactRepository) FindByEmail(ctx context.Context, email string) (*crm.Contact, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	var model models.ContactModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all contacts matching the filter
func (r *GormContactRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*crm.Contact], error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Model(&models.ContactModel{}), filter)
}

// FindByOwner finds contacts created by a user
func (r *GormContactRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*crm.Contact], error) {
	query := r.db.WithContext(ctx).Model(&models.ContactModel{}).Where("created_by = ?", ownerID)
	return r.findPage(ctx, query, filter)
}

// Delete deletes a contact
func (r *GormContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ContactModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormContactRepository) findPage(ctx context.Context, query *gorm.DB, filter shared.Filter) (*shared.Paginated[*crm.Contact], error) {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR company ILIKE ?",
			pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var contactModels []models.ContactModel
	query = applySort(query, filter, ContactSortFields, "created_at")
	if err := applyPagination(query, filter).Find(&contactModels).Error; err != nil {
		return nil, err
	}

	contacts := make([]*crm.Contact, len(contactModels))
	for i := range contactModels {
		contacts[i] = contactModels[i].ToDomain()
	}

	page, pageSize := normalizedPage(filter)
	result := shared.NewPaginated(contacts, total, page, pageSize)
	return &result, nil
}

// GormInteractionRepository implements crm.InteractionRepository using GORM
type GormInteractionRepository struct {
	db *gorm.DB
}

// NewGormInteractionRepository creates a new GormInteractionRepository
func NewGormInteractionRepository(db *gorm.DB) *GormInteractionRepository {
	return &GormInteractionRepository{db: db}
}

// Save creates an interaction log entry
func (r *GormInteractionRepository) Save(ctx context.Context, interaction *crm.Interaction) error {
	model := models.InteractionModelFromDomain(interaction)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByContact finds interactions logged against a contact
func (r *GormInteractionRepository) FindByContact(ctx context.Context, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*crm.Interaction], error) {
	query := r.db.WithContext(ctx).
		Model(&models.InteractionModel{}).
		Where("contact_id = ?", contactID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var interactionModels []models.InteractionModel
	query = query.Order("occurred_at DESC")
	if err := applyPagination(query, filter).Find(&interactionModels).Error; err != nil {
		return nil, err
	}

	interactions := make([]*crm.Interaction, len(interactionModels))
	for i := range interactionModels {
		interactions[i] = interactionModels[i].ToDomain()
	}

	page, pageSize := normalizedPage(filter)
	result := shared.NewPaginated(interactions, total, page, pageSize)
	return &result, nil
}
