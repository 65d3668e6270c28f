package crm

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/crm"
	"github.com/taxpilot/backend/internal/domain/shared"
)

// ContactService manages contacts and their interaction timeline
type ContactService struct {
	contactRepo     crm.ContactRepository
	interactionRepo crm.InteractionRepository
	logger          *zap.Logger
}

// NewContactService creates a new contact service
func NewContactService(
	contactRepo crm.ContactRepository,
	interactionRepo crm.InteractionRepository,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		contactRepo:     contactRepo,
		interactionRepo: interactionRepo,
		logger:          logger,
	}
}

// CreateContact creates a new contact
func (s *ContactService) CreateContact(ctx context.Context, input CreateContactInput) (*ContactInfo, error) {
	contact, err := crm.NewContact(input.FirstName, input.LastName, input.Email, input.Phone)
	if err != nil {
		return nil, err
	}
	contact.Company = input.Company
	contact.Notes = input.Notes
	contact.Tags = input.Tags
	if input.OwnerID != nil {
		contact.SetCreatedBy(*input.OwnerID)
	}

	if err := s.contactRepo.Save(ctx, contact); err != nil {
		s.logger.Error("Failed to save contact", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create contact")
	}

	s.logger.Info("Contact created", zap.String("contact_id", contact.ID.String()))
	return newContactInfo(contact), nil
}

// GetContact retrieves a contact by ID
func (s *ContactService) GetContact(ctx context.Context, id uuid.UUID) (*ContactInfo, error) {
	contact, err := s.findContact(ctx, id)
	if err != nil {
		return nil, err
	}
	return newContactInfo(contact), nil
}

// UpdateContact updates a contact's fields
func (s *ContactService) UpdateContact(ctx context.Context, input UpdateContactInput) (*ContactInfo, error) {
	contact, err := s.findContact(ctx, input.ContactID)
	if err != nil {
		return nil, err
	}

	if err := contact.Update(input.FirstName, input.LastName, input.Email, input.Phone, input.Company, input.Notes); err != nil {
		return nil, err
	}
	if err := s.contactRepo.Save(ctx, contact); err != nil {
		s.logger.Error("Failed to update contact", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update contact")
	}
	return newContactInfo(contact), nil
}

// LinkUser ties a contact to a platform account
func (s *ContactService) LinkUser(ctx context.Context, contactID, userID uuid.UUID) (*ContactInfo, error) {
	contact, err := s.findContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if err := contact.LinkUser(userID); err != nil {
		return nil, err
	}
	if err := s.contactRepo.Save(ctx, contact); err != nil {
		s.logger.Error("Failed to link contact to user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to link contact")
	}
	return newContactInfo(contact), nil
}

// ListContacts returns a filtered page of contacts
func (s *ContactService) ListContacts(ctx context.Context, input ListContactsInput) (*shared.Paginated[ContactInfo], error) {
	filter := shared.DefaultFilter()
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	filter.Search = input.Search

	var (
		page *shared.Paginated[*crm.Contact]
		err  error
	)
	if input.OwnerID != nil {
		page, err = s.contactRepo.FindByOwner(ctx, *input.OwnerID, filter)
	} else {
		page, err = s.contactRepo.FindAll(ctx, filter)
	}
	if err != nil {
		s.logger.Error("Failed to list contacts", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list contacts")
	}

	items := make([]ContactInfo, 0, len(page.Items))
	for _, c := range page.Items {
		items = append(items, *newContactInfo(c))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// DeleteContact removes a contact
func (s *ContactService) DeleteContact(ctx context.Context, id uuid.UUID) error {
	if err := s.contactRepo.Delete(ctx, id); err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("CONTACT_NOT_FOUND", "Contact not found")
		}
		s.logger.Error("Failed to delete contact", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete contact")
	}
	return nil
}

// LogInteraction appends a touchpoint to a contact's timeline
func (s *ContactService) LogInteraction(ctx context.Context, input LogInteractionInput) (*InteractionInfo, error) {
	if _, err := s.findContact(ctx, input.ContactID); err != nil {
		return nil, err
	}

	interaction, err := crm.NewInteraction(input.ContactID, input.Kind, input.Summary, input.Detail, input.OccurredAt)
	if err != nil {
		return nil, err
	}
	interaction.LoggedBy = input.LoggedBy

	if err := s.interactionRepo.Save(ctx, interaction); err != nil {
		s.logger.Error("Failed to log interaction", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to log interaction")
	}

	info := newInteractionInfo(interaction)
	return &info, nil
}

// GetTimeline returns a contact's interactions newest first
func (s *ContactService) GetTimeline(ctx context.Context, contactID uuid.UUID, page, pageSize int) (*shared.Paginated[InteractionInfo], error) {
	if _, err := s.findContact(ctx, contactID); err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	filter.OrderBy = "occurred_at"

	result, err := s.interactionRepo.FindByContact(ctx, contactID, filter)
	if err != nil {
		s.logger.Error("Failed to load timeline", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load timeline")
	}

	items := make([]InteractionInfo, 0, len(result.Items))
	for _, i := range result.Items {
		items = append(items, newInteractionInfo(i))
	}
	out := shared.NewPaginated(items, result.Total, result.Page, result.PageSize)
	return &out, nil
}

func (s *ContactService) findContact(ctx context.Context, id uuid.UUID) (*crm.Contact, error) {
	contact, err := s.contactRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("CONTACT_NOT_FOUND", "Contact not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load contact")
	}
	return contact, nil
}
