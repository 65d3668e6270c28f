package lead

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appattribution "github.com/taxpilot/backend/internal/application/attribution"
	"github.com/taxpilot/backend/internal/domain/identity"
	"github.com/taxpilot/backend/internal/domain/lead"
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/infrastructure/auth"
	"github.com/taxpilot/backend/internal/infrastructure/email"
	"github.com/taxpilot/backend/internal/infrastructure/telemetry"
)

// AttributionResolver is the slice of the attribution service the lead
// pipeline needs.
type AttributionResolver interface {
	Resolve(ctx context.Context, input appattribution.ResolveInput) (*appattribution.RecordInfo, error)
	CarryForward(ctx context.Context, leadID, userID uuid.UUID) (*appattribution.RecordInfo, error)
}

// LeadService drives the lead pipeline from public capture through
// conversion into a client account.
type LeadService struct {
	leadRepo lead.LeadRepository
	userRepo identity.UserRepository
	resolver AttributionResolver
	hasher   *auth.PasswordHasher
	sender   email.Sender
	metrics  *telemetry.BusinessMetrics
	logger   *zap.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(
	leadRepo lead.LeadRepository,
	userRepo identity.UserRepository,
	resolver AttributionResolver,
	hasher *auth.PasswordHasher,
	sender email.Sender,
	metrics *telemetry.BusinessMetrics,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo: leadRepo,
		userRepo: userRepo,
		resolver: resolver,
		hasher:   hasher,
		sender:   sender,
		metrics:  metrics,
		logger:   logger,
	}
}

// Capture handles a public inquiry. A repeat inquiry from the same
// email merges into the open lead instead of creating a duplicate.
// Attribution resolution and the confirmation email ride along
// best-effort; a failure in either never loses the lead.
func (s *LeadService) Capture(ctx context.Context, input CaptureInput) (*LeadInfo, error) {
	source := input.Source
	if source == "" {
		source = lead.LeadSourceWebForm
	}

	// Probe for an open lead with the same email first
	var existing *lead.Lead
	if e := normalizeEmail(input.Email); e != "" {
		var err error
		existing, err = s.leadRepo.FindOpenByEmail(ctx, e)
		if err != nil && err != shared.ErrNotFound {
			s.logger.Error("Failed to check for existing lead", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to capture lead")
		}
	}

	if existing != nil {
		if err := existing.Touch(input.Phone, input.Message); err != nil {
			return nil, err
		}
		if err := s.leadRepo.Save(ctx, existing); err != nil {
			s.logger.Error("Failed to update existing lead", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to capture lead")
		}
		s.logger.Info("Repeat inquiry merged into open lead",
			zap.String("lead_id", existing.ID.String()))
		return newLeadInfo(existing, true), nil
	}

	newLead, err := lead.NewLead(input.FirstName, input.LastName, input.Email, input.Phone, source, input.Message)
	if err != nil {
		return nil, err
	}
	if err := s.leadRepo.Save(ctx, newLead); err != nil {
		s.logger.Error("Failed to save lead", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to capture lead")
	}

	s.metrics.RecordLeadCaptured(ctx, string(newLead.Source))
	s.logger.Info("Lead captured",
		zap.String("lead_id", newLead.ID.String()),
		zap.String("source", string(newLead.Source)))

	s.resolveAttribution(ctx, newLead, input.TrackingCode)
	s.sendConfirmation(ctx, newLead)

	return newLeadInfo(newLead, false), nil
}

// Get retrieves a lead by ID
func (s *LeadService) Get(ctx context.Context, id uuid.UUID) (*LeadInfo, error) {
	l, err := s.findLead(ctx, id)
	if err != nil {
		return nil, err
	}
	return newLeadInfo(l, false), nil
}

// List returns a filtered page of leads
func (s *LeadService) List(ctx context.Context, input ListInput) (*shared.Paginated[LeadInfo], error) {
	filter := shared.DefaultFilter()
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	filter.Search = input.Search

	var (
		page *shared.Paginated[*lead.Lead]
		err  error
	)
	switch {
	case input.AssignedTo != nil:
		page, err = s.leadRepo.FindByAssignee(ctx, *input.AssignedTo, filter)
	case input.Status != "":
		page, err = s.leadRepo.FindByStatus(ctx, input.Status, filter)
	default:
		page, err = s.leadRepo.FindAll(ctx, filter)
	}
	if err != nil {
		s.logger.Error("Failed to list leads", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list leads")
	}

	items := make([]LeadInfo, 0, len(page.Items))
	for _, l := range page.Items {
		items = append(items, *newLeadInfo(l, false))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Assign hands a lead to a preparer
func (s *LeadService) Assign(ctx context.Context, input AssignInput) (*LeadInfo, error) {
	preparer, err := s.userRepo.FindByID(ctx, input.PreparerID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "Preparer not found")
	}
	if preparer.Role != identity.UserRolePreparer && preparer.Role != identity.UserRoleAdmin {
		return nil, shared.NewDomainError("INVALID_ROLE", "Leads can only be assigned to preparers")
	}

	return s.mutate(ctx, input.LeadID, func(l *lead.Lead) error {
		return l.Assign(input.PreparerID)
	})
}

// MarkContacted transitions a new lead to contacted
func (s *LeadService) MarkContacted(ctx context.Context, id uuid.UUID) (*LeadInfo, error) {
	return s.mutate(ctx, id, func(l *lead.Lead) error { return l.MarkContacted() })
}

// Qualify transitions a contacted lead to qualified
func (s *LeadService) Qualify(ctx context.Context, id uuid.UUID) (*LeadInfo, error) {
	return s.mutate(ctx, id, func(l *lead.Lead) error { return l.Qualify() })
}

// MarkLost closes a lead without conversion
func (s *LeadService) MarkLost(ctx context.Context, input MarkLostInput) (*LeadInfo, error) {
	return s.mutate(ctx, input.LeadID, func(l *lead.Lead) error { return l.MarkLost(input.Reason) })
}

// Convert turns a lead into a client account, reusing an existing
// account with the same email when one exists. The lead's locked
// attribution is carried onto the user. Retrying a finished conversion
// returns the same result without side effects.
func (s *LeadService) Convert(ctx context.Context, input ConvertInput) (*ConvertResult, error) {
	l, err := s.findLead(ctx, input.LeadID)
	if err != nil {
		return nil, err
	}

	if l.Status == lead.LeadStatusConverted && l.ConvertedUserID != nil {
		return &ConvertResult{
			Lead:             *newLeadInfo(l, false),
			UserID:           *l.ConvertedUserID,
			AlreadyConverted: true,
		}, nil
	}
	if !l.IsOpen() {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Cannot convert a lost lead")
	}

	user, err := s.findOrCreateClient(ctx, l, input.Password)
	if err != nil {
		return nil, err
	}

	if err := l.Convert(user.ID); err != nil {
		return nil, err
	}
	if err := s.leadRepo.Save(ctx, l); err != nil {
		s.logger.Error("Failed to save converted lead", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to convert lead")
	}

	if _, err := s.resolver.CarryForward(ctx, l.ID, user.ID); err != nil {
		// The conversion stands; attribution is reconcilable later
		s.logger.Error("Failed to carry attribution onto client",
			zap.String("lead_id", l.ID.String()),
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}

	s.metrics.RecordLeadConverted(ctx)
	s.logger.Info("Lead converted",
		zap.String("lead_id", l.ID.String()),
		zap.String("user_id", user.ID.String()))

	return &ConvertResult{
		Lead:   *newLeadInfo(l, false),
		UserID: user.ID,
	}, nil
}

// FunnelCounts returns the pipeline broken out by status
func (s *LeadService) FunnelCounts(ctx context.Context) (*FunnelCounts, error) {
	counts := &FunnelCounts{}
	for _, pair := range []struct {
		status lead.LeadStatus
		dest   *int64
	}{
		{lead.LeadStatusNew, &counts.New},
		{lead.LeadStatusContacted, &counts.Contacted},
		{lead.LeadStatusQualified, &counts.Qualified},
		{lead.LeadStatusConverted, &counts.Converted},
		{lead.LeadStatusLost, &counts.Lost},
	} {
		n, err := s.leadRepo.CountByStatus(ctx, pair.status)
		if err != nil {
			s.logger.Error("Failed to count leads", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load funnel counts")
		}
		*pair.dest = n
	}
	return counts, nil
}

func (s *LeadService) findLead(ctx context.Context, id uuid.UUID) (*lead.Lead, error) {
	l, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("LEAD_NOT_FOUND", "Lead not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load lead")
	}
	return l, nil
}

func (s *LeadService) mutate(ctx context.Context, id uuid.UUID, fn func(*lead.Lead) error) (*LeadInfo, error) {
	l, err := s.findLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(l); err != nil {
		return nil, err
	}
	if err := s.leadRepo.Save(ctx, l); err != nil {
		s.logger.Error("Failed to save lead", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update lead")
	}
	return newLeadInfo(l, false), nil
}

func (s *LeadService) findOrCreateClient(ctx context.Context, l *lead.Lead, password string) (*identity.User, error) {
	if existing, err := s.userRepo.FindByEmail(ctx, l.Email); err == nil {
		return existing, nil
	}

	if password == "" {
		// One-time credential; the client resets it on first login
		password = uuid.New().String()
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if err == auth.ErrPasswordTooShort || err == auth.ErrPasswordTooLong {
			return nil, shared.NewDomainError("INVALID_PASSWORD", err.Error())
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to process password")
	}

	lastName := l.LastName
	if lastName == "" {
		lastName = l.FirstName
	}
	user, err := identity.NewUser(l.Email, hash, l.FirstName, lastName, identity.UserRoleClient)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to create client account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create client account")
	}
	return user, nil
}

// resolveAttribution locks first-touch attribution for a fresh lead.
// Failures are logged and swallowed.
func (s *LeadService) resolveAttribution(ctx context.Context, l *lead.Lead, trackingCode string) {
	if s.resolver == nil {
		return
	}
	_, err := s.resolver.Resolve(ctx, appattribution.ResolveInput{
		SubjectID:    l.ID,
		TrackingCode: trackingCode,
		Email:        l.Email,
		Phone:        l.Phone,
	})
	if err != nil {
		s.logger.Error("Attribution resolution failed",
			zap.String("lead_id", l.ID.String()),
			zap.Error(err))
	}
}

// sendConfirmation emails the lead an acknowledgement. Best effort.
func (s *LeadService) sendConfirmation(ctx context.Context, l *lead.Lead) {
	if s.sender == nil {
		return
	}
	if err := s.sender.Send(ctx, email.LeadConfirmation(l.Email, l.FirstName)); err != nil {
		s.logger.Warn("Lead confirmation email failed",
			zap.String("lead_id", l.ID.String()),
			zap.Error(err))
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
