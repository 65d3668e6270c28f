package tax

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/identity"
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/tax"
	"github.com/taxpilot/backend/internal/infrastructure/email"
)

// ReturnService manages the tax return lifecycle from intake to
// acceptance. Status changes notify the client by email on a
// best-effort basis.
type ReturnService struct {
	returnRepo tax.TaxReturnRepository
	userRepo   identity.UserRepository
	sender     email.Sender
	logger     *zap.Logger
}

// NewReturnService creates a new return service
func NewReturnService(
	returnRepo tax.TaxReturnRepository,
	userRepo identity.UserRepository,
	sender email.Sender,
	logger *zap.Logger,
) *ReturnService {
	return &ReturnService{
		returnRepo: returnRepo,
		userRepo:   userRepo,
		sender:     sender,
		logger:     logger,
	}
}

// OpenReturn opens a return for a client and tax year. A client can
// hold at most one return per year.
func (s *ReturnService) OpenReturn(ctx context.Context, input OpenReturnInput) (*ReturnInfo, error) {
	client, err := s.userRepo.FindByID(ctx, input.ClientID)
	if err != nil {
		return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
	}

	existing, err := s.returnRepo.FindByClientAndYear(ctx, input.ClientID, input.TaxYear)
	if err != nil && err != shared.ErrNotFound {
		s.logger.Error("Failed to check existing return", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to open return")
	}
	if existing != nil {
		return nil, shared.NewDomainError("RETURN_EXISTS", "A return for this client and year already exists")
	}

	tr, err := tax.NewTaxReturn(client.ID, input.TaxYear, tax.FilingStatus(input.FilingStatus))
	if err != nil {
		return nil, err
	}
	tr.Notes = input.Notes

	if err := s.returnRepo.Save(ctx, tr); err != nil {
		s.logger.Error("Failed to save return", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to open return")
	}

	s.logger.Info("Tax return opened",
		zap.String("return_id", tr.ID.String()),
		zap.String("client_id", tr.ClientID.String()),
		zap.Int("tax_year", tr.TaxYear))

	return newReturnInfo(tr), nil
}

// GetReturn fetches a single return
func (s *ReturnService) GetReturn(ctx context.Context, id uuid.UUID) (*ReturnInfo, error) {
	tr, err := s.findReturn(ctx, id)
	if err != nil {
		return nil, err
	}
	return newReturnInfo(tr), nil
}

// ListReturns lists returns filtered by client, preparer or status
func (s *ReturnService) ListReturns(ctx context.Context, input ListReturnsInput) (*shared.Paginated[ReturnInfo], error) {
	filter := shared.DefaultFilter()
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}

	var (
		page *shared.Paginated[*tax.TaxReturn]
		err  error
	)
	switch {
	case input.ClientID != uuid.Nil:
		page, err = s.returnRepo.FindByClient(ctx, input.ClientID, filter)
	case input.PreparerID != uuid.Nil:
		page, err = s.returnRepo.FindByPreparer(ctx, input.PreparerID, filter)
	case input.Status != "":
		page, err = s.returnRepo.FindByStatus(ctx, tax.ReturnStatus(input.Status), filter)
	default:
		page, err = s.returnRepo.FindByStatus(ctx, tax.ReturnStatusIntake, filter)
	}
	if err != nil {
		s.logger.Error("Failed to list returns", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list returns")
	}

	items := make([]ReturnInfo, 0, len(page.Items))
	for _, tr := range page.Items {
		items = append(items, *newReturnInfo(tr))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// AssignPreparer assigns the responsible preparer
func (s *ReturnService) AssignPreparer(ctx context.Context, input AssignPreparerInput) (*ReturnInfo, error) {
	preparer, err := s.userRepo.FindByID(ctx, input.PreparerID)
	if err != nil {
		return nil, shared.NewDomainError("PREPARER_NOT_FOUND", "Preparer not found")
	}
	if preparer.Role != identity.UserRolePreparer && preparer.Role != identity.UserRoleAdmin {
		return nil, shared.NewDomainError("INVALID_ROLE", "Returns can only be assigned to preparers")
	}

	return s.mutate(ctx, input.ReturnID, func(tr *tax.TaxReturn) error {
		return tr.AssignPreparer(preparer.ID)
	}, false)
}

// StartReview moves the return into review
func (s *ReturnService) StartReview(ctx context.Context, id uuid.UUID) (*ReturnInfo, error) {
	return s.mutate(ctx, id, (*tax.TaxReturn).StartReview, true)
}

// MarkReady marks the return ready to file
func (s *ReturnService) MarkReady(ctx context.Context, id uuid.UUID) (*ReturnInfo, error) {
	return s.mutate(ctx, id, (*tax.TaxReturn).MarkReady, true)
}

// FileReturn submits a ready return
func (s *ReturnService) FileReturn(ctx context.Context, id uuid.UUID) (*ReturnInfo, error) {
	return s.mutate(ctx, id, (*tax.TaxReturn).File, true)
}

// AcceptReturn records IRS acceptance
func (s *ReturnService) AcceptReturn(ctx context.Context, id uuid.UUID) (*ReturnInfo, error) {
	return s.mutate(ctx, id, (*tax.TaxReturn).Accept, true)
}

// RejectReturn records IRS rejection with a reason
func (s *ReturnService) RejectReturn(ctx context.Context, input RejectReturnInput) (*ReturnInfo, error) {
	return s.mutate(ctx, input.ReturnID, func(tr *tax.TaxReturn) error {
		return tr.Reject(input.Reason)
	}, true)
}

// ReopenReview sends a rejected return back to review
func (s *ReturnService) ReopenReview(ctx context.Context, id uuid.UUID) (*ReturnInfo, error) {
	return s.mutate(ctx, id, (*tax.TaxReturn).ReopenReview, true)
}

func (s *ReturnService) findReturn(ctx context.Context, id uuid.UUID) (*tax.TaxReturn, error) {
	tr, err := s.returnRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("RETURN_NOT_FOUND", "Tax return not found")
		}
		s.logger.Error("Failed to load return", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load return")
	}
	return tr, nil
}

func (s *ReturnService) mutate(ctx context.Context, id uuid.UUID, fn func(*tax.TaxReturn) error, notify bool) (*ReturnInfo, error) {
	tr, err := s.findReturn(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(tr); err != nil {
		return nil, err
	}
	if err := s.returnRepo.Save(ctx, tr); err != nil {
		s.logger.Error("Failed to save return", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update return")
	}
	if notify {
		s.notifyStatusChange(ctx, tr)
	}
	return newReturnInfo(tr), nil
}

// notifyStatusChange emails the client; failures are logged, never
// surfaced to the caller.
func (s *ReturnService) notifyStatusChange(ctx context.Context, tr *tax.TaxReturn) {
	if s.sender == nil {
		return
	}
	client, err := s.userRepo.FindByID(ctx, tr.ClientID)
	if err != nil {
		s.logger.Warn("Failed to load client for status notification",
			zap.String("return_id", tr.ID.String()), zap.Error(err))
		return
	}
	msg := email.ReturnStatusChanged(client.Email, client.FirstName, tr.TaxYear, string(tr.Status))
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Warn("Failed to send status notification",
			zap.String("return_id", tr.ID.String()), zap.Error(err))
	}
}
