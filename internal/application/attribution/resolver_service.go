package attribution

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/attribution"
	"github.com/taxpilot/backend/internal/domain/identity"
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/infrastructure/telemetry"
)

// ResolverService locks first-touch attributions. The priority chain
// runs cookie, email, phone, then direct; the first signal that yields
// a referrer wins. Whatever the chain produces, the write is an
// insert-if-absent so a concurrent resolution for the same subject can
// never overwrite an earlier lock.
type ResolverService struct {
	recordRepo attribution.RecordRepository
	userRepo   identity.UserRepository
	metrics    *telemetry.BusinessMetrics
	logger     *zap.Logger
}

// NewResolverService creates a new attribution resolver
func NewResolverService(
	recordRepo attribution.RecordRepository,
	userRepo identity.UserRepository,
	metrics *telemetry.BusinessMetrics,
	logger *zap.Logger,
) *ResolverService {
	return &ResolverService{
		recordRepo: recordRepo,
		userRepo:   userRepo,
		metrics:    metrics,
		logger:     logger,
	}
}

// Resolve runs the priority chain and locks the result for the
// subject. When a record is already locked the existing record is
// returned with AlreadyLocked set; that is not an error.
func (s *ResolverService) Resolve(ctx context.Context, input ResolveInput) (*RecordInfo, error) {
	if input.SubjectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject ID is required")
	}

	record, err := s.buildRecord(ctx, input)
	if err != nil {
		return nil, err
	}

	saved, err := s.recordRepo.SaveIfAbsent(ctx, record)
	if err == shared.ErrAttributionLocked {
		s.logger.Debug("Attribution already locked",
			zap.String("subject_id", input.SubjectID.String()),
			zap.String("method", string(saved.Method)))
		return newRecordInfo(saved, true), nil
	}
	if err != nil {
		s.logger.Error("Failed to lock attribution", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to lock attribution")
	}

	s.metrics.RecordAttributionLocked(ctx, string(saved.Method))
	s.logger.Info("Attribution locked",
		zap.String("subject_id", input.SubjectID.String()),
		zap.String("method", string(saved.Method)),
		zap.Bool("attributed", saved.IsAttributed()))

	return newRecordInfo(saved, false), nil
}

// CarryForward copies the lead's locked attribution onto the user
// created from it, preserving referrer, method and the frozen
// commission rate. A lead without a record yields a direct record for
// the user so the subject is still closed to later touches.
func (s *ResolverService) CarryForward(ctx context.Context, leadID, userID uuid.UUID) (*RecordInfo, error) {
	prior, err := s.recordRepo.FindByClientID(ctx, leadID)
	if err != nil && err != shared.ErrNotFound {
		s.logger.Error("Failed to load lead attribution", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load attribution")
	}

	var record *attribution.Record
	if prior != nil {
		record, err = attribution.NewRecord(userID, prior.ReferrerID, prior.TrackingCode, prior.Method, prior.CommissionRate)
	} else {
		record, err = attribution.NewRecord(userID, nil, "", attribution.MethodDirect, decimal.Zero)
	}
	if err != nil {
		return nil, err
	}

	saved, err := s.recordRepo.SaveIfAbsent(ctx, record)
	if err == shared.ErrAttributionLocked {
		return newRecordInfo(saved, true), nil
	}
	if err != nil {
		s.logger.Error("Failed to carry attribution forward", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to carry attribution forward")
	}

	s.metrics.RecordAttributionLocked(ctx, string(saved.Method))
	return newRecordInfo(saved, false), nil
}

// GetBySubject returns the locked attribution for a lead or user
func (s *ResolverService) GetBySubject(ctx context.Context, subjectID uuid.UUID) (*RecordInfo, error) {
	record, err := s.recordRepo.FindByClientID(ctx, subjectID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("ATTRIBUTION_NOT_FOUND", "No attribution locked for this subject")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load attribution")
	}
	return newRecordInfo(record, true), nil
}

// ListByReferrer returns the attributions credited to a referrer
func (s *ResolverService) ListByReferrer(ctx context.Context, referrerID uuid.UUID, filter shared.Filter) (*shared.Paginated[RecordInfo], error) {
	page, err := s.recordRepo.FindByReferrer(ctx, referrerID, filter)
	if err != nil {
		s.logger.Error("Failed to list attributions", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list attributions")
	}

	items := make([]RecordInfo, 0, len(page.Items))
	for _, r := range page.Items {
		items = append(items, *newRecordInfo(r, true))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// GetReferrerStats returns aggregate counts for a referrer
func (s *ResolverService) GetReferrerStats(ctx context.Context, referrerID uuid.UUID) (*ReferrerStats, error) {
	count, err := s.recordRepo.CountByReferrer(ctx, referrerID)
	if err != nil {
		s.logger.Error("Failed to count attributions", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load referrer stats")
	}
	return &ReferrerStats{ReferrerID: referrerID, TotalAttributed: count}, nil
}

// buildRecord walks the priority chain and constructs the record to
// lock. Lookup misses fall through to the next signal; only hard
// repository failures abort.
func (s *ResolverService) buildRecord(ctx context.Context, input ResolveInput) (*attribution.Record, error) {
	// 1. Cookie tracking code
	if input.TrackingCode != "" {
		referrer, err := s.userRepo.FindByTrackingCode(ctx, input.TrackingCode)
		if err == nil && referrer.IsActive() && referrer.CanRefer() {
			return attribution.NewRecord(input.SubjectID, &referrer.ID, referrer.TrackingCode, attribution.MethodCookie, referrer.CommissionRate)
		}
		if err != nil && err != shared.ErrNotFound {
			s.logger.Warn("Tracking code lookup failed", zap.Error(err))
		}
	}

	// 2. Email match against a known attributed subject
	if input.Email != "" {
		if rec := s.inheritFrom(ctx, s.findUserIDByEmail(ctx, input.Email)); rec != nil {
			return attribution.NewRecord(input.SubjectID, rec.ReferrerID, rec.TrackingCode, attribution.MethodEmail, s.currentRate(ctx, rec))
		}
	}

	// 3. Phone match
	if input.Phone != "" {
		if rec := s.inheritFrom(ctx, s.findUserIDByPhone(ctx, input.Phone)); rec != nil {
			return attribution.NewRecord(input.SubjectID, rec.ReferrerID, rec.TrackingCode, attribution.MethodPhone, s.currentRate(ctx, rec))
		}
	}

	// 4. Direct: lock the subject with no referrer
	return attribution.NewRecord(input.SubjectID, nil, "", attribution.MethodDirect, decimal.Zero)
}

func (s *ResolverService) findUserIDByEmail(ctx context.Context, email string) uuid.UUID {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return uuid.Nil
	}
	return user.ID
}

func (s *ResolverService) findUserIDByPhone(ctx context.Context, phone string) uuid.UUID {
	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return uuid.Nil
	}
	return user.ID
}

// currentRate returns the referrer's rate as of now. New locks freeze
// the current rate, not the rate frozen into the matched record.
func (s *ResolverService) currentRate(ctx context.Context, rec *attribution.Record) decimal.Decimal {
	if rec.ReferrerID == nil {
		return decimal.Zero
	}
	referrer, err := s.userRepo.FindByID(ctx, *rec.ReferrerID)
	if err != nil {
		return rec.CommissionRate
	}
	return referrer.CommissionRate
}

// inheritFrom loads the attributed record for a matched subject.
// Unattributed (direct) records do not propagate credit.
func (s *ResolverService) inheritFrom(ctx context.Context, subjectID uuid.UUID) *attribution.Record {
	if subjectID == uuid.Nil {
		return nil
	}
	record, err := s.recordRepo.FindByClientID(ctx, subjectID)
	if err != nil || !record.IsAttributed() {
		return nil
	}
	return record
}
