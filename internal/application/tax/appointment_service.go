package tax

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/identity"
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/tax"
)

// AppointmentService books meetings between clients and preparers.
// Booking and rescheduling reject slots that overlap the preparer's
// existing scheduled appointments.
type AppointmentService struct {
	apptRepo tax.AppointmentRepository
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	apptRepo tax.AppointmentRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		apptRepo: apptRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Book schedules an appointment if the preparer's slot is free
func (s *AppointmentService) Book(ctx context.Context, input BookAppointmentInput) (*AppointmentInfo, error) {
	preparer, err := s.userRepo.FindByID(ctx, input.PreparerID)
	if err != nil {
		return nil, shared.NewDomainError("PREPARER_NOT_FOUND", "Preparer not found")
	}
	if preparer.Role != identity.UserRolePreparer && preparer.Role != identity.UserRoleAdmin {
		return nil, shared.NewDomainError("INVALID_ROLE", "Appointments can only be booked with preparers")
	}

	appt, err := tax.NewAppointment(input.ClientID, input.PreparerID, input.StartsAt, input.EndsAt, input.Location)
	if err != nil {
		return nil, err
	}
	appt.Notes = input.Notes

	if err := s.checkSlot(ctx, appt.PreparerID, appt.StartsAt, appt.EndsAt, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.apptRepo.Save(ctx, appt); err != nil {
		s.logger.Error("Failed to save appointment", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to book appointment")
	}

	s.logger.Info("Appointment booked",
		zap.String("appointment_id", appt.ID.String()),
		zap.String("preparer_id", appt.PreparerID.String()),
		zap.Time("starts_at", appt.StartsAt))

	return newAppointmentInfo(appt), nil
}

// Reschedule moves an appointment to a new slot, re-checking overlap
// against everything except the appointment itself.
func (s *AppointmentService) Reschedule(ctx context.Context, input RescheduleInput) (*AppointmentInfo, error) {
	appt, err := s.findAppointment(ctx, input.AppointmentID)
	if err != nil {
		return nil, err
	}
	if err := appt.Reschedule(input.StartsAt, input.EndsAt); err != nil {
		return nil, err
	}
	if err := s.checkSlot(ctx, appt.PreparerID, appt.StartsAt, appt.EndsAt, appt.ID); err != nil {
		return nil, err
	}
	if err := s.apptRepo.Save(ctx, appt); err != nil {
		s.logger.Error("Failed to save appointment", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to reschedule appointment")
	}
	return newAppointmentInfo(appt), nil
}

// Get fetches a single appointment
func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID) (*AppointmentInfo, error) {
	appt, err := s.findAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	return newAppointmentInfo(appt), nil
}

// ListByClient lists a client's appointments
func (s *AppointmentService) ListByClient(ctx context.Context, clientID uuid.UUID, page, pageSize int) (*shared.Paginated[AppointmentInfo], error) {
	return s.list(ctx, func(filter shared.Filter) (*shared.Paginated[*tax.Appointment], error) {
		return s.apptRepo.FindByClient(ctx, clientID, filter)
	}, page, pageSize)
}

// ListByPreparer lists a preparer's appointments
func (s *AppointmentService) ListByPreparer(ctx context.Context, preparerID uuid.UUID, page, pageSize int) (*shared.Paginated[AppointmentInfo], error) {
	return s.list(ctx, func(filter shared.Filter) (*shared.Paginated[*tax.Appointment], error) {
		return s.apptRepo.FindByPreparer(ctx, preparerID, filter)
	}, page, pageSize)
}

// Complete marks the appointment as held
func (s *AppointmentService) Complete(ctx context.Context, id uuid.UUID) (*AppointmentInfo, error) {
	return s.mutate(ctx, id, (*tax.Appointment).Complete)
}

// Cancel cancels a scheduled appointment
func (s *AppointmentService) Cancel(ctx context.Context, id uuid.UUID) (*AppointmentInfo, error) {
	return s.mutate(ctx, id, (*tax.Appointment).Cancel)
}

// MarkNoShow records that the client did not attend
func (s *AppointmentService) MarkNoShow(ctx context.Context, id uuid.UUID) (*AppointmentInfo, error) {
	return s.mutate(ctx, id, (*tax.Appointment).MarkNoShow)
}

// checkSlot returns ErrScheduleConflict when any of the preparer's
// scheduled appointments intersect the requested window.
func (s *AppointmentService) checkSlot(ctx context.Context, preparerID uuid.UUID, startsAt, endsAt time.Time, excludeID uuid.UUID) error {
	overlapping, err := s.apptRepo.FindScheduledOverlapping(ctx, preparerID, startsAt, endsAt, excludeID)
	if err != nil {
		s.logger.Error("Failed to check schedule", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to check preparer schedule")
	}
	if len(overlapping) > 0 {
		return shared.ErrScheduleConflict
	}
	return nil
}

func (s *AppointmentService) findAppointment(ctx context.Context, id uuid.UUID) (*tax.Appointment, error) {
	appt, err := s.apptRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("APPOINTMENT_NOT_FOUND", "Appointment not found")
		}
		s.logger.Error("Failed to load appointment", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load appointment")
	}
	return appt, nil
}

func (s *AppointmentService) mutate(ctx context.Context, id uuid.UUID, fn func(*tax.Appointment) error) (*AppointmentInfo, error) {
	appt, err := s.findAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(appt); err != nil {
		return nil, err
	}
	if err := s.apptRepo.Save(ctx, appt); err != nil {
		s.logger.Error("Failed to save appointment", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update appointment")
	}
	return newAppointmentInfo(appt), nil
}

func (s *AppointmentService) list(ctx context.Context, find func(shared.Filter) (*shared.Paginated[*tax.Appointment], error), page, pageSize int) (*shared.Paginated[AppointmentInfo], error) {
	filter := shared.DefaultFilter()
	filter.OrderBy = "starts_at"
	filter.OrderDir = "asc"
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	result, err := find(filter)
	if err != nil {
		s.logger.Error("Failed to list appointments", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list appointments")
	}
	items := make([]AppointmentInfo, 0, len(result.Items))
	for _, a := range result.Items {
		items = append(items, *newAppointmentInfo(a))
	}
	out := shared.NewPaginated(items, result.Total, result.Page, result.PageSize)
	return &out, nil
}
