package report

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/identity"
	"github.com/taxpilot/backend/internal/domain/report"
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/tax"
	"github.com/taxpilot/backend/internal/infrastructure/email"
	"github.com/taxpilot/backend/internal/infrastructure/scheduler"
)

// maxReportRangeDays bounds dashboard range queries
const maxReportRangeDays = 366

// ReportService builds daily activity snapshots and fans out
// appointment reminders. It is the executor behind the background
// scheduler and also serves the dashboard range endpoint.
type ReportService struct {
	reportRepo report.Repository
	apptRepo   tax.AppointmentRepository
	userRepo   identity.UserRepository
	sender     email.Sender
	logger     *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(
	reportRepo report.Repository,
	apptRepo tax.AppointmentRepository,
	userRepo identity.UserRepository,
	sender email.Sender,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		apptRepo:   apptRepo,
		userRepo:   userRepo,
		sender:     sender,
		logger:     logger,
	}
}

// Execute dispatches a scheduled job to its handler
func (s *ReportService) Execute(ctx context.Context, job *scheduler.Job) error {
	switch job.Kind {
	case scheduler.JobKindDailyReport:
		return s.runDailyReport(ctx, job.PeriodStart)
	case scheduler.JobKindAppointmentReminders:
		return s.sendAppointmentReminders(ctx, job.PeriodStart, job.PeriodEnd)
	default:
		return scheduler.ErrInvalidJobKind
	}
}

// runDailyReport computes and stores the snapshot for one calendar
// day. Reruns overwrite the previous row.
func (s *ReportService) runDailyReport(ctx context.Context, day time.Time) error {
	day = day.UTC().Truncate(24 * time.Hour)

	snapshot, err := s.reportRepo.CollectDaily(ctx, day)
	if err != nil {
		s.logger.Error("Failed to collect daily snapshot",
			zap.Time("report_date", day), zap.Error(err))
		return err
	}
	if err := s.reportRepo.UpsertDaily(ctx, snapshot); err != nil {
		s.logger.Error("Failed to store daily snapshot",
			zap.Time("report_date", day), zap.Error(err))
		return err
	}

	s.logger.Info("Daily report stored",
		zap.Time("report_date", day),
		zap.Int64("leads_created", snapshot.LeadsCreated),
		zap.Int64("returns_filed", snapshot.ReturnsFiled))
	return nil
}

// sendAppointmentReminders emails every client with a scheduled
// appointment starting in the window. Individual send failures are
// logged and skipped; the job fails only when the lookup fails.
func (s *ReportService) sendAppointmentReminders(ctx context.Context, from, to time.Time) error {
	appointments, err := s.apptRepo.FindScheduledBetween(ctx, from, to)
	if err != nil {
		s.logger.Error("Failed to load upcoming appointments", zap.Error(err))
		return err
	}

	sent := 0
	for _, appt := range appointments {
		client, err := s.userRepo.FindByID(ctx, appt.ClientID)
		if err != nil {
			s.logger.Warn("Failed to load client for reminder",
				zap.String("appointment_id", appt.ID.String()), zap.Error(err))
			continue
		}
		msg := email.AppointmentReminder(client.Email, client.FirstName, appt.StartsAt)
		if err := s.sender.Send(ctx, msg); err != nil {
			s.logger.Warn("Failed to send appointment reminder",
				zap.String("appointment_id", appt.ID.String()), zap.Error(err))
			continue
		}
		sent++
	}

	s.logger.Info("Appointment reminders sent",
		zap.Int("appointments", len(appointments)),
		zap.Int("sent", sent))
	return nil
}

// GetRange returns the stored snapshots for [from, to] for dashboards
func (s *ReportService) GetRange(ctx context.Context, from, to time.Time) ([]*report.DailySnapshot, error) {
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_RANGE", "End date must not precede start date")
	}
	if to.Sub(from) > maxReportRangeDays*24*time.Hour {
		return nil, shared.NewDomainError("INVALID_RANGE", "Date range is limited to one year")
	}

	snapshots, err := s.reportRepo.FindRange(ctx, from, to)
	if err != nil {
		s.logger.Error("Failed to load report range", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load reports")
	}
	return snapshots, nil
}

var _ scheduler.JobExecutor = (*ReportService)(nil)
