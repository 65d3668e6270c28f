package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taxpilot/backend/internal/domain/identity"
	"github.com/taxpilot/backend/internal/domain/report"
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/tax"
	"github.com/taxpilot/backend/internal/infrastructure/persistence/models"
)

// GormReportRepository implements report.Repository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// CollectDaily computes a day's counters from the operational tables
func (r *GormReportRepository) CollectDaily(ctx context.Context, day time.Time) (*report.DailySnapshot, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	snapshot := &report.DailySnapshot{ReportDate: dayStart}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.LeadModel{}).
		Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Count(&snapshot.LeadsCreated).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.LeadModel{}).
		Where("converted_at >= ? AND converted_at < ?", dayStart, dayEnd).
		Count(&snapshot.LeadsConverted).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.UserModel{}).
		Where("role = ? AND created_at >= ? AND created_at < ?", identity.UserRoleClient, dayStart, dayEnd).
		Count(&snapshot.ClientsRegistered).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.TaxReturnModel{}).
		Where("filed_at >= ? AND filed_at < ?", dayStart, dayEnd).
		Count(&snapshot.ReturnsFiled).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.DocumentModel{}).
		Where("uploaded_at >= ? AND uploaded_at < ?", dayStart, dayEnd).
		Count(&snapshot.DocumentsUploaded).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.AppointmentModel{}).
		Where("status = ? AND starts_at >= ? AND starts_at < ?", tax.AppointmentStatusCompleted, dayStart, dayEnd).
		Count(&snapshot.AppointmentsHeld).Error; err != nil {
		return nil, err
	}

	return snapshot, nil
}

// UpsertDaily stores the snapshot, replacing any existing row for the day
func (r *GormReportRepository) UpsertDaily(ctx context.Context, snapshot *report.DailySnapshot) error {
	model := &models.DailyReportModel{
		ReportDate:        snapshot.ReportDate,
		LeadsCreated:      snapshot.LeadsCreated,
		LeadsConverted:    snapshot.LeadsConverted,
		ClientsRegistered: snapshot.ClientsRegistered,
		ReturnsFiled:      snapshot.ReturnsFiled,
		DocumentsUploaded: snapshot.DocumentsUploaded,
		AppointmentsHeld:  snapshot.AppointmentsHeld,
	}
	model.FromDomainBaseEntity(shared.NewBaseEntity())

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "report_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"leads_created", "leads_converted", "clients_registered",
				"returns_filed", "documents_uploaded", "appointments_held", "updated_at",
			}),
		}).
		Create(model).Error
}

// FindRange returns stored snapshots between two days inclusive
func (r *GormReportRepository) FindRange(ctx context.Context, from, to time.Time) ([]*report.DailySnapshot, error) {
	var reportModels []models.DailyReportModel
	if err := r.db.WithContext(ctx).
		Where("report_date >= ? AND report_date <= ?", from, to).
		Order("report_date ASC").
		Find(&reportModels).Error; err != nil {
		return nil, err
	}

	snapshots := make([]*report.DailySnapshot, len(reportModels))
	for i, m := range reportModels {
		snapshots[i] = &report.DailySnapshot{
			ReportDate:        m.ReportDate,
			LeadsCreated:      m.LeadsCreated,
			LeadsConverted:    m.LeadsConverted,
			ClientsRegistered: m.ClientsRegistered,
			ReturnsFiled:      m.ReturnsFiled,
			DocumentsUploaded: m.DocumentsUploaded,
			AppointmentsHeld:  m.AppointmentsHeld,
		}
	}
	return snapshots, nil
}
