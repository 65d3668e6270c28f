package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/tax"
	"github.com/taxpilot/backend/internal/infrastructure/persistence/models"
)

// GormAppointmentRepository implements tax.AppointmentRepository using GORM
type GormAppointmentRepository struct {
	db *gorm.DB
}

// NewGormAppointmentRepository creates a new GormAppointmentRepository
func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// Save creates or updates an appointment
func (r *GormAppointmentRepository) Save(ctx context.Context, appt *tax.Appointment) error {
	model := models.AppointmentModelFromDomain(appt)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds an appointment by its ID
func (r *GormAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*tax.Appointment, error) {
	var model models.AppointmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClient finds a client's appointments
func (r *GormAppointmentRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (*shared.Paginated[*tax.Appointment], error) {
	query := r.db.WithContext(ctx).Model(&models.AppointmentModel{}).Where("client_id = ?", clientID)
	return r.findPage(ctx, query, filter)
}

// FindByPreparer finds a preparer's appointments
func (r *GormAppointmentRepository) FindByPreparer(ctx context.Context, preparerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*tax.Appointment], error) {
	query := r.db.WithContext(ctx).Model(&models.AppointmentModel{}).Where("preparer_id = ?", preparerID)
	return r.findPage(ctx, query, filter)
}

// FindScheduledOverlapping returns the preparer's scheduled appointments
// intersecting [startsAt, endsAt). Back-to-back slots are not overlaps.
func (r *GormAppointmentRepository) FindScheduledOverlapping(ctx context.Context, preparerID uuid.UUID, startsAt, endsAt time.Time, excludeID uuid.UUID) ([]*tax.Appointment, error) {
	var appointmentModels []models.AppointmentModel
	query := r.db.WithContext(ctx).
		Where("preparer_id = ? AND status = ? AND starts_at < ? AND ends_at > ?",
			preparerID, tax.AppointmentStatusScheduled, endsAt, startsAt)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Find(&appointmentModels).Error; err != nil {
		return nil, err
	}

	appointments := make([]*tax.Appointment, len(appointmentModels))
	for i := range appointmentModels {
		appointments[i] = appointmentModels[i].ToDomain()
	}
	return appointments, nil
}

// FindScheduledBetween returns scheduled appointments starting within
// [from, to), ordered by start time. Used for reminder fan-out.
func (r *GormAppointmentRepository) FindScheduledBetween(ctx context.Context, from, to time.Time) ([]*tax.Appointment, error) {
	var appointmentModels []models.AppointmentModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND starts_at >= ? AND starts_at < ?",
			tax.AppointmentStatusScheduled, from, to).
		Order("starts_at asc").
		Find(&appointmentModels).Error
	if err != nil {
		return nil, err
	}

	appointments := make([]*tax.Appointment, len(appointmentModels))
	for i := range appointmentModels {
		appointments[i] = appointmentModels[i].ToDomain()
	}
	return appointments, nil
}

func (r *GormAppointmentRepository) findPage(ctx context.Context, query *gorm.DB, filter shared.Filter) (*shared.Paginated[*tax.Appointment], error) {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var appointmentModels []models.AppointmentModel
	query = applySort(query, filter, AppointmentSortFields, "starts_at")
	if err := applyPagination(query, filter).Find(&appointmentModels).Error; err != nil {
		return nil, err
	}

	appointments := make([]*tax.Appointment, len(appointmentModels))
	for i := range appointmentModels {
		appointments[i] = appointmentModels[i].ToDomain()
	}

	page, pageSize := normalizedPage(filter)
	result := shared.NewPaginated(appointments, total, page, pageSize)
	return &result, nil
}
