package tax

import (
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Appointment duration limits
const (
	MinAppointmentDuration = 15 * time.Minute
	MaxAppointmentDuration = 4 * time.Hour
)

// Appointment is the aggregate root for a scheduled meeting between a
// client and a preparer. Overlap with the preparer's other scheduled
// appointments is rejected at booking time.
type Appointment struct {
	shared.OwnedAggregateRoot
	ClientID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	PreparerID uuid.UUID         `gorm:"type:uuid;not null;index"`
	StartsAt   time.Time         `gorm:"not null;index"`
	EndsAt     time.Time         `gorm:"not null"`
	Status     AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled'"`
	Location   string            `gorm:"type:varchar(200)"`
	Notes      string            `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Appointment) TableName() string {
	return "appointments"
}

// NewAppointment books a meeting slot
func NewAppointment(clientID, preparerID uuid.UUID, startsAt, endsAt time.Time, location string) (*Appointment, error) {
	if clientID == uuid.Nil || preparerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Client and preparer are required")
	}
	if err := validateSlot(startsAt, endsAt); err != nil {
		return nil, err
	}

	return &Appointment{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(),
		ClientID:           clientID,
		PreparerID:         preparerID,
		StartsAt:           startsAt.UTC(),
		EndsAt:             endsAt.UTC(),
		Status:             AppointmentStatusScheduled,
		Location:           location,
	}, nil
}

// Overlaps reports whether two appointments occupy intersecting time.
// Back-to-back slots sharing a boundary do not overlap.
func (a *Appointment) Overlaps(other *Appointment) bool {
	return a.StartsAt.Before(other.EndsAt) && other.StartsAt.Before(a.EndsAt)
}

// Reschedule moves a scheduled appointment to a new slot
func (a *Appointment) Reschedule(startsAt, endsAt time.Time) error {
	if a.Status != AppointmentStatusScheduled {
		return shared.NewDomainError("INVALID_TRANSITION", "Only scheduled appointments can be rescheduled")
	}
	if err := validateSlot(startsAt, endsAt); err != nil {
		return err
	}
	a.StartsAt = startsAt.UTC()
	a.EndsAt = endsAt.UTC()
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Complete marks the appointment as held
func (a *Appointment) Complete() error {
	if a.Status != AppointmentStatusScheduled {
		return shared.NewDomainError("INVALID_TRANSITION", "Only scheduled appointments can be completed")
	}
	a.Status = AppointmentStatusCompleted
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Cancel cancels the appointment before it is held
func (a *Appointment) Cancel() error {
	if a.Status != AppointmentStatusScheduled {
		return shared.NewDomainError("INVALID_TRANSITION", "Only scheduled appointments can be cancelled")
	}
	a.Status = AppointmentStatusCancelled
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// MarkNoShow records that the client did not attend
func (a *Appointment) MarkNoShow() error {
	if a.Status != AppointmentStatusScheduled {
		return shared.NewDomainError("INVALID_TRANSITION", "Only scheduled appointments can be marked no-show")
	}
	if time.Now().Before(a.StartsAt) {
		return shared.NewDomainError("INVALID_TRANSITION", "Cannot mark a future appointment as no-show")
	}
	a.Status = AppointmentStatusNoShow
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

func validateSlot(startsAt, endsAt time.Time) error {
	if startsAt.IsZero() || endsAt.IsZero() {
		return shared.NewDomainError("INVALID_SLOT", "Start and end times are required")
	}
	if !endsAt.After(startsAt) {
		return shared.NewDomainError("INVALID_SLOT", "End time must be after start time")
	}
	duration := endsAt.Sub(startsAt)
	if duration < MinAppointmentDuration || duration > MaxAppointmentDuration {
		return shared.NewDomainError("INVALID_SLOT", "Appointments must last between 15 minutes and 4 hours")
	}
	if startsAt.Before(time.Now()) {
		return shared.NewDomainError("INVALID_SLOT", "Cannot book an appointment in the past")
	}
	return nil
}
