package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/tax"
)

// TaxReturnModel is the persistence model for the TaxReturn domain entity.
type TaxReturnModel struct {
	OwnedAggregateModel
	ClientID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_returns_client_year,unique,priority:1"`
	TaxYear      int              `gorm:"not null;index:idx_returns_client_year,unique,priority:2"`
	FilingStatus tax.FilingStatus `gorm:"type:varchar(20);not null"`
	Status       tax.ReturnStatus `gorm:"type:varchar(20);not null;default:'intake';index"`
	PreparerID   *uuid.UUID       `gorm:"type:uuid;index"`
	Notes        string           `gorm:"type:text"`
	FiledAt      *time.Time
	ResolvedAt   *time.Time
	RejectReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (TaxReturnModel) TableName() string {
	return "tax_returns"
}

// ToDomain converts the persistence model to a domain TaxReturn entity.
func (m *TaxReturnModel) ToDomain() *tax.TaxReturn {
	return &tax.TaxReturn{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		ClientID:           m.ClientID,
		TaxYear:            m.TaxYear,
		FilingStatus:       m.FilingStatus,
		Status:             m.Status,
		PreparerID:         m.PreparerID,
		Notes:              m.Notes,
		FiledAt:            m.FiledAt,
		ResolvedAt:         m.ResolvedAt,
		RejectReason:       m.RejectReason,
	}
}

// FromDomain populates the persistence model from a domain TaxReturn entity.
func (m *TaxReturnModel) FromDomain(tr *tax.TaxReturn) {
	m.FromDomainOwnedAggregateRoot(tr.OwnedAggregateRoot)
	m.ClientID = tr.ClientID
	m.TaxYear = tr.TaxYear
	m.FilingStatus = tr.FilingStatus
	m.Status = tr.Status
	m.PreparerID = tr.PreparerID
	m.Notes = tr.Notes
	m.FiledAt = tr.FiledAt
	m.ResolvedAt = tr.ResolvedAt
	m.RejectReason = tr.RejectReason
}

// TaxReturnModelFromDomain creates a new persistence model from a domain TaxReturn.
func TaxReturnModelFromDomain(tr *tax.TaxReturn) *TaxReturnModel {
	m := &TaxReturnModel{}
	m.FromDomain(tr)
	return m
}

// DocumentModel is the persistence model for the Document domain entity.
type DocumentModel struct {
	OwnedAggregateModel
	TaxReturnID *uuid.UUID         `gorm:"type:uuid;index"`
	ClientID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	Kind        tax.DocumentKind   `gorm:"type:varchar(10);not null"`
	FileName    string             `gorm:"type:varchar(255);not null"`
	ContentType string             `gorm:"type:varchar(100);not null"`
	SizeBytes   int64              `gorm:"not null"`
	StorageKey  string             `gorm:"type:varchar(500);not null;uniqueIndex"`
	Status      tax.DocumentStatus `gorm:"type:varchar(20);not null;default:'pending_upload';index"`
	UploadedAt  *time.Time
	ReviewedAt  *time.Time
	ReviewedBy  *uuid.UUID `gorm:"type:uuid"`
	RejectNote  string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document entity.
func (m *DocumentModel) ToDomain() *tax.Document {
	return &tax.Document{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		TaxReturnID:        m.TaxReturnID,
		ClientID:           m.ClientID,
		Kind:               m.Kind,
		FileName:           m.FileName,
		ContentType:        m.ContentType,
		SizeBytes:          m.SizeBytes,
		StorageKey:         m.StorageKey,
		Status:             m.Status,
		UploadedAt:         m.UploadedAt,
		ReviewedAt:         m.ReviewedAt,
		ReviewedBy:         m.ReviewedBy,
		RejectNote:         m.RejectNote,
	}
}

// FromDomain populates the persistence model from a domain Document entity.
func (m *DocumentModel) FromDomain(d *tax.Document) {
	m.FromDomainOwnedAggregateRoot(d.OwnedAggregateRoot)
	m.TaxReturnID = d.TaxReturnID
	m.ClientID = d.ClientID
	m.Kind = d.Kind
	m.FileName = d.FileName
	m.ContentType = d.ContentType
	m.SizeBytes = d.SizeBytes
	m.StorageKey = d.StorageKey
	m.Status = d.Status
	m.UploadedAt = d.UploadedAt
	m.ReviewedAt = d.ReviewedAt
	m.ReviewedBy = d.ReviewedBy
	m.RejectNote = d.RejectNote
}

// DocumentModelFromDomain creates a new persistence model from a domain Document.
func DocumentModelFromDomain(d *tax.Document) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(d)
	return m
}

// AppointmentModel is the persistence model for the Appointment domain entity.
type AppointmentModel struct {
	OwnedAggregateModel
	ClientID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	PreparerID uuid.UUID             `gorm:"type:uuid;not null;index:idx_appointments_preparer_start,priority:1"`
	StartsAt   time.Time             `gorm:"not null;index:idx_appointments_preparer_start,priority:2"`
	EndsAt     time.Time             `gorm:"not null"`
	Status     tax.AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled';index"`
	Location   string                `gorm:"type:varchar(200)"`
	Notes      string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AppointmentModel) TableName() string {
	return "appointments"
}

// ToDomain converts the persistence model to a domain Appointment entity.
func (m *AppointmentModel) ToDomain() *tax.Appointment {
	return &tax.Appointment{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		ClientID:           m.ClientID,
		PreparerID:         m.PreparerID,
		StartsAt:           m.StartsAt,
		EndsAt:             m.EndsAt,
		Status:             m.Status,
		Location:           m.Location,
		Notes:              m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Appointment entity.
func (m *AppointmentModel) FromDomain(a *tax.Appointment) {
	m.FromDomainOwnedAggregateRoot(a.OwnedAggregateRoot)
	m.ClientID = a.ClientID
	m.PreparerID = a.PreparerID
	m.StartsAt = a.StartsAt
	m.EndsAt = a.EndsAt
	m.Status = a.Status
	m.Location = a.Location
	m.Notes = a.Notes
}

// AppointmentModelFromDomain creates a new persistence model from a domain Appointment.
func AppointmentModelFromDomain(a *tax.Appointment) *AppointmentModel {
	m := &AppointmentModel{}
	m.FromDomain(a)
	return m
}
