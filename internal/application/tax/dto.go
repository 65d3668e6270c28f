package tax

import (
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/tax"
)

// OpenReturnInput carries the data for opening a tax return
type OpenReturnInput struct {
	ClientID     uuid.UUID `json:"client_id" binding:"required"`
	TaxYear      int       `json:"tax_year" binding:"required"`
	FilingStatus string    `json:"filing_status" binding:"required"`
	Notes        string    `json:"notes"`
}

// ReturnInfo is the read model for a tax return
type ReturnInfo struct {
	ID           uuid.UUID  `json:"id"`
	ClientID     uuid.UUID  `json:"client_id"`
	TaxYear      int        `json:"tax_year"`
	FilingStatus string     `json:"filing_status"`
	Status       string     `json:"status"`
	PreparerID   *uuid.UUID `json:"preparer_id,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	FiledAt      *time.Time `json:"filed_at,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func newReturnInfo(tr *tax.TaxReturn) *ReturnInfo {
	return &ReturnInfo{
		ID:           tr.ID,
		ClientID:     tr.ClientID,
		TaxYear:      tr.TaxYear,
		FilingStatus: string(tr.FilingStatus),
		Status:       string(tr.Status),
		PreparerID:   tr.PreparerID,
		Notes:        tr.Notes,
		FiledAt:      tr.FiledAt,
		ResolvedAt:   tr.ResolvedAt,
		RejectReason: tr.RejectReason,
		CreatedAt:    tr.CreatedAt,
		UpdatedAt:    tr.UpdatedAt,
	}
}

// ListReturnsInput filters the return listing
type ListReturnsInput struct {
	ClientID   uuid.UUID `form:"client_id"`
	PreparerID uuid.UUID `form:"preparer_id"`
	Status     string    `form:"status"`
	Page       int       `form:"page"`
	PageSize   int       `form:"page_size"`
}

// AssignPreparerInput assigns a preparer to a return
type AssignPreparerInput struct {
	ReturnID   uuid.UUID `json:"-"`
	PreparerID uuid.UUID `json:"preparer_id" binding:"required"`
}

// RejectReturnInput records an IRS rejection
type RejectReturnInput struct {
	ReturnID uuid.UUID `json:"-"`
	Reason   string    `json:"reason" binding:"required"`
}

// RequestUploadInput registers a pending document upload
type RequestUploadInput struct {
	ClientID    uuid.UUID  `json:"-"`
	TaxReturnID *uuid.UUID `json:"tax_return_id"`
	Kind        string     `json:"kind" binding:"required"`
	FileName    string     `json:"file_name" binding:"required"`
	ContentType string     `json:"content_type" binding:"required"`
	SizeBytes   int64      `json:"size_bytes" binding:"required"`
}

// UploadTicket is the presigned upload grant returned to the client
type UploadTicket struct {
	Document  *DocumentInfo `json:"document"`
	UploadURL string        `json:"upload_url"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// DownloadTicket is the presigned download grant
type DownloadTicket struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// DocumentInfo is the read model for a document
type DocumentInfo struct {
	ID          uuid.UUID  `json:"id"`
	TaxReturnID *uuid.UUID `json:"tax_return_id,omitempty"`
	ClientID    uuid.UUID  `json:"client_id"`
	Kind        string     `json:"kind"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	Status      string     `json:"status"`
	UploadedAt  *time.Time `json:"uploaded_at,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	RejectNote  string     `json:"reject_note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newDocumentInfo(d *tax.Document) *DocumentInfo {
	return &DocumentInfo{
		ID:          d.ID,
		TaxReturnID: d.TaxReturnID,
		ClientID:    d.ClientID,
		Kind:        string(d.Kind),
		FileName:    d.FileName,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		Status:      string(d.Status),
		UploadedAt:  d.UploadedAt,
		ReviewedAt:  d.ReviewedAt,
		RejectNote:  d.RejectNote,
		CreatedAt:   d.CreatedAt,
	}
}

// RejectDocumentInput refuses an uploaded document
type RejectDocumentInput struct {
	DocumentID uuid.UUID `json:"-"`
	ReviewerID uuid.UUID `json:"-"`
	Note       string    `json:"note" binding:"required"`
}

// BookAppointmentInput books a meeting slot
type BookAppointmentInput struct {
	ClientID   uuid.UUID `json:"client_id" binding:"required"`
	PreparerID uuid.UUID `json:"preparer_id" binding:"required"`
	StartsAt   time.Time `json:"starts_at" binding:"required"`
	EndsAt     time.Time `json:"ends_at" binding:"required"`
	Location   string    `json:"location"`
	Notes      string    `json:"notes"`
}

// RescheduleInput moves an appointment to a new slot
type RescheduleInput struct {
	AppointmentID uuid.UUID `json:"-"`
	StartsAt      time.Time `json:"starts_at" binding:"required"`
	EndsAt        time.Time `json:"ends_at" binding:"required"`
}

// AppointmentInfo is the read model for an appointment
type AppointmentInfo struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"client_id"`
	PreparerID uuid.UUID `json:"preparer_id"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Status     string    `json:"status"`
	Location   string    `json:"location,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func newAppointmentInfo(a *tax.Appointment) *AppointmentInfo {
	return &AppointmentInfo{
		ID:         a.ID,
		ClientID:   a.ClientID,
		PreparerID: a.PreparerID,
		StartsAt:   a.StartsAt,
		EndsAt:     a.EndsAt,
		Status:     string(a.Status),
		Location:   a.Location,
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt,
	}
}
