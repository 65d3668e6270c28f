package tax

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// DocumentStatus represents the upload lifecycle of a document
type DocumentStatus string

const (
	DocumentStatusPendingUpload DocumentStatus = "pending_upload"
	DocumentStatusUploaded      DocumentStatus = "uploaded"
	DocumentStatusVerified      DocumentStatus = "verified"
	DocumentStatusRejected      DocumentStatus = "rejected"
)

// DocumentKind classifies the supporting document
type DocumentKind string

const (
	DocumentKindW2      DocumentKind = "w2"
	DocumentKind1099    DocumentKind = "1099"
	DocumentKindReceipt DocumentKind = "receipt"
	DocumentKindID      DocumentKind = "id"
	DocumentKindOther   DocumentKind = "other"
)

// MaxDocumentSize caps uploads at 25 MB
const MaxDocumentSize int64 = 25 << 20

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/heic":      true,
}

// Document is the aggregate root for a client-supplied file. The file
// body lives in object storage; the aggregate tracks the key and the
// verification state. A record starts in pending_upload when the
// presigned URL is issued and becomes uploaded on client confirmation.
type Document struct {
	shared.OwnedAggregateRoot
	TaxReturnID *uuid.UUID     `gorm:"type:uuid;index"`
	ClientID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Kind        DocumentKind   `gorm:"type:varchar(10);not null"`
	FileName    string         `gorm:"type:varchar(255);not null"`
	ContentType string         `gorm:"type:varchar(100);not null"`
	SizeBytes   int64          `gorm:"not null"`
	StorageKey  string         `gorm:"type:varchar(500);not null;uniqueIndex"`
	Status      DocumentStatus `gorm:"type:varchar(20);not null;default:'pending_upload'"`
	UploadedAt  *time.Time
	ReviewedAt  *time.Time
	ReviewedBy  *uuid.UUID `gorm:"type:uuid"`
	RejectNote  string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "documents"
}

// NewDocument registers a pending upload and derives its storage key
func NewDocument(clientID uuid.UUID, taxReturnID *uuid.UUID, kind DocumentKind, fileName, contentType string, sizeBytes int64) (*Document, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID is required")
	}
	if err := validateDocumentKind(kind); err != nil {
		return nil, err
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" || strings.ContainsAny(fileName, "/\\") {
		return nil, shared.NewDomainError("INVALID_FILENAME", "Invalid file name")
	}
	if !allowedContentTypes[contentType] {
		return nil, shared.NewDomainError("UNSUPPORTED_TYPE", "Unsupported document content type")
	}
	if sizeBytes <= 0 || sizeBytes > MaxDocumentSize {
		return nil, shared.NewDomainError("INVALID_SIZE", "Document size must be between 1 byte and 25 MB")
	}

	doc := &Document{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(),
		TaxReturnID:        taxReturnID,
		ClientID:           clientID,
		Kind:               kind,
		FileName:           fileName,
		ContentType:        contentType,
		SizeBytes:          sizeBytes,
		Status:             DocumentStatusPendingUpload,
	}
	doc.StorageKey = "documents/" + clientID.String() + "/" + doc.ID.String() + "/" + fileName

	return doc, nil
}

// ConfirmUpload marks the object as present in storage
func (d *Document) ConfirmUpload() error {
	if d.Status != DocumentStatusPendingUpload {
		return shared.NewDomainError("INVALID_TRANSITION", "Document is not awaiting upload")
	}
	now := time.Now()
	d.Status = DocumentStatusUploaded
	d.UploadedAt = &now
	d.UpdatedAt = now
	d.IncrementVersion()
	return nil
}

// Verify accepts an uploaded document after preparer review
func (d *Document) Verify(reviewerID uuid.UUID) error {
	if d.Status != DocumentStatusUploaded {
		return shared.NewDomainError("INVALID_TRANSITION", "Only uploaded documents can be verified")
	}
	now := time.Now()
	d.Status = DocumentStatusVerified
	d.ReviewedAt = &now
	d.ReviewedBy = &reviewerID
	d.UpdatedAt = now
	d.IncrementVersion()
	return nil
}

// Reject refuses an uploaded document with a note for the client
func (d *Document) Reject(reviewerID uuid.UUID, note string) error {
	if d.Status != DocumentStatusUploaded {
		return shared.NewDomainError("INVALID_TRANSITION", "Only uploaded documents can be rejected")
	}
	if note == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection note is required")
	}
	now := time.Now()
	d.Status = DocumentStatusRejected
	d.RejectNote = note
	d.ReviewedAt = &now
	d.ReviewedBy = &reviewerID
	d.UpdatedAt = now
	d.IncrementVersion()
	return nil
}

func validateDocumentKind(kind DocumentKind) error {
	switch kind {
	case DocumentKindW2, DocumentKind1099, DocumentKindReceipt, DocumentKindID, DocumentKindOther:
		return nil
	default:
		return shared.NewDomainError("INVALID_KIND", "Invalid document kind")
	}
}
