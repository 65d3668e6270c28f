package tax

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/tax"
)

// ObjectStorage abstracts presigned-URL object storage. Satisfied by
// the S3 implementation in infrastructure/storage.
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// DocumentService manages document records and their presigned upload
// and download grants. File bodies never pass through the API server.
type DocumentService struct {
	docRepo       tax.DocumentRepository
	returnRepo    tax.TaxReturnRepository
	storage       ObjectStorage
	presignExpiry time.Duration
	logger        *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo tax.DocumentRepository,
	returnRepo tax.TaxReturnRepository,
	storage ObjectStorage,
	presignExpiry time.Duration,
	logger *zap.Logger,
) *DocumentService {
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &DocumentService{
		docRepo:       docRepo,
		returnRepo:    returnRepo,
		storage:       storage,
		presignExpiry: presignExpiry,
		logger:        logger,
	}
}

// RequestUpload registers a pending document and returns a presigned
// upload URL for the client to PUT the file body directly.
func (s *DocumentService) RequestUpload(ctx context.Context, input RequestUploadInput) (*UploadTicket, error) {
	if input.TaxReturnID != nil {
		tr, err := s.returnRepo.FindByID(ctx, *input.TaxReturnID)
		if err != nil {
			return nil, shared.NewDomainError("RETURN_NOT_FOUND", "Tax return not found")
		}
		if tr.ClientID != input.ClientID {
			return nil, shared.NewDomainError("FORBIDDEN", "Return belongs to a different client")
		}
	}

	doc, err := tax.NewDocument(input.ClientID, input.TaxReturnID, tax.DocumentKind(input.Kind),
		input.FileName, input.ContentType, input.SizeBytes)
	if err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, doc.StorageKey, doc.ContentType, s.presignExpiry)
	if err != nil {
		s.logger.Error("Failed to presign upload", zap.String("storage_key", doc.StorageKey), zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_ERROR", "Failed to prepare upload")
	}

	if err := s.docRepo.Save(ctx, doc); err != nil {
		s.logger.Error("Failed to save document", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to register document")
	}

	s.logger.Info("Upload requested",
		zap.String("document_id", doc.ID.String()),
		zap.String("client_id", doc.ClientID.String()),
		zap.String("kind", string(doc.Kind)))

	return &UploadTicket{
		Document:  newDocumentInfo(doc),
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmUpload verifies the object landed in storage and marks the
// document uploaded.
func (s *DocumentService) ConfirmUpload(ctx context.Context, documentID uuid.UUID) (*DocumentInfo, error) {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, doc.StorageKey)
	if err != nil {
		s.logger.Error("Failed to check object", zap.String("storage_key", doc.StorageKey), zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_ERROR", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_MISSING", "No object found for this document")
	}

	if err := doc.ConfirmUpload(); err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		s.logger.Error("Failed to save document", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update document")
	}
	return newDocumentInfo(doc), nil
}

// GetDownloadURL issues a presigned download grant. Only documents
// that made it past pending_upload can be downloaded.
func (s *DocumentService) GetDownloadURL(ctx context.Context, documentID uuid.UUID) (*DownloadTicket, error) {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status == tax.DocumentStatusPendingUpload {
		return nil, shared.NewDomainError("NOT_UPLOADED", "Document has not been uploaded yet")
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, doc.StorageKey, s.presignExpiry)
	if err != nil {
		s.logger.Error("Failed to presign download", zap.String("storage_key", doc.StorageKey), zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_ERROR", "Failed to prepare download")
	}
	return &DownloadTicket{DownloadURL: url, ExpiresAt: expiresAt}, nil
}

// GetDocument fetches a single document record
func (s *DocumentService) GetDocument(ctx context.Context, documentID uuid.UUID) (*DocumentInfo, error) {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return newDocumentInfo(doc), nil
}

// ListByClient lists a client's documents
func (s *DocumentService) ListByClient(ctx context.Context, clientID uuid.UUID, page, pageSize int) (*shared.Paginated[DocumentInfo], error) {
	return s.list(ctx, func(filter shared.Filter) (*shared.Paginated[*tax.Document], error) {
		return s.docRepo.FindByClient(ctx, clientID, filter)
	}, page, pageSize)
}

// ListByReturn lists documents attached to a return
func (s *DocumentService) ListByReturn(ctx context.Context, taxReturnID uuid.UUID, page, pageSize int) (*shared.Paginated[DocumentInfo], error) {
	return s.list(ctx, func(filter shared.Filter) (*shared.Paginated[*tax.Document], error) {
		return s.docRepo.FindByTaxReturn(ctx, taxReturnID, filter)
	}, page, pageSize)
}

// VerifyDocument accepts a document after preparer review
func (s *DocumentService) VerifyDocument(ctx context.Context, documentID, reviewerID uuid.UUID) (*DocumentInfo, error) {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := doc.Verify(reviewerID); err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		s.logger.Error("Failed to save document", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update document")
	}
	return newDocumentInfo(doc), nil
}

// RejectDocument refuses a document with a note for the client
func (s *DocumentService) RejectDocument(ctx context.Context, input RejectDocumentInput) (*DocumentInfo, error) {
	doc, err := s.findDocument(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := doc.Reject(input.ReviewerID, input.Note); err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		s.logger.Error("Failed to save document", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update document")
	}
	return newDocumentInfo(doc), nil
}

// DeleteDocument removes the record and, if present, the stored object
func (s *DocumentService) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status != tax.DocumentStatusPendingUpload {
		if err := s.storage.DeleteObject(ctx, doc.StorageKey); err != nil {
			s.logger.Error("Failed to delete object", zap.String("storage_key", doc.StorageKey), zap.Error(err))
			return shared.NewDomainError("STORAGE_ERROR", "Failed to delete stored file")
		}
	}
	if err := s.docRepo.Delete(ctx, documentID); err != nil {
		s.logger.Error("Failed to delete document", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete document")
	}
	s.logger.Info("Document deleted", zap.String("document_id", documentID.String()))
	return nil
}

func (s *DocumentService) findDocument(ctx context.Context, id uuid.UUID) (*tax.Document, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("DOCUMENT_NOT_FOUND", "Document not found")
		}
		s.logger.Error("Failed to load document", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load document")
	}
	return doc, nil
}

func (s *DocumentService) list(ctx context.Context, find func(shared.Filter) (*shared.Paginated[*tax.Document], error), page, pageSize int) (*shared.Paginated[DocumentInfo], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	result, err := find(filter)
	if err != nil {
		s.logger.Error("Failed to list documents", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list documents")
	}
	items := make([]DocumentInfo, 0, len(result.Items))
	for _, d := range result.Items {
		items = append(items, *newDocumentInfo(d))
	}
	out := shared.NewPaginated(items, result.Total, result.Page, result.PageSize)
	return &out, nil
}
