package tax

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/tax"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *tax.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*tax.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tax.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (*shared.Paginated[*tax.Document], error) {
	args := m.Called(ctx, clientID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*tax.Document]), args.Error(1)
}

func (m *MockDocumentRepository) FindByTaxReturn(ctx context.Context, taxReturnID uuid.UUID, filter shared.Filter) (*shared.Paginated[*tax.Document], error) {
	args := m.Called(ctx, taxReturnID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*tax.Document]), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}

func newDocumentService(docRepo *MockDocumentRepository, returnRepo *MockTaxReturnRepository, storage *MockObjectStorage) *DocumentService {
	return NewDocumentService(docRepo, returnRepo, storage, 15*time.Minute, zap.NewNop())
}

func newPendingDocument(t *testing.T, clientID uuid.UUID) *tax.Document {
	t.Helper()
	doc, err := tax.NewDocument(clientID, nil, tax.DocumentKindW2, "w2-2024.pdf", "application/pdf", 512_000)
	require.NoError(t, err)
	return doc
}

func TestDocumentService_RequestUpload_Success(t *testing.T) {
	docRepo := new(MockDocumentRepository)
	returnRepo := new(MockTaxReturnRepository)
	storage := new(MockObjectStorage)
	service := newDocumentService(docRepo, returnRepo, storage)

	clientID := uuid.New()
	expiresAt := time.Now().Add(15 * time.Minute)

	storage.On("GenerateUploadURL", mock.Anything, mock.AnythingOfType("string"), "application/pdf", 15*time.Minute).
		Return("https://bucket.s3.amazonaws.com/presigned-put", expiresAt, nil)
	docRepo.On("Save", mock.Anything, mock.AnythingOfType("*tax.Document")).Return(nil)

	ticket, err := service.RequestUpload(context.Background(), RequestUploadInput{
		ClientID:    clientID,
		Kind:        "w2",
		FileName:    "w2-2024.pdf",
		ContentType: "application/pdf",
		SizeBytes:   512_000,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/presigned-put", ticket.UploadURL)
	assert.Equal(t, string(tax.DocumentStatusPendingUpload), ticket.Document.Status)
	assert.Contains(t, ticket.Document.FileName, "w2-2024.pdf")
	docRepo.AssertExpectations(t)
}

func TestDocumentService_RequestUpload_RejectsOversizedFile(t *testing.T) {
	docRepo := new(MockDocumentRepository)
	returnRepo := new(MockTaxReturnRepository)
	storage := new(MockObjectStorage)
	service := newDocumentService(docRepo, returnRepo, storage)

	_, err := service.RequestUpload(context.Background(), RequestUploadInput{
		ClientID:    uuid.New(),
		Kind:        "w2",
		FileName:    "huge.pdf",
		ContentType: "application/pdf",
		SizeBytes:   tax.MaxDocumentSize + 1,
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_SIZE", domainErr.Code)
	storage.AssertNotCalled(t, "GenerateUploadURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_RequestUpload_RejectsForeignReturn(t *testing.T) {
	docRepo := new(MockDocumentRepository)
	returnRepo := new(MockTaxReturnRepository)
	storage := new(MockObjectStorage)
	service := newDocumentService(docRepo, returnRepo, storage)

	otherClient := uuid.New()
	tr := newIntakeReturn(t, otherClient)
	returnRepo.On("FindByID", mock.Anything, tr.ID).Return(tr, nil)

	_, err := service.RequestUpload(context.Background(), RequestUploadInput{
		ClientID:    uuid.New(),
		TaxReturnID: &tr.ID,
		Kind:        "1099",
		FileName:    "1099-int.pdf",
		ContentType: "application/pdf",
		SizeBytes:   1024,
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestDocumentService_ConfirmUpload_Success(t *testing.T) {
	docRepo := new(MockDocumentRepository)
	returnRepo := new(MockTaxReturnRepository)
	storage := new(MockObjectStorage)
	service := newDocumentService(docRepo, returnRepo, storage)

	doc := newPendingDocument(t, uuid.New())

	docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
	storage.On("ObjectExists", mock.Anything, doc.StorageKey).Return(true, nil)
	docRepo.On("Save", mock.Anything, doc).Return(nil)

	info, err := service.ConfirmUpload(context.Background(), doc.ID)

	require.NoError(t, err)
	assert.Equal(t, string(tax.DocumentStatusUploaded), info.Status)
	assert.NotNil(t, info.UploadedAt)
}

func TestDocumentService_ConfirmUpload_MissingObject(t *testing.T) {
	docRepo := new(MockDocumentRepository)
	returnRepo := new(MockTaxReturnRepository)
	storage := new(MockObjectStorage)
	service := newDocumentService(docRepo, returnRepo, storage)

	doc := newPendingDocument(t, uuid.New())

	docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
	storage.On("ObjectExists", mock.Anything, doc.StorageKey).Return(false, nil)

	_, err := service.ConfirmUpload(context.Background(), doc.ID)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UPLOAD_MISSING", domainErr.Code)
	assert.Equal(t, tax.DocumentStatusPendingUpload, doc.Status)
	docRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDocumentService_GetDownloadURL_RejectsPendingUpload(t *testing.T) {
	docRepo := new(MockDocumentRepository)
	returnRepo := new(MockTaxReturnRepository)
	storage := new(MockObjectStorage)
	service := newDocumentService(docRepo, returnRepo, storage)

	doc := newPendingDocument(t, uuid.New())
	docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)

	_, err := service.GetDownloadURL(context.Background(), doc.ID)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_UPLOADED", domainErr.Code)
	storage.AssertNotCalled(t, "GenerateDownloadURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_VerifyThenDownload(t *testing.T) {
	docRepo := new(MockDocumentRepository)
	returnRepo := new(MockTaxReturnRepository)
	storage := new(MockObjectStorage)
	service := newDocumentService(docRepo, returnRepo, storage)

	doc := newPendingDocument(t, uuid.New())
	require.NoError(t, doc.ConfirmUpload())
	reviewer := uuid.New()
	expiresAt := time.Now().Add(15 * time.Minute)

	docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
	docRepo.On("Save", mock.Anything, doc).Return(nil)
	storage.On("GenerateDownloadURL", mock.Anything, doc.StorageKey, 15*time.Minute).
		Return("https://bucket.s3.amazonaws.com/presigned-get", expiresAt, nil)

	info, err := service.VerifyDocument(context.Background(), doc.ID, reviewer)
	require.NoError(t, err)
	assert.Equal(t, string(tax.DocumentStatusVerified), info.Status)

	ticket, err := service.GetDownloadURL(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/presigned-get", ticket.DownloadURL)
}

func TestDocumentService_Delete_RemovesStoredObject(t *testing.T) {
	docRepo := new(MockDocumentRepository)
	returnRepo := new(MockTaxReturnRepository)
	storage := new(MockObjectStorage)
	service := newDocumentService(docRepo, returnRepo, storage)

	doc := newPendingDocument(t, uuid.New())
	require.NoError(t, doc.ConfirmUpload())

	docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
	storage.On("DeleteObject", mock.Anything, doc.StorageKey).Return(nil)
	docRepo.On("Delete", mock.Anything, doc.ID).Return(nil)

	err := service.DeleteDocument(context.Background(), doc.ID)

	require.NoError(t, err)
	storage.AssertExpectations(t)
	docRepo.AssertExpectations(t)
}

func TestDocumentService_Delete_PendingSkipsStorage(t *testing.T) {
	docRepo := new(MockDocumentRepository)
	returnRepo := new(MockTaxReturnRepository)
	storage := new(MockObjectStorage)
	service := newDocumentService(docRepo, returnRepo, storage)

	doc := newPendingDocument(t, uuid.New())

	docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
	docRepo.On("Delete", mock.Anything, doc.ID).Return(nil)

	err := service.DeleteDocument(context.Background(), doc.ID)

	require.NoError(t, err)
	storage.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
}
