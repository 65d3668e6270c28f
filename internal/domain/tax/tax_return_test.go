package tax

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReturn(t *testing.T) *TaxReturn {
	t.Helper()
	tr, err := NewTaxReturn(uuid.New(), time.Now().Year()-1, FilingStatusSingle)
	require.NoError(t, err)
	return tr
}

func TestNewTaxReturn(t *testing.T) {
	tr := newTestReturn(t)
	assert.Equal(t, ReturnStatusIntake, tr.Status)
	assert.Len(t, tr.GetDomainEvents(), 1)

	_, err := NewTaxReturn(uuid.Nil, 2024, FilingStatusSingle)
	assert.Error(t, err)

	_, err = NewTaxReturn(uuid.New(), 1999, FilingStatusSingle)
	assert.Error(t, err)

	_, err = NewTaxReturn(uuid.New(), time.Now().Year()+1, FilingStatusSingle)
	assert.Error(t, err)

	_, err = NewTaxReturn(uuid.New(), 2024, FilingStatus("widowed"))
	assert.Error(t, err)
}

func TestTaxReturn_HappyPath(t *testing.T) {
	tr := newTestReturn(t)

	// Review requires an assigned preparer
	assert.Error(t, tr.StartReview())
	require.NoError(t, tr.AssignPreparer(uuid.New()))

	require.NoError(t, tr.StartReview())
	require.NoError(t, tr.MarkReady())
	require.NoError(t, tr.File())
	assert.NotNil(t, tr.FiledAt)

	require.NoError(t, tr.Accept())
	assert.Equal(t, ReturnStatusAccepted, tr.Status)
	assert.True(t, tr.IsResolved())
}

func TestTaxReturn_RejectAndReopen(t *testing.T) {
	tr := newTestReturn(t)
	require.NoError(t, tr.AssignPreparer(uuid.New()))
	require.NoError(t, tr.StartReview())
	require.NoError(t, tr.MarkReady())
	require.NoError(t, tr.File())

	assert.Error(t, tr.Reject(""))
	require.NoError(t, tr.Reject("SSN mismatch"))
	assert.Equal(t, ReturnStatusRejected, tr.Status)

	require.NoError(t, tr.ReopenReview())
	assert.Equal(t, ReturnStatusInReview, tr.Status)
	assert.Nil(t, tr.FiledAt)
	assert.Empty(t, tr.RejectReason)
}

func TestTaxReturn_InvalidTransitions(t *testing.T) {
	tr := newTestReturn(t)

	assert.Error(t, tr.MarkReady())
	assert.Error(t, tr.File())
	assert.Error(t, tr.Accept())
	assert.Error(t, tr.Reject("nope"))
	assert.Error(t, tr.ReopenReview())
}

func TestAppointment_Overlaps(t *testing.T) {
	client, preparer := uuid.New(), uuid.New()
	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	a, err := NewAppointment(client, preparer, base, base.Add(time.Hour), "office")
	require.NoError(t, err)

	b, err := NewAppointment(client, preparer, base.Add(30*time.Minute), base.Add(90*time.Minute), "office")
	require.NoError(t, err)
	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))

	// Back-to-back slots do not overlap
	c, err := NewAppointment(client, preparer, base.Add(time.Hour), base.Add(2*time.Hour), "office")
	require.NoError(t, err)
	assert.False(t, a.Overlaps(c))
}

func TestNewAppointment_Invalid(t *testing.T) {
	client, preparer := uuid.New(), uuid.New()
	future := time.Now().Add(24 * time.Hour)

	// Past start
	_, err := NewAppointment(client, preparer, time.Now().Add(-time.Hour), time.Now(), "")
	assert.Error(t, err)

	// Too short
	_, err = NewAppointment(client, preparer, future, future.Add(5*time.Minute), "")
	assert.Error(t, err)

	// Too long
	_, err = NewAppointment(client, preparer, future, future.Add(5*time.Hour), "")
	assert.Error(t, err)

	// End before start
	_, err = NewAppointment(client, preparer, future, future.Add(-time.Hour), "")
	assert.Error(t, err)
}

func TestDocument_Lifecycle(t *testing.T) {
	clientID := uuid.New()
	doc, err := NewDocument(clientID, nil, DocumentKindW2, "w2-2024.pdf", "application/pdf", 120_000)
	require.NoError(t, err)
	assert.Equal(t, DocumentStatusPendingUpload, doc.Status)
	assert.Contains(t, doc.StorageKey, clientID.String())

	require.NoError(t, doc.ConfirmUpload())
	assert.Error(t, doc.ConfirmUpload())

	reviewer := uuid.New()
	require.NoError(t, doc.Verify(reviewer))
	assert.Equal(t, DocumentStatusVerified, doc.Status)
	assert.Equal(t, reviewer, *doc.ReviewedBy)
}

func TestNewDocument_Invalid(t *testing.T) {
	// Unsupported content type
	_, err := NewDocument(uuid.New(), nil, DocumentKindW2, "w2.exe", "application/octet-stream", 1000)
	assert.Error(t, err)

	// Path traversal in file name
	_, err = NewDocument(uuid.New(), nil, DocumentKindW2, "../../etc/passwd", "application/pdf", 1000)
	assert.Error(t, err)

	// Oversized
	_, err = NewDocument(uuid.New(), nil, DocumentKindW2, "w2.pdf", "application/pdf", MaxDocumentSize+1)
	assert.Error(t, err)
}

func TestDocument_RejectRequiresNote(t *testing.T) {
	doc, err := NewDocument(uuid.New(), nil, DocumentKindReceipt, "receipt.jpg", "image/jpeg", 5000)
	require.NoError(t, err)
	require.NoError(t, doc.ConfirmUpload())

	assert.Error(t, doc.Reject(uuid.New(), ""))
	require.NoError(t, doc.Reject(uuid.New(), "image is unreadable"))
	assert.Equal(t, DocumentStatusRejected, doc.Status)
}
