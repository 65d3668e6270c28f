package lead

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLead(t *testing.T) {
	l, err := NewLead("Dana", "Reyes", "Dana@Example.com", "555-0101", LeadSourceWebForm, "Need help with 2024 return")
	require.NoError(t, err)

	assert.Equal(t, LeadStatusNew, l.Status)
	assert.Equal(t, "dana@example.com", l.Email)
	assert.True(t, l.IsOpen())
	assert.Len(t, l.GetDomainEvents(), 1)
}

func TestNewLead_Invalid(t *testing.T) {
	_, err := NewLead("", "", "dana@example.com", "", LeadSourceWebForm, "")
	assert.Error(t, err)

	_, err = NewLead("Dana", "", "not-an-email", "", LeadSourceWebForm, "")
	assert.Error(t, err)

	_, err = NewLead("Dana", "", "dana@example.com", "", LeadSource("billboard"), "")
	assert.Error(t, err)
}

func TestLead_Lifecycle(t *testing.T) {
	l, err := NewLead("Dana", "Reyes", "dana@example.com", "", LeadSourceReferral, "")
	require.NoError(t, err)

	require.NoError(t, l.MarkContacted())
	assert.Equal(t, LeadStatusContacted, l.Status)
	assert.NotNil(t, l.ContactedAt)

	require.NoError(t, l.Qualify())
	assert.Equal(t, LeadStatusQualified, l.Status)

	userID := uuid.New()
	require.NoError(t, l.Convert(userID))
	assert.Equal(t, LeadStatusConverted, l.Status)
	assert.Equal(t, userID, *l.ConvertedUserID)
	assert.False(t, l.IsOpen())
}

func TestLead_ConvertIdempotent(t *testing.T) {
	l, err := NewLead("Dana", "Reyes", "dana@example.com", "", LeadSourceWebForm, "")
	require.NoError(t, err)

	userID := uuid.New()
	require.NoError(t, l.Convert(userID))
	version := l.Version

	// Same user again is a no-op
	require.NoError(t, l.Convert(userID))
	assert.Equal(t, version, l.Version)

	// A different user is a conflict
	assert.Error(t, l.Convert(uuid.New()))
}

func TestLead_InvalidTransitions(t *testing.T) {
	l, err := NewLead("Dana", "Reyes", "dana@example.com", "", LeadSourceWebForm, "")
	require.NoError(t, err)

	// Cannot qualify before contact
	assert.Error(t, l.Qualify())

	require.NoError(t, l.MarkLost("went elsewhere"))
	assert.Error(t, l.MarkContacted())
	assert.Error(t, l.Convert(uuid.New()))
	assert.Error(t, l.MarkLost("again"))
}

func TestLead_Touch(t *testing.T) {
	l, err := NewLead("Dana", "Reyes", "dana@example.com", "", LeadSourceWebForm, "first message")
	require.NoError(t, err)

	require.NoError(t, l.Touch("555-0102", "second message"))
	assert.Equal(t, "second message", l.Message)
	assert.Equal(t, "555-0102", l.Phone)

	// Existing phone is not overwritten
	require.NoError(t, l.Touch("555-9999", ""))
	assert.Equal(t, "555-0102", l.Phone)
	assert.Equal(t, "second message", l.Message)

	require.NoError(t, l.Convert(uuid.New()))
	assert.Error(t, l.Touch("", "too late"))
}
