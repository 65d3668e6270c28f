package crm

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_Lifecycle(t *testing.T) {
	task, err := NewTask("Call Dana about W-2", "", TaskPriorityHigh, nil)
	require.NoError(t, err)
	assert.Equal(t, TaskStatusOpen, task.Status)

	require.NoError(t, task.Start())
	assert.Equal(t, TaskStatusInProgress, task.Status)

	require.NoError(t, task.Complete())
	assert.Equal(t, TaskStatusDone, task.Status)
	assert.NotNil(t, task.CompletedAt)
	assert.True(t, task.IsClosed())

	assert.Error(t, task.Start())
	assert.Error(t, task.Cancel())
	assert.Error(t, task.Update("new title", "", TaskPriorityLow, nil))
}

func TestTask_CompleteFromOpen(t *testing.T) {
	task, err := NewTask("Quick item", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, TaskPriorityNormal, task.Priority)

	require.NoError(t, task.Complete())
	assert.Equal(t, TaskStatusDone, task.Status)
}

func TestTask_Overdue(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	task, err := NewTask("Late item", "", TaskPriorityNormal, &past)
	require.NoError(t, err)
	assert.True(t, task.IsOverdue())

	require.NoError(t, task.Cancel())
	assert.False(t, task.IsOverdue())
}

func TestNewContact(t *testing.T) {
	c, err := NewContact("Dana", "Reyes", "Dana@Example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", c.Email)
	assert.Equal(t, "Dana Reyes", c.FullName())

	// Needs at least one reachable channel
	_, err = NewContact("Dana", "", "", "")
	assert.Error(t, err)

	_, err = NewContact("Dana", "", "bad-email", "")
	assert.Error(t, err)
}

func TestContact_LinkUser(t *testing.T) {
	c, err := NewContact("Dana", "Reyes", "dana@example.com", "")
	require.NoError(t, err)

	userID := uuid.New()
	require.NoError(t, c.LinkUser(userID))
	require.NoError(t, c.LinkUser(userID))
	assert.Error(t, c.LinkUser(uuid.New()))
}

func TestNewInteraction(t *testing.T) {
	contactID := uuid.New()
	i, err := NewInteraction(contactID, InteractionKindCall, "Discussed filing status", "", time.Time{})
	require.NoError(t, err)
	assert.False(t, i.OccurredAt.IsZero())

	_, err = NewInteraction(uuid.Nil, InteractionKindCall, "x", "", time.Now())
	assert.Error(t, err)

	_, err = NewInteraction(contactID, InteractionKind("fax"), "x", "", time.Now())
	assert.Error(t, err)

	_, err = NewInteraction(contactID, InteractionKindNote, "", "", time.Now())
	assert.Error(t, err)

	_, err = NewInteraction(contactID, InteractionKindNote, "future", "", time.Now().Add(time.Hour))
	assert.Error(t, err)
}
