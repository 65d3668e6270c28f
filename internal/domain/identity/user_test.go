package identity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("Dana@Example.com", "$2a$10$hash", "Dana", "Reyes", UserRoleClient)
	require.NoError(t, err)

	assert.Equal(t, "dana@example.com", u.Email)
	assert.Equal(t, UserStatusActive, u.Status)
	assert.Equal(t, "Dana Reyes", u.FullName())
	assert.True(t, u.CommissionRate.IsZero())
	assert.Len(t, u.GetDomainEvents(), 1)
}

func TestNewUser_Invalid(t *testing.T) {
	_, err := NewUser("", "hash", "Dana", "Reyes", UserRoleClient)
	assert.Error(t, err)

	_, err = NewUser("not-an-email", "hash", "Dana", "Reyes", UserRoleClient)
	assert.Error(t, err)

	_, err = NewUser("dana@example.com", "", "Dana", "Reyes", UserRoleClient)
	assert.Error(t, err)

	_, err = NewUser("dana@example.com", "hash", "", "", UserRoleClient)
	assert.Error(t, err)

	_, err = NewUser("dana@example.com", "hash", "Dana", "Reyes", UserRole("superuser"))
	assert.Error(t, err)
}

func TestUser_TrackingCode(t *testing.T) {
	affiliate, err := NewUser("aff@example.com", "hash", "Alex", "Kim", UserRoleAffiliate)
	require.NoError(t, err)

	require.NoError(t, affiliate.AssignTrackingCode("tax4me"))
	assert.Equal(t, "TAX4ME", affiliate.TrackingCode)

	assert.Error(t, affiliate.AssignTrackingCode("ab"))
	assert.Error(t, affiliate.AssignTrackingCode("has spaces"))

	client, err := NewUser("c@example.com", "hash", "Casey", "Lee", UserRoleClient)
	require.NoError(t, err)
	assert.Error(t, client.AssignTrackingCode("TAX4ME"))
}

func TestUser_CommissionRate(t *testing.T) {
	preparer, err := NewUser("p@example.com", "hash", "Pat", "Nguyen", UserRolePreparer)
	require.NoError(t, err)

	require.NoError(t, preparer.SetCommissionRate(decimal.NewFromFloat(0.2)))
	assert.Equal(t, "0.2", preparer.CommissionRate.String())

	assert.Error(t, preparer.SetCommissionRate(decimal.NewFromFloat(-0.1)))
	assert.Error(t, preparer.SetCommissionRate(decimal.NewFromFloat(1.1)))

	client, err := NewUser("c@example.com", "hash", "Casey", "Lee", UserRoleClient)
	require.NoError(t, err)
	assert.Error(t, client.SetCommissionRate(decimal.NewFromFloat(0.1)))
}

func TestUser_StatusTransitions(t *testing.T) {
	u, err := NewUser("dana@example.com", "hash", "Dana", "Reyes", UserRoleClient)
	require.NoError(t, err)

	assert.Error(t, u.Activate())

	require.NoError(t, u.Suspend())
	assert.False(t, u.IsActive())
	assert.Error(t, u.Suspend())

	require.NoError(t, u.Activate())
	assert.True(t, u.IsActive())

	require.NoError(t, u.Deactivate())
	assert.Error(t, u.Deactivate())
}

func TestGenerateTrackingCode(t *testing.T) {
	code := GenerateTrackingCode()
	assert.Len(t, code, 8)
	assert.Regexp(t, `^[A-Z0-9]{8}$`, code)
}
