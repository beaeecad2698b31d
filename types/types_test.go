package types

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2026-10-16T08:30:00Z", time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)},
		{"rfc3339 with offset", "2026-10-16T08:30:00+01:00", time.Date(2026, 10, 16, 7, 30, 0, 0, time.UTC)},
		{"naive", "2026-10-16T08:30:00", time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)},
		{"naive with fraction", "2026-10-16T08:30:00.123456", time.Date(2026, 10, 16, 8, 30, 0, 123456000, time.UTC)},
		{"date only", "2026-10-16", time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)},
		{"surrounding spaces", " 2026-10-16 ", time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseTimestampMalformed(t *testing.T) {
	for _, input := range []string{"", "   ", "16/10/2026", "tomorrow", "2026-13-01"} {
		_, err := ParseTimestamp(input)
		assert.True(t, errors.Is(err, ErrMalformedEntity), "input %q", input)
	}
}

func TestRechargeValidCost(t *testing.T) {
	r := &Recharge{Cost: 1500}
	cost, err := r.ValidCost()
	require.NoError(t, err)
	assert.Equal(t, 1500.0, cost)

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1)} {
		r := &Recharge{Cost: bad}
		cost, err := r.ValidCost()
		assert.ErrorIs(t, err, ErrMalformedEntity)
		assert.Zero(t, cost)
	}
}

func TestNewAlertForRecharge(t *testing.T) {
	end := time.Date(2026, 11, 20, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	r := &Recharge{
		ID:         "r1",
		LineNumber: "70112233",
		Operator:   "Orange",
		EndDate:    end,
	}

	alert, err := NewAlertForRecharge(r, created)
	require.NoError(t, err)
	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, "r1", alert.RechargeID)
	assert.Equal(t, "Ligne 70112233 (Orange) expire dans 3 jours", alert.Message)
	assert.Equal(t, time.Date(2026, 11, 17, 12, 0, 0, 0, time.UTC), alert.AlertDate)
	assert.Equal(t, AlertLeadDays, alert.DaysBeforeExpiry)
	assert.Equal(t, AlertPending, alert.Status)
	assert.False(t, alert.Dismissed())
	assert.Equal(t, created, alert.CreatedAt)

	_, err = NewAlertForRecharge(&Recharge{ID: "r2"}, created)
	assert.ErrorIs(t, err, ErrMalformedEntity)
}

func TestOperatorTypeOf(t *testing.T) {
	typ, ok := OperatorTypeOf("Moov")
	assert.True(t, ok)
	assert.Equal(t, OperatorTypeMobile, typ)

	typ, ok = OperatorTypeOf("Canalbox")
	assert.True(t, ok)
	assert.Equal(t, OperatorTypeFibre, typ)

	_, ok = OperatorTypeOf("Airtel")
	assert.False(t, ok)

	for _, op := range Operators {
		_, ok := OperatorTypeOf(op)
		assert.True(t, ok, op)
	}
}

func TestRoles(t *testing.T) {
	assert.True(t, RoleSuperAdmin.AtLeast(RoleZoneAdmin))
	assert.True(t, RoleZoneAdmin.AtLeast(RoleZoneAdmin))
	assert.False(t, RoleFieldAgent.AtLeast(RoleZoneAdmin))
	assert.False(t, Role("guest").Valid())
	assert.False(t, Role("guest").AtLeast(RoleFieldAgent))
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, PaymentPrepaid.Valid())
	assert.False(t, PaymentType("credit").Valid())
	assert.True(t, ConnectionSuspended.Valid())
	assert.False(t, ConnectionStatus("broken").Valid())
}

func TestNewUserPassword(t *testing.T) {
	created := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	user, err := NewUser(" Admin@Sitarail.bf ", "Awa Ouédraogo", "s3cret!", RoleSuperAdmin, created)
	require.NoError(t, err)
	assert.Equal(t, "admin@sitarail.bf", user.Email)
	assert.NotEqual(t, "s3cret!", user.PasswordHash)
	assert.True(t, user.CheckPassword("s3cret!"))
	assert.False(t, user.CheckPassword("wrong"))
	assert.Empty(t, user.AssignedGares)

	_, err = NewUser("x@y.bf", "X", "pw", Role("guest"), created)
	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "t-gare-abc", getCacheKey("gare", "abc"))
	assert.Equal(t, "t-zones", getCacheKey("zones"))
}

func TestNullHelpers(t *testing.T) {
	assert.False(t, nullString("").Valid)
	assert.True(t, nullString("x").Valid)

	assert.False(t, nullTime(nil).Valid)
	now := time.Now()
	nt := nullTime(&now)
	require.True(t, nt.Valid)
	assert.Equal(t, now, *timePtr(nt))
	assert.Nil(t, timePtr(nullTime(nil)))
}
