package compute

import (
	"testing"
	"time"

	"github.com/fasorail/recharges/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		end  time.Time
		want Status
	}{
		{"yesterday", testNow.AddDate(0, 0, -1), StatusExpired},
		{"one second ago", testNow.Add(-time.Second), StatusExpired},
		{"right now", testNow, StatusExpiringSoon},
		{"in three days", testNow.AddDate(0, 0, 3), StatusExpiringSoon},
		{"at the horizon", testNow.Add(ExpiryHorizon), StatusExpiringSoon},
		{"just past the horizon", testNow.Add(ExpiryHorizon + time.Second), StatusActive},
		{"in thirty days", testNow.AddDate(0, 0, 30), StatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.end, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// same inputs, same output
			again, _ := Classify(tt.end, testNow)
			assert.Equal(t, got, again)
		})
	}
}

func TestClassifyMissingEndDate(t *testing.T) {
	got, err := Classify(time.Time{}, testNow)
	assert.ErrorIs(t, err, ErrMalformedEntity)
	assert.Equal(t, StatusUnknown, got)

	assert.Equal(t, StatusUnknown, StatusOf(&types.Recharge{ID: "x"}, testNow))
	assert.Equal(t, StatusUnknown, StatusOf(nil, testNow))
}

func TestClassifyTimestamp(t *testing.T) {
	got, err := ClassifyTimestamp("2026-10-19T12:00:00", testNow)
	require.NoError(t, err)
	assert.Equal(t, StatusExpiringSoon, got)

	got, err = ClassifyTimestamp("2026-12-31", testNow)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got)

	got, err = ClassifyTimestamp("31/12/2026", testNow)
	assert.ErrorIs(t, err, ErrMalformedEntity)
	assert.Equal(t, StatusUnknown, got)
}

func TestClassifyRecharge(t *testing.T) {
	s := newTestSnapshot()
	want := []Status{StatusExpired, StatusExpiringSoon, StatusActive}
	for i, r := range s.Recharges {
		got, err := ClassifyRecharge(r, testNow)
		require.NoError(t, err)
		assert.Equal(t, want[i], got, r.ID)
	}

	_, err := ClassifyRecharge(nil, testNow)
	assert.Error(t, err)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Actif", StatusActive.Label())
	assert.Equal(t, "Expire bientôt", StatusExpiringSoon.Label())
	assert.Equal(t, "Expiré", StatusExpired.Label())
	assert.Equal(t, "Inconnu", StatusUnknown.Label())
}
