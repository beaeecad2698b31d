package compute

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemainingLabel(t *testing.T) {
	assert.Equal(t, "dans 3 jours", RemainingLabel(testNow.Add(72*time.Hour), testNow))
	assert.Equal(t, "dans 3 jours 4 heures", RemainingLabel(testNow.Add(76*time.Hour+10*time.Minute), testNow))
	assert.Equal(t, "il y a 1 jour", RemainingLabel(testNow.Add(-24*time.Hour), testNow))
	assert.Equal(t, "dans 2 semaines", RemainingLabel(testNow.AddDate(0, 0, 14), testNow))
	assert.Equal(t, "maintenant", RemainingLabel(testNow.Add(20*time.Second), testNow))
	assert.Equal(t, NotAvailable, RemainingLabel(time.Time{}, testNow))
}
