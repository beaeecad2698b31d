package compute

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(0))
	assert.Equal(t, "500", FormatAmount(500))
	assert.Equal(t, "3,500", FormatAmount(3500))
	assert.Equal(t, "1,234,568", FormatAmount(1234567.6))
	assert.Equal(t, "-2,000", FormatAmount(-2000))
	assert.Equal(t, "0", FormatAmount(math.NaN()))
	assert.Equal(t, "0", FormatAmount(math.Inf(1)))
}
