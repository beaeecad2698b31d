package compute

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount formats an FCFA amount rounded to the unit, with thousands
// separators, e.g. 1234567 becomes "1,234,567"
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return amountPrinter.Sprintf("%d", int64(math.Round(v)))
}
