package compute

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/fasorail/recharges/utils"
)

// WhatsAppMessage returns the text shared over WhatsApp for a report
func WhatsAppMessage(report *Report, now time.Time) string {
	stats := report.Statistics
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Rapport %s - %s*\n", strings.ToUpper(report.Kind.Label()), report.EntityName)
	fmt.Fprintf(&b, "📅 Date: %s\n\n", utils.FormatFrenchDateTime(now))
	b.WriteString("📈 *Statistiques:*\n")
	fmt.Fprintf(&b, "• Total recharges: %d\n", stats.TotalRecharges)
	fmt.Fprintf(&b, "• Recharges actives: %d\n", stats.ActiveRecharges)
	fmt.Fprintf(&b, "• Expirent bientôt: %d\n", stats.ExpiringRecharges)
	fmt.Fprintf(&b, "• Expirées: %d\n", stats.ExpiredRecharges)
	fmt.Fprintf(&b, "💰 Coût total: %s FCFA\n", FormatAmount(stats.TotalCost))
	if report.Kind == ScopeZone {
		fmt.Fprintf(&b, "🏬 Agences: %d\n", stats.TotalAgencies)
	}
	if report.Kind != ScopeGare {
		fmt.Fprintf(&b, "🚉 Gares: %d\n", stats.TotalGares)
	}
	b.WriteString("\n🏢 Système de gestion des recharges - Burkina Faso")
	return b.String()
}

// WhatsAppURL returns the wa.me link that opens a chat with phone, prefilled
// with message. Anything but digits is removed from phone; an empty phone
// lets the user pick the recipient.
func WhatsAppURL(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}
