package compute

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppMessageZone(t *testing.T) {
	s := newTestSnapshot()
	report, err := BuildReport(s, ScopeZone, "z1", testNow)
	require.NoError(t, err)

	msg := WhatsAppMessage(report, testNow)
	lines := strings.Split(msg, "\n")
	assert.Equal(t, "📊 *Rapport ZONE - Centre*", lines[0])
	assert.Equal(t, "📅 Date: 16/10/2026 à 12:00", lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "📈 *Statistiques:*", lines[3])
	assert.Equal(t, []string{
		"• Total recharges: 2",
		"• Recharges actives: 0",
		"• Expirent bientôt: 1",
		"• Expirées: 1",
		"💰 Coût total: 3,000 FCFA",
		"🏬 Agences: 1",
		"🚉 Gares: 2",
		"",
		"🏢 Système de gestion des recharges - Burkina Faso",
	}, lines[4:])
}

func TestWhatsAppMessageGare(t *testing.T) {
	s := newTestSnapshot()
	report, err := BuildReport(s, ScopeGare, "g3", testNow)
	require.NoError(t, err)

	msg := WhatsAppMessage(report, testNow)
	assert.True(t, strings.HasPrefix(msg, "📊 *Rapport GARE - Bobo-Dioulasso*\n"))
	assert.Contains(t, msg, "• Recharges actives: 1\n")
	assert.Contains(t, msg, "💰 Coût total: 500 FCFA\n")
	assert.NotContains(t, msg, "Agences")
	assert.NotContains(t, msg, "Gares:")
}

func TestWhatsAppURL(t *testing.T) {
	assert.Equal(t, "https://wa.me/22670112233?text=a%20b%26c", WhatsAppURL("+226 70 11 22 33", "a b&c"))
	assert.Equal(t, "https://wa.me/?text=%2A1%2A%0Aok", WhatsAppURL("", "*1*\nok"))
}
