package utils

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "gare de bobo-dioulasso", NormalizeText("Gare de Bobo-Dioulasso"))
	assert.Equal(t, "koudougou peage", NormalizeText("Koudougou Péage"))
	assert.Equal(t, "expire bientot", NormalizeText("Expire BIENTÔT"))
	assert.Equal(t, "", NormalizeText(""))
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", GetClientIP(r))

	r.Header.Set("X-Forwarded-For", "196.28.245.10, 10.0.0.1")
	assert.Equal(t, "196.28.245.10", GetClientIP(r))

	r.Header.Set("X-Real-Ip", "196.28.245.11")
	assert.Equal(t, "196.28.245.11", GetClientIP(r))
}

func TestRequestIsTLS(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.False(t, RequestIsTLS(r))

	r.Header.Set("X-Forwarded-Proto", "HTTPS")
	assert.True(t, RequestIsTLS(r))

	r = httptest.NewRequest("GET", "/", nil)
	r.TLS = &tls.ConnectionState{}
	assert.True(t, RequestIsTLS(r))
}

func TestFrenchFormatting(t *testing.T) {
	d := time.Date(2026, time.October, 16, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "octobre 2026", FormatFrenchMonth(d))
	assert.Equal(t, "16/10/2026", FormatFrenchDate(d))
	assert.Equal(t, "16/10/2026 à 14:05", FormatFrenchDateTime(d))
}
