package utils

import (
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/goodsign/monday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RequestIsTLS returns whether a request was made over a HTTPS channel
// Looks at the appropriate headers if the server is behind a proxy
func RequestIsTLS(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return r.TLS != nil
}

var clientIPHeaders = []string{
	"X-Real-Ip",
	"Real-Ip",
	"X-Forwarded-For",
	"X-Forwarded",
	"Forwarded-For",
	"Forwarded",
}

// GetClientIP retrieves the client IP address from the request information.
// It detects common proxy headers to return the actual client's IP and not the proxy's.
func GetClientIP(r *http.Request) string {
	ip := r.RemoteAddr
	for _, header := range clientIPHeaders {
		if value := r.Header.Get(header); value != "" {
			ip = strings.TrimSpace(strings.Split(value, ",")[0])
			break
		}
	}
	return strings.Split(ip, ":")[0]
}

// NormalizeText lowercases s and strips diacritics, so that "Gare de Bobo-Dioulasso"
// and "BOBO" or "Ouagadougou" and "ouagadougou" compare as expected
func NormalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}

// FormatFrenchMonth returns the French name of the month of t, followed by the year
func FormatFrenchMonth(t time.Time) string {
	return monday.Format(t, "January 2006", monday.LocaleFrFR)
}

// FormatFrenchDate formats t as a French short date, e.g. 16/10/2026
func FormatFrenchDate(t time.Time) string {
	return monday.Format(t, "02/01/2006", monday.LocaleFrFR)
}

// FormatFrenchDateTime formats t as a French short date and time, e.g. 16/10/2026 à 14:05
func FormatFrenchDateTime(t time.Time) string {
	return monday.Format(t, "02/01/2006 à 15:04", monday.LocaleFrFR)
}
