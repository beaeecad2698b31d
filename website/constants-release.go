// +build release

package website

const (
	// DEBUG is whether this is a debug build
	DEBUG = false

	// CSRFfieldName is the name of the form field used for CSRF protection
	CSRFfieldName = "recharges.csrf"

	// CSRFcookieName is the name of the cookie used for CSRF protection
	CSRFcookieName = "_recharges_csrf"

	// SessionName is the name of the cookie session of signed in users
	SessionName = "recharges"
)
