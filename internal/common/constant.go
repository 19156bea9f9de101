package common

// CSRFFormField is the form field carrying the CSRF token on mutating requests.
const CSRFFormField = "csrf_token"

// CSRFHeaderName carries the CSRF token for clients that cannot send form fields.
const CSRFHeaderName = "X-CSRF-Token"

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "session"

// Privilege levels of a user account.
const (
	PrivilegeUnconfirmed = 0
	PrivilegeConfirmed   = 1
	PrivilegeAdmin       = 2
)
