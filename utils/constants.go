package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (7 days)
	AccessTokenTTL = 7 * 24 * time.Hour

	// AccessTokenTTLSeconds is the time-to-live for access tokens in seconds (604800 seconds = 7 days)
	AccessTokenTTLSeconds = 604800

	// SessionTTL matches the access token lifetime; a session row and its
	// token expire together
	SessionTTL = AccessTokenTTL

	// ResetTokenTTL is the time-to-live for password reset tokens (30 minutes)
	ResetTokenTTL = 30 * time.Minute
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
