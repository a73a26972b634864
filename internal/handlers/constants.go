package handlers

import "chorequest/internal/security"

const (
	SessionCookieName = security.FamilySessionCookie
	ProfileCookieName = security.ProfileTokenCookie
	CSRFHeaderName    = security.CSRFHeader

	ErrInvalidRequestBody  = "Invalid request body"
	ErrInvalidID           = "Invalid id"
	ErrUnauthorized        = "Unauthorized"
	ErrNoProfileSelected   = "No profile selected"
	ErrInternalServerError = "Internal server error"
)
