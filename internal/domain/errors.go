package domain

import "errors"

// Sentinel errors for the domain layer. The platform client, session gate,
// and orchestrator all report failures in terms of these so that the API
// boundary can map them to HTTP statuses without inspecting upstream detail.
var (
	ErrNotFound        = errors.New("domain: not found")
	ErrConflict        = errors.New("domain: conflict")
	ErrUnauthenticated = errors.New("domain: unauthenticated")
	ErrUnauthorized    = errors.New("domain: unauthorized")
	ErrReauthRequired  = errors.New("domain: reauthorization required")
	ErrRateLimited     = errors.New("domain: rate limited")
	ErrInvalidContent  = errors.New("domain: invalid content")
	ErrGenerationFailed = errors.New("domain: generation failed")
)
