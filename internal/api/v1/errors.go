package v1

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smnuman/youtube-commenter/internal/domain"
)

// mapServiceError converts domain sentinels into huma status errors. The
// fallback message is used for the 500 path so internals never leak to
// clients.
func mapServiceError(err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound("resource not found")
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict("resource conflict")
	case errors.Is(err, domain.ErrRateLimited):
		return huma.Error429TooManyRequests("platform rate limit exceeded, try again later")
	case errors.Is(err, domain.ErrReauthRequired):
		return huma.Error401Unauthorized("platform authorization revoked, sign in again")
	case errors.Is(err, domain.ErrUnauthorized):
		return huma.Error401Unauthorized("platform rejected the credentials, sign in again")
	case errors.Is(err, domain.ErrUnauthenticated):
		return huma.Error401Unauthorized("not authenticated")
	case errors.Is(err, domain.ErrInvalidContent):
		return huma.Error422UnprocessableEntity("platform rejected the content")
	case errors.Is(err, domain.ErrGenerationFailed):
		return huma.Error502BadGateway("reply generation failed, try again or write the reply manually")
	default:
		return huma.Error500InternalServerError(fallback, err)
	}
}
