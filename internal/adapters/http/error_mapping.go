package httpadapter

import (
	"context"
	"errors"
	"net/http"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
)

// statusClientClosedRequest is logged when the caller went away before the
// model answered; the response is never seen.
const statusClientClosedRequest = 499

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrCredential):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrExtraction):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrService):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorOutcome is the metrics label for a failed analysis.
func errorOutcome(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrTooLarge):
		return "too_large"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid_input"
	case domain.IsKind(err, domain.ErrCredential):
		return "credential_error"
	case domain.IsKind(err, domain.ErrExtraction):
		return "extraction_error"
	case domain.IsKind(err, domain.ErrService):
		return "service_error"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal_error"
	}
}

// errorTitle is the heading of the HTML error page.
func errorTitle(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrExtraction):
		return "Error reading PDF"
	case domain.IsKind(err, domain.ErrCredential):
		return "API Key Error"
	case domain.IsKind(err, domain.ErrTooLarge), domain.IsKind(err, domain.ErrInvalidInput):
		return "Upload Error"
	default:
		return "Analysis Error"
	}
}
