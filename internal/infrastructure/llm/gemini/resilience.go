package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
	"github.com/kirillkom/earningscall-analyzer/internal/infrastructure/resilience"
)

// classifyGeminiError decides whether a failure counts against the
// provider's health in the circuit breaker.
func classifyGeminiError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{RecordFailure: false}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return resilience.ErrorClassification{RecordFailure: isTemporaryHTTPStatus(apiErr.Code)}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}

// wrapGeminiError maps a provider failure onto the domain error kinds:
// credential problems become ErrCredential, everything else ErrService,
// additionally ErrTemporary when waiting might help.
func wrapGeminiError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if resilience.IsCircuitOpen(err) {
		return fmt.Errorf("%s: %w: %w: %w", operation, domain.ErrService, domain.ErrTemporary, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case isCredentialFailure(apiErr):
			return domain.WrapError(domain.ErrCredential, operation, err)
		case isTemporaryHTTPStatus(apiErr.Code):
			return fmt.Errorf("%s: %w: %w: %w", operation, domain.ErrService, domain.ErrTemporary, err)
		default:
			return domain.WrapError(domain.ErrService, operation, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w: %w", operation, domain.ErrService, domain.ErrTemporary, err)
	}
	return domain.WrapError(domain.ErrService, operation, err)
}

func isCredentialFailure(apiErr genai.APIError) bool {
	switch apiErr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	case http.StatusBadRequest:
		msg := strings.ToLower(apiErr.Message)
		return strings.Contains(msg, "api key") || strings.Contains(msg, "api_key")
	default:
		return false
	}
}

func isTemporaryHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
