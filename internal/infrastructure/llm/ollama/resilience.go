package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
	"github.com/kirillkom/earningscall-analyzer/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ollama status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

func classifyOllamaError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{RecordFailure: false}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return resilience.ErrorClassification{RecordFailure: isTemporaryHTTPStatus(statusErr.StatusCode)}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}

// wrapOllamaError maps a failed call onto ErrService, adding ErrTemporary
// when the user may simply try again. A 404 means the model is not pulled.
func wrapOllamaError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if resilience.IsCircuitOpen(err) {
		return fmt.Errorf("%s: %w: %w: %w", operation, domain.ErrService, domain.ErrTemporary, err)
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if isTemporaryHTTPStatus(statusErr.StatusCode) {
			return fmt.Errorf("%s: %w: %w: %w", operation, domain.ErrService, domain.ErrTemporary, err)
		}
		return domain.WrapError(domain.ErrService, operation, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w: %w", operation, domain.ErrService, domain.ErrTemporary, err)
	}
	return domain.WrapError(domain.ErrService, operation, err)
}

func isTemporaryHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
