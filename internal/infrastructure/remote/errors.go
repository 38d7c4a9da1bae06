package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/avolkov/docstream/internal/core/domain"
	"github.com/avolkov/docstream/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "remote status error"
	}
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("remote %s: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("remote %s: %s: %s", e.Operation, e.Status, e.Message)
}

// Unwrap lets callers match coarse semantics without parsing status codes.
func (e *HTTPStatusError) Unwrap() error {
	switch {
	case e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests:
		return domain.ErrTemporary
	case e.StatusCode >= 400:
		return domain.ErrRemoteRejected
	default:
		return nil
	}
}

func classifyHTTPError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		// 4xx is the caller's problem, not the service's health.
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
