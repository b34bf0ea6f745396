// Package provider calls the external translation capability. Backends speak a
// concrete wire protocol; Client adds the per-call timeout, bounded retry with
// backoff and a circuit breaker on top of any backend.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Translator is the single-method translation capability.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(ctx context.Context, text, targetLanguage string) (string, error)

// Translate calls f.
func (f TranslatorFunc) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	return f(ctx, text, targetLanguage)
}

// ErrRejected marks failures that retrying cannot fix, such as an unsupported language.
// Backends wrap it; every other backend error is treated as transient.
var ErrRejected = errors.New("provider rejected request")

// StatusError is a non-2xx response from an HTTP provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// retryableStatusCodes lists HTTP statuses that indicate a transient failure.
var retryableStatusCodes = map[int]bool{
	http.StatusRequestTimeout:      true, // 408
	http.StatusTooManyRequests:     true, // 429
	http.StatusInternalServerError: true, // 500
	http.StatusBadGateway:          true, // 502
	http.StatusServiceUnavailable:  true, // 503
	http.StatusGatewayTimeout:      true, // 504
}

// IsRetryableStatus reports whether an HTTP status should be retried.
func IsRetryableStatus(code int) bool {
	if retryableStatusCodes[code] {
		return true
	}
	return code >= 500
}

// statusError builds the error for a failed HTTP response, marking
// non-retryable statuses as rejected.
func statusError(code int, body string) error {
	err := &StatusError{StatusCode: code, Body: body}
	if IsRetryableStatus(code) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRejected, err)
}
