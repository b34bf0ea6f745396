package domain

import "fmt"

// AuthenticationError is returned by the credential gate.
// Every instance renders the same way at the HTTP boundary.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Reason
}

// ValidationError describes a malformed request. Message is shown to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CacheError records a failed cache operation. It never reaches the caller.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// ProviderErrorKind classifies a failed provider call.
type ProviderErrorKind string

const (
	// ProviderTimeout means a single call exceeded its deadline.
	ProviderTimeout ProviderErrorKind = "timeout"
	// ProviderRejected means the provider refused the input (for example an unsupported language).
	ProviderRejected ProviderErrorKind = "rejected"
	// ProviderUnavailable means transient failures outlasted the retry budget or the breaker is open.
	ProviderUnavailable ProviderErrorKind = "unavailable"
)

// ProviderError is a terminal failure translating one text.
type ProviderError struct {
	Kind ProviderErrorKind
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return "provider " + string(e.Kind)
	}
	return fmt.Sprintf("provider %s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
