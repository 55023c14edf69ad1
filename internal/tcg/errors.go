package tcg

import (
	"errors"
	"fmt"
)

// InvalidCredentialError indicates the configured API key was rejected
// (HTTP 401). Not retryable: the key must be fixed in the configuration.
type InvalidCredentialError struct{}

// Error implements the error interface.
func (e *InvalidCredentialError) Error() string {
	return "invalid API key: check provider.api_key in the configuration"
}

// PlanRestrictedError indicates the endpoint requires a higher provider
// plan (HTTP 403). Not retryable.
type PlanRestrictedError struct {
	Endpoint string
}

// Error implements the error interface.
func (e *PlanRestrictedError) Error() string {
	return fmt.Sprintf("endpoint %s requires a higher provider plan", e.Endpoint)
}

// QuotaExceededError indicates the daily call quota was hit (HTTP 429).
// Retrying is only meaningful after the provider resets the quota,
// nominally the next calendar day.
type QuotaExceededError struct{}

// Error implements the error interface.
func (e *QuotaExceededError) Error() string {
	return "daily call quota exceeded; retry after the provider resets it (next calendar day)"
}

// TransportError is any other non-2xx response. Transient; retryable.
type TransportError struct {
	StatusCode int
	Status     string
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("provider request failed: HTTP %d %s", e.StatusCode, e.Status)
}

// DataUnavailableError indicates a 2xx response whose envelope carried
// success=false. Retryable.
type DataUnavailableError struct {
	Resource string
}

// Error implements the error interface.
func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("provider reported failure fetching %s", e.Resource)
}

// IsQuotaExceeded returns true if err is a QuotaExceededError.
func IsQuotaExceeded(err error) bool {
	var target *QuotaExceededError
	return errors.As(err, &target)
}

// IsInvalidCredential returns true if err is an InvalidCredentialError.
func IsInvalidCredential(err error) bool {
	var target *InvalidCredentialError
	return errors.As(err, &target)
}

// IsPlanRestricted returns true if err is a PlanRestrictedError.
func IsPlanRestricted(err error) bool {
	var target *PlanRestrictedError
	return errors.As(err, &target)
}
