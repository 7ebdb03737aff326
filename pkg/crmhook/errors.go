package crmhook

import (
	"errors"
	"fmt"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired     = errors.New("config is required")
	ErrWebhookURLRequired = errors.New("webhook URL is required")
	ErrActionRequired     = errors.New("action name is required")
	ErrNoMorePages        = errors.New("no more pages")
	ErrMissingItemID      = errors.New("listing item has no usable ID field")
	ErrResultKeyAbsent    = errors.New("result key absent from response")
	ErrNotAnIdentifier    = errors.New("result is not an identifier")
)

// TransportError reports a physical exchange that completed with a
// non-success HTTP status.
type TransportError struct {
	// StatusCode is the HTTP status of the failed exchange.
	StatusCode int
	// Params holds the serialized outbound parameters.
	Params string
	// Response holds the serialized response body.
	Response string
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: HTTP %d, params: %s, response: %s", e.StatusCode, e.Params, e.Response)
}

// APIError reports an application-level error the portal returned on an
// otherwise successful exchange.
type APIError struct {
	// Code is the portal's error code, when supplied.
	Code string
	// Description is the portal's error_description, when supplied.
	Description string
	// Params holds the serialized outbound parameters.
	Params string
	// Response holds the serialized response body.
	Response string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("portal error %q: %s, params: %s, response: %s", e.Code, e.Description, e.Params, e.Response)
}

// BatchError reports a batch exchange whose per-command error collection was
// non-empty. No partial results are surfaced in that case even when some
// commands nominally succeeded.
type BatchError struct {
	// Commands holds the serialized command set that was submitted.
	Commands string
	// Response holds the serialized batch response.
	Response string
	// Failed maps command labels to the error text reported for them.
	Failed map[string]string
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return fmt.Sprintf("batch failed for %d command(s), commands: %s, response: %s", len(e.Failed), e.Commands, e.Response)
}

// CountMismatchError reports a batch chunk whose result count diverged from
// the command count, guarding against the portal silently dropping or
// deduplicating commands.
type CountMismatchError struct {
	// Sent is the number of commands submitted in the chunk.
	Sent int
	// Received is the number of results the portal returned.
	Received int
	// Response holds the serialized batch response.
	Response string
}

// Error implements the error interface.
func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("batch count mismatch: sent %d commands, received %d results, response: %s", e.Sent, e.Received, e.Response)
}

// IdentifierMissingError reports a bulk-update item that carries no
// identifier field. Detection happens before any network call for the
// item's chunk.
type IdentifierMissingError struct {
	// Index is the position of the offending item in the caller's list.
	Index int
}

// Error implements the error interface.
func (e *IdentifierMissingError) Error() string {
	return fmt.Sprintf("item %d has no ID field", e.Index)
}

// EncodingError reports a parameter value that cannot be represented in the
// transport's form encoding.
type EncodingError struct {
	// Key is the parameter path that failed to encode.
	Key string
	// Value describes the unrepresentable value.
	Value string
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("parameter %q cannot be encoded: %s", e.Key, e.Value)
}

// LookupError reports a requested label absent from a composed batch result.
type LookupError struct {
	// Label is the missing result label.
	Label string
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("label %q absent from batch result", e.Label)
}

// IsTransportError checks whether the error is a transport-level failure.
func IsTransportError(err error) bool {
	target := &TransportError{}

	return errors.As(err, &target)
}

// IsAPIError checks whether the error is a portal-reported application error.
func IsAPIError(err error) bool {
	target := &APIError{}

	return errors.As(err, &target)
}

// IsBatchError checks whether the error is a failed batch.
func IsBatchError(err error) bool {
	target := &BatchError{}

	return errors.As(err, &target)
}

// IsCountMismatch checks whether the error is a batch count divergence.
func IsCountMismatch(err error) bool {
	target := &CountMismatchError{}

	return errors.As(err, &target)
}

// IsIdentifierMissing checks whether the error is a bulk item without an ID.
func IsIdentifierMissing(err error) bool {
	target := &IdentifierMissingError{}

	return errors.As(err, &target)
}

// IsEncodingError checks whether the error is an unrepresentable parameter.
func IsEncodingError(err error) bool {
	target := &EncodingError{}

	return errors.As(err, &target)
}

// IsLookupError checks whether the error is a missing composed-result label.
func IsLookupError(err error) bool {
	target := &LookupError{}

	return errors.As(err, &target)
}
