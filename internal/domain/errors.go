package domain

import "fmt"

// AnswerErrorPrefix marks a turn answer that failed; such answers score 0.0.
const AnswerErrorPrefix = "Error"

// DiscoveryErrorKind classifies persona discovery failures.
type DiscoveryErrorKind string

const (
	// DiscoveryUnreachable covers transport failures: refused, timeout, DNS.
	DiscoveryUnreachable DiscoveryErrorKind = "unreachable"
	// DiscoveryMissingField covers reachable but malformed profile responses.
	DiscoveryMissingField DiscoveryErrorKind = "missing_field"
)

// ValidationError indicates a malformed evaluation request. Detected before
// any network call; fatal to the run.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid evaluation request: %s", e.Reason)
}

// DiscoveryError indicates the subject's persona could not be discovered.
// Fatal to the run.
type DiscoveryError struct {
	Kind    DiscoveryErrorKind
	Address string
	Cause   error
}

func (e *DiscoveryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("persona discovery failed (%s) for %s: %v", e.Kind, e.Address, e.Cause)
	}
	return fmt.Sprintf("persona discovery failed (%s) for %s", e.Kind, e.Address)
}

func (e *DiscoveryError) Unwrap() error { return e.Cause }

// InternalError indicates an unexpected failure in aggregation or report
// assembly. Fatal; never silently dropped.
type InternalError struct {
	Step  string
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error during %s: %v", e.Step, e.Cause)
}

func (e *InternalError) Unwrap() error { return e.Cause }
