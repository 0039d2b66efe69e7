package errs

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed or missing input. Never retried.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// NotFoundError reports a missing entity. Never retried.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IneligibleError reports a business-rule violation. It carries every
// failing reason, not just the first.
type IneligibleError struct {
	Reasons []string
}

func (e *IneligibleError) Error() string {
	if len(e.Reasons) == 0 {
		return "payout not eligible"
	}
	return "payout not eligible: " + strings.Join(e.Reasons, "; ")
}

// InvalidStateError reports an operation attempted against an entity whose
// current status does not permit it.
type InvalidStateError struct {
	Entity   string
	Current  string
	Expected string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s status is %s, expected %s", e.Entity, e.Current, e.Expected)
}

// InvalidTransitionError reports an illegal state machine edge.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("illegal payout transition from %s to %s", e.From, e.To)
}

// ProviderError reports a failure from an external settlement channel.
// Retryable failures become failed ledger entries eligible for retry.
type ProviderError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %s: %s", e.Code, e.Message)
}

// RetryLimitError reports that a payout has exhausted its bounded attempts
// and needs manual intervention.
type RetryLimitError struct {
	Limit int
	Count int
}

func (e *RetryLimitError) Error() string {
	return fmt.Sprintf("retry limit reached: %d of %d attempts used", e.Count, e.Limit)
}
