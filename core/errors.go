package core

import (
	"errors"
	"fmt"
)

// Engine error taxonomy. Callers match these with errors.Is.
var (
	// ErrInvalidObservation is returned when an observation is missing a required
	// field or carries a value outside its declared domain.
	ErrInvalidObservation = errors.New("invalid observation")

	// ErrPolicyMisconfiguration is returned at load time for policies that cannot be evaluated.
	ErrPolicyMisconfiguration = errors.New("policy misconfiguration")

	// ErrUnknownPolicy is returned when a policy name is not registered.
	ErrUnknownPolicy = errors.New("unknown policy")
)

// PolicyError describes why a policy failed validation.
type PolicyError struct {
	Policy string
	Reason string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s: policy %q: %s", ErrPolicyMisconfiguration, e.Policy, e.Reason)
}

// Unwrap lets errors.Is match ErrPolicyMisconfiguration.
func (e *PolicyError) Unwrap() error {
	return ErrPolicyMisconfiguration
}

func policyErrorf(policy, format string, args ...any) error {
	return &PolicyError{Policy: policy, Reason: fmt.Sprintf(format, args...)}
}

func invalidObservation(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidObservation, err)
}
