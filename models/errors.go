package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrPaymentProcessed    = errors.New("payment already processed")
	ErrEnrollmentNotLoaded = errors.New("payment enrollment not loaded")
	ErrTrialUsed           = errors.New("trial already used")
	ErrNotRenewable        = errors.New("plan cannot be renewed")
	ErrNotUpgrade          = errors.New("target plan is not an upgrade")
	ErrDowngrade           = errors.New("target plan is lower than the running plan")
	ErrStaleRecord         = errors.New("record was modified concurrently")
	ErrAlreadyEnrolled     = errors.New("already enrolled in course")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrPaymentRequired     = errors.New("payment required")
	ErrAlreadyPremium      = errors.New("premium access already active")
	ErrReferenceUsed       = errors.New("payment reference already used")
	ErrUnsupportedMethod   = errors.New("unsupported payment method")
	ErrInvalidPlan         = errors.New("invalid subscription plan")
)

// TransitionError reports a status change that the state machine does not allow.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot transition from %s to %s", e.Entity, e.From, e.To)
}

// Is makes errors.Is(err, ErrInvalidTransition) hold for every TransitionError.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
