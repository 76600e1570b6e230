package course

import "slices"

var enrollmentTransitions = map[EnrollmentStatus]map[EnrollmentStatus]bool{
	EnrollmentPendingPayment: {
		EnrollmentPaymentPendingApproval: true,
		EnrollmentActive:                 true, // instant payment
		EnrollmentCancelled:              true,
	},
	EnrollmentPaymentPendingApproval: {
		EnrollmentActive:         true,
		EnrollmentCancelled:      true,
		EnrollmentPendingPayment: true, // proof withdrawn
	},
	EnrollmentActive: {
		EnrollmentCompleted: true,
		EnrollmentExpired:   true,
	},
	EnrollmentCancelled: {
		EnrollmentPendingPayment: true,
	},
	EnrollmentExpired: {
		EnrollmentPendingPayment: true,
	},
}

// CanTransitionTo reports whether the enrollment may move to target.
func (e *Enrollment) CanTransitionTo(target EnrollmentStatus) bool {
	return enrollmentTransitions[e.Status][target]
}

// ValidEnrollmentTransitions lists the statuses reachable from s, sorted.
func ValidEnrollmentTransitions(s EnrollmentStatus) []EnrollmentStatus {
	out := make([]EnrollmentStatus, 0, len(enrollmentTransitions[s]))
	for target := range enrollmentTransitions[s] {
		out = append(out, target)
	}
	slices.Sort(out)
	return out
}

var paymentTransitions = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentPendingApproval: {
		PaymentApproved:  true,
		PaymentRejected:  true,
		PaymentCancelled: true,
	},
}

// CanTransitionTo reports whether the payment may move to target.
func (p *Payment) CanTransitionTo(target PaymentStatus) bool {
	return paymentTransitions[p.Status][target]
}
