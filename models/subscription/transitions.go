package subscription

// Activate is legal from every status and is not listed here.
var subscriptionTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusTrial:     true,
		StatusCancelled: true,
	},
	StatusTrial: {
		StatusActive:    true,
		StatusCancelled: true,
		StatusExpired:   true,
	},
	StatusActive: {
		StatusActive:    true, // renewal
		StatusCancelled: true,
		StatusExpired:   true,
	},
	StatusCancelled: {
		StatusActive:  true,
		StatusExpired: true,
	},
	StatusExpired: {
		StatusActive: true,
	},
}

// CanTransitionTo reports whether the subscription may move to target.
func (s *Subscription) CanTransitionTo(target Status) bool {
	return subscriptionTransitions[s.Status][target]
}

var paymentTransitions = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentPending: {
		PaymentCompleted: true,
		PaymentFailed:    true,
	},
	PaymentCompleted: {
		PaymentRefunded: true,
	},
}

// CanTransitionTo reports whether the payment may move to target.
func (p *SubscriptionPayment) CanTransitionTo(target PaymentStatus) bool {
	return paymentTransitions[p.Status][target]
}
