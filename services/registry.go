package services

import (
	"academy/config"
	"academy/utils"

	"gorm.io/gorm"
)

// Registry holds the services wired at startup.
type Registry struct {
	Enrollments   *EnrollmentService
	Payments      *PaymentService
	Subscriptions *SubscriptionService
	Content       *ContentService
	Progress      *ProgressService
	Files         utils.FileStore
}

// App is the registry used by the HTTP controllers.
var App *Registry

// NewRegistry wires every service against db.
func NewRegistry(db *gorm.DB, cfg *config.Config, notifier Notifier, gateways Gateways, files utils.FileStore) *Registry {
	return &Registry{
		Enrollments:   NewEnrollmentService(db, notifier),
		Payments:      NewPaymentService(db, notifier, gateways, cfg.BankTransferCurrency),
		Subscriptions: NewSubscriptionService(db, notifier, gateways, cfg.TrialDays, cfg.ReminderDays),
		Content:       NewContentService(db),
		Progress:      NewProgressService(db),
		Files:         files,
	}
}
