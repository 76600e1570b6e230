package course

import (
	"time"

	"academy/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentMethod is how a learner pays for a course
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodPayPal       PaymentMethod = "PAYPAL"
	MethodCreditCard   PaymentMethod = "CREDIT_CARD"
	MethodFree         PaymentMethod = "FREE"
)

// IsInstant reports whether the method settles without admin review.
func (m PaymentMethod) IsInstant() bool {
	return m == MethodPayPal || m == MethodCreditCard || m == MethodFree
}

// PaymentStatus of a course payment attempt
type PaymentStatus string

const (
	PaymentPendingApproval PaymentStatus = "PENDING_APPROVAL"
	PaymentApproved        PaymentStatus = "APPROVED"
	PaymentRejected        PaymentStatus = "REJECTED"
	PaymentCancelled       PaymentStatus = "CANCELLED"
)

var paymentDisplay = map[PaymentStatus][2]string{
	PaymentPendingApproval: {"Pending approval", "warning"},
	PaymentApproved:        {"Approved", "success"},
	PaymentRejected:        {"Rejected", "danger"},
	PaymentCancelled:       {"Cancelled", "secondary"},
}

func (s PaymentStatus) DisplayName() string { return paymentDisplay[s][0] }
func (s PaymentStatus) BadgeClass() string  { return paymentDisplay[s][1] }

// Payment is one payment attempt for an enrollment
type Payment struct {
	gorm.Model
	EnrollmentID         uint              `json:"enrollment_id" gorm:"index;not null"`
	UserID               uint              `json:"user_id" gorm:"index;not null"`
	Amount               float64           `json:"amount" gorm:"not null"`
	Currency             string            `json:"currency" gorm:"type:varchar(3);default:'USD'"`
	PaymentMethod        PaymentMethod     `json:"payment_method" gorm:"type:varchar(30);not null"`
	Status               PaymentStatus     `json:"status" gorm:"type:varchar(30);not null;default:'PENDING_APPROVAL';index"`
	ProofOfPaymentPath   string            `json:"proof_of_payment_path"`
	BankAccountUsed      string            `json:"bank_account_used"`
	TransferSenderName   string            `json:"transfer_sender_name"`
	TransferReference    string            `json:"transfer_reference"`
	TransferAmount       *float64          `json:"transfer_amount"`
	TransactionReference string            `json:"transaction_reference" gorm:"index"`
	AdditionalNotes      string            `json:"additional_notes"`
	GatewayResponse      datatypes.JSONMap `json:"gateway_response,omitempty"`
	AdminNotes           string            `json:"admin_notes"`
	RejectionReason      string            `json:"rejection_reason"`
	SubmittedAt          time.Time         `json:"submitted_at"`
	ProcessedAt          *time.Time        `json:"processed_at"`
	ProcessedBy          *uint             `json:"processed_by"`
	Version              uint              `json:"version" gorm:"not null;default:0"`

	Enrollment *Enrollment  `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`
	User       *models.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Approve settles the payment and activates its enrollment. Nothing is
// mutated unless both changes are legal.
func (p *Payment) Approve(adminID uint, notes string, now time.Time) error {
	if err := p.guard(PaymentApproved, EnrollmentActive); err != nil {
		return err
	}
	p.settle(PaymentApproved, adminID, now)
	p.AdminNotes = notes
	return p.Enrollment.Activate(now)
}

// Reject declines the payment and cancels its enrollment.
func (p *Payment) Reject(adminID uint, reason, notes string, now time.Time) error {
	if err := p.guard(PaymentRejected, EnrollmentCancelled); err != nil {
		return err
	}
	p.settle(PaymentRejected, adminID, now)
	p.RejectionReason = reason
	p.AdminNotes = notes
	return p.Enrollment.Cancel(now)
}

// Cancel withdraws a proof the learner no longer wants reviewed.
func (p *Payment) Cancel(now time.Time) error {
	if err := p.guard(PaymentCancelled, EnrollmentPendingPayment); err != nil {
		return err
	}
	if p.Enrollment.Status != EnrollmentPaymentPendingApproval {
		return p.Enrollment.transitionError(EnrollmentPendingPayment)
	}
	p.Status = PaymentCancelled
	p.ProcessedAt = &now
	return p.Enrollment.WithdrawPayment()
}

// MarkInstantApproved records a gateway-verified payment. No admin is involved.
func (p *Payment) MarkInstantApproved(now time.Time) {
	p.Status = PaymentApproved
	p.SubmittedAt = now
	p.ProcessedAt = &now
}

func (p *Payment) settle(status PaymentStatus, adminID uint, now time.Time) {
	p.Status = status
	p.ProcessedAt = &now
	p.ProcessedBy = &adminID
}

func (p *Payment) guard(target PaymentStatus, enrollmentTarget EnrollmentStatus) error {
	if !p.CanTransitionTo(target) {
		return models.ErrPaymentProcessed
	}
	if p.Enrollment == nil {
		return models.ErrEnrollmentNotLoaded
	}
	if !p.Enrollment.CanTransitionTo(enrollmentTarget) {
		return p.Enrollment.transitionError(enrollmentTarget)
	}
	return nil
}
