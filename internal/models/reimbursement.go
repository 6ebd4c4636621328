package models

import "time"

// ReimbursementStatus is the one-shot review state of an expense claim.
type ReimbursementStatus string

const (
	ReimbursementPending  ReimbursementStatus = "pending"
	ReimbursementApproved ReimbursementStatus = "approved"
	ReimbursementRejected ReimbursementStatus = "rejected"
)

// Reimbursement is the expense claim attached 1:1 to an application.
// TotalAmount is frozen at creation as the sum of the four fee fields
// and never recomputed afterwards.
type Reimbursement struct {
	ID                  int64               `db:"id" json:"id"`
	ApplicationID       int64               `db:"application_id" json:"application_id"`
	RegistrationFee     float64             `db:"registration_fee" json:"registration_fee"`
	TransportationFee   float64             `db:"transportation_fee" json:"transportation_fee"`
	AccommodationFee    float64             `db:"accommodation_fee" json:"accommodation_fee"`
	OtherFee            float64             `db:"other_fee" json:"other_fee"`
	OtherFeeDescription string              `db:"other_fee_description" json:"other_fee_description"`
	TotalAmount         float64             `db:"total_amount" json:"total_amount"`
	BankName            string              `db:"bank_name" json:"bank_name"`
	BankAccount         string              `db:"bank_account" json:"bank_account"`
	AccountName         string              `db:"account_name" json:"account_name"`
	InvoicePath         *string             `db:"invoice_path" json:"invoice,omitempty"`
	Status              ReimbursementStatus `db:"status" json:"status"`
	Comment             string              `db:"comment" json:"comment"`
	SubmitTime          time.Time           `db:"submit_time" json:"submit_time"`
	UpdateTime          time.Time           `db:"update_time" json:"update_time"`
}
