package dto

// SubmitReimbursementRequest captures the expense claim payload. All fee
// fields default to zero; the other-fee description is required only when
// other_fee is non-zero, which the service enforces.
type SubmitReimbursementRequest struct {
	RegistrationFee     float64 `json:"registration_fee" form:"registration_fee" validate:"gte=0"`
	TransportationFee   float64 `json:"transportation_fee" form:"transportation_fee" validate:"gte=0"`
	AccommodationFee    float64 `json:"accommodation_fee" form:"accommodation_fee" validate:"gte=0"`
	OtherFee            float64 `json:"other_fee" form:"other_fee" validate:"gte=0"`
	OtherFeeDescription string  `json:"other_fee_description" form:"other_fee_description" validate:"omitempty,max=200"`
	BankName            string  `json:"bank_name" form:"bank_name" validate:"required,max=100"`
	BankAccount         string  `json:"bank_account" form:"bank_account" validate:"required,max=34"`
	AccountName         string  `json:"account_name" form:"account_name" validate:"required,max=100"`
}

// ReviewReimbursementRequest captures the teacher's reimbursement decision.
type ReviewReimbursementRequest struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment" validate:"omitempty,max=500"`
}
