package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/SONDER730/competition-platform/internal/models"
)

// ReimbursementRepository manages persistence for reimbursement requests.
type ReimbursementRepository struct {
	db *sqlx.DB
}

// NewReimbursementRepository constructs a ReimbursementRepository.
func NewReimbursementRepository(db *sqlx.DB) *ReimbursementRepository {
	return &ReimbursementRepository{db: db}
}

const reimbursementColumns = "id, application_id, registration_fee, transportation_fee, accommodation_fee, other_fee, other_fee_description, total_amount, bank_name, bank_account, account_name, invoice_path, status, comment, submit_time, update_time"

// Create inserts a new reimbursement and assigns its generated id.
func (r *ReimbursementRepository) Create(ctx context.Context, reimb *models.Reimbursement) error {
	now := time.Now().UTC()
	reimb.SubmitTime = now
	reimb.UpdateTime = now

	const query = `INSERT INTO reimbursements (application_id, registration_fee, transportation_fee, accommodation_fee, other_fee, other_fee_description, total_amount, bank_name, bank_account, account_name, status, submit_time, update_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		reimb.ApplicationID,
		reimb.RegistrationFee,
		reimb.TransportationFee,
		reimb.AccommodationFee,
		reimb.OtherFee,
		reimb.OtherFeeDescription,
		reimb.TotalAmount,
		reimb.BankName,
		reimb.BankAccount,
		reimb.AccountName,
		reimb.Status,
		reimb.SubmitTime,
		reimb.UpdateTime,
	).Scan(&reimb.ID); err != nil {
		return fmt.Errorf("create reimbursement: %w", err)
	}
	return nil
}

// FindByApplicationID fetches the reimbursement attached to an application.
func (r *ReimbursementRepository) FindByApplicationID(ctx context.Context, applicationID int64) (*models.Reimbursement, error) {
	query := fmt.Sprintf("SELECT %s FROM reimbursements WHERE application_id = $1", reimbursementColumns)
	var reimb models.Reimbursement
	if err := r.db.GetContext(ctx, &reimb, query, applicationID); err != nil {
		return nil, err
	}
	return &reimb, nil
}

// ExistsByApplicationID reports whether an application already carries a
// reimbursement request.
func (r *ReimbursementRepository) ExistsByApplicationID(ctx context.Context, applicationID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM reimbursements WHERE application_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, applicationID); err != nil {
		return false, fmt.Errorf("check reimbursement exists: %w", err)
	}
	return exists, nil
}

// UpdateInvoicePath records the stored path of the invoice file.
func (r *ReimbursementRepository) UpdateInvoicePath(ctx context.Context, id int64, path string) error {
	const query = `UPDATE reimbursements SET invoice_path = $1, update_time = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, path, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update invoice path: %w", err)
	}
	return nil
}

// Review transitions a pending reimbursement to approved or rejected,
// recording the reviewer comment. Reports false when the reimbursement was
// not pending anymore.
func (r *ReimbursementRepository) Review(ctx context.Context, id int64, status models.ReimbursementStatus, comment string) (bool, error) {
	const query = `UPDATE reimbursements SET status = $1, comment = $2, update_time = $3 WHERE id = $4 AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, status, comment, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("review reimbursement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("review reimbursement: %w", err)
	}
	return affected == 1, nil
}
