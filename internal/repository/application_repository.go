package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/SONDER730/competition-platform/internal/models"
)

// ApplicationRepository manages persistence for competition applications.
//
// All single-record fetches are scoped to the caller (student profile id or
// teacher number) so a record outside the caller's scope behaves exactly like
// a missing one.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationDetailColumns = `a.id, a.student_id, a.competition_id, a.teacher_number,
	a.application_status, a.process_status, a.contact_info, a.description,
	a.photo, a.summary, a.certificate, a.submission_time, a.update_time,
	sp.full_name AS student_name, sp.student_number,
	c.name AS competition_name, c.type AS competition_type,
	tp.full_name AS teacher_name`

const applicationDetailJoins = `FROM applications a
	JOIN student_profiles sp ON sp.id = a.student_id
	JOIN competitions c ON c.id = a.competition_id
	JOIN teacher_profiles tp ON tp.teacher_number = a.teacher_number`

// Create inserts a new application and assigns its generated id.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	now := time.Now().UTC()
	app.SubmissionTime = now
	app.UpdateTime = now

	const query = `INSERT INTO applications (student_id, competition_id, teacher_number, application_status, process_status, contact_info, description, submission_time, update_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		app.StudentID,
		app.CompetitionID,
		app.TeacherNumber,
		app.ApplicationStatus,
		app.ProcessStatus,
		app.ContactInfo,
		app.Description,
		app.SubmissionTime,
		app.UpdateTime,
	).Scan(&app.ID); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindForStudent fetches an application detail visible to the owning student.
func (r *ApplicationRepository) FindForStudent(ctx context.Context, id int64, studentID string) (*models.ApplicationDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.id = $1 AND a.student_id = $2", applicationDetailColumns, applicationDetailJoins)
	var detail models.ApplicationDetail
	if err := r.db.GetContext(ctx, &detail, query, id, studentID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindForTeacher fetches an application detail visible to the assigned teacher.
func (r *ApplicationRepository) FindForTeacher(ctx context.Context, id int64, teacherNumber string) (*models.ApplicationDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.id = $1 AND a.teacher_number = $2", applicationDetailColumns, applicationDetailJoins)
	var detail models.ApplicationDetail
	if err := r.db.GetContext(ctx, &detail, query, id, teacherNumber); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByStudent returns all applications owned by a student, newest first.
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID string, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	return r.list(ctx, "a.student_id", studentID, filter)
}

// ListByTeacher returns all applications assigned to a teacher, newest first.
func (r *ApplicationRepository) ListByTeacher(ctx context.Context, teacherNumber string, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	return r.list(ctx, "a.teacher_number", teacherNumber, filter)
}

func (r *ApplicationRepository) list(ctx context.Context, scopeColumn, scopeValue string, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	conditions := []string{fmt.Sprintf("%s = $1", scopeColumn)}
	args := []interface{}{scopeValue}

	if filter.ApplicationStatus != nil {
		conditions = append(conditions, fmt.Sprintf("a.application_status = $%d", len(args)+1))
		args = append(args, *filter.ApplicationStatus)
	}
	if filter.ProcessStatus != nil {
		conditions = append(conditions, fmt.Sprintf("a.process_status = $%d", len(args)+1))
		args = append(args, *filter.ProcessStatus)
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s %s ORDER BY a.submission_time DESC LIMIT %d OFFSET %d",
		applicationDetailColumns, applicationDetailJoins, where, size, offset)
	var details []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s %s", applicationDetailJoins, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	return details, total, nil
}

// UpdateApplicationStatus transitions application_status from one value to
// another. It reports false when the row was not in the expected state, which
// makes concurrent reviews race-safe without explicit locking.
func (r *ApplicationRepository) UpdateApplicationStatus(ctx context.Context, id int64, from, to models.ApplicationStatus) (bool, error) {
	const query = `UPDATE applications SET application_status = $1, update_time = $2 WHERE id = $3 AND application_status = $4`
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("update application status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update application status: %w", err)
	}
	return affected == 1, nil
}

// UpdateProcessStatus transitions process_status from ongoing to ended.
// Reports false when the process was not ongoing.
func (r *ApplicationRepository) UpdateProcessStatus(ctx context.Context, id int64, to models.ProcessStatus) (bool, error) {
	const query = `UPDATE applications SET process_status = $1, update_time = $2 WHERE id = $3 AND process_status = $4`
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, models.ProcessOngoing)
	if err != nil {
		return false, fmt.Errorf("update process status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update process status: %w", err)
	}
	return affected == 1, nil
}

// UpdateAttachment records the stored path of one attachment slot.
func (r *ApplicationRepository) UpdateAttachment(ctx context.Context, id int64, kind models.AttachmentKind, path string) error {
	query := fmt.Sprintf("UPDATE applications SET %s = $1, update_time = $2 WHERE id = $3", string(kind))
	if _, err := r.db.ExecContext(ctx, query, path, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update attachment %s: %w", kind, err)
	}
	return nil
}

// ExistsPendingOrApproved reports whether the student already has a live
// application for the competition.
func (r *ApplicationRepository) ExistsPendingOrApproved(ctx context.Context, studentID string, competitionID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM applications WHERE student_id = $1 AND competition_id = $2 AND application_status IN ('pending', 'approved'))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, competitionID); err != nil {
		return false, fmt.Errorf("check duplicate application: %w", err)
	}
	return exists, nil
}
