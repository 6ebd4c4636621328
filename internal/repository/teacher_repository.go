package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/SONDER730/competition-platform/internal/models"
)

// TeacherRepository manages persistence for teacher profiles.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = "id, user_id, teacher_number, full_name, department, phone, email, created_at, updated_at"

// FindByUserID fetches the profile owned by a user account.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM teacher_profiles WHERE user_id = $1", teacherColumns)
	var profile models.TeacherProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByNumber fetches a profile by teacher number, the business
// identifier applications link to.
func (r *TeacherRepository) FindByNumber(ctx context.Context, number string) (*models.TeacherProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM teacher_profiles WHERE teacher_number = $1", teacherColumns)
	var profile models.TeacherProfile
	if err := r.db.GetContext(ctx, &profile, query, number); err != nil {
		return nil, err
	}
	return &profile, nil
}

// List returns all teacher profiles ordered by number, for the student
// facing teacher picker.
func (r *TeacherRepository) List(ctx context.Context) ([]models.TeacherProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM teacher_profiles ORDER BY teacher_number", teacherColumns)
	var profiles []models.TeacherProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list teacher profiles: %w", err)
	}
	return profiles, nil
}

// Create inserts a new teacher profile.
func (r *TeacherRepository) Create(ctx context.Context, profile *models.TeacherProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	const query = `INSERT INTO teacher_profiles (id, user_id, teacher_number, full_name, department, phone, email, created_at, updated_at)
		VALUES (:id, :user_id, :teacher_number, :full_name, :department, :phone, :email, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create teacher profile: %w", err)
	}
	return nil
}

// Update modifies the editable fields of an existing profile. The teacher
// number is never touched.
func (r *TeacherRepository) Update(ctx context.Context, profile *models.TeacherProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teacher_profiles SET full_name = :full_name, department = :department, phone = :phone, email = :email, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update teacher profile: %w", err)
	}
	return nil
}
