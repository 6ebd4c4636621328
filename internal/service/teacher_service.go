package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/SONDER730/competition-platform/internal/models"
	appErrors "github.com/SONDER730/competition-platform/pkg/errors"
)

type teacherProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error)
	List(ctx context.Context) ([]models.TeacherProfile, error)
	Update(ctx context.Context, profile *models.TeacherProfile) error
}

// UpdateTeacherProfileRequest captures the editable profile fields.
// The teacher number is not editable.
type UpdateTeacherProfileRequest struct {
	FullName   string `json:"full_name" validate:"omitempty,max=100"`
	Department string `json:"department" validate:"omitempty,max=200"`
	Phone      string `json:"phone" validate:"omitempty,max=20"`
	Email      string `json:"email" validate:"omitempty,email"`
}

// TeacherService manages teacher profiles and the supervisor picker.
type TeacherService struct {
	repo      teacherProfileRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherProfileRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// GetProfile returns the caller's own profile.
func (s *TeacherService) GetProfile(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
	}
	return profile, nil
}

// UpdateProfile applies the editable fields to the caller's profile.
func (s *TeacherService) UpdateProfile(ctx context.Context, userID string, req UpdateTeacherProfileRequest) (*models.TeacherProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != "" {
		profile.FullName = req.FullName
	}
	if req.Department != "" {
		profile.Department = req.Department
	}
	if req.Phone != "" {
		profile.Phone = req.Phone
	}
	if req.Email != "" {
		profile.Email = req.Email
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher profile")
	}

	return profile, nil
}

// ListTeachers returns all teachers for the student-facing supervisor picker.
func (s *TeacherService) ListTeachers(ctx context.Context) ([]models.TeacherProfile, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}
