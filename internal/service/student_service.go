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

type studentProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
	Update(ctx context.Context, profile *models.StudentProfile) error
}

// UpdateStudentProfileRequest captures the editable profile fields.
// The student number is not editable.
type UpdateStudentProfileRequest struct {
	FullName string `json:"full_name" validate:"omitempty,max=100"`
	School   string `json:"school" validate:"omitempty,max=200"`
	Major    string `json:"major" validate:"omitempty,max=100"`
	Grade    string `json:"grade" validate:"omitempty,max=20"`
	Gender   string `json:"gender" validate:"omitempty,oneof=male female other"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// StudentService manages the student's own profile.
type StudentService struct {
	repo      studentProfileRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentProfileRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// GetProfile returns the caller's own profile.
func (s *StudentService) GetProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	return profile, nil
}

// UpdateProfile applies the editable fields to the caller's profile.
func (s *StudentService) UpdateProfile(ctx context.Context, userID string, req UpdateStudentProfileRequest) (*models.StudentProfile, error) {
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
	if req.School != "" {
		profile.School = req.School
	}
	if req.Major != "" {
		profile.Major = req.Major
	}
	if req.Grade != "" {
		profile.Grade = req.Grade
	}
	if req.Gender != "" {
		profile.Gender = req.Gender
	}
	if req.Phone != "" {
		profile.Phone = req.Phone
	}
	if req.Email != "" {
		profile.Email = req.Email
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student profile")
	}

	return profile, nil
}
