package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/SONDER730/competition-platform/internal/dto"
	"github.com/SONDER730/competition-platform/internal/models"
	appErrors "github.com/SONDER730/competition-platform/pkg/errors"
)

type applicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	FindForStudent(ctx context.Context, id int64, studentID string) (*models.ApplicationDetail, error)
	FindForTeacher(ctx context.Context, id int64, teacherNumber string) (*models.ApplicationDetail, error)
	ListByStudent(ctx context.Context, studentID string, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
	ListByTeacher(ctx context.Context, teacherNumber string, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
	UpdateApplicationStatus(ctx context.Context, id int64, from, to models.ApplicationStatus) (bool, error)
	UpdateProcessStatus(ctx context.Context, id int64, to models.ProcessStatus) (bool, error)
	UpdateAttachment(ctx context.Context, id int64, kind models.AttachmentKind, path string) error
	ExistsPendingOrApproved(ctx context.Context, studentID string, competitionID int64) (bool, error)
}

type reimbursementRepository interface {
	Create(ctx context.Context, reimb *models.Reimbursement) error
	FindByApplicationID(ctx context.Context, applicationID int64) (*models.Reimbursement, error)
	ExistsByApplicationID(ctx context.Context, applicationID int64) (bool, error)
	UpdateInvoicePath(ctx context.Context, id int64, path string) error
	Review(ctx context.Context, id int64, status models.ReimbursementStatus, comment string) (bool, error)
}

type applicationStudentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
}

type applicationTeacherRepository interface {
	FindByNumber(ctx context.Context, number string) (*models.TeacherProfile, error)
}

type applicationCompetitionRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Competition, error)
}

type fileStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

// FileDownload carries an opened attachment plus its serving metadata.
// The caller must close Reader.
type FileDownload struct {
	Reader      io.ReadCloser
	Filename    string
	ContentType string
}

// ApplicationService is the lifecycle engine for competition applications:
// creation, review, attachments, reimbursement and process completion.
type ApplicationService struct {
	apps           applicationRepository
	reimbursements reimbursementRepository
	students       applicationStudentRepository
	teachers       applicationTeacherRepository
	competitions   applicationCompetitionRepository
	storage        fileStorage
	validator      *validator.Validate
	logger         *zap.Logger
	maxFileSize    int64
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(
	apps applicationRepository,
	reimbursements reimbursementRepository,
	students applicationStudentRepository,
	teachers applicationTeacherRepository,
	competitions applicationCompetitionRepository,
	storage fileStorage,
	validate *validator.Validate,
	logger *zap.Logger,
	maxFileSize int64,
) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024
	}
	return &ApplicationService{
		apps:           apps,
		reimbursements: reimbursements,
		students:       students,
		teachers:       teachers,
		competitions:   competitions,
		storage:        storage,
		validator:      validate,
		logger:         logger,
		maxFileSize:    maxFileSize,
	}
}

// Create submits a new application on behalf of the authenticated student.
// The referenced competition and teacher must exist, and the student may
// not hold another live application for the same competition.
func (s *ApplicationService) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateApplicationRequest) (*models.ApplicationDetail, error) {
	if claims.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can submit applications")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	profile, err := s.students.FindByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	if _, err := s.competitions.FindByID(ctx, req.CompetitionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "competition does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load competition")
	}

	if _, err := s.teachers.FindByNumber(ctx, req.TeacherNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher number does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	if exists, err := s.apps.ExistsPendingOrApproved(ctx, profile.ID, req.CompetitionID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing applications")
	} else if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a live application for this competition already exists")
	}

	app := &models.Application{
		StudentID:         profile.ID,
		CompetitionID:     req.CompetitionID,
		TeacherNumber:     req.TeacherNumber,
		ApplicationStatus: models.ApplicationPending,
		ProcessStatus:     models.ProcessOngoing,
		ContactInfo:       req.ContactInfo,
		Description:       req.Description,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.logger.Info("application created",
		zap.Int64("application_id", app.ID),
		zap.String("student_id", profile.ID),
		zap.Int64("competition_id", req.CompetitionID))

	return s.apps.FindForStudent(ctx, app.ID, profile.ID)
}

// List returns the caller's applications: own submissions for students,
// assigned ones for teachers.
func (s *ApplicationService) List(ctx context.Context, claims *models.JWTClaims, query dto.ApplicationListQuery) (*dto.ApplicationListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid list parameters")
	}
	filter := query.Filter()

	var (
		items []models.ApplicationDetail
		total int
		err   error
	)
	switch claims.Role {
	case models.RoleStudent:
		profile, perr := s.students.FindByUserID(ctx, claims.UserID)
		if perr != nil {
			if errors.Is(perr, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
			}
			return nil, appErrors.Wrap(perr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
		}
		items, total, err = s.apps.ListByStudent(ctx, profile.ID, filter)
	case models.RoleTeacher:
		items, total, err = s.apps.ListByTeacher(ctx, claims.Number, filter)
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "unsupported role")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	if items == nil {
		items = []models.ApplicationDetail{}
	}

	return &dto.ApplicationListResponse{
		Items:      items,
		Pagination: models.Pagination{Page: page, PageSize: size, TotalCount: total},
	}, nil
}

// Get returns one application visible to the caller, with its
// reimbursement attached when one exists. A record outside the caller's
// scope reads as not found.
func (s *ApplicationService) Get(ctx context.Context, claims *models.JWTClaims, id int64) (*models.ApplicationDetail, error) {
	detail, err := s.fetchScoped(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	reimb, err := s.reimbursements.FindByApplicationID(ctx, detail.ID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reimbursement")
		}
	} else {
		detail.Reimbursement = reimb
	}
	return detail, nil
}

// Review lets the assigned teacher approve or reject a pending application.
func (s *ApplicationService) Review(ctx context.Context, claims *models.JWTClaims, id int64, approve bool) (*models.ApplicationDetail, error) {
	if claims.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigned teacher can review applications")
	}

	detail, err := s.apps.FindForTeacher(ctx, id, claims.Number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	target := models.ApplicationRejected
	if approve {
		target = models.ApplicationApproved
	}

	ok, err := s.apps.UpdateApplicationStatus(ctx, detail.ID, models.ApplicationPending, target)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "application is no longer pending")
	}

	s.logger.Info("application reviewed",
		zap.Int64("application_id", detail.ID),
		zap.String("teacher_number", claims.Number),
		zap.String("decision", string(target)))

	return s.apps.FindForTeacher(ctx, id, claims.Number)
}

// Cancel lets the owning student withdraw a pending application.
func (s *ApplicationService) Cancel(ctx context.Context, claims *models.JWTClaims, id int64) (*models.ApplicationDetail, error) {
	if claims.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owning student can cancel an application")
	}

	profile, err := s.students.FindByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	detail, err := s.apps.FindForStudent(ctx, id, profile.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	ok, err := s.apps.UpdateApplicationStatus(ctx, detail.ID, models.ApplicationPending, models.ApplicationCancelled)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel application")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "only pending applications can be cancelled")
	}

	return s.apps.FindForStudent(ctx, id, profile.ID)
}

// UploadFiles stores one or more attachments for an application owned by
// the caller. When requireApproved is set the application must already be
// approved; the plain upload route accepts any status.
func (s *ApplicationService) UploadFiles(ctx context.Context, claims *models.JWTClaims, id int64, files map[models.AttachmentKind]*multipart.FileHeader, requireApproved bool) (*models.ApplicationDetail, error) {
	if claims.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owning student can upload files")
	}
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no files provided")
	}

	profile, err := s.students.FindByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	detail, err := s.apps.FindForStudent(ctx, id, profile.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	if requireApproved && detail.ApplicationStatus != models.ApplicationApproved {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "evidence uploads require an approved application")
	}

	for kind, header := range files {
		if !kind.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown attachment type %q", kind))
		}
		if header.Size > s.maxFileSize {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file %s exceeds the size limit", header.Filename))
		}
		if err := s.saveAttachment(ctx, detail.ID, kind, header); err != nil {
			return nil, err
		}
	}

	return s.apps.FindForStudent(ctx, id, profile.ID)
}

func (s *ApplicationService) saveAttachment(ctx context.Context, applicationID int64, kind models.AttachmentKind, header *multipart.FileHeader) error {
	src, err := header.Open()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open uploaded file")
	}
	defer src.Close()

	relPath := filepath.ToSlash(filepath.Join(
		"competition_files",
		fmt.Sprintf("application_%d", applicationID),
		kind.Filename(applicationID),
	))
	if _, err := s.storage.SaveStream(relPath, src); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store uploaded file")
	}

	if err := s.apps.UpdateAttachment(ctx, applicationID, kind, relPath); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record uploaded file")
	}
	return nil
}

// DownloadFile opens one stored attachment for the assigned teacher.
func (s *ApplicationService) DownloadFile(ctx context.Context, claims *models.JWTClaims, id int64, kind models.AttachmentKind) (*FileDownload, error) {
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown attachment type %q", kind))
	}
	if claims.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigned teacher can download attachments")
	}

	detail, err := s.apps.FindForTeacher(ctx, id, claims.Number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	path := detail.AttachmentPath(kind)
	if path == nil || *path == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment has not been uploaded")
	}

	f, err := s.storage.Open(*path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment file is missing")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open attachment")
	}

	return &FileDownload{
		Reader:      f,
		Filename:    kind.Filename(detail.ID),
		ContentType: kind.ContentType(),
	}, nil
}

// SubmitReimbursement attaches the single expense claim to an approved
// application. The total is frozen at creation.
func (s *ApplicationService) SubmitReimbursement(ctx context.Context, claims *models.JWTClaims, id int64, req dto.SubmitReimbursementRequest, invoice *multipart.FileHeader) (*models.Reimbursement, error) {
	if claims.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owning student can submit a reimbursement")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reimbursement payload")
	}
	if req.OtherFee > 0 && strings.TrimSpace(req.OtherFeeDescription) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "other_fee_description is required when other_fee is set")
	}
	if invoice == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invoice file is required")
	}
	if invoice.Size > s.maxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invoice exceeds the size limit")
	}

	profile, err := s.students.FindByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	detail, err := s.apps.FindForStudent(ctx, id, profile.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	if detail.ApplicationStatus != models.ApplicationApproved {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "reimbursement requires an approved application")
	}

	if exists, err := s.reimbursements.ExistsByApplicationID(ctx, detail.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing reimbursement")
	} else if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a reimbursement already exists for this application")
	}

	reimb := &models.Reimbursement{
		ApplicationID:       detail.ID,
		RegistrationFee:     roundMoney(req.RegistrationFee),
		TransportationFee:   roundMoney(req.TransportationFee),
		AccommodationFee:    roundMoney(req.AccommodationFee),
		OtherFee:            roundMoney(req.OtherFee),
		OtherFeeDescription: req.OtherFeeDescription,
		BankName:            req.BankName,
		BankAccount:         req.BankAccount,
		AccountName:         req.AccountName,
		Status:              models.ReimbursementPending,
	}
	reimb.TotalAmount = roundMoney(reimb.RegistrationFee + reimb.TransportationFee + reimb.AccommodationFee + reimb.OtherFee)

	if err := s.reimbursements.Create(ctx, reimb); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reimbursement")
	}

	if err := s.saveInvoice(ctx, reimb, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("reimbursement submitted",
		zap.Int64("application_id", detail.ID),
		zap.Int64("reimbursement_id", reimb.ID),
		zap.Float64("total_amount", reimb.TotalAmount))

	return reimb, nil
}

func (s *ApplicationService) saveInvoice(ctx context.Context, reimb *models.Reimbursement, header *multipart.FileHeader) error {
	src, err := header.Open()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open invoice")
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".pdf"
	}
	relPath := filepath.ToSlash(filepath.Join(
		"reimbursement_files",
		fmt.Sprintf("application_%d", reimb.ApplicationID),
		fmt.Sprintf("invoice_%d%s", reimb.ID, ext),
	))
	if _, err := s.storage.SaveStream(relPath, src); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store invoice")
	}

	if err := s.reimbursements.UpdateInvoicePath(ctx, reimb.ID, relPath); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record invoice")
	}
	reimb.InvoicePath = &relPath
	return nil
}

// GetReimbursement returns the expense claim attached to an application
// visible to the caller.
func (s *ApplicationService) GetReimbursement(ctx context.Context, claims *models.JWTClaims, id int64) (*models.Reimbursement, error) {
	detail, err := s.fetchScoped(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	reimb, err := s.reimbursements.FindByApplicationID(ctx, detail.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no reimbursement for this application")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reimbursement")
	}
	return reimb, nil
}

// ReviewReimbursement lets the assigned teacher approve or reject a
// pending expense claim. The assignment is re-verified through the
// teacher-scoped fetch.
func (s *ApplicationService) ReviewReimbursement(ctx context.Context, claims *models.JWTClaims, id int64, req dto.ReviewReimbursementRequest) (*models.Reimbursement, error) {
	if claims.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigned teacher can review reimbursements")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	detail, err := s.apps.FindForTeacher(ctx, id, claims.Number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	reimb, err := s.reimbursements.FindByApplicationID(ctx, detail.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no reimbursement for this application")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reimbursement")
	}

	status := models.ReimbursementRejected
	if req.Approve {
		status = models.ReimbursementApproved
	}

	ok, err := s.reimbursements.Review(ctx, reimb.ID, status, req.Comment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review reimbursement")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "reimbursement is no longer pending")
	}

	return s.reimbursements.FindByApplicationID(ctx, detail.ID)
}

// DownloadInvoice opens the stored invoice for the assigned teacher.
func (s *ApplicationService) DownloadInvoice(ctx context.Context, claims *models.JWTClaims, id int64) (*FileDownload, error) {
	if claims.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigned teacher can download the invoice")
	}
	reimb, err := s.GetReimbursement(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	if reimb.InvoicePath == nil || *reimb.InvoicePath == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice has not been uploaded")
	}

	f, err := s.storage.Open(*reimb.InvoicePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice file is missing")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open invoice")
	}

	contentType := "application/pdf"
	ext := strings.ToLower(filepath.Ext(*reimb.InvoicePath))
	if ext == ".jpg" || ext == ".jpeg" {
		contentType = "image/jpeg"
	} else if ext == ".png" {
		contentType = "image/png"
	}

	return &FileDownload{
		Reader:      f,
		Filename:    filepath.Base(*reimb.InvoicePath),
		ContentType: contentType,
	}, nil
}

// FinishProcess marks the overall workflow as ended. The application
// must be approved and its reimbursement approved first.
func (s *ApplicationService) FinishProcess(ctx context.Context, claims *models.JWTClaims, id int64) (*models.ApplicationDetail, error) {
	if claims.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owning student can finish the process")
	}

	profile, err := s.students.FindByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	detail, err := s.apps.FindForStudent(ctx, id, profile.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	if detail.ApplicationStatus != models.ApplicationApproved {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "only approved applications can be finished")
	}

	reimb, err := s.reimbursements.FindByApplicationID(ctx, detail.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "an approved reimbursement is required to finish the process")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reimbursement")
	}
	if reimb.Status != models.ReimbursementApproved {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "an approved reimbursement is required to finish the process")
	}

	ok, err := s.apps.UpdateProcessStatus(ctx, detail.ID, models.ProcessEnded)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update process status")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "process has already ended")
	}

	s.logger.Info("process finished", zap.Int64("application_id", detail.ID))

	return s.apps.FindForStudent(ctx, id, profile.ID)
}

func (s *ApplicationService) fetchScoped(ctx context.Context, claims *models.JWTClaims, id int64) (*models.ApplicationDetail, error) {
	var (
		detail *models.ApplicationDetail
		err    error
	)
	switch claims.Role {
	case models.RoleStudent:
		profile, perr := s.students.FindByUserID(ctx, claims.UserID)
		if perr != nil {
			if errors.Is(perr, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
			}
			return nil, appErrors.Wrap(perr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
		}
		detail, err = s.apps.FindForStudent(ctx, id, profile.ID)
	case models.RoleTeacher:
		detail, err = s.apps.FindForTeacher(ctx, id, claims.Number)
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "unsupported role")
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return detail, nil
}

// roundMoney normalizes amounts to two decimal places at write time.
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
