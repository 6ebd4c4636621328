package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/SONDER730/competition-platform/internal/models"
	appErrors "github.com/SONDER730/competition-platform/pkg/errors"
	"github.com/SONDER730/competition-platform/pkg/report"
)

type reportApplicationRepository interface {
	FindForStudent(ctx context.Context, id int64, studentID string) (*models.ApplicationDetail, error)
	FindForTeacher(ctx context.Context, id int64, teacherNumber string) (*models.ApplicationDetail, error)
}

type reportReimbursementRepository interface {
	FindByApplicationID(ctx context.Context, applicationID int64) (*models.Reimbursement, error)
}

type reportStudentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
}

type reportStorage interface {
	Save(filename string, data []byte) (string, error)
	ReadFile(filename string) ([]byte, error)
	Stat(filename string) (os.FileInfo, error)
}

type processRenderer interface {
	Render(snap report.Snapshot) ([]byte, error)
}

type reportMetrics interface {
	ReportRendered(outcome string)
}

// ReportService produces the full process report PDF for an application.
// Rendered documents are cached on disk and reused within the TTL; a
// singleflight group guarantees at most one in-flight render per
// application even under concurrent requests.
type ReportService struct {
	apps           reportApplicationRepository
	reimbursements reportReimbursementRepository
	students       reportStudentRepository
	storage        reportStorage
	renderer       processRenderer
	metrics        reportMetrics
	logger         *zap.Logger
	cacheTTL       time.Duration

	group singleflight.Group
}

// NewReportService constructs a ReportService.
func NewReportService(
	apps reportApplicationRepository,
	reimbursements reportReimbursementRepository,
	students reportStudentRepository,
	storage reportStorage,
	renderer processRenderer,
	metrics reportMetrics,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &ReportService{
		apps:           apps,
		reimbursements: reimbursements,
		students:       students,
		storage:        storage,
		renderer:       renderer,
		metrics:        metrics,
		logger:         logger,
		cacheTTL:       cacheTTL,
	}
}

// ProcessReport returns the PDF bytes of the process report for an
// application visible to the caller. A cached document newer than the
// TTL is served as-is; otherwise the report is rendered and the cache
// refreshed transparently.
func (s *ReportService) ProcessReport(ctx context.Context, claims *models.JWTClaims, id int64) ([]byte, string, error) {
	detail, err := s.fetchScoped(ctx, claims, id)
	if err != nil {
		return nil, "", err
	}
	if detail.ProcessStatus != models.ProcessEnded {
		return nil, "", appErrors.Clone(appErrors.ErrInvalidState, "the process report requires an ended process")
	}

	filename := fmt.Sprintf("competition_process_%d.pdf", detail.ID)
	relPath := filepath.ToSlash(filepath.Join("pdf_files", filename))

	if data, ok := s.readFresh(relPath); ok {
		if s.metrics != nil {
			s.metrics.ReportRendered("cache_hit")
		}
		return data, filename, nil
	}

	key := fmt.Sprintf("process-report:%d", detail.ID)
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have refreshed the cache while this
		// one waited on the flight.
		if data, ok := s.readFresh(relPath); ok {
			return data, nil
		}
		return s.renderAndStore(ctx, detail, relPath)
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.ReportRendered("error")
		}
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, "", err
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrRenderFailed.Code, appErrors.ErrRenderFailed.Status, "failed to render process report")
	}

	if s.metrics != nil {
		s.metrics.ReportRendered("rendered")
	}
	return result.([]byte), filename, nil
}

func (s *ReportService) readFresh(relPath string) ([]byte, bool) {
	info, err := s.storage.Stat(relPath)
	if err != nil || time.Since(info.ModTime()) > s.cacheTTL {
		return nil, false
	}
	data, err := s.storage.ReadFile(relPath)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (s *ReportService) renderAndStore(ctx context.Context, detail *models.ApplicationDetail, relPath string) ([]byte, error) {
	snap, err := s.buildSnapshot(ctx, detail)
	if err != nil {
		return nil, err
	}

	data, err := s.renderer.Render(*snap)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRenderFailed.Code, appErrors.ErrRenderFailed.Status, "failed to render process report")
	}

	if _, err := s.storage.Save(relPath, data); err != nil {
		// Serving the fresh bytes matters more than the cache write.
		s.logger.Warn("failed to cache process report", zap.String("path", relPath), zap.Error(err))
	}

	return data, nil
}

func (s *ReportService) buildSnapshot(ctx context.Context, detail *models.ApplicationDetail) (*report.Snapshot, error) {
	snap := &report.Snapshot{
		ApplicationID:     detail.ID,
		CompetitionName:   detail.CompetitionName,
		CompetitionType:   detail.CompetitionType,
		StudentName:       detail.StudentName,
		StudentNumber:     detail.StudentNumber,
		TeacherName:       detail.TeacherName,
		TeacherNumber:     detail.TeacherNumber,
		ContactInfo:       detail.ContactInfo,
		ApplicationStatus: string(detail.ApplicationStatus),
		ProcessStatus:     string(detail.ProcessStatus),
		SubmissionTime:    detail.SubmissionTime,
	}
	if detail.Description != nil {
		snap.Description = *detail.Description
	}
	if detail.ApplicationStatus.Terminal() {
		reviewedAt := detail.UpdateTime
		snap.ReviewedAt = &reviewedAt
	}

	for _, kind := range []models.AttachmentKind{models.AttachmentPhoto, models.AttachmentSummary, models.AttachmentCertificate} {
		info := report.AttachmentInfo{Label: string(kind)}
		if path := detail.AttachmentPath(kind); path != nil && *path != "" {
			info.Uploaded = true
			if stat, err := s.storage.Stat(*path); err == nil {
				uploadedAt := stat.ModTime()
				info.UploadedAt = &uploadedAt
			}
		}
		snap.Attachments = append(snap.Attachments, info)
	}

	reimb, err := s.reimbursements.FindByApplicationID(ctx, detail.ID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reimbursement")
		}
	} else {
		info := &report.ReimbursementInfo{
			RegistrationFee:     reimb.RegistrationFee,
			TransportationFee:   reimb.TransportationFee,
			AccommodationFee:    reimb.AccommodationFee,
			OtherFee:            reimb.OtherFee,
			OtherFeeDescription: reimb.OtherFeeDescription,
			TotalAmount:         reimb.TotalAmount,
			BankName:            reimb.BankName,
			BankAccount:         reimb.BankAccount,
			AccountName:         reimb.AccountName,
			Status:              string(reimb.Status),
			Comment:             reimb.Comment,
			SubmitTime:          reimb.SubmitTime,
		}
		if reimb.Status != models.ReimbursementPending {
			reviewedAt := reimb.UpdateTime
			info.ReviewedAt = &reviewedAt
		}
		snap.Reimbursement = info
	}

	return snap, nil
}

func (s *ReportService) fetchScoped(ctx context.Context, claims *models.JWTClaims, id int64) (*models.ApplicationDetail, error) {
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
