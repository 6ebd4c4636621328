package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"mime/multipart"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SONDER730/competition-platform/internal/dto"
	"github.com/SONDER730/competition-platform/internal/models"
	appErrors "github.com/SONDER730/competition-platform/pkg/errors"
	"github.com/SONDER730/competition-platform/pkg/storage"
)

type mockApplicationRepo struct {
	items      map[int64]*models.ApplicationDetail
	nextID     int64
	duplicates bool
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	if m.items == nil {
		m.items = make(map[int64]*models.ApplicationDetail)
	}
	m.nextID++
	app.ID = m.nextID
	m.items[app.ID] = &models.ApplicationDetail{Application: *app}
	return nil
}

func (m *mockApplicationRepo) FindForStudent(ctx context.Context, id int64, studentID string) (*models.ApplicationDetail, error) {
	detail, ok := m.items[id]
	if !ok || detail.StudentID != studentID {
		return nil, sql.ErrNoRows
	}
	cp := *detail
	return &cp, nil
}

func (m *mockApplicationRepo) FindForTeacher(ctx context.Context, id int64, teacherNumber string) (*models.ApplicationDetail, error) {
	detail, ok := m.items[id]
	if !ok || detail.TeacherNumber != teacherNumber {
		return nil, sql.ErrNoRows
	}
	cp := *detail
	return &cp, nil
}

func (m *mockApplicationRepo) ListByStudent(ctx context.Context, studentID string, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	var out []models.ApplicationDetail
	for _, detail := range m.items {
		if detail.StudentID == studentID {
			out = append(out, *detail)
		}
	}
	return out, len(out), nil
}

func (m *mockApplicationRepo) ListByTeacher(ctx context.Context, teacherNumber string, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	var out []models.ApplicationDetail
	for _, detail := range m.items {
		if detail.TeacherNumber == teacherNumber {
			out = append(out, *detail)
		}
	}
	return out, len(out), nil
}

func (m *mockApplicationRepo) UpdateApplicationStatus(ctx context.Context, id int64, from, to models.ApplicationStatus) (bool, error) {
	detail, ok := m.items[id]
	if !ok || detail.ApplicationStatus != from {
		return false, nil
	}
	detail.ApplicationStatus = to
	return true, nil
}

func (m *mockApplicationRepo) UpdateProcessStatus(ctx context.Context, id int64, to models.ProcessStatus) (bool, error) {
	detail, ok := m.items[id]
	if !ok || detail.ProcessStatus != models.ProcessOngoing {
		return false, nil
	}
	detail.ProcessStatus = to
	return true, nil
}

func (m *mockApplicationRepo) UpdateAttachment(ctx context.Context, id int64, kind models.AttachmentKind, path string) error {
	detail := m.items[id]
	cp := path
	switch kind {
	case models.AttachmentPhoto:
		detail.Photo = &cp
	case models.AttachmentSummary:
		detail.Summary = &cp
	case models.AttachmentCertificate:
		detail.Certificate = &cp
	}
	return nil
}

func (m *mockApplicationRepo) ExistsPendingOrApproved(ctx context.Context, studentID string, competitionID int64) (bool, error) {
	return m.duplicates, nil
}

type mockReimbursementRepo struct {
	items  map[int64]*models.Reimbursement
	nextID int64
}

func (m *mockReimbursementRepo) Create(ctx context.Context, reimb *models.Reimbursement) error {
	if m.items == nil {
		m.items = make(map[int64]*models.Reimbursement)
	}
	m.nextID++
	reimb.ID = m.nextID
	cp := *reimb
	m.items[reimb.ApplicationID] = &cp
	return nil
}

func (m *mockReimbursementRepo) FindByApplicationID(ctx context.Context, applicationID int64) (*models.Reimbursement, error) {
	reimb, ok := m.items[applicationID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *reimb
	return &cp, nil
}

func (m *mockReimbursementRepo) ExistsByApplicationID(ctx context.Context, applicationID int64) (bool, error) {
	_, ok := m.items[applicationID]
	return ok, nil
}

func (m *mockReimbursementRepo) UpdateInvoicePath(ctx context.Context, id int64, path string) error {
	for _, reimb := range m.items {
		if reimb.ID == id {
			cp := path
			reimb.InvoicePath = &cp
		}
	}
	return nil
}

func (m *mockReimbursementRepo) Review(ctx context.Context, id int64, status models.ReimbursementStatus, comment string) (bool, error) {
	for _, reimb := range m.items {
		if reimb.ID == id {
			if reimb.Status != models.ReimbursementPending {
				return false, nil
			}
			reimb.Status = status
			reimb.Comment = comment
			return true, nil
		}
	}
	return false, nil
}

type mockStudentProfileRepo struct {
	profiles map[string]*models.StudentProfile
}

func (m *mockStudentProfileRepo) FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *profile
	return &cp, nil
}

type mockTeacherProfileRepo struct {
	byNumber map[string]*models.TeacherProfile
}

func (m *mockTeacherProfileRepo) FindByNumber(ctx context.Context, number string) (*models.TeacherProfile, error) {
	profile, ok := m.byNumber[number]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *profile
	return &cp, nil
}

type mockCompetitionRepo struct {
	byID map[int64]*models.Competition
}

func (m *mockCompetitionRepo) FindByID(ctx context.Context, id int64) (*models.Competition, error) {
	competition, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *competition
	return &cp, nil
}

func newApplicationFixture(t *testing.T) (*ApplicationService, *mockApplicationRepo, *mockReimbursementRepo) {
	t.Helper()
	apps := &mockApplicationRepo{}
	reimbursements := &mockReimbursementRepo{}
	students := &mockStudentProfileRepo{profiles: map[string]*models.StudentProfile{
		"user-1": {ID: "student-1", UserID: "user-1", StudentNumber: "S2021001", FullName: "Wang Lei"},
	}}
	teachers := &mockTeacherProfileRepo{byNumber: map[string]*models.TeacherProfile{
		"T1001": {ID: "teacher-1", TeacherNumber: "T1001", FullName: "Li Na"},
	}}
	competitions := &mockCompetitionRepo{byID: map[int64]*models.Competition{
		7: {ID: 7, Name: "ACM Regional", Type: "programming"},
	}}
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	svc := NewApplicationService(apps, reimbursements, students, teachers, competitions, store, validator.New(), zap.NewNop(), 0)
	return svc, apps, reimbursements
}

func invoiceHeader(t *testing.T) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("invoice", "invoice.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 invoice"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["invoice"][0]
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent, Number: "S2021001"}
}

func teacherClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-2", Role: models.RoleTeacher, Number: "T1001"}
}

func TestApplicationServiceCreate(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)

	detail, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7,
		TeacherNumber: "T1001",
		ContactInfo:   "13800000000",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, detail.ApplicationStatus)
	assert.Equal(t, models.ProcessOngoing, detail.ProcessStatus)
	assert.Equal(t, "student-1", detail.StudentID)
}

func TestApplicationServiceCreateRejectsUnknownTeacher(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)

	_, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7,
		TeacherNumber: "T9999",
		ContactInfo:   "13800000000",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestApplicationServiceCreateRejectsDuplicate(t *testing.T) {
	svc, apps, _ := newApplicationFixture(t)
	apps.duplicates = true

	_, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7,
		TeacherNumber: "T1001",
		ContactInfo:   "13800000000",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestApplicationServiceCreateForbiddenForTeachers(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)

	_, err := svc.Create(context.Background(), teacherClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7,
		TeacherNumber: "T1001",
		ContactInfo:   "13800000000",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestApplicationServiceReviewApprove(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)

	detail, err := svc.Review(context.Background(), teacherClaims(), created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, detail.ApplicationStatus)
}

func TestApplicationServiceReviewTwiceIsInvalidState(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), teacherClaims(), created.ID, true)
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), teacherClaims(), created.ID, false)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
}

func TestApplicationServiceReviewUnassignedTeacherReadsNotFound(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)

	other := &models.JWTClaims{UserID: "user-3", Role: models.RoleTeacher, Number: "T2002"}
	_, err = svc.Review(context.Background(), other, created.ID, true)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestApplicationServiceCancelOnlyPending(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)

	detail, err := svc.Cancel(context.Background(), studentClaims(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationCancelled, detail.ApplicationStatus)

	_, err = svc.Cancel(context.Background(), studentClaims(), created.ID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
}

func TestApplicationServiceSubmitReimbursement(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), teacherClaims(), created.ID, true)
	require.NoError(t, err)

	reimb, err := svc.SubmitReimbursement(context.Background(), studentClaims(), created.ID, dto.SubmitReimbursementRequest{
		RegistrationFee:   200.005,
		TransportationFee: 350.5,
		BankName:          "ICBC",
		BankAccount:       "6222000011112222",
		AccountName:       "Wang Lei",
	}, invoiceHeader(t))
	require.NoError(t, err)
	assert.Equal(t, 200.01, reimb.RegistrationFee)
	assert.Equal(t, 550.51, reimb.TotalAmount)
	assert.Equal(t, models.ReimbursementPending, reimb.Status)
	require.NotNil(t, reimb.InvoicePath)
	assert.Contains(t, *reimb.InvoicePath, "reimbursement_files/application_")

	detail, err := svc.Get(context.Background(), studentClaims(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Reimbursement)
	assert.Equal(t, reimb.ID, detail.Reimbursement.ID)
}

func TestApplicationServiceSubmitReimbursementRequiresInvoice(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), teacherClaims(), created.ID, true)
	require.NoError(t, err)

	_, err = svc.SubmitReimbursement(context.Background(), studentClaims(), created.ID, dto.SubmitReimbursementRequest{
		RegistrationFee: 100,
		BankName:        "ICBC", BankAccount: "6222000011112222", AccountName: "Wang Lei",
	}, nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestApplicationServiceSubmitReimbursementRequiresApproval(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)

	_, err = svc.SubmitReimbursement(context.Background(), studentClaims(), created.ID, dto.SubmitReimbursementRequest{
		BankName: "ICBC", BankAccount: "6222000011112222", AccountName: "Wang Lei",
	}, invoiceHeader(t))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
}

func TestApplicationServiceSubmitReimbursementOtherFeeNeedsDescription(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), teacherClaims(), created.ID, true)
	require.NoError(t, err)

	_, err = svc.SubmitReimbursement(context.Background(), studentClaims(), created.ID, dto.SubmitReimbursementRequest{
		OtherFee: 50,
		BankName: "ICBC", BankAccount: "6222000011112222", AccountName: "Wang Lei",
	}, invoiceHeader(t))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestApplicationServiceFinishProcess(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), teacherClaims(), created.ID, true)
	require.NoError(t, err)

	// Finishing before any reimbursement exists is rejected.
	_, err = svc.FinishProcess(context.Background(), studentClaims(), created.ID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)

	_, err = svc.SubmitReimbursement(context.Background(), studentClaims(), created.ID, dto.SubmitReimbursementRequest{
		RegistrationFee: 100,
		BankName:        "ICBC", BankAccount: "6222000011112222", AccountName: "Wang Lei",
	}, invoiceHeader(t))
	require.NoError(t, err)

	// Still rejected while the reimbursement is pending.
	_, err = svc.FinishProcess(context.Background(), studentClaims(), created.ID)
	require.Error(t, err)

	_, err = svc.ReviewReimbursement(context.Background(), teacherClaims(), created.ID, dto.ReviewReimbursementRequest{Approve: true, Comment: "ok"})
	require.NoError(t, err)

	detail, err := svc.FinishProcess(context.Background(), studentClaims(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProcessEnded, detail.ProcessStatus)

	_, err = svc.FinishProcess(context.Background(), studentClaims(), created.ID)
	require.Error(t, err)
}

func TestApplicationServiceSubmitReimbursementOnlyOnce(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), teacherClaims(), created.ID, true)
	require.NoError(t, err)

	req := dto.SubmitReimbursementRequest{
		RegistrationFee: 100,
		BankName:        "ICBC", BankAccount: "6222000011112222", AccountName: "Wang Lei",
	}
	_, err = svc.SubmitReimbursement(context.Background(), studentClaims(), created.ID, req, invoiceHeader(t))
	require.NoError(t, err)

	_, err = svc.SubmitReimbursement(context.Background(), studentClaims(), created.ID, req, invoiceHeader(t))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestApplicationServiceReviewReimbursementOnce(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), teacherClaims(), created.ID, true)
	require.NoError(t, err)
	_, err = svc.SubmitReimbursement(context.Background(), studentClaims(), created.ID, dto.SubmitReimbursementRequest{
		RegistrationFee: 100,
		BankName:        "ICBC", BankAccount: "6222000011112222", AccountName: "Wang Lei",
	}, invoiceHeader(t))
	require.NoError(t, err)

	reimb, err := svc.ReviewReimbursement(context.Background(), teacherClaims(), created.ID, dto.ReviewReimbursementRequest{Approve: false, Comment: "missing invoice"})
	require.NoError(t, err)
	assert.Equal(t, models.ReimbursementRejected, reimb.Status)
	assert.Equal(t, "missing invoice", reimb.Comment)

	_, err = svc.ReviewReimbursement(context.Background(), teacherClaims(), created.ID, dto.ReviewReimbursementRequest{Approve: true})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
}

func TestApplicationServiceDownloadFileTeacherOnly(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)

	_, err = svc.UploadFiles(context.Background(), studentClaims(), created.ID, map[models.AttachmentKind]*multipart.FileHeader{
		models.AttachmentSummary: invoiceHeader(t),
	}, false)
	require.NoError(t, err)

	_, err = svc.DownloadFile(context.Background(), studentClaims(), created.ID, models.AttachmentSummary)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	download, err := svc.DownloadFile(context.Background(), teacherClaims(), created.ID, models.AttachmentSummary)
	require.NoError(t, err)
	defer download.Reader.Close()
	assert.Equal(t, "application/pdf", download.ContentType)
	assert.Equal(t, models.AttachmentSummary.Filename(created.ID), download.Filename)
}

func TestApplicationServiceDownloadFileMissingBytesIsNotFound(t *testing.T) {
	svc, apps, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)

	// The row records a path but nothing was ever written to disk.
	stale := fmt.Sprintf("application_files/application_%d/summary_%d.pdf", created.ID, created.ID)
	apps.items[created.ID].Summary = &stale

	_, err = svc.DownloadFile(context.Background(), teacherClaims(), created.ID, models.AttachmentSummary)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceDownloadInvoiceMissingBytesIsNotFound(t *testing.T) {
	svc, _, reimbursements := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), teacherClaims(), created.ID, true)
	require.NoError(t, err)
	_, err = svc.SubmitReimbursement(context.Background(), studentClaims(), created.ID, dto.SubmitReimbursementRequest{
		RegistrationFee: 100,
		BankName:        "ICBC", BankAccount: "6222000011112222", AccountName: "Wang Lei",
	}, invoiceHeader(t))
	require.NoError(t, err)

	stale := "reimbursement_files/application_999/invoice_999.pdf"
	reimbursements.items[created.ID].InvoicePath = &stale

	_, err = svc.DownloadInvoice(context.Background(), teacherClaims(), created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceGetScopedAsNotFound(t *testing.T) {
	svc, _, _ := newApplicationFixture(t)
	created, err := svc.Create(context.Background(), studentClaims(), dto.CreateApplicationRequest{
		CompetitionID: 7, TeacherNumber: "T1001", ContactInfo: "13800000000",
	})
	require.NoError(t, err)

	other := &models.JWTClaims{UserID: "user-9", Role: models.RoleTeacher, Number: "T2002"}
	_, err = svc.Get(context.Background(), other, created.ID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
