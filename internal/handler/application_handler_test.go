package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SONDER730/competition-platform/internal/middleware"
	"github.com/SONDER730/competition-platform/internal/models"
	"github.com/SONDER730/competition-platform/internal/service"
	"github.com/SONDER730/competition-platform/pkg/storage"
)

type fakeApplicationRepo struct {
	items  map[int64]*models.ApplicationDetail
	nextID int64
}

func (f *fakeApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	if f.items == nil {
		f.items = make(map[int64]*models.ApplicationDetail)
	}
	f.nextID++
	app.ID = f.nextID
	f.items[app.ID] = &models.ApplicationDetail{Application: *app}
	return nil
}

func (f *fakeApplicationRepo) FindForStudent(ctx context.Context, id int64, studentID string) (*models.ApplicationDetail, error) {
	detail, ok := f.items[id]
	if !ok || detail.StudentID != studentID {
		return nil, sql.ErrNoRows
	}
	cp := *detail
	return &cp, nil
}

func (f *fakeApplicationRepo) FindForTeacher(ctx context.Context, id int64, teacherNumber string) (*models.ApplicationDetail, error) {
	detail, ok := f.items[id]
	if !ok || detail.TeacherNumber != teacherNumber {
		return nil, sql.ErrNoRows
	}
	cp := *detail
	return &cp, nil
}

func (f *fakeApplicationRepo) ListByStudent(ctx context.Context, studentID string, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	var out []models.ApplicationDetail
	for _, detail := range f.items {
		if detail.StudentID == studentID {
			out = append(out, *detail)
		}
	}
	return out, len(out), nil
}

func (f *fakeApplicationRepo) ListByTeacher(ctx context.Context, teacherNumber string, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	var out []models.ApplicationDetail
	for _, detail := range f.items {
		if detail.TeacherNumber == teacherNumber {
			out = append(out, *detail)
		}
	}
	return out, len(out), nil
}

func (f *fakeApplicationRepo) UpdateApplicationStatus(ctx context.Context, id int64, from, to models.ApplicationStatus) (bool, error) {
	detail, ok := f.items[id]
	if !ok || detail.ApplicationStatus != from {
		return false, nil
	}
	detail.ApplicationStatus = to
	return true, nil
}

func (f *fakeApplicationRepo) UpdateProcessStatus(ctx context.Context, id int64, to models.ProcessStatus) (bool, error) {
	detail, ok := f.items[id]
	if !ok || detail.ProcessStatus != models.ProcessOngoing {
		return false, nil
	}
	detail.ProcessStatus = to
	return true, nil
}

func (f *fakeApplicationRepo) UpdateAttachment(ctx context.Context, id int64, kind models.AttachmentKind, path string) error {
	detail := f.items[id]
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

func (f *fakeApplicationRepo) ExistsPendingOrApproved(ctx context.Context, studentID string, competitionID int64) (bool, error) {
	return false, nil
}

type fakeReimbursementRepo struct {
	items  map[int64]*models.Reimbursement
	nextID int64
}

func (f *fakeReimbursementRepo) Create(ctx context.Context, reimb *models.Reimbursement) error {
	if f.items == nil {
		f.items = make(map[int64]*models.Reimbursement)
	}
	f.nextID++
	reimb.ID = f.nextID
	cp := *reimb
	f.items[reimb.ApplicationID] = &cp
	return nil
}

func (f *fakeReimbursementRepo) FindByApplicationID(ctx context.Context, applicationID int64) (*models.Reimbursement, error) {
	reimb, ok := f.items[applicationID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *reimb
	return &cp, nil
}

func (f *fakeReimbursementRepo) ExistsByApplicationID(ctx context.Context, applicationID int64) (bool, error) {
	_, ok := f.items[applicationID]
	return ok, nil
}

func (f *fakeReimbursementRepo) UpdateInvoicePath(ctx context.Context, id int64, path string) error {
	return nil
}

func (f *fakeReimbursementRepo) Review(ctx context.Context, id int64, status models.ReimbursementStatus, comment string) (bool, error) {
	for _, reimb := range f.items {
		if reimb.ID == id && reimb.Status == models.ReimbursementPending {
			reimb.Status = status
			reimb.Comment = comment
			return true, nil
		}
	}
	return false, nil
}

type fakeStudentRepo struct{}

func (fakeStudentRepo) FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	if userID != "user-1" {
		return nil, sql.ErrNoRows
	}
	return &models.StudentProfile{ID: "student-1", UserID: "user-1", StudentNumber: "S2021001", FullName: "Wang Lei"}, nil
}

type fakeTeacherRepo struct{}

func (fakeTeacherRepo) FindByNumber(ctx context.Context, number string) (*models.TeacherProfile, error) {
	if number != "T1001" {
		return nil, sql.ErrNoRows
	}
	return &models.TeacherProfile{ID: "teacher-1", TeacherNumber: "T1001", FullName: "Li Na"}, nil
}

type fakeCompetitionFinder struct{}

func (fakeCompetitionFinder) FindByID(ctx context.Context, id int64) (*models.Competition, error) {
	if id != 7 {
		return nil, sql.ErrNoRows
	}
	return &models.Competition{ID: 7, Name: "ACM Regional", Type: "programming"}, nil
}

func newApplicationHandlerFixture(t *testing.T) (*ApplicationHandler, *fakeApplicationRepo) {
	t.Helper()
	apps := &fakeApplicationRepo{}
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := service.NewApplicationService(apps, &fakeReimbursementRepo{}, fakeStudentRepo{}, fakeTeacherRepo{}, fakeCompetitionFinder{}, store, validator.New(), zap.NewNop(), 0)
	return NewApplicationHandler(svc, nil), apps
}

func withClaims(c *gin.Context, claims *models.JWTClaims) {
	c.Set(middleware.ContextUserKey, claims)
}

func studentTestClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent, Number: "S2021001"}
}

func teacherTestClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-2", Role: models.RoleTeacher, Number: "T1001"}
}

func TestApplicationHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newApplicationHandlerFixture(t)

	body, _ := json.Marshal(map[string]interface{}{
		"competition_id": 7,
		"teacher_number": "T1001",
		"contact_info":   "13800000000",
	})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/applications", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	withClaims(c, studentTestClaims())

	handler.Create(c)
	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Data models.ApplicationDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.ApplicationPending, envelope.Data.ApplicationStatus)
}

func TestApplicationHandlerCreateWithoutClaimsIs401(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newApplicationHandlerFixture(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/applications", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApplicationHandlerCreateAsTeacherIs403(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newApplicationHandlerFixture(t)

	body, _ := json.Marshal(map[string]interface{}{
		"competition_id": 7,
		"teacher_number": "T1001",
		"contact_info":   "13800000000",
	})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/applications", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	withClaims(c, teacherTestClaims())

	handler.Create(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApplicationHandlerReviewFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, apps := newApplicationHandlerFixture(t)

	app := &models.Application{
		StudentID:         "student-1",
		CompetitionID:     7,
		TeacherNumber:     "T1001",
		ApplicationStatus: models.ApplicationPending,
		ProcessStatus:     models.ProcessOngoing,
		ContactInfo:       "13800000000",
	}
	require.NoError(t, apps.Create(context.Background(), app))

	body, _ := json.Marshal(map[string]interface{}{"approve": true})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/applications/1/review", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	withClaims(c, teacherTestClaims())

	handler.Review(c)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data models.ApplicationDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.ApplicationApproved, envelope.Data.ApplicationStatus)

	// Reviewing again conflicts.
	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/applications/1/review", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	withClaims(c, teacherTestClaims())

	handler.Review(c)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApplicationHandlerGetOutOfScopeIs404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, apps := newApplicationHandlerFixture(t)

	app := &models.Application{
		StudentID:         "someone-else",
		CompetitionID:     7,
		TeacherNumber:     "T1001",
		ApplicationStatus: models.ApplicationPending,
		ProcessStatus:     models.ProcessOngoing,
	}
	require.NoError(t, apps.Create(context.Background(), app))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/applications/1", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	withClaims(c, studentTestClaims())

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
