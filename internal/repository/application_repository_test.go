package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/SONDER730/competition-platform/internal/models"
)

func newApplicationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestApplicationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO applications")).
		WithArgs("student-1", int64(7), "T1001", models.ApplicationPending, models.ProcessOngoing, "13800000000", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	app := &models.Application{
		StudentID:         "student-1",
		CompetitionID:     7,
		TeacherNumber:     "T1001",
		ApplicationStatus: models.ApplicationPending,
		ProcessStatus:     models.ProcessOngoing,
		ContactInfo:       "13800000000",
	}
	require.NoError(t, repo.Create(context.Background(), app))
	require.Equal(t, int64(42), app.ID)
	require.False(t, app.SubmissionTime.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryFindForStudentScoped(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	mock.ExpectQuery("SELECT a.id, .+ FROM applications a").
		WithArgs(int64(42), "student-1").
		WillReturnRows(applicationDetailRows().
			AddRow(int64(42), "student-1", int64(7), "T1001", "pending", "ongoing", "13800000000", nil, nil, nil, nil, time.Now(), time.Now(), "Wang Lei", "S2021001", "ACM Regional", "programming", "Li Na"))

	detail, err := repo.FindForStudent(context.Background(), 42, "student-1")
	require.NoError(t, err)
	require.Equal(t, int64(42), detail.ID)
	require.Equal(t, "ACM Regional", detail.CompetitionName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateApplicationStatusConditional(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET application_status = $1, update_time = $2 WHERE id = $3 AND application_status = $4")).
		WithArgs(models.ApplicationApproved, sqlmock.AnyArg(), int64(42), models.ApplicationPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateApplicationStatus(context.Background(), 42, models.ApplicationPending, models.ApplicationApproved)
	require.NoError(t, err)
	require.True(t, ok)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET application_status = $1, update_time = $2 WHERE id = $3 AND application_status = $4")).
		WithArgs(models.ApplicationRejected, sqlmock.AnyArg(), int64(42), models.ApplicationPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err = repo.UpdateApplicationStatus(context.Background(), 42, models.ApplicationPending, models.ApplicationRejected)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateProcessStatus(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET process_status = $1, update_time = $2 WHERE id = $3 AND process_status = $4")).
		WithArgs(models.ProcessEnded, sqlmock.AnyArg(), int64(42), models.ProcessOngoing).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateProcessStatus(context.Background(), 42, models.ProcessEnded)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryExistsPendingOrApproved(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM applications WHERE student_id = $1 AND competition_id = $2 AND application_status IN ('pending', 'approved'))")).
		WithArgs("student-1", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsPendingOrApproved(context.Background(), "student-1", 7)
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func applicationDetailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "competition_id", "teacher_number",
		"application_status", "process_status", "contact_info", "description",
		"photo", "summary", "certificate", "submission_time", "update_time",
		"student_name", "student_number", "competition_name", "competition_type", "teacher_name",
	})
}
