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

func newCompetitionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func competitionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "link", "type", "reg_time_start", "reg_time_end", "comp_time_start", "comp_time_end", "description", "status", "created_at", "updated_at"})
}

func TestCompetitionRepositoryListFiltersAndCounts(t *testing.T) {
	db, mock, cleanup := newCompetitionRepoMock(t)
	defer cleanup()

	repo := NewCompetitionRepository(db)
	status := models.CompetitionStatus(1)

	mock.ExpectQuery(`SELECT id, .+ FROM competitions WHERE 1=1 AND status = \$1 AND LOWER\(name\) LIKE \$2 ORDER BY id DESC LIMIT 20 OFFSET 0`).
		WithArgs(status, "%acm%").
		WillReturnRows(competitionRows().
			AddRow(int64(7), "ACM Regional", "https://acm.example.org", "programming", nil, nil, nil, nil, "", 1, time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM competitions WHERE 1=1`).
		WithArgs(status, "%acm%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.CompetitionFilter{Search: "ACM", Status: &status})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, total)
	require.Equal(t, "ACM Regional", items[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompetitionRepositoryListClampsPageSize(t *testing.T) {
	db, mock, cleanup := newCompetitionRepoMock(t)
	defer cleanup()

	repo := NewCompetitionRepository(db)
	mock.ExpectQuery(`FROM competitions WHERE 1=1 ORDER BY id DESC LIMIT 20 OFFSET 20`).
		WillReturnRows(competitionRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM competitions`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.CompetitionFilter{Page: 2, PageSize: 500})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompetitionRepositorySearch(t *testing.T) {
	db, mock, cleanup := newCompetitionRepoMock(t)
	defer cleanup()

	repo := NewCompetitionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM competitions WHERE LOWER(name) LIKE $1 ORDER BY id LIMIT 50")).
		WithArgs("%math%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(3), "Math Modeling Contest"))

	refs, err := repo.Search(context.Background(), "Math")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.Equal(t, int64(3), refs[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompetitionRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newCompetitionRepoMock(t)
	defer cleanup()

	repo := NewCompetitionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO competitions")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	competition := &models.Competition{Name: "ACM Regional", Type: "programming"}
	require.NoError(t, repo.Create(context.Background(), competition))
	require.Equal(t, int64(9), competition.ID)
	require.False(t, competition.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompetitionRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newCompetitionRepoMock(t)
	defer cleanup()

	repo := NewCompetitionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM competitions WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 9))
	require.NoError(t, mock.ExpectationsWereMet())
}
