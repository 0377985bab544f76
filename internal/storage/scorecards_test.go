package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falkivanov/cloudcraft-express/internal/common/errors"
	"github.com/falkivanov/cloudcraft-express/internal/common/logger"
	"github.com/falkivanov/cloudcraft-express/internal/models"
)

func testResult() *models.ScorecardResult {
	return &models.ScorecardResult{
		Week:          12,
		Year:          2024,
		Location:      "DSU1",
		OverallScore:  92.5,
		OverallStatus: models.StatusGreat,
		Rank:          3,
		RankNote:      "Top 3! Great job!",
		CompanyKPIs: []models.CompanyKPI{
			{Name: "DCR", Value: 97.3, Target: 95.0, Unit: "%", Status: models.StatusFantastic, Category: models.CategoryCustomer},
		},
		DriverKPIs: []models.DriverKPI{
			{DriverID: "A1B2C3D4E5F6G7", Name: "Max Mustermann", Status: "active", Metrics: []models.DriverMetric{}},
		},
		RecommendedFocusAreas: []string{"DCR"},
	}
}

func expectReplace(mock sqlmock.Sqlmock, scorecardID int64) {
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM company_kpis").
		WithArgs(12, 2024).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM driver_kpis").
		WithArgs(12, 2024).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM scorecards").
		WithArgs(12, 2024).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO scorecards").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(scorecardID))
	mock.ExpectExec("INSERT INTO company_kpis").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO driver_kpis").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
}

func TestReplaceScorecard(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectReplace(mock, 42)

	store := NewScorecardStore(db, logger.NewTestLogger(t))
	id, err := store.Replace(context.Background(), "file-001", testResult())

	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Replaying the same result twice runs the same delete-then-insert sequence
// both times; the second run removes the first run's rows.
func TestReplaceScorecardIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectReplace(mock, 42)
	expectReplace(mock, 43)

	store := NewScorecardStore(db, logger.NewTestLogger(t))

	_, err = store.Replace(context.Background(), "file-001", testResult())
	require.NoError(t, err)
	id, err := store.Replace(context.Background(), "file-002", testResult())
	require.NoError(t, err)

	assert.Equal(t, int64(43), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceScorecardRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM company_kpis").
		WithArgs(12, 2024).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM driver_kpis").
		WithArgs(12, 2024).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM scorecards").
		WithArgs(12, 2024).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO scorecards").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	store := NewScorecardStore(db, logger.NewTestLogger(t))
	_, err = store.Replace(context.Background(), "file-001", testResult())

	require.Error(t, err)
	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodePersistenceFailed, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, file_id").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	store := NewScorecardStore(db, logger.NewTestLogger(t))
	_, err = store.GetByID(context.Background(), 99)

	assert.True(t, errors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDEmptyKPICollections(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, file_id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "file_id", "week", "year", "location", "overall_score",
			"overall_status", "rank", "rank_note", "is_sample_data", "created_at",
		}).AddRow(int64(5), "file-5", 12, 2024, "DSU1", 90.0, "great", 5, "", false, now))
	mock.ExpectQuery("SELECT name, value").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "value", "target", "unit", "status", "category"}))
	mock.ExpectQuery("SELECT driver_id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"driver_id", "name", "status", "metrics"}))

	store := NewScorecardStore(db, logger.NewTestLogger(t))
	rec, err := store.GetByID(context.Background(), 5)
	require.NoError(t, err)

	assert.NotNil(t, rec.CompanyKPIs)
	assert.NotNil(t, rec.DriverKPIs)
	assert.Empty(t, rec.CompanyKPIs)
	assert.Empty(t, rec.DriverKPIs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "week", "year", "location", "overall_score", "overall_status", "created_at"}).
		AddRow(2, 13, 2024, "DSU1", 94.0, "great", now).
		AddRow(1, 12, 2024, "DSU1", 92.5, "great", now)
	mock.ExpectQuery("SELECT id, week, year").
		WithArgs(2024).
		WillReturnRows(rows)

	store := NewScorecardStore(db, logger.NewTestLogger(t))
	summaries, err := store.List(context.Background(), ListFilter{Year: 2024})

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 13, summaries[0].Week)
	assert.Equal(t, 12, summaries[1].Week)
	assert.NoError(t, mock.ExpectationsWereMet())
}
