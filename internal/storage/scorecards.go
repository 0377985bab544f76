// Package storage is the PostgreSQL persistence layer. Scorecards are keyed
// by (week, year): persisting a result for an existing key replaces the old
// snapshot inside a single transaction, so re-uploads are idempotent and
// readers never observe KPI rows from two uploads at once.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/falkivanov/cloudcraft-express/internal/common/errors"
	"github.com/falkivanov/cloudcraft-express/internal/common/logger"
	"github.com/falkivanov/cloudcraft-express/internal/models"
)

// ScorecardRecord is a scorecard row together with its KPI rows.
type ScorecardRecord struct {
	models.Scorecard
	CompanyKPIs []models.CompanyKPI `json:"companyKPIs"`
	DriverKPIs  []models.DriverKPI  `json:"driverKPIs"`
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Week     int
	Year     int
	Location string
}

type ScorecardStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewScorecardStore(db *sql.DB, log logger.Logger) *ScorecardStore {
	return &ScorecardStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "scorecard-store"}),
	}
}

// Replace persists an assembled result under its (week, year) key, deleting
// any previous snapshot for that key first. Child KPI rows are removed
// explicitly before the parent row. Returns the new scorecard ID. Any error
// rolls the transaction back; nothing partial is ever committed.
func (s *ScorecardStore) Replace(ctx context.Context, fileID string, result *models.ScorecardResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeDatabaseFailed, "begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM company_kpis
		WHERE scorecard_id IN (SELECT id FROM scorecards WHERE week = $1 AND year = $2)`,
		result.Week, result.Year)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodePersistenceFailed, "delete previous company KPIs", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM driver_kpis
		WHERE scorecard_id IN (SELECT id FROM scorecards WHERE week = $1 AND year = $2)`,
		result.Week, result.Year)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodePersistenceFailed, "delete previous driver KPIs", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM scorecards WHERE week = $1 AND year = $2`,
		result.Week, result.Year)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodePersistenceFailed, "delete previous scorecard", err)
	}

	var scorecardID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO scorecards (
			file_id, week, year, location, overall_score, overall_status,
			rank, rank_note, is_sample_data, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		fileID, result.Week, result.Year, result.Location, result.OverallScore,
		result.OverallStatus, result.Rank, result.RankNote, false, time.Now().UTC(),
	).Scan(&scorecardID)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodePersistenceFailed, "insert scorecard", err)
	}

	for _, kpi := range result.CompanyKPIs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO company_kpis (scorecard_id, name, value, target, unit, status, category)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			scorecardID, kpi.Name, kpi.Value, kpi.Target, kpi.Unit, kpi.Status, kpi.Category)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodePersistenceFailed,
				fmt.Sprintf("insert company KPI %q", kpi.Name), err)
		}
	}

	for _, driver := range result.DriverKPIs {
		metricsJSON, err := json.Marshal(driver.Metrics)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodePersistenceFailed,
				fmt.Sprintf("marshal metrics for driver %s", driver.DriverID), err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO driver_kpis (scorecard_id, driver_id, name, status, metrics)
			VALUES ($1, $2, $3, $4, $5)`,
			scorecardID, driver.DriverID, driver.Name, driver.Status, metricsJSON)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodePersistenceFailed,
				fmt.Sprintf("insert driver KPI %s", driver.DriverID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(errors.ErrCodePersistenceFailed, "commit transaction", err)
	}

	s.logger.Info("scorecard replaced", map[string]interface{}{
		"scorecardId": scorecardID,
		"week":        result.Week,
		"year":        result.Year,
		"companyKPIs": len(result.CompanyKPIs),
		"driverKPIs":  len(result.DriverKPIs),
	})
	return scorecardID, nil
}

// GetByID loads one scorecard with its KPI rows.
func (s *ScorecardStore) GetByID(ctx context.Context, id int64) (*ScorecardRecord, error) {
	return s.getOne(ctx, `
		SELECT id, file_id, week, year, location, overall_score, overall_status,
		       rank, rank_note, is_sample_data, created_at
		FROM scorecards WHERE id = $1`, id)
}

// GetByWeek loads the scorecard stored under (week, year).
func (s *ScorecardStore) GetByWeek(ctx context.Context, week, year int) (*ScorecardRecord, error) {
	return s.getOne(ctx, `
		SELECT id, file_id, week, year, location, overall_score, overall_status,
		       rank, rank_note, is_sample_data, created_at
		FROM scorecards WHERE week = $1 AND year = $2`, week, year)
}

func (s *ScorecardStore) getOne(ctx context.Context, query string, args ...interface{}) (*ScorecardRecord, error) {
	var rec ScorecardRecord
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.ID, &rec.FileID, &rec.Week, &rec.Year, &rec.Location,
		&rec.OverallScore, &rec.OverallStatus, &rec.Rank, &rec.RankNote,
		&rec.IsSampleData, &rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeScorecardNotFound, "scorecard not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatabaseFailed, "load scorecard", err)
	}

	rec.CompanyKPIs, err = s.loadCompanyKPIs(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	rec.DriverKPIs, err = s.loadDriverKPIs(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	// The read path serves the same shape as a freshly assembled result:
	// empty collections, never null.
	if rec.CompanyKPIs == nil {
		rec.CompanyKPIs = []models.CompanyKPI{}
	}
	if rec.DriverKPIs == nil {
		rec.DriverKPIs = []models.DriverKPI{}
	}
	return &rec, nil
}

func (s *ScorecardStore) loadCompanyKPIs(ctx context.Context, scorecardID int64) ([]models.CompanyKPI, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, value, target, unit, status, category
		FROM company_kpis WHERE scorecard_id = $1 ORDER BY id`, scorecardID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatabaseFailed, "load company KPIs", err)
	}
	defer rows.Close()

	var kpis []models.CompanyKPI
	for rows.Next() {
		var kpi models.CompanyKPI
		if err := rows.Scan(&kpi.Name, &kpi.Value, &kpi.Target, &kpi.Unit, &kpi.Status, &kpi.Category); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDatabaseFailed, "scan company KPI", err)
		}
		kpis = append(kpis, kpi)
	}
	return kpis, rows.Err()
}

func (s *ScorecardStore) loadDriverKPIs(ctx context.Context, scorecardID int64) ([]models.DriverKPI, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT driver_id, name, status, metrics
		FROM driver_kpis WHERE scorecard_id = $1 ORDER BY id`, scorecardID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatabaseFailed, "load driver KPIs", err)
	}
	defer rows.Close()

	var drivers []models.DriverKPI
	for rows.Next() {
		var driver models.DriverKPI
		var metricsJSON []byte
		if err := rows.Scan(&driver.DriverID, &driver.Name, &driver.Status, &metricsJSON); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDatabaseFailed, "scan driver KPI", err)
		}
		if len(metricsJSON) > 0 {
			if err := json.Unmarshal(metricsJSON, &driver.Metrics); err != nil {
				return nil, errors.Wrap(errors.ErrCodeDatabaseFailed,
					fmt.Sprintf("decode metrics for driver %s", driver.DriverID), err)
			}
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

// List returns scorecard summaries, newest week first.
func (s *ScorecardStore) List(ctx context.Context, filter ListFilter) ([]models.ScorecardSummary, error) {
	query := `
		SELECT id, week, year, location, overall_score, overall_status, created_at
		FROM scorecards WHERE 1=1`
	var args []interface{}
	if filter.Week != 0 {
		args = append(args, filter.Week)
		query += fmt.Sprintf(" AND week = $%d", len(args))
	}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		query += fmt.Sprintf(" AND location = $%d", len(args))
	}
	query += " ORDER BY year DESC, week DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatabaseFailed, "list scorecards", err)
	}
	defer rows.Close()

	var summaries []models.ScorecardSummary
	for rows.Next() {
		var sum models.ScorecardSummary
		if err := rows.Scan(&sum.ID, &sum.Week, &sum.Year, &sum.Location,
			&sum.OverallScore, &sum.OverallStatus, &sum.CreatedAt); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDatabaseFailed, "scan scorecard summary", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
