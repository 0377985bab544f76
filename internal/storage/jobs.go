package storage

import (
	"context"
	"database/sql"

	"github.com/falkivanov/cloudcraft-express/internal/common/errors"
	"github.com/falkivanov/cloudcraft-express/internal/common/logger"
	"github.com/falkivanov/cloudcraft-express/internal/models"
)

// JobStore tracks upload lifecycle rows in file_uploads. Progress writes
// are advisory: a failed progress update is logged and ignored so it can
// never fail an extraction that is otherwise succeeding.
type JobStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewJobStore(db *sql.DB, log logger.Logger) *JobStore {
	return &JobStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "job-store"}),
	}
}

// Create records a fresh upload.
func (s *JobStore) Create(ctx context.Context, job *models.ProcessingJob) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file_uploads (
			file_id, filename, file_path, file_type, processing_id,
			processing_status, processing_progress, processing_message, upload_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		job.FileID, job.Filename, job.FilePath, job.FileType, job.ProcessingID,
		job.Status, job.Progress, job.Message, job.UploadDate)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "record upload", err)
	}
	return nil
}

// GetByProcessingID loads one job row.
func (s *JobStore) GetByProcessingID(ctx context.Context, processingID string) (*models.ProcessingJob, error) {
	var job models.ProcessingJob
	var message, resultURL, errorMessage sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT file_id, filename, file_path, file_type, processing_id,
		       processing_status, processing_progress, processing_message,
		       result_url, error_message, upload_date
		FROM file_uploads WHERE processing_id = $1`, processingID).Scan(
		&job.FileID, &job.Filename, &job.FilePath, &job.FileType, &job.ProcessingID,
		&job.Status, &job.Progress, &message, &resultURL, &errorMessage, &job.UploadDate)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeJobNotFound, "processing job not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatabaseFailed, "load processing job", err)
	}
	job.Message = message.String
	job.ResultURL = resultURL.String
	job.ErrorMessage = errorMessage.String
	return &job, nil
}

// UpdateProgress moves a job to a new state with advisory progress and
// message. Failures are logged, not returned.
func (s *JobStore) UpdateProgress(ctx context.Context, processingID string, state models.JobState, progress int, message string) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE file_uploads
		SET processing_status = $2, processing_progress = $3, processing_message = $4
		WHERE processing_id = $1`,
		processingID, state, progress, message)
	if err != nil {
		s.logger.Warn("progress update failed", map[string]interface{}{
			"processingId": processingID,
			"state":        string(state),
			"error":        err.Error(),
		})
	}
}

// Complete marks a job finished and records where the result lives.
func (s *JobStore) Complete(ctx context.Context, processingID, resultURL string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE file_uploads
		SET processing_status = $2, processing_progress = 100,
		    processing_message = $3, result_url = $4
		WHERE processing_id = $1`,
		processingID, models.JobCompleted, "processing complete", resultURL)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "mark job completed", err)
	}
	return nil
}

// Fail marks a job failed with the error message that stopped it.
func (s *JobStore) Fail(ctx context.Context, processingID, errorMessage string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE file_uploads
		SET processing_status = $2, processing_message = $3, error_message = $3
		WHERE processing_id = $1`,
		processingID, models.JobFailed, errorMessage)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "mark job failed", err)
	}
	return nil
}
