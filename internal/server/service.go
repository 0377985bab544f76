// Package server is the HTTP surface: upload intake, processing status,
// scorecard reads and the report filter. Handlers stay thin; the Service
// owns upload bookkeeping and dispatch.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/falkivanov/cloudcraft-express/internal/common/errors"
	"github.com/falkivanov/cloudcraft-express/internal/common/logger"
	"github.com/falkivanov/cloudcraft-express/internal/models"
	"github.com/falkivanov/cloudcraft-express/internal/pdftext"
	"github.com/falkivanov/cloudcraft-express/internal/search"
	"github.com/falkivanov/cloudcraft-express/internal/storage"
)

// Extractor runs the assembly pipeline for one upload.
type Extractor interface {
	Assemble(ctx context.Context, job *models.ProcessingJob, src pdftext.Source, mode string) (int64, *models.ScorecardResult, error)
}

// JobRepository is the upload bookkeeping the service needs.
type JobRepository interface {
	Create(ctx context.Context, job *models.ProcessingJob) error
	GetByProcessingID(ctx context.Context, processingID string) (*models.ProcessingJob, error)
	Fail(ctx context.Context, processingID, errorMessage string) error
}

// ScorecardReader serves the read endpoints.
type ScorecardReader interface {
	GetByID(ctx context.Context, id int64) (*storage.ScorecardRecord, error)
	GetByWeek(ctx context.Context, week, year int) (*storage.ScorecardRecord, error)
	List(ctx context.Context, filter storage.ListFilter) ([]models.ScorecardSummary, error)
}

// Enqueuer defers an upload to the worker pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, processingID string) error
}

// ReportSearcher serves the quality-report filter.
type ReportSearcher interface {
	Filter(ctx context.Context, filter search.ReportFilter) ([]search.QualityReport, error)
}

// OpenSource opens a stored upload for extraction. Injected so handler
// tests can serve fixture pages.
type OpenSource func(path string) (pdftext.Source, error)

type Service struct {
	jobs       JobRepository
	scorecards ScorecardReader
	extractor  Extractor
	queue      Enqueuer
	open       OpenSource
	uploadsDir string
	maxBytes   int64
	logger     logger.Logger
}

type ServiceOptions struct {
	Jobs       JobRepository
	Scorecards ScorecardReader
	Extractor  Extractor
	Queue      Enqueuer
	Open       OpenSource
	UploadsDir string
	MaxSizeMB  int
	Logger     logger.Logger
}

func NewService(opts ServiceOptions) *Service {
	open := opts.Open
	if open == nil {
		open = pdftext.Open
	}
	return &Service{
		jobs:       opts.Jobs,
		scorecards: opts.Scorecards,
		extractor:  opts.Extractor,
		queue:      opts.Queue,
		open:       open,
		uploadsDir: opts.UploadsDir,
		maxBytes:   int64(opts.MaxSizeMB) * 1024 * 1024,
		logger:     opts.Logger.WithFields(map[string]interface{}{"component": "server"}),
	}
}

// CreateUpload stores the file, records the job row and dispatches
// processing. mode "queue" defers to the worker pool, anything else runs
// the pipeline before returning.
func (s *Service) CreateUpload(ctx context.Context, filename string, file io.Reader, size int64, mode string) (*models.ProcessingJob, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "only PDF files are accepted")
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, errors.New(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("file exceeds the %d MB limit", s.maxBytes/(1024*1024)))
	}

	fileID := uuid.New().String()
	path := filepath.Join(s.uploadsDir, fileID+".pdf")
	if err := s.saveFile(path, file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "store upload", err)
	}

	job := &models.ProcessingJob{
		FileID:       fileID,
		Filename:     filename,
		FilePath:     path,
		FileType:     "scorecard",
		ProcessingID: uuid.New().String(),
		Status:       models.JobQueued,
		UploadDate:   time.Now().UTC(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	if mode == "queue" && s.queue != nil {
		if err := s.queue.Enqueue(ctx, job.ProcessingID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "enqueue processing job", err)
		}
		return job, nil
	}

	if err := s.process(ctx, job, "sync"); err != nil {
		// The job row already carries the failure; the upload itself
		// succeeded, so the caller still gets the processing ID.
		s.logger.Warn("synchronous processing failed", map[string]interface{}{
			"processingId": job.ProcessingID,
			"error":        err.Error(),
		})
		job.Status = models.JobFailed
		job.ErrorMessage = errors.Normalize(err).Message
		return job, nil
	}
	job.Status = models.JobCompleted
	return job, nil
}

func (s *Service) saveFile(path string, file io.Reader) error {
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		return err
	}
	return nil
}

// Process runs the pipeline for a queued upload. Exposed for the worker.
func (s *Service) Process(ctx context.Context, processingID string) error {
	job, err := s.jobs.GetByProcessingID(ctx, processingID)
	if err != nil {
		return err
	}
	return s.process(ctx, job, "queue")
}

func (s *Service) process(ctx context.Context, job *models.ProcessingJob, mode string) error {
	src, err := s.open(job.FilePath)
	if err != nil {
		wrapped := errors.Wrap(errors.ErrCodePDFParseFailed, "document unreadable", err)
		if failErr := s.jobs.Fail(ctx, job.ProcessingID, wrapped.FullMessage()); failErr != nil {
			s.logger.Error("failed to record job failure", map[string]interface{}{"error": failErr.Error()})
		}
		return wrapped
	}
	defer src.Close()

	_, _, err = s.extractor.Assemble(ctx, job, src, mode)
	return err
}

// JobStatus returns the lifecycle record for one processing ID.
func (s *Service) JobStatus(ctx context.Context, processingID string) (*models.ProcessingJob, error) {
	return s.jobs.GetByProcessingID(ctx, processingID)
}

// ExtractText returns the page-number → text map for an ad-hoc PDF.
// Page numbers in the response are 1-based.
func (s *Service) ExtractText(path string) (map[int]string, error) {
	src, err := s.open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePDFParseFailed, "document unreadable", err)
	}
	defer src.Close()

	pages := make(map[int]string, src.PageCount())
	for i := 0; i < src.PageCount(); i++ {
		text, err := src.PageText(i)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodePDFParseFailed,
				fmt.Sprintf("page %d unreadable", i+1), err)
		}
		pages[i+1] = text
	}
	return pages, nil
}
