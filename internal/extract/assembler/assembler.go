// Package assembler drives one upload through the extraction state machine:
//
//	received → parsing → extracting_metadata → extracting_kpis → persisting
//	         → completed | failed
//
// Progress percentages are advisory telemetry. Any error short-circuits to
// failed with the message recorded on the job; the persistence transaction
// guarantees nothing partial is committed.
package assembler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/falkivanov/cloudcraft-express/internal/common/errors"
	"github.com/falkivanov/cloudcraft-express/internal/common/logger"
	"github.com/falkivanov/cloudcraft-express/internal/common/metrics"
	"github.com/falkivanov/cloudcraft-express/internal/common/observability"
	"github.com/falkivanov/cloudcraft-express/internal/extract/driver"
	"github.com/falkivanov/cloudcraft-express/internal/extract/focus"
	"github.com/falkivanov/cloudcraft-express/internal/extract/metadata"
	"github.com/falkivanov/cloudcraft-express/internal/extract/patterns"
	"github.com/falkivanov/cloudcraft-express/internal/models"
	"github.com/falkivanov/cloudcraft-express/internal/pdftext"
)

// ScorecardWriter persists an assembled result under its (week, year) key.
type ScorecardWriter interface {
	Replace(ctx context.Context, fileID string, result *models.ScorecardResult) (int64, error)
}

// JobTracker reports state-machine transitions onto the upload's job row.
type JobTracker interface {
	UpdateProgress(ctx context.Context, processingID string, state models.JobState, progress int, message string)
	Complete(ctx context.Context, processingID, resultURL string) error
	Fail(ctx context.Context, processingID, errorMessage string) error
}

// ReportPublisher mirrors a persisted scorecard into the report index.
type ReportPublisher interface {
	IndexScorecard(ctx context.Context, result *models.ScorecardResult)
}

// NameSource supplies the transporter-ID → name resolver.
type NameSource interface {
	Resolver(ctx context.Context) driver.NameResolver
}

type Assembler struct {
	store    ScorecardWriter
	jobs     JobTracker
	reports  ReportPublisher
	names    NameSource
	meta     *metadata.Extractor
	obs      *observability.Observability
	clock    func() time.Time
	logger   logger.Logger

	// keyLocks serializes assemblies that target the same (week, year) so
	// two concurrent uploads cannot interleave their delete-then-insert.
	mu       sync.Mutex
	keyLocks map[scorecardKey]*sync.Mutex
}

type scorecardKey struct {
	week int
	year int
}

type Options struct {
	Store    ScorecardWriter
	Jobs     JobTracker
	Reports  ReportPublisher
	Names    NameSource
	Defaults metadata.Defaults
	Obs      *observability.Observability
	Clock    func() time.Time
	Logger   logger.Logger
}

func New(opts Options) *Assembler {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Assembler{
		store:    opts.Store,
		jobs:     opts.Jobs,
		reports:  opts.Reports,
		names:    opts.Names,
		meta:     metadata.NewExtractor(opts.Defaults),
		obs:      opts.Obs,
		clock:    clock,
		logger:   opts.Logger.WithFields(map[string]interface{}{"component": "assembler"}),
		keyLocks: make(map[scorecardKey]*sync.Mutex),
	}
}

func (a *Assembler) lockKey(key scorecardKey) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.keyLocks[key]; !ok {
		a.keyLocks[key] = &sync.Mutex{}
	}
	return a.keyLocks[key]
}

// Assemble runs the full pipeline for one upload and returns the persisted
// scorecard ID with the assembled result. mode tags metrics ("sync" or
// "queue"); output is identical either way.
func (a *Assembler) Assemble(ctx context.Context, job *models.ProcessingJob, src pdftext.Source, mode string) (int64, *models.ScorecardResult, error) {
	start := a.clock()
	log := a.logger.WithFields(map[string]interface{}{
		"processingId": job.ProcessingID,
		"filename":     job.Filename,
	})
	log.Info("assembly started", map[string]interface{}{"mode": mode})

	a.jobs.UpdateProgress(ctx, job.ProcessingID, models.JobReceived, 0, "upload received")

	id, result, strategyName, err := a.run(ctx, job, src)
	if err != nil {
		stdErr := errors.Normalize(err)
		if failErr := a.jobs.Fail(ctx, job.ProcessingID, stdErr.FullMessage()); failErr != nil {
			log.Error("failed to record job failure", map[string]interface{}{"error": failErr.Error()})
		}
		metrics.ExtractionJobsFailed.WithLabelValues(mode, string(stdErr.Code)).Inc()
		if a.obs != nil {
			a.obs.RecordJobProcessed(ctx, "failed")
		}
		log.Error("assembly failed", map[string]interface{}{"error": err.Error(), "code": string(stdErr.Code)})
		return 0, nil, err
	}

	resultURL := fmt.Sprintf("/api/v1/scorecard/%d", id)
	if err := a.jobs.Complete(ctx, job.ProcessingID, resultURL); err != nil {
		log.Error("failed to record job completion", map[string]interface{}{"error": err.Error()})
	}

	elapsed := a.clock().Sub(start)
	metrics.ExtractionJobsCompleted.WithLabelValues(mode).Inc()
	metrics.ExtractionDuration.WithLabelValues(strategyName).Observe(elapsed.Seconds())
	metrics.DriversExtracted.WithLabelValues(strategyName).Observe(float64(len(result.DriverKPIs)))
	metrics.CompanyKPIsExtracted.WithLabelValues(strategyName).Observe(float64(len(result.CompanyKPIs)))
	if a.obs != nil {
		a.obs.RecordJobProcessed(ctx, "completed")
		a.obs.RecordJobDuration(ctx, elapsed, "completed")
	}

	log.Info("assembly completed", map[string]interface{}{
		"scorecardId": id,
		"week":        result.Week,
		"year":        result.Year,
		"strategy":    strategyName,
		"durationMs":  elapsed.Milliseconds(),
	})
	return id, result, nil
}

func (a *Assembler) run(ctx context.Context, job *models.ProcessingJob, src pdftext.Source) (int64, *models.ScorecardResult, string, error) {
	// parsing: pull every page's text up front.
	a.jobs.UpdateProgress(ctx, job.ProcessingID, models.JobParsing, 10, "reading document")
	pages, err := readPages(src)
	if err != nil {
		return 0, nil, "", errors.Wrap(errors.ErrCodePDFParseFailed, "document unreadable", err)
	}

	// extracting_metadata: week from the filename, year from the clock,
	// header fields from the text. Misses resolve to defaults, never errors.
	a.jobs.UpdateProgress(ctx, job.ProcessingID, models.JobExtractingMetadata, 30, "extracting metadata")
	now := a.clock()
	week := patterns.ExtractWeekNumber(job.Filename, now)
	year := now.Year()
	combined := strings.Join(pages, "\n")
	meta := a.meta.Extract(combined)

	// extracting_kpis: pick the strategy from the document shape.
	a.jobs.UpdateProgress(ctx, job.ProcessingID, models.JobExtractingKPIs, 50, "extracting KPIs")
	strategy := selectStrategy(len(pages))
	var resolve driver.NameResolver
	if a.names != nil {
		resolve = a.names.Resolver(ctx)
	}
	companyKPIs := strategy.CompanyKPIs(pages)
	driverKPIs := strategy.DriverKPIs(pages, resolve)

	result := &models.ScorecardResult{
		Week:                  week,
		Year:                  year,
		Location:              meta.Location,
		OverallScore:          meta.OverallScore,
		OverallStatus:         metadata.DetermineStatus(meta.OverallScore),
		Rank:                  meta.Rank,
		RankNote:              metadata.GenerateRankNote(meta.Rank),
		CompanyKPIs:           companyKPIs,
		DriverKPIs:            driverKPIs,
		RecommendedFocusAreas: focus.Recommend(companyKPIs),
	}
	normalizeResult(result)

	if err := validateResult(result); err != nil {
		return 0, nil, strategy.Name(), errors.Wrap(errors.ErrCodeInternal, "result validation failed", err)
	}

	// persisting: one transaction per (week, year), serialized per key.
	a.jobs.UpdateProgress(ctx, job.ProcessingID, models.JobPersisting, 80, "persisting scorecard")
	keyLock := a.lockKey(scorecardKey{week: result.Week, year: result.Year})
	keyLock.Lock()
	id, err := a.store.Replace(ctx, job.FileID, result)
	keyLock.Unlock()
	if err != nil {
		return 0, nil, strategy.Name(), err
	}

	if a.reports != nil {
		a.reports.IndexScorecard(ctx, result)
	}
	return id, result, strategy.Name(), nil
}

func readPages(src pdftext.Source) ([]string, error) {
	pages := make([]string, src.PageCount())
	for i := range pages {
		text, err := src.PageText(i)
		if err != nil {
			return nil, err
		}
		pages[i] = text
	}
	return pages, nil
}

// normalizeResult replaces nil collections so the persisted JSON always
// carries arrays.
func normalizeResult(result *models.ScorecardResult) {
	if result.CompanyKPIs == nil {
		result.CompanyKPIs = []models.CompanyKPI{}
	}
	if result.DriverKPIs == nil {
		result.DriverKPIs = []models.DriverKPI{}
	}
	for i := range result.DriverKPIs {
		if result.DriverKPIs[i].Metrics == nil {
			result.DriverKPIs[i].Metrics = []models.DriverMetric{}
		}
	}
	if result.RecommendedFocusAreas == nil {
		result.RecommendedFocusAreas = []string{}
	}
}
