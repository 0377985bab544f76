package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/falkivanov/cloudcraft-express/internal/common/errors"
	"github.com/falkivanov/cloudcraft-express/internal/common/logger"
	"github.com/falkivanov/cloudcraft-express/internal/models"
	"github.com/falkivanov/cloudcraft-express/internal/search"
	"github.com/falkivanov/cloudcraft-express/internal/storage"
)

type Handlers struct {
	service *Service
	reports ReportSearcher
	version string
	logger  logger.Logger
}

func NewHandlers(service *Service, reports ReportSearcher, version string, log logger.Logger) *Handlers {
	return &Handlers{
		service: service,
		reports: reports,
		version: version,
		logger:  log.WithFields(map[string]interface{}{"component": "handlers"}),
	}
}

// NewRouter wires all routes onto a gin engine.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.Health)
	router.GET("/version", h.Version)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/scorecard/extract", h.ExtractScorecard)
		api.POST("/processing/status", h.ProcessingStatus)
		api.GET("/scorecard/list", h.ListScorecards)
		api.GET("/scorecard/week/:week/year/:year", h.ScorecardByWeek)
		api.GET("/scorecard/:id", h.ScorecardByID)
		api.POST("/pdf/extract-text", h.ExtractText)
		api.GET("/quality/reports/filter", h.FilterReports)
	}
	return router
}

// respondError maps an error onto the envelope and a transport status.
func respondError(c *gin.Context, err error) {
	stdErr := errors.Normalize(err)
	status := http.StatusInternalServerError
	if errors.IsNotFound(err) {
		status = http.StatusNotFound
	} else if errors.IsInputError(err) {
		status = http.StatusBadRequest
	}
	c.JSON(status, models.Err(stdErr.Message))
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

func (h *Handlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.version})
}

// ExtractScorecard accepts a multipart PDF upload and dispatches extraction.
// ?mode=queue defers to the worker pool; the default runs synchronously.
func (h *Handlers) ExtractScorecard(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, errors.New(errors.ErrCodeInvalidInput, "no file provided"))
		return
	}
	defer file.Close()

	mode := c.DefaultQuery("mode", "sync")
	job, err := h.service.CreateUpload(c.Request.Context(), header.Filename, file, header.Size, mode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK(gin.H{
		"fileId":           job.FileID,
		"filename":         job.Filename,
		"processingStatus": job.Status,
		"processingId":     job.ProcessingID,
	}))
}

type statusRequest struct {
	ProcessingID string `json:"processingId" binding:"required"`
}

func (h *Handlers) ProcessingStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.New(errors.ErrCodeInvalidInput, "processingId is required"))
		return
	}

	job, err := h.service.JobStatus(c.Request.Context(), req.ProcessingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(job))
}

func (h *Handlers) ScorecardByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, errors.New(errors.ErrCodeInvalidInput, "scorecard id must be numeric"))
		return
	}

	record, err := h.service.scorecards.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(record))
}

func (h *Handlers) ScorecardByWeek(c *gin.Context) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil || week < 1 || week > 53 {
		respondError(c, errors.New(errors.ErrCodeInvalidInput, "week must be between 1 and 53"))
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		respondError(c, errors.New(errors.ErrCodeInvalidInput, "year must be numeric"))
		return
	}

	record, err := h.service.scorecards.GetByWeek(c.Request.Context(), week, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(record))
}

func (h *Handlers) ListScorecards(c *gin.Context) {
	var filter storage.ListFilter
	if v := c.Query("week"); v != "" {
		filter.Week, _ = strconv.Atoi(v)
	}
	if v := c.Query("year"); v != "" {
		filter.Year, _ = strconv.Atoi(v)
	}
	filter.Location = c.Query("location")

	summaries, err := h.service.scorecards.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if summaries == nil {
		summaries = []models.ScorecardSummary{}
	}
	c.JSON(http.StatusOK, models.OK(summaries))
}

// ExtractText serves ad-hoc text extraction: upload a PDF, get back a
// 1-based page-number → text map.
func (h *Handlers) ExtractText(c *gin.Context) {
	formFile, err := c.FormFile("file")
	if err != nil {
		respondError(c, errors.New(errors.ErrCodeInvalidInput, "no file provided"))
		return
	}

	tmp := filepath.Join(os.TempDir(), uuid.New().String()+".pdf")
	if err := c.SaveUploadedFile(formFile, tmp); err != nil {
		respondError(c, errors.Wrap(errors.ErrCodeInternal, "store upload", err))
		return
	}
	defer os.Remove(tmp)

	pages, err := h.service.ExtractText(tmp)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(gin.H{
		"filename": formFile.Filename,
		"pages":    pages,
	}))
}

func (h *Handlers) FilterReports(c *gin.Context) {
	if h.reports == nil {
		c.JSON(http.StatusServiceUnavailable, models.Err("report search is disabled"))
		return
	}
	filter := search.ReportFilter{
		Type:      c.Query("report_type"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Location:  c.Query("location"),
		Search:    c.Query("search"),
	}

	reports, err := h.reports.Filter(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(reports))
}
