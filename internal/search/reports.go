// Package search maintains the quality-reports index in Elasticsearch.
// Indexing is best effort: the scorecard is the system of record in
// PostgreSQL, the index only serves the report filter endpoint.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/falkivanov/cloudcraft-express/internal/common/errors"
	"github.com/falkivanov/cloudcraft-express/internal/common/logger"
	"github.com/falkivanov/cloudcraft-express/internal/models"
)

// QualityReport is one filterable report document.
type QualityReport struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Location string `json:"location"`
	Summary  string `json:"summary"`
}

// ReportFilter narrows Filter results. Empty fields mean "no filter".
// Dates are ISO, inclusive on both ends.
type ReportFilter struct {
	Type      string
	StartDate string
	EndDate   string
	Location  string
	Search    string
}

type ReportIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewReportIndex(client *elasticsearch.Client, index string, log logger.Logger) *ReportIndex {
	return &ReportIndex{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "report-index"}),
	}
}

// IndexScorecard publishes a report document for a freshly persisted
// scorecard. Failures are logged and swallowed.
func (r *ReportIndex) IndexScorecard(ctx context.Context, result *models.ScorecardResult) {
	report := QualityReport{
		ID:       uuid.New().String(),
		Type:     "scorecard",
		Title:    fmt.Sprintf("Weekly Scorecard %s - Week %d", result.Location, result.Week),
		Date:     time.Now().UTC().Format("2006-01-02"),
		Location: result.Location,
		Summary:  fmt.Sprintf("Overall score: %.1f, Rank: %d", result.OverallScore, result.Rank),
	}

	body, err := json.Marshal(report)
	if err != nil {
		r.logger.Warn("report marshal failed", map[string]interface{}{"error": err.Error()})
		return
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: report.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		r.logger.Warn("report indexing failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		r.logger.Warn("report indexing rejected", map[string]interface{}{"status": res.Status()})
	}
}

// Filter searches the report index.
func (r *ReportIndex) Filter(ctx context.Context, filter ReportFilter) ([]QualityReport, error) {
	body, err := json.Marshal(buildFilterQuery(filter))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSearchFailed, "build report query", err)
	}

	req := esapi.SearchRequest{
		Index: []string{r.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSearchFailed, "search reports", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, errors.New(errors.ErrCodeSearchFailed,
			fmt.Sprintf("report search returned %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source QualityReport `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSearchFailed, "decode report response", err)
	}

	reports := make([]QualityReport, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		reports = append(reports, hit.Source)
	}
	return reports, nil
}

func buildFilterQuery(filter ReportFilter) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if filter.Search != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  filter.Search,
				"fields": []string{"title^2", "summary"},
				"type":   "best_fields",
			},
		})
	}
	if filter.Type != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"type": filter.Type},
		})
	}
	if filter.Location != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"location": filter.Location},
		})
	}
	if filter.StartDate != "" || filter.EndDate != "" {
		dateRange := map[string]interface{}{}
		if filter.StartDate != "" {
			dateRange["gte"] = filter.StartDate
		}
		if filter.EndDate != "" {
			dateRange["lte"] = filter.EndDate
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"date": dateRange},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}
	if len(boolQuery) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
			"sort":  []interface{}{map[string]interface{}{"date": "desc"}},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{map[string]interface{}{"date": "desc"}},
	}
}
