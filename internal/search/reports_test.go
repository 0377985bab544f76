package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falkivanov/cloudcraft-express/internal/common/logger"
	"github.com/falkivanov/cloudcraft-express/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client
}

func TestFilterParsesHits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": map[string]interface{}{
				"hits": []interface{}{
					map[string]interface{}{"_source": QualityReport{
						ID: "1", Type: "scorecard", Title: "Weekly Scorecard DSU1 - Week 12",
						Date: "2024-03-24", Location: "DSU1", Summary: "Overall score: 87.5, Rank: 3",
					}},
				},
			},
		})
	})

	idx := NewReportIndex(client, "quality-reports", logger.NewTestLogger(t))
	reports, err := idx.Filter(context.Background(), ReportFilter{Type: "scorecard"})

	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Weekly Scorecard DSU1 - Week 12", reports[0].Title)
}

func TestFilterSearchError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
	})

	idx := NewReportIndex(client, "quality-reports", logger.NewTestLogger(t))
	_, err := idx.Filter(context.Background(), ReportFilter{})

	assert.Error(t, err)
}

// Indexing is best effort: a broken backend must not surface an error.
func TestIndexScorecardSwallowsFailures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	idx := NewReportIndex(client, "quality-reports", logger.NewTestLogger(t))
	idx.IndexScorecard(context.Background(), &models.ScorecardResult{
		Week: 12, Year: 2024, Location: "DSU1", OverallScore: 87.5, Rank: 3,
	})
}

func TestBuildFilterQuery(t *testing.T) {
	query := buildFilterQuery(ReportFilter{
		Type:      "scorecard",
		Location:  "DSU1",
		StartDate: "2024-03-01",
		EndDate:   "2024-03-31",
		Search:    "week 12",
	})

	boolQuery := query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["must"], 1)
	assert.Len(t, boolQuery["filter"], 3)

	empty := buildFilterQuery(ReportFilter{})
	_, hasMatchAll := empty["query"].(map[string]interface{})["match_all"]
	assert.True(t, hasMatchAll)
}
