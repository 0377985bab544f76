// Package metadata pulls the week-level header fields (location, overall
// score, rank) out of combined page text. A pattern miss is never an error:
// every field resolves to its configured default.
package metadata

import (
	"fmt"
	"strings"

	"github.com/falkivanov/cloudcraft-express/internal/extract/fields"
	"github.com/falkivanov/cloudcraft-express/internal/extract/patterns"
	"github.com/falkivanov/cloudcraft-express/internal/models"
)

// Defaults are applied when no pattern matches.
type Defaults struct {
	Location string
	Score    float64
	Rank     int
}

// StandardDefaults mirrors the single-location deployment.
var StandardDefaults = Defaults{Location: "DSU1", Score: 90.0, Rank: 5}

// Extractor locates scorecard header fields in free text.
type Extractor struct {
	defaults Defaults
}

func NewExtractor(defaults Defaults) *Extractor {
	if defaults.Location == "" {
		defaults = StandardDefaults
	}
	return &Extractor{defaults: defaults}
}

// Extract runs all header rules over the combined text of every page.
func (e *Extractor) Extract(text string) models.Metadata {
	return models.Metadata{
		Location:     e.extractLocation(text),
		OverallScore: e.extractScore(text),
		Rank:         e.extractRank(text),
	}
}

// extractLocation tries the explicit station label first, then scans for any
// known station code anywhere in the text.
func (e *Extractor) extractLocation(text string) string {
	if m := patterns.LocationLabel.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	for _, code := range patterns.KnownStations {
		if strings.Contains(text, code) {
			return code
		}
	}
	return e.defaults.Location
}

func (e *Extractor) extractScore(text string) float64 {
	m := patterns.ScoreLabel.FindStringSubmatch(text)
	if m == nil {
		return e.defaults.Score
	}
	score, err := fields.ParseFloat(m[1])
	if err != nil || score == nil {
		return e.defaults.Score
	}
	return *score
}

func (e *Extractor) extractRank(text string) int {
	m := patterns.RankLabel.FindStringSubmatch(text)
	if m == nil {
		m = patterns.RankOfForm.FindStringSubmatch(text)
	}
	if m == nil {
		return e.defaults.Rank
	}
	rank, err := fields.ParseInt(m[1])
	if err != nil || rank == nil {
		return e.defaults.Rank
	}
	return *rank
}

// DetermineStatus maps a score onto the overall performance tier. Lower
// bounds are inclusive.
func DetermineStatus(score float64) models.KPIStatus {
	switch {
	case score >= 95:
		return models.StatusFantastic
	case score >= 90:
		return models.StatusGreat
	case score >= 85:
		return models.StatusGood
	case score >= 80:
		return models.StatusFair
	default:
		return models.StatusPoor
	}
}

// GenerateRankNote builds the short dashboard note for a station rank.
func GenerateRankNote(rank int) string {
	switch {
	case rank <= 3:
		return fmt.Sprintf("Top %d! Great job!", rank)
	case rank <= 10:
		return fmt.Sprintf("Rank %d, in the top 10", rank)
	default:
		return fmt.Sprintf("Currently at rank %d", rank)
	}
}
