// internal/models/scorecard.go
package models

import "time"

// KPIStatus is a performance tier. The fantastic..poor family is computed
// from scores; the success/warning/danger family appears verbatim in
// free-text scorecard exports and is carried through unchanged.
type KPIStatus string

const (
	StatusFantastic KPIStatus = "fantastic"
	StatusGreat     KPIStatus = "great"
	StatusGood      KPIStatus = "good"
	StatusFair      KPIStatus = "fair"
	StatusPoor      KPIStatus = "poor"

	StatusSuccess KPIStatus = "success"
	StatusWarning KPIStatus = "warning"
	StatusDanger  KPIStatus = "danger"
)

// KPICategory groups company KPIs for the dashboard.
type KPICategory string

const (
	CategorySafety       KPICategory = "safety"
	CategoryCompliance   KPICategory = "compliance"
	CategoryCustomer     KPICategory = "customer"
	CategoryQuality      KPICategory = "quality"
	CategoryCapacity     KPICategory = "capacity"
	CategoryStandardWork KPICategory = "standardWork"
)

// Scorecard is one weekly performance snapshot for a location. Exactly one
// row exists per (week, year); re-uploading the same week replaces the row
// and every KPI it owns.
type Scorecard struct {
	ID            int64     `json:"id"`
	FileID        string    `json:"fileId"`
	Week          int       `json:"week"`
	Year          int       `json:"year"`
	Location      string    `json:"location"`
	OverallScore  float64   `json:"overallScore"`
	OverallStatus KPIStatus `json:"overallStatus"`
	Rank          int       `json:"rank"`
	RankNote      string    `json:"rankNote"`
	IsSampleData  bool      `json:"isSampleData"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CompanyKPI is a station-level metric owned by exactly one scorecard.
type CompanyKPI struct {
	Name     string      `json:"name"`
	Value    float64     `json:"value"`
	Target   float64     `json:"target"`
	Unit     string      `json:"unit,omitempty"`
	Status   KPIStatus   `json:"status"`
	Category KPICategory `json:"category"`
}

// DriverMetric is one metric inside a driver's KPI row. Value and Target are
// nil when the source field was a dash or failed numeric coercion; the metric
// is still emitted so consumers can see which fields were present.
type DriverMetric struct {
	Name   string    `json:"name"`
	Value  *float64  `json:"value"`
	Target *float64  `json:"target"`
	Status KPIStatus `json:"status"`
}

// DriverKPI is a per-driver metric row owned by exactly one scorecard.
// DriverID is the normalized transporter ID (or a generated placeholder when
// the free-text export carries none).
type DriverKPI struct {
	DriverID string         `json:"driverId"`
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Metrics  []DriverMetric `json:"metrics"`
}

// Metadata is the week-level header extracted from page text, with defaults
// applied for anything the patterns could not find.
type Metadata struct {
	Location     string
	OverallScore float64
	Rank         int
}

// ScorecardResult is the assembled extraction output. Field names are part
// of the API contract with the frontend and must not change.
type ScorecardResult struct {
	Week                  int          `json:"week"`
	Year                  int          `json:"year"`
	Location              string       `json:"location"`
	OverallScore          float64      `json:"overallScore"`
	OverallStatus         KPIStatus    `json:"overallStatus"`
	Rank                  int          `json:"rank"`
	RankNote              string       `json:"rankNote"`
	CompanyKPIs           []CompanyKPI `json:"companyKPIs"`
	DriverKPIs            []DriverKPI  `json:"driverKPIs"`
	RecommendedFocusAreas []string     `json:"recommendedFocusAreas"`
}

// ScorecardSummary is the listing shape (no KPI rows).
type ScorecardSummary struct {
	ID            int64     `json:"id"`
	Week          int       `json:"week"`
	Year          int       `json:"year"`
	Location      string    `json:"location"`
	OverallScore  float64   `json:"overallScore"`
	OverallStatus KPIStatus `json:"overallStatus"`
	CreatedAt     time.Time `json:"createdAt"`
}
