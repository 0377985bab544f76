// Package patterns is the shared regular-expression rule set for locating
// scorecard fields in filenames and page text. Rules are stateless; callers
// inject the clock where a fallback depends on it.
package patterns

import (
	"regexp"
	"strconv"
	"time"
)

// Week-number rules, in priority order. The first rule whose match falls in
// 1..53 wins; ties across rules are broken by declaration order, not match
// position.
var weekPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Week[_\s-]*(\d+)`),              // Week12, Week-12, Week_12, Week 12
	regexp.MustCompile(`KW[_\s-]*(\d+)`),                // KW12, KW-12, KW_12, KW 12
	regexp.MustCompile(`W[_\s-]*(\d+)`),                 // W12, W-12, W_12, W 12
	regexp.MustCompile(`(?:_|\s|-)(\d{1,2})(?:_|-|\s)`), // _12_ or -12- etc.
	regexp.MustCompile(`CW[_\s-]*(\d+)`),                // CW12, CW-12, CW_12, CW 12
	regexp.MustCompile(`(\d{1,2})_(?:20\d{2})`),         // 12_2024
}

// ExtractWeekNumber pulls the calendar week out of a scorecard filename.
// When no rule matches, the ISO week of now is used — production behavior
// intentionally varies with invocation time, so tests must pin the clock.
func ExtractWeekNumber(filename string, now time.Time) int {
	for _, re := range weekPatterns {
		m := re.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		week, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if week >= 1 && week <= 53 {
			return week
		}
	}
	_, isoWeek := now.ISOWeek()
	return isoWeek
}

// Location rules: an explicit station label followed by a 4-character code,
// then a scan for any known station code anywhere in the text.
var (
	LocationLabel = regexp.MustCompile(`(?i)(?:Station|Location|Standort):\s*([A-Z]{3}\d)`)
	KnownStations = []string{"DSU1", "DMU1", "DBO1", "DAM1", "DDU1", "DUS1"}
)

// Score rules: first label match wins.
var ScoreLabel = regexp.MustCompile(`(?i)(?:Overall|Score|Gesamtpunktzahl):\s*(\d+(?:[.,]\d+)?)`)

// Rank rules: labelled rank or the "#N von" form.
var (
	RankLabel  = regexp.MustCompile(`(?i)(?:Rank|Platz|Position):\s*#?(\d+)`)
	RankOfForm = regexp.MustCompile(`#(\d+)\s+von`)
)

// Driver-block anchors in free-text exports: FOO-123, FOO-1234 or A-1234
// style tokens mark where one driver's block starts.
var DriverAnchor = regexp.MustCompile(`[A-Z]+-\d{3,4}|[A-Z]-\d{4}`)

// KPILine matches the generic "name: value/target, status" metric line used
// by both the company and the driver free-text extractors.
var KPILine = regexp.MustCompile(`([A-Za-z][A-Za-z0-9 ()/._-]*?):\s*([\d.,%-]+)\s*/\s*([\d.,%-]+)\s*,\s*([A-Za-z]+)`)

// FixedDriverRow matches one row of the tabular driver export: a 13-14
// character transporter ID followed by seven numeric-ish fields (delivered,
// DCR%, DNR-DPMO, POD%, CC%, CE, DEX%), separated by any whitespace
// including newlines.
var FixedDriverRow = regexp.MustCompile(`([A-Z0-9]{13,14})\s+([\d.,%-]+)\s+([\d.,%-]+)\s+([\d.,%-]+)\s+([\d.,%-]+)\s+([\d.,%-]+)\s+([\d.,%-]+)\s+([\d.,%-]+)`)

// Named company KPI labels for the tabular export (page 2).
var (
	DCRLine = regexp.MustCompile(`Delivery Completion Rate\s*\(DCR\)[:\s]*(\d+(?:[.,]\d+)?)\s*%?`)
	DNRLine = regexp.MustCompile(`Delivered Not Received\s*\(DNR DPMO\)[:\s]*(\d+(?:[.,]\d+)?)`)
	LoRLine = regexp.MustCompile(`Lost on Road\s*\(LoR\)\s*DPMO[:\s]*(\d+(?:[.,]\d+)?)`)
)
