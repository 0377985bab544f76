package patterns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractWeekNumber(t *testing.T) {
	// Clock pinned so the fallback is deterministic.
	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC) // ISO week 12

	tests := []struct {
		name     string
		filename string
		want     int
	}{
		{name: "Week prefix", filename: "Scorecard_Week12.pdf", want: 12},
		{name: "Week with dash", filename: "Week-12_DSU1.pdf", want: 12},
		{name: "KW prefix", filename: "KW-12.pdf", want: 12},
		{name: "W with underscore", filename: "W_12_report.pdf", want: 12},
		{name: "CW with space", filename: "CW 12.pdf", want: 12},
		{name: "week underscore year", filename: "12_2024.pdf", want: 12},
		{name: "delimited number", filename: "scorecard_12_final.pdf", want: 12},
		{name: "out of range falls through", filename: "Week99_7_2024.pdf", want: 7},
		{name: "no token falls back to clock", filename: "scorecard.pdf", want: 12},
		{name: "empty filename falls back to clock", filename: "", want: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractWeekNumber(tt.filename, now))
		})
	}
}

func TestExtractWeekNumber_FallbackTracksClock(t *testing.T) {
	jan := time.Date(2025, time.January, 8, 0, 0, 0, 0, time.UTC)
	_, wantWeek := jan.ISOWeek()
	assert.Equal(t, wantWeek, ExtractWeekNumber("no-week-here.pdf", jan))
}

func TestDriverAnchor(t *testing.T) {
	assert.True(t, DriverAnchor.MatchString("TR-001"))
	assert.True(t, DriverAnchor.MatchString("DRV-1234"))
	assert.True(t, DriverAnchor.MatchString("A-1234"))
	assert.False(t, DriverAnchor.MatchString("driver one"))
}

func TestKPILine(t *testing.T) {
	m := KPILine.FindStringSubmatch("DNR: 0.5%/1.2%, success")
	assert.NotNil(t, m)
	assert.Equal(t, "DNR", m[1])
	assert.Equal(t, "0.5%", m[2])
	assert.Equal(t, "1.2%", m[3])
	assert.Equal(t, "success", m[4])
}

func TestFixedDriverRow(t *testing.T) {
	row := "A2EXAMPLE12345 142 98.5% 1510 99.1% 95.0% 2 87.5%"
	m := FixedDriverRow.FindStringSubmatch(row)
	assert.NotNil(t, m)
	assert.Equal(t, "A2EXAMPLE12345", m[1])
	assert.Equal(t, "142", m[2])
	assert.Equal(t, "87.5%", m[8])
}

func TestNamedCompanyLines(t *testing.T) {
	text := "Delivery Completion Rate(DCR): 97.3%\nDelivered Not Received(DNR DPMO): 1510\nLost on Road (LoR) DPMO: 42"
	assert.Equal(t, "97.3", DCRLine.FindStringSubmatch(text)[1])
	assert.Equal(t, "1510", DNRLine.FindStringSubmatch(text)[1])
	assert.Equal(t, "42", LoRLine.FindStringSubmatch(text)[1])
}
