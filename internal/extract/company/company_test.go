package company

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falkivanov/cloudcraft-express/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		expected models.KPICategory
	}{
		{"Safety Index", models.CategorySafety},
		{"Contact Compliance", models.CategoryCompliance},
		{"Quality Score", models.CategoryQuality},
		{"DNR DPMO", models.CategoryQuality},
		{"Volume Capacity", models.CategoryCapacity},
		{"Delivered Volume", models.CategoryCapacity},
		{"Standard Work", models.CategoryStandardWork},
		{"Customer Escalations", models.CategoryCustomer},
		{"Something Else", models.CategoryCustomer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.name))
		})
	}
}

func TestExtractFromText(t *testing.T) {
	text := `Weekly Station Performance
Safety Index: 95.5/96, great
DCR: 97,3% / 98.5, fantastic
Customer Escalations: 2/5, fantastic
`
	kpis := ExtractFromText(text)
	require.Len(t, kpis, 3)

	assert.Equal(t, "Safety Index", kpis[0].Name)
	assert.Equal(t, 95.5, kpis[0].Value)
	assert.Equal(t, 96.0, kpis[0].Target)
	assert.Equal(t, "", kpis[0].Unit)
	assert.Equal(t, models.StatusGreat, kpis[0].Status)
	assert.Equal(t, models.CategorySafety, kpis[0].Category)

	assert.Equal(t, "DCR", kpis[1].Name)
	assert.Equal(t, 97.3, kpis[1].Value)
	assert.Equal(t, "%", kpis[1].Unit)
	assert.Equal(t, models.CategoryCustomer, kpis[1].Category)
}

func TestExtractFromTextSkipsUnparsable(t *testing.T) {
	// A dash value cannot be coerced, so the whole line is dropped.
	text := `Broken Metric: -/96, great
Good Metric: 90/96, great
`
	kpis := ExtractFromText(text)
	require.Len(t, kpis, 1)
	assert.Equal(t, "Good Metric", kpis[0].Name)
}

func TestExtractFromTextDPMOOverride(t *testing.T) {
	text := "DNR DPMO: 850/1000, poor\n"
	kpis := ExtractFromText(text)
	require.Len(t, kpis, 1)
	assert.Equal(t, models.CategoryQuality, kpis[0].Category)
	assert.Equal(t, 50.0, kpis[0].Target)
}

func TestExtractNamed(t *testing.T) {
	pageTwo := `Station Overview
Delivery Completion Rate (DCR): 97.3%
Delivered Not Received (DNR DPMO): 850
Lost on Road (LoR) DPMO: 320
`
	kpis := ExtractNamed(pageTwo)
	require.Len(t, kpis, 3)

	assert.Equal(t, "DCR", kpis[0].Name)
	assert.Equal(t, 97.3, kpis[0].Value)
	assert.Equal(t, 95.0, kpis[0].Target)
	assert.Equal(t, "%", kpis[0].Unit)
	assert.Equal(t, models.StatusFantastic, kpis[0].Status)
	assert.Equal(t, models.CategoryCustomer, kpis[0].Category)

	assert.Equal(t, "DNR DPMO", kpis[1].Name)
	assert.Equal(t, 850.0, kpis[1].Value)
	assert.Equal(t, 50.0, kpis[1].Target)
	assert.Equal(t, models.CategoryQuality, kpis[1].Category)

	assert.Equal(t, "LoR DPMO", kpis[2].Name)
	assert.Equal(t, 50.0, kpis[2].Target)
}

func TestExtractNamedMissingLabels(t *testing.T) {
	kpis := ExtractNamed("nothing relevant on this page")
	assert.Empty(t, kpis)
}
