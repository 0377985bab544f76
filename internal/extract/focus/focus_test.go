package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/falkivanov/cloudcraft-express/internal/models"
)

func kpi(name string, status models.KPIStatus, value float64) models.CompanyKPI {
	return models.CompanyKPI{Name: name, Status: status, Value: value}
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name     string
		kpis     []models.CompanyKPI
		expected []string
	}{
		{
			name: "poor and fair in encounter order",
			kpis: []models.CompanyKPI{
				kpi("DCR", models.StatusFair, 88),
				kpi("Safety Index", models.StatusGreat, 95),
				kpi("DNR DPMO", models.StatusPoor, 60),
			},
			expected: []string{"DCR", "DNR DPMO"},
		},
		{
			name: "one poor kpi padded by lowest value",
			kpis: []models.CompanyKPI{
				kpi("A", models.StatusPoor, 10),
				kpi("B", models.KPIStatus("success"), 99),
			},
			expected: []string{"A", "B"},
		},
		{
			name: "no weak kpis pads two lowest",
			kpis: []models.CompanyKPI{
				kpi("A", models.StatusGreat, 97),
				kpi("B", models.StatusGreat, 91),
				kpi("C", models.StatusFantastic, 99),
			},
			expected: []string{"B", "A"},
		},
		{
			name: "truncated to three",
			kpis: []models.CompanyKPI{
				kpi("A", models.StatusPoor, 1),
				kpi("B", models.StatusPoor, 2),
				kpi("C", models.StatusFair, 3),
				kpi("D", models.StatusPoor, 4),
			},
			expected: []string{"A", "B", "C"},
		},
		{
			name: "duplicate names listed once",
			kpis: []models.CompanyKPI{
				kpi("DCR", models.StatusPoor, 70),
				kpi("DCR", models.StatusPoor, 72),
				kpi("DNR DPMO", models.StatusFair, 80),
			},
			expected: []string{"DCR", "DNR DPMO"},
		},
		{
			name:     "no kpis at all",
			kpis:     nil,
			expected: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Recommend(tt.kpis))
		})
	}
}
