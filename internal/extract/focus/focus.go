// Package focus selects the recommended focus areas for a scorecard from
// its company KPIs.
package focus

import (
	"sort"

	"github.com/falkivanov/cloudcraft-express/internal/models"
)

const (
	minAreas = 2
	maxAreas = 3
)

// Recommend returns up to three KPI names the station should work on next.
// Poor and fair KPIs are taken first, in encounter order. If fewer than two
// qualify, the list is padded from the remaining KPIs in ascending value
// order, skipping names already picked. The result is truncated to three.
func Recommend(kpis []models.CompanyKPI) []string {
	areas := make([]string, 0, maxAreas)
	picked := make(map[string]bool)

	for _, kpi := range kpis {
		if kpi.Status == models.StatusPoor || kpi.Status == models.StatusFair {
			if !picked[kpi.Name] {
				areas = append(areas, kpi.Name)
				picked[kpi.Name] = true
			}
		}
	}

	if len(areas) < minAreas {
		rest := make([]models.CompanyKPI, 0, len(kpis))
		for _, kpi := range kpis {
			if !picked[kpi.Name] {
				rest = append(rest, kpi)
			}
		}
		sort.SliceStable(rest, func(i, j int) bool { return rest[i].Value < rest[j].Value })
		for _, kpi := range rest {
			if len(areas) >= minAreas {
				break
			}
			areas = append(areas, kpi.Name)
			picked[kpi.Name] = true
		}
	}

	if len(areas) > maxAreas {
		areas = areas[:maxAreas]
	}
	return areas
}
