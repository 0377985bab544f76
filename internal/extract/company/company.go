// Package company extracts station-level KPIs. Two strategies exist for the
// two export shapes: a generic "name: value/target, status" line scan for
// free-text documents, and exact-label matching against page 2 of the
// tabular export.
package company

import (
	"strings"

	"github.com/falkivanov/cloudcraft-express/internal/extract/fields"
	"github.com/falkivanov/cloudcraft-express/internal/extract/metadata"
	"github.com/falkivanov/cloudcraft-express/internal/extract/patterns"
	"github.com/falkivanov/cloudcraft-express/internal/models"
)

const dpmoTarget = 50.0

// Classify maps a KPI name onto its dashboard category. Keywords are checked
// in fixed priority order; anything unmatched is a customer metric.
func Classify(name string) models.KPICategory {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "dpmo"):
		// DPMO metrics are quality metrics regardless of the generic
		// keyword rules.
		return models.CategoryQuality
	case strings.Contains(n, "safety"):
		return models.CategorySafety
	case strings.Contains(n, "compli"):
		return models.CategoryCompliance
	case strings.Contains(n, "quality"):
		return models.CategoryQuality
	case strings.Contains(n, "capacity"), strings.Contains(n, "volume"):
		return models.CategoryCapacity
	case strings.Contains(n, "standard"), strings.Contains(n, "work"):
		return models.CategoryStandardWork
	default:
		return models.CategoryCustomer
	}
}

// ExtractFromText runs the generic KPI-line scan over arbitrary combined
// text. A line whose value or target fails numeric coercion is skipped
// entirely; this loses information but matches the established behavior the
// frontend depends on.
func ExtractFromText(text string) []models.CompanyKPI {
	var kpis []models.CompanyKPI
	for _, m := range patterns.KPILine.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		rawValue, rawTarget, rawStatus := m[2], m[3], m[4]

		value, err := fields.ParseFloat(rawValue)
		if err != nil || value == nil {
			continue
		}
		target, err := fields.ParseFloat(rawTarget)
		if err != nil || target == nil {
			continue
		}

		unit := ""
		if strings.Contains(rawValue, "%") {
			unit = "%"
		}

		kpi := models.CompanyKPI{
			Name:     name,
			Value:    *value,
			Target:   *target,
			Unit:     unit,
			Status:   models.KPIStatus(strings.ToLower(rawStatus)),
			Category: Classify(name),
		}
		applyDPMOOverride(&kpi)
		kpis = append(kpis, kpi)
	}
	return kpis
}

// ExtractNamed matches the three fixed labels of the tabular export against
// page 2 text only. Status is computed from the raw value for all three,
// DPMO included — DPMO is a lower-is-better metric, so the tier is
// misleading there; kept as-is for compatibility with existing consumers.
func ExtractNamed(pageTwo string) []models.CompanyKPI {
	var kpis []models.CompanyKPI

	if m := patterns.DCRLine.FindStringSubmatch(pageTwo); m != nil {
		if value, err := fields.ParseFloat(m[1]); err == nil && value != nil {
			kpis = append(kpis, models.CompanyKPI{
				Name:     "DCR",
				Value:    *value,
				Target:   95.0,
				Unit:     "%",
				Status:   metadata.DetermineStatus(*value),
				Category: Classify("DCR"),
			})
		}
	}

	if m := patterns.DNRLine.FindStringSubmatch(pageTwo); m != nil {
		if value, err := fields.ParseFloat(m[1]); err == nil && value != nil {
			kpi := models.CompanyKPI{
				Name:     "DNR DPMO",
				Value:    *value,
				Target:   100.0,
				Status:   metadata.DetermineStatus(*value),
				Category: Classify("DNR DPMO"),
			}
			applyDPMOOverride(&kpi)
			kpis = append(kpis, kpi)
		}
	}

	if m := patterns.LoRLine.FindStringSubmatch(pageTwo); m != nil {
		if value, err := fields.ParseFloat(m[1]); err == nil && value != nil {
			kpi := models.CompanyKPI{
				Name:     "LoR DPMO",
				Value:    *value,
				Target:   100.0,
				Status:   metadata.DetermineStatus(*value),
				Category: Classify("LoR DPMO"),
			}
			applyDPMOOverride(&kpi)
			kpis = append(kpis, kpi)
		}
	}

	return kpis
}

// applyDPMOOverride pins DPMO-named KPIs to the quality category with the
// 50.0 defect target, regardless of what the generic path parsed or
// defaulted.
func applyDPMOOverride(kpi *models.CompanyKPI) {
	if strings.Contains(strings.ToLower(kpi.Name), "dpmo") {
		kpi.Category = models.CategoryQuality
		kpi.Target = dpmoTarget
	}
}
