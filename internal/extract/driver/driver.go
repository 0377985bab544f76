// Package driver extracts per-driver KPI rows. The free-text strategy
// segments the document by driver-code anchors and reads "name: value/target,
// status" lines out of each segment; the fixed-column strategy parses the
// tabular rows on pages 3 and 4 of the newer export.
package driver

import (
	"strings"

	"github.com/falkivanov/cloudcraft-express/internal/extract/fields"
	"github.com/falkivanov/cloudcraft-express/internal/extract/metadata"
	"github.com/falkivanov/cloudcraft-express/internal/extract/patterns"
	"github.com/falkivanov/cloudcraft-express/internal/models"
)

// NameResolver maps a normalized transporter ID to a display name. The
// second return is false when the directory has no entry.
type NameResolver func(driverID string) (string, bool)

// driverStatus is the row-level status the frontend expects on every
// extracted driver.
const driverStatus = "active"

// fixedColumns describes the seven metric fields of a fixed-column row in
// table order. Percentage metrics get a status tier; raw counts do not.
var fixedColumns = []struct {
	name    string
	percent bool
}{
	{"Delivered", false},
	{"DCR", true},
	{"DNR DPMO", false},
	{"POD", true},
	{"CC", true},
	{"CE", false},
	{"DEX", true},
}

// ExtractFreeText segments text by driver anchors and collects the KPI lines
// between one anchor and the next. A driver with zero parseable metric lines
// still yields a record. No anchors means an empty list, never an error.
func ExtractFreeText(text string) []models.DriverKPI {
	anchors := patterns.DriverAnchor.FindAllStringIndex(text, -1)
	if anchors == nil {
		return nil
	}

	drivers := make([]models.DriverKPI, 0, len(anchors))
	for i, loc := range anchors {
		id := text[loc[0]:loc[1]]
		end := len(text)
		if i+1 < len(anchors) {
			end = anchors[i+1][0]
		}
		block := text[loc[1]:end]

		var metrics []models.DriverMetric
		for _, m := range patterns.KPILine.FindAllStringSubmatch(block, -1) {
			value, err := fields.ParseFloat(m[2])
			if err != nil {
				value = nil
			}
			target, err := fields.ParseFloat(m[3])
			if err != nil {
				target = nil
			}
			metrics = append(metrics, models.DriverMetric{
				Name:   strings.TrimSpace(m[1]),
				Value:  value,
				Target: target,
				Status: models.KPIStatus(strings.ToLower(m[4])),
			})
		}

		drivers = append(drivers, models.DriverKPI{
			DriverID: id,
			Name:     id,
			Status:   driverStatus,
			Metrics:  metrics,
		})
	}
	return drivers
}

// ExtractFixedColumn parses fixed-column driver rows out of text (pages 3
// and 4 concatenated). Transporter IDs are normalized before name
// resolution; a field that fails coercion is emitted with a nil value rather
// than dropping the row. resolve may be nil.
func ExtractFixedColumn(text string, resolve NameResolver) []models.DriverKPI {
	rows := patterns.FixedDriverRow.FindAllStringSubmatch(text, -1)
	if rows == nil {
		return nil
	}

	drivers := make([]models.DriverKPI, 0, len(rows))
	for _, row := range rows {
		id := fields.NormalizeTransporterID(row[1])
		name := id
		if resolve != nil {
			if resolved, ok := resolve(id); ok {
				name = resolved
			}
		}

		metrics := make([]models.DriverMetric, 0, len(fixedColumns))
		for i, col := range fixedColumns {
			value, err := fields.ParseFloat(row[i+2])
			if err != nil {
				value = nil
			}
			status := models.KPIStatus("")
			if col.percent && value != nil {
				status = metadata.DetermineStatus(*value)
			}
			metrics = append(metrics, models.DriverMetric{
				Name:   col.name,
				Value:  value,
				Status: status,
			})
		}

		drivers = append(drivers, models.DriverKPI{
			DriverID: id,
			Name:     name,
			Status:   driverStatus,
			Metrics:  metrics,
		})
	}
	return drivers
}
