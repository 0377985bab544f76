package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falkivanov/cloudcraft-express/internal/models"
)

func TestExtractFreeText(t *testing.T) {
	text := `Driver Performance
MAX-123
DNR: 0.5%/1.2%, fantastic
POD: 98/95, great
ANNA-4567
DNR: 1.8%/1.2%, poor
`
	drivers := ExtractFreeText(text)
	require.Len(t, drivers, 2)

	assert.Equal(t, "MAX-123", drivers[0].DriverID)
	assert.Equal(t, "MAX-123", drivers[0].Name)
	assert.Equal(t, "active", drivers[0].Status)
	require.Len(t, drivers[0].Metrics, 2)
	assert.Equal(t, "DNR", drivers[0].Metrics[0].Name)
	require.NotNil(t, drivers[0].Metrics[0].Value)
	assert.Equal(t, 0.5, *drivers[0].Metrics[0].Value)
	require.NotNil(t, drivers[0].Metrics[0].Target)
	assert.Equal(t, 1.2, *drivers[0].Metrics[0].Target)
	assert.Equal(t, models.StatusFantastic, drivers[0].Metrics[0].Status)

	assert.Equal(t, "ANNA-4567", drivers[1].DriverID)
	require.Len(t, drivers[1].Metrics, 1)
	assert.Equal(t, models.StatusPoor, drivers[1].Metrics[0].Status)
}

func TestExtractFreeTextEmptyBlock(t *testing.T) {
	// An anchor with no metric lines still yields a driver record.
	drivers := ExtractFreeText("roster only\nMAX-123\nANNA-4567\n")
	require.Len(t, drivers, 2)
	assert.Empty(t, drivers[0].Metrics)
}

func TestExtractFreeTextNoAnchors(t *testing.T) {
	assert.Empty(t, ExtractFreeText("no drivers in this document"))
}

func TestExtractFixedColumn(t *testing.T) {
	text := `Driver Details
A1B2C3D4E5F6G7 1200 98.5 850 99.1 97.0 3 95.5
1234567890123 950 92.0 - 96.5 94.2 1 90.0
`
	resolve := func(id string) (string, bool) {
		if id == "A1B2C3D4E5F6G7" {
			return "Max Mustermann", true
		}
		return "", false
	}

	drivers := ExtractFixedColumn(text, resolve)
	require.Len(t, drivers, 2)

	first := drivers[0]
	assert.Equal(t, "A1B2C3D4E5F6G7", first.DriverID)
	assert.Equal(t, "Max Mustermann", first.Name)
	require.Len(t, first.Metrics, 7)
	assert.Equal(t, "Delivered", first.Metrics[0].Name)
	require.NotNil(t, first.Metrics[0].Value)
	assert.Equal(t, 1200.0, *first.Metrics[0].Value)
	assert.Equal(t, models.KPIStatus(""), first.Metrics[0].Status)
	assert.Equal(t, "DCR", first.Metrics[1].Name)
	assert.Equal(t, models.StatusFantastic, first.Metrics[1].Status)

	second := drivers[1]
	// 13-char ID not starting with A gets the prefix, and the name falls
	// back to the normalized ID when the directory has no entry.
	assert.Equal(t, "A1234567890123", second.DriverID)
	assert.Equal(t, "A1234567890123", second.Name)
	// Dash field is emitted as a null value, row kept.
	assert.Nil(t, second.Metrics[2].Value)
	assert.Equal(t, "DNR DPMO", second.Metrics[2].Name)
}

func TestExtractFixedColumnNilResolver(t *testing.T) {
	drivers := ExtractFixedColumn("A1B2C3D4E5F6G7 1 2 3 4 5 6 7\n", nil)
	require.Len(t, drivers, 1)
	assert.Equal(t, "A1B2C3D4E5F6G7", drivers[0].Name)
}
