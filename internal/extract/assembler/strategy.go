package assembler

import (
	"strings"

	"github.com/falkivanov/cloudcraft-express/internal/extract/company"
	"github.com/falkivanov/cloudcraft-express/internal/extract/driver"
	"github.com/falkivanov/cloudcraft-express/internal/models"
)

// Strategy extracts KPI rows from one document shape.
type Strategy interface {
	Name() string
	CompanyKPIs(pages []string) []models.CompanyKPI
	DriverKPIs(pages []string, resolve driver.NameResolver) []models.DriverKPI
}

// selectStrategy picks the document shape: multi-page exports carry the
// fixed layout (named KPIs on page 2, driver table on pages 3 and 4),
// single-page exports are scanned as free text.
func selectStrategy(pageCount int) Strategy {
	if pageCount >= 2 {
		return tabularStrategy{}
	}
	return freeTextStrategy{}
}

type freeTextStrategy struct{}

func (freeTextStrategy) Name() string { return "free_text" }

func (freeTextStrategy) CompanyKPIs(pages []string) []models.CompanyKPI {
	return company.ExtractFromText(strings.Join(pages, "\n"))
}

func (freeTextStrategy) DriverKPIs(pages []string, _ driver.NameResolver) []models.DriverKPI {
	return driver.ExtractFreeText(strings.Join(pages, "\n"))
}

type tabularStrategy struct{}

func (tabularStrategy) Name() string { return "fixed_column" }

func (tabularStrategy) CompanyKPIs(pages []string) []models.CompanyKPI {
	if len(pages) < 2 {
		return nil
	}
	return company.ExtractNamed(pages[1])
}

// DriverKPIs reads the table on pages 3 and 4; shorter documents simply have
// no rows there.
func (tabularStrategy) DriverKPIs(pages []string, resolve driver.NameResolver) []models.DriverKPI {
	var sb strings.Builder
	for _, i := range []int{2, 3} {
		if i < len(pages) {
			sb.WriteString(pages[i])
			sb.WriteString("\n")
		}
	}
	return driver.ExtractFixedColumn(sb.String(), resolve)
}
