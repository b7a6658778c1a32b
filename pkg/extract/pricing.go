package extract

import (
	"fmt"
	"regexp"
	"strings"

	"gigscout/pkg/logger"
	"gigscout/pkg/models"

	"github.com/PuerkitoBio/goquery"
)

// Header cells that are really price/currency/meta columns, not package names.
var headerMetaPattern = regexp.MustCompile(`(?i)price|currency|description|label|[$€£]`)

// A value whose leading token looks like a price, e.g. "$ 80" or "€80".
var leadingPricePattern = regexp.MustCompile(`^\s*[$€£]\s*\d`)

// Checkmark/cross glyphs mean "not applicable for this package", not data.
var glyphCells = map[string]struct{}{
	"✓": {}, "✔": {}, "✗": {}, "✘": {}, "×": {}, "-": {},
}

// Packages extracts the ordered pricing packages of the page. It tries the
// comparison table first and falls back to the edit form's package fields
// only when no table row produced anything. Internal failures yield an empty
// list, never an error.
func Packages(doc *goquery.Document) (pkgs []models.Package) {
	defer func() {
		if r := recover(); r != nil {
			logger.Dedup("extract: pricing panic: %v", r)
			pkgs = nil
		}
	}()

	pkgs = tablePackages(doc)
	if len(pkgs) == 0 {
		pkgs = formPackages(doc)
	}
	return pkgs
}

func tablePackages(doc *goquery.Document) []models.Package {
	var result []models.Package
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if pkgs := packagesFromTable(table); len(pkgs) > 0 {
			result = pkgs
			return false
		}
		return true
	})
	return result
}

func packagesFromTable(table *goquery.Selection) []models.Package {
	// With stacked header rows the last one names the packages.
	header := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Find("th").Length() > 0
	}).Last()
	if header.Length() == 0 {
		return nil
	}

	headCells := header.Find("th, td")
	type column struct {
		index int
		name  string
	}
	var columns []column
	headCells.Each(func(i int, cell *goquery.Selection) {
		if i == 0 {
			return // label column
		}
		name := Clean(cell.Text())
		if name == "" || headerMetaPattern.MatchString(name) {
			return
		}
		columns = append(columns, column{index: i, name: name})
	})
	if len(columns) == 0 {
		return nil
	}

	bodyRows := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Find("th").Length() == 0 && tr.Find("td").Length() > 0
	})

	var pkgs []models.Package
	for _, col := range columns {
		pkg := models.Package{Name: col.name, Features: []models.Feature{}}
		bodyRows.Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			label := Clean(cells.Eq(0).Text())
			value := Clean(cells.Eq(col.index).Text())
			if label == "" || skippable(value) {
				return
			}
			assignPackageField(&pkg, label, value)
		})
		if pkg.Name != "" {
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs
}

func skippable(value string) bool {
	if value == "" {
		return true
	}
	_, glyph := glyphCells[value]
	return glyph
}

// assignPackageField maps a row label to a package field by case-insensitive
// substring match. Labels win over value shapes: a currency-looking value is
// only taken as the price when the label claimed nothing and no price was
// assigned yet. Unknown labels become feature entries.
func assignPackageField(pkg *models.Package, label, value string) {
	switch l := strings.ToLower(label); {
	case strings.Contains(l, "title"), strings.Contains(l, "name"):
		pkg.Name = value
	case strings.Contains(l, "desc"):
		pkg.Description = value
	case strings.Contains(l, "price"):
		pkg.Price = value
	case strings.Contains(l, "delivery"), strings.Contains(l, "days"):
		pkg.DeliveryTime = value
	case strings.Contains(l, "revision"):
		pkg.Revisions = value
	case pkg.Price == "" && leadingPricePattern.MatchString(value):
		pkg.Price = value
	default:
		pkg.Features = append(pkg.Features, models.Feature{Name: label, Value: value})
	}
}

// formPackages scans the edit form's package containers. These carry no
// feature rows, so every package comes back with empty features.
func formPackages(doc *goquery.Document) []models.Package {
	var pkgs []models.Package
	doc.Find(`[data-testid*="package"], .package-row, .package-item, [class*="package-card"]`).
		Each(func(i int, row *goquery.Selection) {
			name := Clean(row.Find(`input[name*="name"], input[placeholder*="name"]`).AttrOr("value", ""))
			if name == "" {
				name = Clean(row.Find("h3").First().Text())
			}
			price := Clean(row.Find(`input[name*="price"], input[placeholder*="price"]`).AttrOr("value", ""))
			if price == "" {
				price = Clean(row.Find(".price").First().Text())
			}
			desc := Clean(row.Find(`textarea[name*="desc"], textarea[placeholder*="description"]`).Text())
			if desc == "" {
				desc = Clean(row.Find(".description").First().Text())
			}

			if name == "" && price == "" {
				return
			}
			if name == "" {
				name = fmt.Sprintf("Package %d", i+1)
			}
			pkgs = append(pkgs, models.Package{
				Name:        name,
				Price:       price,
				Description: desc,
				Features:    []models.Feature{},
			})
		})
	return pkgs
}
