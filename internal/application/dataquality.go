package application

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/wms-platform/intelligence-service/internal/domain"
)

// QualityWeights holds the health-score tuning for data quality checks.
type QualityWeights struct {
	CriticalWeight float64
	HighWeight     float64
	MediumWeight   float64
	LowWeight      float64
	CountCap       int
	SampleSize     int

	MaxVATRate    float64
	MinNameLength int
}

// DefaultQualityWeights returns the production quality weights.
func DefaultQualityWeights() QualityWeights {
	return QualityWeights{
		CriticalWeight: 3,
		HighWeight:     2,
		MediumWeight:   1,
		LowWeight:      0.5,
		CountCap:       30,
		SampleSize:     8,

		MaxVATRate:    0.3,
		MinNameLength: 3,
	}
}

// qualityViolations accumulates one check's findings with a bounded sample.
type qualityViolations struct {
	count  int
	sample []string
	limit  int
}

func (v *qualityViolations) add(record string) {
	v.count++
	if len(v.sample) < v.limit {
		v.sample = append(v.sample, record)
	}
}

// DataQualityEngine runs a fixed battery of catalog and consistency checks.
type DataQualityEngine struct {
	catalog domain.CatalogReader
	shelves domain.ShelfReader
	orders  domain.OrderReader
	weights QualityWeights
	now     func() time.Time
}

// NewDataQualityEngine creates a new DataQualityEngine
func NewDataQualityEngine(catalog domain.CatalogReader, shelves domain.ShelfReader, orders domain.OrderReader, weights QualityWeights) *DataQualityEngine {
	return &DataQualityEngine{
		catalog: catalog,
		shelves: shelves,
		orders:  orders,
		weights: weights,
		now:     time.Now,
	}
}

// Snapshot runs every check and computes the catalog health score.
func (e *DataQualityEngine) Snapshot(ctx context.Context) (*QualitySnapshot, error) {
	products, err := e.catalog.AllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	shelves, err := e.shelves.AllLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read shelf locations: %w", err)
	}

	orders, err := e.orders.AllOpenOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read open orders: %w", err)
	}

	shelved := make(map[string]bool, len(shelves))
	for _, shelf := range shelves {
		shelved[shelf.ProductCode] = true
	}
	catalogCodes := make(map[string]bool, len(products))
	for _, p := range products {
		catalogCodes[p.Code] = true
	}

	checks := []QualityCheck{
		e.checkMissingImage(products),
		e.checkInvalidVAT(products),
		e.checkSecondaryUnitFactor(products),
		e.checkMissingUnit(products),
		e.checkNoShelfLocation(products, shelved),
		e.checkUnknownOrderProducts(orders, catalogCodes),
		e.checkOverReservedLines(orders),
		e.checkSuspiciousNames(products),
	}

	snapshot := &QualitySnapshot{
		GeneratedAt: e.now().UTC(),
		Checks:      checks,
	}

	var penalty float64
	for _, check := range checks {
		if check.Blocking && check.Count > 0 {
			snapshot.BlockingCount++
		}
		capped := check.Count
		if capped > e.weights.CountCap {
			capped = e.weights.CountCap
		}
		penalty += float64(capped) * e.severityWeight(check.Severity)
	}

	snapshot.HealthScore = int(math.Min(math.Max(math.Round(100-penalty/2), 0), 100))

	return snapshot, nil
}

func (e *DataQualityEngine) severityWeight(severity string) float64 {
	switch severity {
	case SeverityCritical:
		return e.weights.CriticalWeight
	case SeverityHigh:
		return e.weights.HighWeight
	case SeverityMedium:
		return e.weights.MediumWeight
	default:
		return e.weights.LowWeight
	}
}

func (e *DataQualityEngine) newViolations() qualityViolations {
	return qualityViolations{limit: e.weights.SampleSize}
}

func (e *DataQualityEngine) checkMissingImage(products []domain.Product) QualityCheck {
	v := e.newViolations()
	for _, p := range products {
		if !p.HasImage {
			v.add(fmt.Sprintf("%s: no product image", p.Code))
		}
	}
	return QualityCheck{
		Name:        "missing_product_image",
		Severity:    SeverityMedium,
		Blocking:    false,
		Count:       v.count,
		Sample:      v.sample,
		Explanation: "products without an image render poorly in customer-facing listings",
	}
}

func (e *DataQualityEngine) checkInvalidVAT(products []domain.Product) QualityCheck {
	v := e.newViolations()
	for _, p := range products {
		if p.VATRate <= 0 || p.VATRate > e.weights.MaxVATRate {
			v.add(fmt.Sprintf("%s: vat rate %.4f", p.Code, p.VATRate))
		}
	}
	return QualityCheck{
		Name:        "invalid_vat_rate",
		Severity:    SeverityCritical,
		Blocking:    true,
		Count:       v.count,
		Sample:      v.sample,
		Explanation: "vat rate must be in (0, 0.3]; invoices computed from it would be wrong",
	}
}

func (e *DataQualityEngine) checkSecondaryUnitFactor(products []domain.Product) QualityCheck {
	v := e.newViolations()
	for _, p := range products {
		if p.SecondaryUnitFactor <= 0 {
			v.add(fmt.Sprintf("%s: secondary unit factor %.4f", p.Code, p.SecondaryUnitFactor))
		}
	}
	return QualityCheck{
		Name:        "invalid_secondary_unit_factor",
		Severity:    SeverityHigh,
		Blocking:    true,
		Count:       v.count,
		Sample:      v.sample,
		Explanation: "a non-positive conversion factor breaks unit conversion on order entry",
	}
}

func (e *DataQualityEngine) checkMissingUnit(products []domain.Product) QualityCheck {
	v := e.newViolations()
	for _, p := range products {
		if strings.TrimSpace(p.Unit) == "" {
			v.add(fmt.Sprintf("%s: no primary unit", p.Code))
		}
	}
	return QualityCheck{
		Name:        "missing_primary_unit",
		Severity:    SeverityHigh,
		Blocking:    true,
		Count:       v.count,
		Sample:      v.sample,
		Explanation: "lines for unit-less products cannot be quantified",
	}
}

func (e *DataQualityEngine) checkNoShelfLocation(products []domain.Product, shelved map[string]bool) QualityCheck {
	v := e.newViolations()
	for _, p := range products {
		if p.TotalStock() > 0 && !shelved[p.Code] {
			v.add(fmt.Sprintf("%s: %.0f in stock, no shelf", p.Code, p.TotalStock()))
		}
	}
	return QualityCheck{
		Name:        "in_stock_without_shelf",
		Severity:    SeverityMedium,
		Blocking:    false,
		Count:       v.count,
		Sample:      v.sample,
		Explanation: "pickers cannot locate stock that has no shelf assignment",
	}
}

func (e *DataQualityEngine) checkUnknownOrderProducts(orders []domain.PendingOrder, catalogCodes map[string]bool) QualityCheck {
	v := e.newViolations()
	for _, order := range orders {
		for _, line := range NormalizeLines(order.OrderID, order.RawLines, true) {
			if !catalogCodes[line.ProductCode] {
				v.add(fmt.Sprintf("order %s: unknown product %s", order.OrderID, line.ProductCode))
			}
		}
	}
	return QualityCheck{
		Name:        "order_line_unknown_product",
		Severity:    SeverityCritical,
		Blocking:    true,
		Count:       v.count,
		Sample:      v.sample,
		Explanation: "open-order lines referencing codes absent from the catalog compute against zero stock",
	}
}

func (e *DataQualityEngine) checkOverReservedLines(orders []domain.PendingOrder) QualityCheck {
	v := e.newViolations()
	for _, order := range orders {
		for _, line := range NormalizeLines(order.OrderID, order.RawLines, true) {
			if own := line.OwnReservedQty(); own > line.RemainingQty {
				v.add(fmt.Sprintf("order %s product %s: active reservation %.2f exceeds remaining %.2f",
					order.OrderID, line.ProductCode, own, line.RemainingQty))
			}
		}
	}
	return QualityCheck{
		Name:        "reservation_exceeds_remaining",
		Severity:    SeverityHigh,
		Blocking:    true,
		Count:       v.count,
		Sample:      v.sample,
		Explanation: "a claim larger than the owed quantity points at reservation accounting drift",
	}
}

func (e *DataQualityEngine) checkSuspiciousNames(products []domain.Product) QualityCheck {
	v := e.newViolations()
	for _, p := range products {
		name := strings.TrimSpace(p.Name)
		if len([]rune(name)) < e.weights.MinNameLength || isNumericOnly(name) {
			v.add(fmt.Sprintf("%s: name %q", p.Code, p.Name))
		}
	}
	return QualityCheck{
		Name:        "suspicious_product_name",
		Severity:    SeverityLow,
		Blocking:    false,
		Count:       v.count,
		Sample:      v.sample,
		Explanation: "very short or numeric-only names are usually import artifacts",
	}
}

func isNumericOnly(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
