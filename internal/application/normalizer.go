package application

import (
	"fmt"

	"github.com/wms-platform/intelligence-service/internal/domain"
)

// NormalizeLines parses raw stored order lines into canonical records.
// Missing numeric fields default to zero; a missing product code gets a
// synthetic placeholder so the line stays traceable. Lines with no
// remaining quantity are dropped unless includeCompleted is set, which
// reservation accounting needs to see every active claim.
func NormalizeLines(orderID string, raw []domain.RawOrderLine, includeCompleted bool) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(raw))

	for i, r := range raw {
		line := domain.OrderLine{
			ProductCode:          stringOrDefault(r.ProductCode, ""),
			ProductName:          stringOrDefault(r.ProductName, ""),
			Unit:                 stringOrDefault(r.Unit, ""),
			RemainingQty:         floatOrZero(r.RemainingQty),
			ReservedQty:          floatOrZero(r.ReservedQty),
			ReservedDeliveredQty: floatOrZero(r.ReservedDeliveredQty),
			WarehouseID:          stringOrDefault(r.WarehouseID, ""),
		}

		if line.ProductCode == "" {
			line.ProductCode = fmt.Sprintf("UNKNOWN-%s-%d", orderID, i+1)
		}
		if line.ProductName == "" {
			line.ProductName = line.ProductCode
		}

		if !includeCompleted && line.RemainingQty <= 0 {
			continue
		}

		lines = append(lines, line)
	}

	return lines
}

func stringOrDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
