package application

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wms-platform/intelligence-service/internal/domain"
)

// ATPWeights holds the priority-score tuning for the ATP engine.
type ATPWeights struct {
	CoverageNoneBonus    float64
	CoveragePartialBonus float64
	AgeHoursDivisor      float64
	AgePointsCap         float64
	ShortagePointsCap    float64
}

// DefaultATPWeights returns the production priority weights.
func DefaultATPWeights() ATPWeights {
	return ATPWeights{
		CoverageNoneBonus:    25,
		CoveragePartialBonus: 12,
		AgeHoursDivisor:      6,
		AgePointsCap:         20,
		ShortagePointsCap:    40,
	}
}

// ATPEngine computes available-to-promise coverage for open orders.
// It holds no state between calls; every invocation reads fresh snapshots.
type ATPEngine struct {
	orders  domain.OrderReader
	catalog domain.CatalogReader
	weights ATPWeights
	now     func() time.Time
}

// NewATPEngine creates a new ATPEngine
func NewATPEngine(orders domain.OrderReader, catalog domain.CatalogReader, weights ATPWeights) *ATPEngine {
	return &ATPEngine{
		orders:  orders,
		catalog: catalog,
		weights: weights,
		now:     time.Now,
	}
}

// Snapshot computes coverage for the selected order window.
func (e *ATPEngine) Snapshot(ctx context.Context, query OrderQuery) (*ATPSnapshot, error) {
	windowOrders, err := e.orders.OpenOrders(ctx, query.Series, query.Limit())
	if err != nil {
		return nil, fmt.Errorf("failed to read open orders: %w", err)
	}

	// Reservation contention comes from every open order in the
	// system, not just the selected window. Scanning only the window
	// would silently overstate availability.
	allOrders, err := e.orders.AllOpenOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read open orders for reservation accounting: %w", err)
	}

	products, err := e.catalog.AllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	reservations := buildReservationIndex(allOrders)
	stockIndex := buildStockIndex(products)

	snapshot := &ATPSnapshot{
		GeneratedAt: e.now().UTC(),
		Series:      query.Series,
		Orders:      make([]ATPOrder, 0, len(windowOrders)),
	}

	for _, order := range windowOrders {
		atpOrder := e.computeOrder(order, stockIndex, reservations)
		snapshot.Orders = append(snapshot.Orders, atpOrder)
		snapshot.TotalShortageQty += atpOrder.ShortageQty

		switch {
		case atpOrder.CoverageStatus.IsFull():
			snapshot.FullCount++
		case atpOrder.CoverageStatus.IsNone():
			snapshot.NoneCount++
		default:
			snapshot.PartialCount++
		}
	}
	snapshot.OrderCount = len(snapshot.Orders)

	// Stable sort keeps the reader's date order for equal scores
	sort.SliceStable(snapshot.Orders, func(i, j int) bool {
		return snapshot.Orders[i].PriorityScore > snapshot.Orders[j].PriorityScore
	})

	return snapshot, nil
}

// buildReservationIndex accumulates every open order's active claim per
// product code. Completed-looking lines are included because a line
// with zero remaining quantity can still hold an unshipped reservation.
func buildReservationIndex(orders []domain.PendingOrder) map[string]float64 {
	index := make(map[string]float64)
	for _, order := range orders {
		for _, line := range NormalizeLines(order.OrderID, order.RawLines, true) {
			if own := line.OwnReservedQty(); own > 0 {
				index[line.ProductCode] += own
			}
		}
	}
	return index
}

// buildStockIndex keys the catalog by product code.
func buildStockIndex(products []domain.Product) map[string]domain.Product {
	index := make(map[string]domain.Product, len(products))
	for _, p := range products {
		index[p.Code] = p
	}
	return index
}

func (e *ATPEngine) computeOrder(order domain.PendingOrder, stockIndex map[string]domain.Product, reservations map[string]float64) ATPOrder {
	atpOrder := ATPOrder{
		OrderID:      order.OrderID,
		Series:       order.Series,
		CustomerID:   order.CustomerID,
		CustomerCode: order.CustomerCode,
		CustomerName: order.CustomerName,
		OrderDate:    order.OrderDate,
		DeliveryDate: order.DeliveryDate,
	}

	lines := NormalizeLines(order.OrderID, order.RawLines, false)
	atpOrder.Lines = make([]ATPLine, 0, len(lines))

	allFull := true
	allNone := true
	for _, line := range lines {
		atpLine := computeLine(line, stockIndex, reservations)
		atpOrder.Lines = append(atpOrder.Lines, atpLine)

		atpOrder.RemainingQty += atpLine.RemainingQty
		atpOrder.CoverableQty += atpLine.CoverableQty
		atpOrder.ShortageQty += atpLine.ShortageQty

		if !atpLine.CoverageStatus.IsFull() {
			allFull = false
		}
		if !atpLine.CoverageStatus.IsNone() {
			allNone = false
		}
	}

	switch {
	case len(lines) == 0 || allFull:
		atpOrder.CoverageStatus = domain.CoverageFull
	case allNone:
		atpOrder.CoverageStatus = domain.CoverageNone
	default:
		atpOrder.CoverageStatus = domain.CoveragePartial
	}

	if atpOrder.RemainingQty > 0 {
		atpOrder.CoveredPercent = int(math.Round(atpOrder.CoverableQty / atpOrder.RemainingQty * 100))
	} else {
		atpOrder.CoveredPercent = 100
	}

	atpOrder.AgeHours = e.now().Sub(order.OrderDate).Hours()
	if atpOrder.AgeHours < 0 {
		atpOrder.AgeHours = 0
	}
	atpOrder.PriorityScore = e.priorityScore(atpOrder)

	return atpOrder
}

func computeLine(line domain.OrderLine, stockIndex map[string]domain.Product, reservations map[string]float64) ATPLine {
	atpLine := ATPLine{
		ProductCode:    line.ProductCode,
		ProductName:    line.ProductName,
		Unit:           line.Unit,
		WarehouseID:    line.WarehouseID,
		RemainingQty:   line.RemainingQty,
		OwnReservedQty: line.OwnReservedQty(),
	}

	// Unknown product codes compute against zero stock; the data
	// quality engine surfaces them separately.
	if product, ok := stockIndex[line.ProductCode]; ok {
		atpLine.StockQty = product.StockIn(line.WarehouseID)
	}

	atpLine.ReservedByOthersQty = math.Max(reservations[line.ProductCode]-atpLine.OwnReservedQty, 0)
	atpLine.ATPQty = math.Max(atpLine.StockQty-atpLine.ReservedByOthersQty, 0)
	atpLine.CoverableQty = math.Min(atpLine.ATPQty, atpLine.RemainingQty)
	if atpLine.CoverableQty < 0 {
		atpLine.CoverableQty = 0
	}
	atpLine.ShortageQty = math.Max(atpLine.RemainingQty-atpLine.CoverableQty, 0)

	switch {
	case atpLine.RemainingQty <= 0 || atpLine.CoverableQty >= atpLine.RemainingQty:
		atpLine.CoverageStatus = domain.CoverageFull
	case atpLine.CoverableQty <= 0:
		atpLine.CoverageStatus = domain.CoverageNone
	default:
		atpLine.CoverageStatus = domain.CoveragePartial
	}

	return atpLine
}

func (e *ATPEngine) priorityScore(order ATPOrder) int {
	var coverageBonus float64
	switch {
	case order.CoverageStatus.IsNone():
		coverageBonus = e.weights.CoverageNoneBonus
	case order.CoverageStatus.IsFull():
		coverageBonus = 0
	default:
		coverageBonus = e.weights.CoveragePartialBonus
	}

	agePoints := math.Min(order.AgeHours/e.weights.AgeHoursDivisor, e.weights.AgePointsCap)
	shortagePoints := math.Min(order.ShortageQty, e.weights.ShortagePointsCap)

	return int(math.Round(coverageBonus + agePoints + shortagePoints))
}
