package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/intelligence-service/internal/domain"
)

func cleanProduct(code string) domain.Product {
	return domain.Product{
		Code:                code,
		Name:                "Long Enough Name",
		Unit:                "pcs",
		VATRate:             0.18,
		SecondaryUnitFactor: 1,
		HasImage:            true,
		Active:              true,
	}
}

func newQualityEngineForTest(
	products []domain.Product,
	shelves []domain.ShelfLocation,
	orders []domain.PendingOrder,
	now time.Time,
) *DataQualityEngine {
	catalog := new(MockCatalogReader)
	catalog.On("AllProducts", mock.Anything).Return(products, nil)

	shelfReader := new(MockShelfReader)
	shelfReader.On("AllLocations", mock.Anything).Return(shelves, nil)

	orderReader := new(MockOrderReader)
	orderReader.On("AllOpenOrders", mock.Anything).Return(orders, nil)

	engine := NewDataQualityEngine(catalog, shelfReader, orderReader, DefaultQualityWeights())
	engine.now = fixedNow(now)
	return engine
}

func checkByName(t *testing.T, snapshot *QualitySnapshot, name string) QualityCheck {
	t.Helper()
	for _, check := range snapshot.Checks {
		if check.Name == name {
			return check
		}
	}
	t.Fatalf("check %s not found", name)
	return QualityCheck{}
}

func TestDataQualityEngine_CleanCatalogScoresFullHealth(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	engine := newQualityEngineForTest(
		[]domain.Product{cleanProduct("P1"), cleanProduct("P2")},
		nil,
		nil,
		now,
	)

	snapshot, err := engine.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100, snapshot.HealthScore)
	assert.Equal(t, 0, snapshot.BlockingCount)
	require.Len(t, snapshot.Checks, 8)
	for _, check := range snapshot.Checks {
		assert.Equal(t, 0, check.Count, "check %s should be clean", check.Name)
	}
}

func TestDataQualityEngine_CatalogViolations(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	noImage := cleanProduct("NOIMG")
	noImage.HasImage = false

	badVAT := cleanProduct("BADVAT")
	badVAT.VATRate = 0.9

	zeroFactor := cleanProduct("ZFACT")
	zeroFactor.SecondaryUnitFactor = 0

	unitless := cleanProduct("NOUNIT")
	unitless.Unit = "  "

	numericName := cleanProduct("NUMNAME")
	numericName.Name = "12345"

	stockNoShelf := cleanProduct("NOSHELF")
	stockNoShelf.StockByWarehouse = map[string]float64{"W1": 12}

	shelvedStock := cleanProduct("SHELVED")
	shelvedStock.StockByWarehouse = map[string]float64{"W1": 5}

	engine := newQualityEngineForTest(
		[]domain.Product{noImage, badVAT, zeroFactor, unitless, numericName, stockNoShelf, shelvedStock},
		[]domain.ShelfLocation{{ProductCode: "SHELVED", ShelfCode: "A-01", WarehouseID: "W1"}},
		nil,
		now,
	)

	snapshot, err := engine.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, checkByName(t, snapshot, "missing_product_image").Count)
	assert.Equal(t, 1, checkByName(t, snapshot, "invalid_vat_rate").Count)
	assert.Equal(t, 1, checkByName(t, snapshot, "invalid_secondary_unit_factor").Count)
	assert.Equal(t, 1, checkByName(t, snapshot, "missing_primary_unit").Count)
	assert.Equal(t, 1, checkByName(t, snapshot, "suspicious_product_name").Count)

	shelf := checkByName(t, snapshot, "in_stock_without_shelf")
	assert.Equal(t, 1, shelf.Count)
	assert.Contains(t, shelf.Sample[0], "NOSHELF")

	// invalid vat, factor and unit are the blocking failures here
	assert.Equal(t, 3, snapshot.BlockingCount)

	// penalty: 3 (critical) + 2 + 2 (high) + 1 + 1 (medium) + 0.5 (low) = 9.5
	// health: round(100 - 9.5/2) = 95
	assert.Equal(t, 95, snapshot.HealthScore)
}

func TestDataQualityEngine_OrderConsistencyChecks(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	orders := []domain.PendingOrder{
		{
			OrderID: "ORD-1",
			RawLines: []domain.RawOrderLine{
				rawLine("KNOWN", 10, 12, 0), // reservation 12 > remaining 10
				rawLine("GHOST", 5, 0, 0),   // not in catalog
			},
		},
	}

	engine := newQualityEngineForTest(
		[]domain.Product{cleanProduct("KNOWN")},
		nil,
		orders,
		now,
	)

	snapshot, err := engine.Snapshot(context.Background())
	require.NoError(t, err)

	unknown := checkByName(t, snapshot, "order_line_unknown_product")
	assert.Equal(t, 1, unknown.Count)
	assert.Contains(t, unknown.Sample[0], "GHOST")

	overReserved := checkByName(t, snapshot, "reservation_exceeds_remaining")
	assert.Equal(t, 1, overReserved.Count)
	assert.Contains(t, overReserved.Sample[0], "KNOWN")
}

func TestDataQualityEngine_PenaltyCountIsCapped(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	// 50 products with an invalid vat rate; only 30 of them count
	// toward the penalty and the sample stays bounded.
	products := make([]domain.Product, 0, 50)
	for i := 0; i < 50; i++ {
		p := cleanProduct(fmt.Sprintf("P%02d", i))
		p.VATRate = 0
		products = append(products, p)
	}

	engine := newQualityEngineForTest(products, nil, nil, now)

	snapshot, err := engine.Snapshot(context.Background())
	require.NoError(t, err)

	vat := checkByName(t, snapshot, "invalid_vat_rate")
	assert.Equal(t, 50, vat.Count)
	assert.Len(t, vat.Sample, 8)

	// penalty: min(50,30)*3 = 90, health round(100 - 45) = 55
	assert.Equal(t, 55, snapshot.HealthScore)
	assert.Equal(t, 1, snapshot.BlockingCount)
}
