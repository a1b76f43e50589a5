package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/intelligence-service/internal/domain"
)

func newSubstitutionEngineForTest(catalog *MockCatalogReader, weights SubstitutionWeights, now time.Time) *SubstitutionEngine {
	engine := NewSubstitutionEngine(nil, catalog, weights)
	engine.now = fixedNow(now)
	return engine
}

func shortageSnapshot(lines ...ATPLine) *ATPSnapshot {
	return &ATPSnapshot{Orders: []ATPOrder{{OrderID: "ORD-1", Lines: lines}}}
}

func TestSubstitutionEngine_RanksCandidates(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	source := domain.Product{
		Code: "SRC", Name: "acme blue paint 5l", CategoryID: "paint", BrandCode: "ACME",
	}
	sameBrand := domain.Product{
		Code: "SB", Name: "acme blue paint 10l", CategoryID: "paint", BrandCode: "ACME",
		HasImage: true, StockByWarehouse: map[string]float64{"W1": 100},
	}
	otherBrand := domain.Product{
		Code: "OB", Name: "rival red paint 5l", CategoryID: "paint", BrandCode: "RIVAL",
		StockByWarehouse: map[string]float64{"W1": 400},
	}
	noStock := domain.Product{
		Code: "NS", Name: "acme blue paint 1l", CategoryID: "paint", BrandCode: "ACME",
	}
	otherCategory := domain.Product{
		Code: "OC", Name: "acme blue paint 5l", CategoryID: "brushes", BrandCode: "ACME",
		StockByWarehouse: map[string]float64{"W1": 50},
	}

	catalog := new(MockCatalogReader)
	catalog.On("ActiveProducts", mock.Anything).Return(
		[]domain.Product{source, sameBrand, otherBrand, noStock, otherCategory}, nil)

	engine := newSubstitutionEngineForTest(catalog, DefaultSubstitutionWeights(), now)

	snapshot, err := engine.SuggestFromATP(context.Background(), shortageSnapshot(ATPLine{
		ProductCode: "SRC", ProductName: "acme blue paint 5l", ShortageQty: 10,
	}))
	require.NoError(t, err)
	require.Len(t, snapshot.Lines, 1)

	candidates := snapshot.Lines[0].Candidates
	require.Len(t, candidates, 2) // zero stock and other category excluded

	// Same brand: 35 + 100/2 + 0.2*75 + 5 = 105.
	// Other brand: 200/2 + 0.2*50 = 110, higher despite the brand miss.
	assert.Equal(t, "OB", candidates[0].ProductCode)
	assert.InDelta(t, 110.0, candidates[0].Score, 0.001)
	assert.Equal(t, "SB", candidates[1].ProductCode)
	assert.InDelta(t, 105.0, candidates[1].Score, 0.001)

	assert.Contains(t, candidates[1].Reason, "same brand")
	assert.Contains(t, candidates[1].Reason, "name similarity")
	assert.Contains(t, candidates[0].Reason, "in stock")
	assert.NotContains(t, candidates[0].Reason, "same brand")
}

func TestSubstitutionEngine_CandidateCountCapped(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	products := []domain.Product{
		{Code: "SRC", Name: "thing", CategoryID: "cat"},
	}
	for i := 0; i < 6; i++ {
		products = append(products, domain.Product{
			Code: string(rune('A' + i)), Name: "thing variant", CategoryID: "cat",
			StockByWarehouse: map[string]float64{"W1": float64(10 + i)},
		})
	}

	catalog := new(MockCatalogReader)
	catalog.On("ActiveProducts", mock.Anything).Return(products, nil)

	engine := newSubstitutionEngineForTest(catalog, DefaultSubstitutionWeights(), now)

	snapshot, err := engine.SuggestFromATP(context.Background(), shortageSnapshot(ATPLine{
		ProductCode: "SRC", ShortageQty: 3,
	}))
	require.NoError(t, err)
	require.Len(t, snapshot.Lines, 1)
	assert.Len(t, snapshot.Lines[0].Candidates, 4)
}

func TestSubstitutionEngine_UnknownSourceGetsNoCandidates(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	catalog := new(MockCatalogReader)
	catalog.On("ActiveProducts", mock.Anything).Return([]domain.Product{}, nil)

	engine := newSubstitutionEngineForTest(catalog, DefaultSubstitutionWeights(), now)

	snapshot, err := engine.SuggestFromATP(context.Background(), shortageSnapshot(ATPLine{
		ProductCode: "GHOST", ShortageQty: 2,
	}))
	require.NoError(t, err)

	// The shortage line still surfaces so planners see the gap
	require.Len(t, snapshot.Lines, 1)
	assert.Empty(t, snapshot.Lines[0].Candidates)
}

func TestSubstitutionEngine_ShortageLineCap(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	weights := DefaultSubstitutionWeights()
	weights.MaxShortageLines = 2

	catalog := new(MockCatalogReader)
	catalog.On("ActiveProducts", mock.Anything).Return([]domain.Product{}, nil)

	engine := newSubstitutionEngineForTest(catalog, weights, now)

	snapshot, err := engine.SuggestFromATP(context.Background(), shortageSnapshot(
		ATPLine{ProductCode: "A", ShortageQty: 1},
		ATPLine{ProductCode: "B", ShortageQty: 1},
		ATPLine{ProductCode: "C", ShortageQty: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.LineCount)
	assert.Len(t, snapshot.Lines, 2)
}

func TestSubstitutionEngine_CoveredLinesSkipped(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	catalog := new(MockCatalogReader)
	catalog.On("ActiveProducts", mock.Anything).Return([]domain.Product{}, nil)

	engine := newSubstitutionEngineForTest(catalog, DefaultSubstitutionWeights(), now)

	snapshot, err := engine.SuggestFromATP(context.Background(), shortageSnapshot(
		ATPLine{ProductCode: "A", ShortageQty: 0},
		ATPLine{ProductCode: "B", ShortageQty: 5},
	))
	require.NoError(t, err)
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, "B", snapshot.Lines[0].ProductCode)
}

func TestTokenOverlapPercent(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		candidate string
		expected  float64
	}{
		{"identical", "acme blue paint", "acme blue paint", 100},
		{"partial", "acme blue paint 5l", "acme red paint 5l", 75},
		{"disjoint", "acme paint", "rival brush", 0},
		{"empty source", "", "anything", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenOverlapPercent(nameTokens(tt.source), nameTokens(tt.candidate))
			assert.InDelta(t, tt.expected, got, 0.001)
		})
	}
}
