package application

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/wms-platform/intelligence-service/internal/domain"
)

// SubstitutionWeights holds the candidate-scoring tuning.
type SubstitutionWeights struct {
	BrandMatchPoints   float64
	StockPointsCap     float64
	StockPointsDivisor float64
	SimilarityFactor   float64
	ImagePoints        float64
	MaxCandidates      int
	MaxShortageLines   int
}

// DefaultSubstitutionWeights returns the production substitution weights.
func DefaultSubstitutionWeights() SubstitutionWeights {
	return SubstitutionWeights{
		BrandMatchPoints:   35,
		StockPointsCap:     200,
		StockPointsDivisor: 2,
		SimilarityFactor:   0.2,
		ImagePoints:        5,
		MaxCandidates:      4,
		MaxShortageLines:   80,
	}
}

// SubstitutionEngine ranks replacement products for shortage lines.
type SubstitutionEngine struct {
	atp     *ATPEngine
	catalog domain.CatalogReader
	weights SubstitutionWeights
	now     func() time.Time
}

// NewSubstitutionEngine creates a new SubstitutionEngine
func NewSubstitutionEngine(atp *ATPEngine, catalog domain.CatalogReader, weights SubstitutionWeights) *SubstitutionEngine {
	return &SubstitutionEngine{
		atp:     atp,
		catalog: catalog,
		weights: weights,
		now:     time.Now,
	}
}

// Snapshot computes a fresh ATP pass and suggests from its shortages.
func (e *SubstitutionEngine) Snapshot(ctx context.Context, query OrderQuery) (*SubstitutionSnapshot, error) {
	atpSnapshot, err := e.atp.Snapshot(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.SuggestFromATP(ctx, atpSnapshot)
}

// SuggestFromATP suggests substitutes for an already-computed coverage
// snapshot's shortage lines.
func (e *SubstitutionEngine) SuggestFromATP(ctx context.Context, atpSnapshot *ATPSnapshot) (*SubstitutionSnapshot, error) {
	products, err := e.catalog.ActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	byCategory := buildCategoryIndex(products)
	byCode := buildStockIndex(products)

	snapshot := &SubstitutionSnapshot{
		GeneratedAt: e.now().UTC(),
		Lines:       make([]SubstitutionLine, 0),
	}

	for _, order := range atpSnapshot.Orders {
		for _, line := range order.Lines {
			if line.ShortageQty <= 0 {
				continue
			}
			if len(snapshot.Lines) >= e.weights.MaxShortageLines {
				snapshot.LineCount = len(snapshot.Lines)
				return snapshot, nil
			}

			source, known := byCode[line.ProductCode]
			subLine := SubstitutionLine{
				OrderID:     order.OrderID,
				ProductCode: line.ProductCode,
				ProductName: line.ProductName,
				ShortageQty: line.ShortageQty,
			}
			if known {
				subLine.Candidates = e.rankCandidates(source, byCategory[source.CategoryID])
			}
			snapshot.Lines = append(snapshot.Lines, subLine)
		}
	}

	snapshot.LineCount = len(snapshot.Lines)
	return snapshot, nil
}

// buildCategoryIndex groups active products by category id.
func buildCategoryIndex(products []domain.Product) map[string][]domain.Product {
	index := make(map[string][]domain.Product)
	for _, p := range products {
		index[p.CategoryID] = append(index[p.CategoryID], p)
	}
	return index
}

func (e *SubstitutionEngine) rankCandidates(source domain.Product, categoryProducts []domain.Product) []SubstitutionCandidate {
	sourceTokens := nameTokens(source.Name)

	candidates := make([]SubstitutionCandidate, 0)
	for _, candidate := range categoryProducts {
		if candidate.Code == source.Code {
			continue
		}
		stock := candidate.TotalStock()
		if stock <= 0 {
			continue
		}

		similarity := tokenOverlapPercent(sourceTokens, nameTokens(candidate.Name))
		brandMatch := candidate.BrandCode != "" && candidate.BrandCode == source.BrandCode

		var score float64
		if brandMatch {
			score += e.weights.BrandMatchPoints
		}
		score += math.Min(stock, e.weights.StockPointsCap) / e.weights.StockPointsDivisor
		score += e.weights.SimilarityFactor * similarity
		if candidate.HasImage {
			score += e.weights.ImagePoints
		}

		candidates = append(candidates, SubstitutionCandidate{
			ProductCode: candidate.Code,
			ProductName: candidate.Name,
			StockQty:    stock,
			Score:       score,
			Reason:      buildReason(brandMatch, similarity, stock),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > e.weights.MaxCandidates {
		candidates = candidates[:e.weights.MaxCandidates]
	}
	return candidates
}

// nameTokens lowercases and splits a product name into word tokens.
func nameTokens(name string) []string {
	return strings.Fields(strings.ToLower(name))
}

// tokenOverlapPercent returns the percentage of source tokens also
// present in the candidate's tokens.
func tokenOverlapPercent(source, candidate []string) float64 {
	if len(source) == 0 {
		return 0
	}
	candidateSet := make(map[string]bool, len(candidate))
	for _, token := range candidate {
		candidateSet[token] = true
	}
	matched := 0
	for _, token := range source {
		if candidateSet[token] {
			matched++
		}
	}
	return float64(matched) / float64(len(source)) * 100
}

func buildReason(brandMatch bool, similarity, stock float64) string {
	parts := make([]string, 0, 3)
	if brandMatch {
		parts = append(parts, "same brand")
	}
	if similarity > 0 {
		parts = append(parts, fmt.Sprintf("%.0f%% name similarity", similarity))
	}
	parts = append(parts, fmt.Sprintf("%.0f in stock", stock))
	return strings.Join(parts, ", ")
}
