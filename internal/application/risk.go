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

// RiskWeights holds the credit-risk scoring and gating tuning.
type RiskWeights struct {
	PastDuePointsCap      float64
	TotalBalancePointsCap float64
	NotDuePointsCap       float64
	MissingCreditPenalty  float64
	PendingAgePointsCap   float64
	BlockedLabelPoints    float64
	WatchLabelPoints      float64

	BlockScoreThreshold  int
	ReviewScoreThreshold int
	BlockPastDueFactor   float64
	BlockPastDueFloor    float64
	ReviewPastDueFloor   float64
}

// DefaultRiskWeights returns the production risk weights.
func DefaultRiskWeights() RiskWeights {
	return RiskWeights{
		PastDuePointsCap:      45,
		TotalBalancePointsCap: 20,
		NotDuePointsCap:       10,
		MissingCreditPenalty:  12,
		PendingAgePointsCap:   10,
		BlockedLabelPoints:    40,
		WatchLabelPoints:      20,

		BlockScoreThreshold:  80,
		ReviewScoreThreshold: 50,
		BlockPastDueFactor:   1.2,
		BlockPastDueFloor:    7500,
		ReviewPastDueFloor:   1000,
	}
}

// RiskEngine gates pending-approval orders against credit exposure.
type RiskEngine struct {
	orders  domain.OrderReader
	credit  domain.CreditReader
	weights RiskWeights
	now     func() time.Time
}

// NewRiskEngine creates a new RiskEngine
func NewRiskEngine(orders domain.OrderReader, credit domain.CreditReader, weights RiskWeights) *RiskEngine {
	return &RiskEngine{
		orders:  orders,
		credit:  credit,
		weights: weights,
		now:     time.Now,
	}
}

// Snapshot scores the oldest pending-approval orders.
func (e *RiskEngine) Snapshot(ctx context.Context, query RiskQuery) (*RiskSnapshot, error) {
	now := e.now()

	orders, err := e.orders.PendingApprovalOrders(ctx, query.Limit())
	if err != nil {
		return nil, fmt.Errorf("failed to read pending-approval orders: %w", err)
	}

	customerIDs := make([]string, 0, len(orders))
	seen := make(map[string]bool, len(orders))
	for _, order := range orders {
		if !seen[order.CustomerID] {
			seen[order.CustomerID] = true
			customerIDs = append(customerIDs, order.CustomerID)
		}
	}

	positions, err := e.credit.PositionsByCustomerIDs(ctx, customerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to read credit positions: %w", err)
	}

	snapshot := &RiskSnapshot{
		GeneratedAt: now.UTC(),
		Orders:      make([]OrderRisk, 0, len(orders)),
	}

	for _, order := range orders {
		position, hasPosition := positions[order.CustomerID]
		risk := e.scoreOrder(now, order, position, hasPosition)
		snapshot.Orders = append(snapshot.Orders, risk)

		switch risk.Decision {
		case DecisionBlock:
			snapshot.BlockCount++
		case DecisionManualReview:
			snapshot.ReviewCount++
		default:
			snapshot.AutoApproveCount++
		}
	}
	snapshot.OrderCount = len(snapshot.Orders)

	// Oldest-first input order is the tiebreak for equal scores
	sort.SliceStable(snapshot.Orders, func(i, j int) bool {
		return snapshot.Orders[i].RiskScore > snapshot.Orders[j].RiskScore
	})

	return snapshot, nil
}

func (e *RiskEngine) scoreOrder(now time.Time, order domain.PendingOrder, position domain.CreditPosition, hasPosition bool) OrderRisk {
	w := e.weights

	risk := OrderRisk{
		OrderID:       order.OrderID,
		CustomerID:    order.CustomerID,
		CustomerCode:  order.CustomerCode,
		CustomerName:  order.CustomerName,
		OrderDate:     order.OrderDate,
		Amount:        order.TotalAmount,
		HasCreditData: hasPosition,
	}

	risk.PendingAgeDays = now.Sub(order.OrderDate).Hours() / 24
	if risk.PendingAgeDays < 0 {
		risk.PendingAgeDays = 0
	}

	amountBase := math.Max(order.TotalAmount, 1)
	reasons := make([]string, 0, 4)
	var score float64

	if hasPosition {
		risk.PastDueBalance = position.PastDueBalance
		risk.TotalBalance = position.TotalBalance
		risk.Classification = position.Classification

		if position.PastDueBalance > 0 {
			score += math.Min(position.PastDueBalance/amountBase, 1) * w.PastDuePointsCap
			reasons = append(reasons, fmt.Sprintf("past-due balance %.2f", position.PastDueBalance))
		}
		if position.TotalBalance > 0 {
			score += math.Min(position.TotalBalance/amountBase, 1) * w.TotalBalancePointsCap
		}
		if position.NotDueBalance > 0 {
			score += math.Min(position.NotDueBalance/amountBase, 1) * w.NotDuePointsCap
		}

		if labelPoints, label := e.classificationPoints(position.Classification); labelPoints > 0 {
			score += labelPoints
			reasons = append(reasons, fmt.Sprintf("classification %q", label))
		}
	} else {
		score += w.MissingCreditPenalty
		reasons = append(reasons, "no credit position on file")
	}

	agePoints := math.Min(risk.PendingAgeDays, w.PendingAgePointsCap)
	score += agePoints
	if risk.PendingAgeDays >= 3 {
		reasons = append(reasons, fmt.Sprintf("pending approval for %.1f days", risk.PendingAgeDays))
	}

	if hasPosition && position.ManualScore != nil {
		score = math.Max(score, *position.ManualScore)
	}

	risk.RiskScore = int(math.Min(math.Max(math.Round(score), 0), 100))

	if len(reasons) == 0 {
		reasons = append(reasons, "low risk signal")
	}
	risk.Reasons = reasons
	risk.Decision = e.decide(risk)

	return risk
}

// classificationPoints matches the ERP's free-form manual label against
// the blocked and watch patterns.
func (e *RiskEngine) classificationPoints(classification string) (float64, string) {
	label := strings.ToLower(strings.TrimSpace(classification))
	if label == "" {
		return 0, ""
	}
	if strings.Contains(label, "block") || strings.Contains(label, "stop") {
		return e.weights.BlockedLabelPoints, classification
	}
	if strings.Contains(label, "risk") || strings.Contains(label, "watch") {
		return e.weights.WatchLabelPoints, classification
	}
	return 0, ""
}

func (e *RiskEngine) decide(risk OrderRisk) string {
	w := e.weights

	blockPastDue := math.Max(risk.Amount*w.BlockPastDueFactor, w.BlockPastDueFloor)
	if risk.RiskScore >= w.BlockScoreThreshold || risk.PastDueBalance >= blockPastDue {
		return DecisionBlock
	}
	if risk.RiskScore >= w.ReviewScoreThreshold || risk.PastDueBalance >= w.ReviewPastDueFloor {
		return DecisionManualReview
	}
	return DecisionAutoApprove
}
