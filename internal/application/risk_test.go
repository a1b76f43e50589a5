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

func newRiskEngineForTest(orders *MockOrderReader, credit *MockCreditReader, now time.Time) *RiskEngine {
	engine := NewRiskEngine(orders, credit, DefaultRiskWeights())
	engine.now = fixedNow(now)
	return engine
}

func pendingOrder(orderID, customerID string, amount float64, orderDate time.Time) domain.PendingOrder {
	return domain.PendingOrder{
		OrderID:     orderID,
		CustomerID:  customerID,
		Status:      domain.OrderStatusPendingApproval,
		OrderDate:   orderDate,
		TotalAmount: amount,
	}
}

func TestRiskEngine_HeavyPastDueForcesManualReview(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	order := pendingOrder("ORD-1", "CUST-1", 10000, now)

	orders := new(MockOrderReader)
	orders.On("PendingApprovalOrders", mock.Anything, defaultOrderLimit).Return([]domain.PendingOrder{order}, nil)

	credit := new(MockCreditReader)
	credit.On("PositionsByCustomerIDs", mock.Anything, []string{"CUST-1"}).Return(map[string]domain.CreditPosition{
		"CUST-1": {CustomerID: "CUST-1", PastDueBalance: 9000, TotalBalance: 9000},
	}, nil)

	engine := newRiskEngineForTest(orders, credit, now)

	snapshot, err := engine.Snapshot(context.Background(), RiskQuery{})
	require.NoError(t, err)
	require.Len(t, snapshot.Orders, 1)

	risk := snapshot.Orders[0]
	// past-due 0.9 of amount: 0.9*45 + 0.9*20 = 58.5, rounds to 59.
	// 9000 stays under the 12000 block line but well past the 1000
	// review line.
	assert.Equal(t, 59, risk.RiskScore)
	assert.Equal(t, DecisionManualReview, risk.Decision)
	assert.Contains(t, risk.Reasons, "past-due balance 9000.00")
	assert.Equal(t, 1, snapshot.ReviewCount)
	assert.Equal(t, 0, snapshot.BlockCount)
}

func TestRiskEngine_PastDueAboveFloorBlocks(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	order := pendingOrder("ORD-1", "CUST-1", 1000, now)

	orders := new(MockOrderReader)
	orders.On("PendingApprovalOrders", mock.Anything, defaultOrderLimit).Return([]domain.PendingOrder{order}, nil)

	credit := new(MockCreditReader)
	credit.On("PositionsByCustomerIDs", mock.Anything, []string{"CUST-1"}).Return(map[string]domain.CreditPosition{
		"CUST-1": {CustomerID: "CUST-1", PastDueBalance: 8000, TotalBalance: 8000},
	}, nil)

	engine := newRiskEngineForTest(orders, credit, now)

	snapshot, err := engine.Snapshot(context.Background(), RiskQuery{})
	require.NoError(t, err)

	// 8000 past due exceeds max(1.2*1000, 7500)
	assert.Equal(t, DecisionBlock, snapshot.Orders[0].Decision)
	assert.Equal(t, 1, snapshot.BlockCount)
}

func TestRiskEngine_MissingCreditPositionIsASignal(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	order := pendingOrder("ORD-1", "CUST-1", 500, now)

	orders := new(MockOrderReader)
	orders.On("PendingApprovalOrders", mock.Anything, defaultOrderLimit).Return([]domain.PendingOrder{order}, nil)

	credit := new(MockCreditReader)
	credit.On("PositionsByCustomerIDs", mock.Anything, []string{"CUST-1"}).Return(map[string]domain.CreditPosition{}, nil)

	engine := newRiskEngineForTest(orders, credit, now)

	snapshot, err := engine.Snapshot(context.Background(), RiskQuery{})
	require.NoError(t, err)

	risk := snapshot.Orders[0]
	assert.False(t, risk.HasCreditData)
	assert.Equal(t, 12, risk.RiskScore)
	assert.Equal(t, DecisionAutoApprove, risk.Decision)
	assert.Contains(t, risk.Reasons, "no credit position on file")
}

func TestRiskEngine_ClassificationLabels(t *testing.T) {
	engine := newRiskEngineForTest(nil, nil, time.Now())

	tests := []struct {
		name           string
		classification string
		expected       float64
	}{
		{"blocked label", "BLOCKED - finance hold", 40},
		{"stop label", "Stop shipments", 40},
		{"watch label", "watch list", 20},
		{"risky label", "high risk account", 20},
		{"plain label", "regular", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, _ := engine.classificationPoints(tt.classification)
			assert.Equal(t, tt.expected, points)
		})
	}
}

func TestRiskEngine_ManualScoreOverridesWhenHigher(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	order := pendingOrder("ORD-1", "CUST-1", 10000, now)

	orders := new(MockOrderReader)
	orders.On("PendingApprovalOrders", mock.Anything, defaultOrderLimit).Return([]domain.PendingOrder{order}, nil)

	credit := new(MockCreditReader)
	credit.On("PositionsByCustomerIDs", mock.Anything, mock.Anything).Return(map[string]domain.CreditPosition{
		"CUST-1": {CustomerID: "CUST-1", ManualScore: f64Ptr(85)},
	}, nil)

	engine := newRiskEngineForTest(orders, credit, now)

	snapshot, err := engine.Snapshot(context.Background(), RiskQuery{})
	require.NoError(t, err)

	risk := snapshot.Orders[0]
	assert.Equal(t, 85, risk.RiskScore)
	assert.Equal(t, DecisionBlock, risk.Decision)
}

func TestRiskEngine_PendingAgeAddsPoints(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	stale := pendingOrder("STALE", "CUST-1", 1000, now.AddDate(0, 0, -30))
	fresh := pendingOrder("FRESH", "CUST-2", 1000, now)

	orders := new(MockOrderReader)
	orders.On("PendingApprovalOrders", mock.Anything, defaultOrderLimit).Return([]domain.PendingOrder{stale, fresh}, nil)

	credit := new(MockCreditReader)
	credit.On("PositionsByCustomerIDs", mock.Anything, []string{"CUST-1", "CUST-2"}).Return(map[string]domain.CreditPosition{}, nil)

	engine := newRiskEngineForTest(orders, credit, now)

	snapshot, err := engine.Snapshot(context.Background(), RiskQuery{})
	require.NoError(t, err)
	require.Len(t, snapshot.Orders, 2)

	// Age points cap at 10 days; stale order ranks first
	assert.Equal(t, "STALE", snapshot.Orders[0].OrderID)
	assert.Equal(t, 22, snapshot.Orders[0].RiskScore) // 12 missing credit + 10 age
	assert.Equal(t, 12, snapshot.Orders[1].RiskScore)
	assert.Contains(t, snapshot.Orders[0].Reasons, "pending approval for 30.0 days")
}
