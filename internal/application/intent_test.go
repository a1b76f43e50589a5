package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wms-platform/intelligence-service/internal/domain"
)

type intentFixture struct {
	customers *MockCustomerReader
	activity  *MockActivityReader
	commerce  *MockCommerceReader
	scorer    *IntentScorer
}

func newIntentFixture(now time.Time) *intentFixture {
	f := &intentFixture{
		customers: new(MockCustomerReader),
		activity:  new(MockActivityReader),
		commerce:  new(MockCommerceReader),
	}
	f.scorer = NewIntentScorer(f.customers, f.activity, f.commerce, DefaultIntentWeights())
	f.scorer.now = fixedNow(now)
	return f
}

func (f *intentFixture) stub(
	customers []domain.Customer,
	events []domain.CustomerActivityEvent,
	lastActivity map[string]time.Time,
	carts []domain.Cart,
	orders []domain.SalesOrder,
) {
	f.customers.On("ActiveCustomers", mock.Anything).Return(customers, nil)
	f.activity.On("EventsSince", mock.Anything, mock.Anything).Return(events, nil)
	f.activity.On("LastActivityByCustomer", mock.Anything).Return(lastActivity, nil)
	f.commerce.On("OpenCarts", mock.Anything).Return(carts, nil)
	f.commerce.On("OrdersSince", mock.Anything, mock.Anything).Return(orders, nil)
}

func TestIntentScorer_SilentBuyerScoresLowButKeepsChurnLow(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	customer := domain.Customer{ID: primitive.NewObjectID(), Code: "C1", Name: "Acme Hardware", Active: true}

	f := newIntentFixture(now)
	f.stub(
		[]domain.Customer{customer},
		nil,
		map[string]time.Time{},
		nil,
		[]domain.SalesOrder{
			{CustomerID: customer.CustomerID(), Status: domain.OrderStatusApproved, Amount: 12000, OrderDate: now.AddDate(0, 0, -5)},
			{CustomerID: customer.CustomerID(), Status: domain.OrderStatusApproved, Amount: 8000, OrderDate: now.AddDate(0, 0, -20)},
		},
	)

	snapshot, err := f.scorer.Snapshot(context.Background(), CustomerQuery{})
	require.NoError(t, err)
	require.Len(t, snapshot.Customers, 1)

	intent := snapshot.Customers[0]
	// 2 orders totaling 20000: commerce 7*2 + 20000/5000 = 18,
	// no activity ever: recency -10, so 18 - 10 = 8
	assert.Equal(t, 0.0, intent.EngagementScore)
	assert.InDelta(t, 18.0, intent.CommerceScore, 0.001)
	assert.InDelta(t, -10.0, intent.RecencyScore, 0.001)
	assert.Equal(t, 8, intent.IntentScore)
	assert.Equal(t, SegmentCold, intent.Segment)
	// Still ordering, so the silence is not churn
	assert.Equal(t, ChurnLow, intent.ChurnRisk)
}

func TestIntentScorer_EngagedCustomerWithCartGoesHot(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	customer := domain.Customer{ID: primitive.NewObjectID(), Code: "C1", Name: "Hot Shop", Active: true}
	id := customer.CustomerID()

	events := []domain.CustomerActivityEvent{}
	for i := 0; i < 10; i++ {
		events = append(events, domain.CustomerActivityEvent{CustomerID: id, Type: domain.ActivityProductView, Timestamp: now.Add(-2 * time.Hour)})
	}
	events = append(events,
		domain.CustomerActivityEvent{CustomerID: id, Type: domain.ActivityCartAdd, Timestamp: now.Add(-1 * time.Hour)},
		domain.CustomerActivityEvent{CustomerID: id, Type: domain.ActivityCartAdd, Timestamp: now.Add(-1 * time.Hour)},
		domain.CustomerActivityEvent{CustomerID: id, Type: domain.ActivitySearch, Timestamp: now.Add(-1 * time.Hour)},
		domain.CustomerActivityEvent{CustomerID: id, Type: domain.ActivityActive, Timestamp: now.Add(-1 * time.Hour), DurationSeconds: 600, ClickCount: 50},
	)

	f := newIntentFixture(now)
	f.stub(
		[]domain.Customer{customer},
		events,
		map[string]time.Time{id: now.Add(-1 * time.Hour)},
		[]domain.Cart{{CustomerID: id, Lines: []domain.CartLine{{ProductCode: "P1", Quantity: 3, Amount: 4500}}}},
		[]domain.SalesOrder{{CustomerID: id, Status: domain.OrderStatusApproved, Amount: 10000, OrderDate: now.AddDate(0, 0, -3)}},
	)

	snapshot, err := f.scorer.Snapshot(context.Background(), CustomerQuery{})
	require.NoError(t, err)
	require.Len(t, snapshot.Customers, 1)

	intent := snapshot.Customers[0]
	assert.Equal(t, 10, intent.ProductViews)
	assert.Equal(t, 2, intent.CartAdds)
	assert.Equal(t, 10, intent.ActiveMinutes)
	assert.Equal(t, 50, intent.Clicks)
	assert.Equal(t, 4500.0, intent.CartAmount)

	// engagement 1.4*10 + 4*2 + 2*1 + 0.6*10 + 0.04*50 = 32,
	// commerce 7 + 2 + 12 = 21, recency within a day = 18
	assert.Equal(t, 71, intent.IntentScore)
	assert.Equal(t, SegmentHot, intent.Segment)
	assert.Equal(t, ChurnLow, intent.ChurnRisk)
	assert.Equal(t, "push a fast quote toward the open cart", intent.NextBestAction)
	assert.Equal(t, 1, snapshot.HotCount)
}

func TestIntentScorer_SubAccountsRollUpToParent(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	parent := domain.Customer{ID: primitive.NewObjectID(), Code: "HQ", Name: "Chain HQ", Active: true}
	branch := domain.Customer{ID: primitive.NewObjectID(), Code: "BR", Name: "Branch", ParentID: parent.CustomerID(), Active: true}

	f := newIntentFixture(now)
	f.stub(
		[]domain.Customer{parent, branch},
		[]domain.CustomerActivityEvent{
			{CustomerID: branch.CustomerID(), Type: domain.ActivityCartAdd, Timestamp: now.Add(-1 * time.Hour)},
		},
		map[string]time.Time{branch.CustomerID(): now.Add(-1 * time.Hour)},
		[]domain.Cart{{CustomerID: branch.CustomerID(), Lines: []domain.CartLine{{Quantity: 1, Amount: 100}}}},
		[]domain.SalesOrder{{CustomerID: branch.CustomerID(), Status: domain.OrderStatusApproved, Amount: 5000, OrderDate: now.AddDate(0, 0, -2)}},
	)

	snapshot, err := f.scorer.Snapshot(context.Background(), CustomerQuery{})
	require.NoError(t, err)

	// Only the parent is scored; the branch's behavior lands on it
	require.Len(t, snapshot.Customers, 1)
	intent := snapshot.Customers[0]
	assert.Equal(t, parent.CustomerID(), intent.CustomerID)
	assert.Equal(t, 1, intent.CartAdds)
	assert.Equal(t, 100.0, intent.CartAmount)
	assert.Equal(t, 1, intent.OrderCount30d)
	require.NotNil(t, intent.LastActivityAt)
}

func TestIntentScorer_ChurnGrading(t *testing.T) {
	tests := []struct {
		name        string
		hasActivity bool
		daysSince   float64
		orders30d   int
		expected    string
	}{
		{"never active, no orders", false, 0, 0, ChurnHigh},
		{"never active, still ordering", false, 0, 2, ChurnLow},
		{"long silent, no orders", true, 25, 0, ChurnHigh},
		{"long silent, still ordering", true, 25, 1, ChurnMedium},
		{"quiet couple weeks", true, 16, 3, ChurnMedium},
		{"recently active", true, 2, 0, ChurnLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, churnRisk(tt.hasActivity, tt.daysSince, tt.orders30d))
		})
	}
}

func TestIntentScorer_RankedAndLimited(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	customers := make([]domain.Customer, 0, 25)
	orders := make([]domain.SalesOrder, 0, 25)
	for i := 0; i < 25; i++ {
		c := domain.Customer{ID: primitive.NewObjectID(), Code: "C", Name: "Customer", Active: true}
		customers = append(customers, c)
		if i == 0 {
			orders = append(orders, domain.SalesOrder{
				CustomerID: c.CustomerID(), Status: domain.OrderStatusApproved, Amount: 50000, OrderDate: now.AddDate(0, 0, -1),
			})
		}
	}

	f := newIntentFixture(now)
	f.stub(customers, nil, map[string]time.Time{}, nil, orders)

	snapshot, err := f.scorer.Snapshot(context.Background(), CustomerQuery{CustomerLimit: 20})
	require.NoError(t, err)

	assert.Equal(t, 20, snapshot.CustomerCount)
	require.Len(t, snapshot.Customers, 20)
	// The only buyer ranks first
	assert.Equal(t, customers[0].CustomerID(), snapshot.Customers[0].CustomerID)
	assert.Greater(t, snapshot.Customers[0].IntentScore, snapshot.Customers[1].IntentScore)
}
