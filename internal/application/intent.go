package application

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wms-platform/intelligence-service/internal/domain"
)

// IntentWeights holds the customer intent scoring tuning.
type IntentWeights struct {
	PageView     float64
	ProductView  float64
	CartAdd      float64
	CartUpdate   float64
	Search       float64
	ActiveMinute float64
	Click        float64

	OrderCountPoints   float64
	OrderAmountDivisor float64
	OpenCartPoints     float64

	RecencyDay1   float64
	RecencyDay3   float64
	RecencyDay7   float64
	RecencyDay14  float64
	RecencyOlder  float64
	NoActivity    float64

	HotThreshold  int
	WarmThreshold int

	ActivityWindowDays int
	CommerceWindowDays int
}

// DefaultIntentWeights returns the production intent weights.
func DefaultIntentWeights() IntentWeights {
	return IntentWeights{
		PageView:     0.8,
		ProductView:  1.4,
		CartAdd:      4,
		CartUpdate:   2,
		Search:       2,
		ActiveMinute: 0.6,
		Click:        0.04,

		OrderCountPoints:   7,
		OrderAmountDivisor: 5000,
		OpenCartPoints:     12,

		RecencyDay1:  18,
		RecencyDay3:  10,
		RecencyDay7:  4,
		RecencyDay14: 0,
		RecencyOlder: -12,
		NoActivity:   -10,

		HotThreshold:  70,
		WarmThreshold: 40,

		ActivityWindowDays: 14,
		CommerceWindowDays: 30,
	}
}

// activityTally accumulates one top-level customer's behavior window.
type activityTally struct {
	pageViews     int
	productViews  int
	cartAdds      int
	cartUpdates   int
	searches      int
	activeSeconds float64
	clicks        int
}

// IntentScorer scores customer engagement, commerce and recency into a
// segment and a next best action.
type IntentScorer struct {
	customers domain.CustomerReader
	activity  domain.ActivityReader
	commerce  domain.CommerceReader
	weights   IntentWeights
	now       func() time.Time
}

// NewIntentScorer creates a new IntentScorer
func NewIntentScorer(customers domain.CustomerReader, activity domain.ActivityReader, commerce domain.CommerceReader, weights IntentWeights) *IntentScorer {
	return &IntentScorer{
		customers: customers,
		activity:  activity,
		commerce:  commerce,
		weights:   weights,
		now:       time.Now,
	}
}

// Snapshot scores all active top-level customers.
func (s *IntentScorer) Snapshot(ctx context.Context, query CustomerQuery) (*IntentSnapshot, error) {
	now := s.now()

	customers, err := s.customers.ActiveCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read customers: %w", err)
	}

	events, err := s.activity.EventsSince(ctx, now.AddDate(0, 0, -s.weights.ActivityWindowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to read activity events: %w", err)
	}

	lastActivity, err := s.activity.LastActivityByCustomer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read activity recency: %w", err)
	}

	carts, err := s.commerce.OpenCarts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read carts: %w", err)
	}

	orders, err := s.commerce.OrdersSince(ctx, now.AddDate(0, 0, -s.weights.CommerceWindowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to read recent orders: %w", err)
	}

	// Sub-accounts roll up to their parent before any aggregation
	topLevel := make([]domain.Customer, 0, len(customers))
	rollUp := make(map[string]string, len(customers))
	for _, c := range customers {
		rollUp[c.CustomerID()] = c.TopLevelID()
		if c.ParentID == "" {
			topLevel = append(topLevel, c)
		}
	}
	attribute := func(customerID string) string {
		if top, ok := rollUp[customerID]; ok {
			return top
		}
		return customerID
	}

	tallies := buildActivityTallies(events, attribute)
	recency := buildRecencyIndex(lastActivity, attribute)
	cartIndex := buildCartIndex(carts, attribute)
	commerceIndex := buildCommerceIndex(orders, attribute)

	snapshot := &IntentSnapshot{
		GeneratedAt: now.UTC(),
		Customers:   make([]CustomerIntent, 0, len(topLevel)),
	}

	for _, customer := range topLevel {
		intent := s.scoreCustomer(now, customer, tallies, recency, cartIndex, commerceIndex)
		snapshot.Customers = append(snapshot.Customers, intent)

		switch intent.Segment {
		case SegmentHot:
			snapshot.HotCount++
		case SegmentWarm:
			snapshot.WarmCount++
		default:
			snapshot.ColdCount++
		}
	}

	sort.SliceStable(snapshot.Customers, func(i, j int) bool {
		if snapshot.Customers[i].IntentScore != snapshot.Customers[j].IntentScore {
			return snapshot.Customers[i].IntentScore > snapshot.Customers[j].IntentScore
		}
		return snapshot.Customers[i].CartAmount > snapshot.Customers[j].CartAmount
	})

	if limit := query.Limit(); len(snapshot.Customers) > limit {
		snapshot.Customers = snapshot.Customers[:limit]
	}
	snapshot.CustomerCount = len(snapshot.Customers)

	return snapshot, nil
}

// buildActivityTallies groups window events by top-level customer.
func buildActivityTallies(events []domain.CustomerActivityEvent, attribute func(string) string) map[string]*activityTally {
	tallies := make(map[string]*activityTally)
	for _, event := range events {
		top := attribute(event.CustomerID)
		tally, ok := tallies[top]
		if !ok {
			tally = &activityTally{}
			tallies[top] = tally
		}

		switch event.Type {
		case domain.ActivityPageView:
			tally.pageViews++
		case domain.ActivityProductView:
			tally.productViews++
		case domain.ActivityCartAdd:
			tally.cartAdds++
		case domain.ActivityCartUpdate:
			tally.cartUpdates++
		case domain.ActivitySearch:
			tally.searches++
		case domain.ActivityActive:
			tally.activeSeconds += event.DurationSeconds
			tally.clicks += event.ClickCount
		}
	}
	return tallies
}

// buildRecencyIndex rolls each customer's latest activity up to its
// top-level parent, keeping the most recent timestamp.
func buildRecencyIndex(lastActivity map[string]time.Time, attribute func(string) string) map[string]time.Time {
	index := make(map[string]time.Time, len(lastActivity))
	for customerID, ts := range lastActivity {
		top := attribute(customerID)
		if current, ok := index[top]; !ok || ts.After(current) {
			index[top] = ts
		}
	}
	return index
}

// buildCartIndex sums open cart positions per top-level customer.
func buildCartIndex(carts []domain.Cart, attribute func(string) string) map[string]domain.CartSnapshot {
	index := make(map[string]domain.CartSnapshot)
	for _, cart := range carts {
		top := attribute(cart.CustomerID)
		acc := index[top]
		for _, line := range cart.Lines {
			acc.Quantity += line.Quantity
			acc.Amount += line.Amount
		}
		index[top] = acc
	}
	return index
}

// buildCommerceIndex sums trailing-window orders per top-level customer.
func buildCommerceIndex(orders []domain.SalesOrder, attribute func(string) string) map[string]domain.CommerceSnapshot {
	index := make(map[string]domain.CommerceSnapshot)
	for _, order := range orders {
		top := attribute(order.CustomerID)
		snap := index[top]
		snap.OrderCount++
		snap.OrderAmount += order.Amount
		index[top] = snap
	}
	return index
}

func (s *IntentScorer) scoreCustomer(
	now time.Time,
	customer domain.Customer,
	tallies map[string]*activityTally,
	recency map[string]time.Time,
	cartIndex map[string]domain.CartSnapshot,
	commerceIndex map[string]domain.CommerceSnapshot,
) CustomerIntent {
	topID := customer.CustomerID()

	intent := CustomerIntent{
		CustomerID:   topID,
		CustomerCode: customer.Code,
		CustomerName: customer.Name,
	}

	if tally, ok := tallies[topID]; ok {
		intent.PageViews = tally.pageViews
		intent.ProductViews = tally.productViews
		intent.CartAdds = tally.cartAdds
		intent.CartUpdates = tally.cartUpdates
		intent.Searches = tally.searches
		intent.ActiveMinutes = int(math.Round(tally.activeSeconds / 60))
		intent.Clicks = tally.clicks
	}

	if cart, ok := cartIndex[topID]; ok {
		intent.CartQuantity = cart.Quantity
		intent.CartAmount = cart.Amount
	}

	if commerce, ok := commerceIndex[topID]; ok {
		intent.OrderCount30d = commerce.OrderCount
		intent.OrderAmount30d = commerce.OrderAmount
	}

	w := s.weights
	intent.EngagementScore = w.PageView*float64(intent.PageViews) +
		w.ProductView*float64(intent.ProductViews) +
		w.CartAdd*float64(intent.CartAdds) +
		w.CartUpdate*float64(intent.CartUpdates) +
		w.Search*float64(intent.Searches) +
		w.ActiveMinute*float64(intent.ActiveMinutes) +
		w.Click*float64(intent.Clicks)

	intent.CommerceScore = w.OrderCountPoints*float64(intent.OrderCount30d) +
		intent.OrderAmount30d/w.OrderAmountDivisor
	if intent.CartAmount > 0 {
		intent.CommerceScore += w.OpenCartPoints
	}

	hasActivity := false
	var daysSince float64
	if last, ok := recency[topID]; ok {
		hasActivity = true
		intent.LastActivityAt = &last
		daysSince = now.Sub(last).Hours() / 24
	}

	intent.RecencyScore = s.recencyScore(hasActivity, daysSince)

	raw := math.Round(intent.EngagementScore + intent.CommerceScore + intent.RecencyScore)
	intent.IntentScore = int(math.Min(math.Max(raw, 0), 100))

	switch {
	case intent.IntentScore >= w.HotThreshold:
		intent.Segment = SegmentHot
	case intent.IntentScore >= w.WarmThreshold:
		intent.Segment = SegmentWarm
	default:
		intent.Segment = SegmentCold
	}

	intent.ChurnRisk = churnRisk(hasActivity, daysSince, intent.OrderCount30d)
	intent.NextBestAction = nextBestAction(intent)

	return intent
}

func (s *IntentScorer) recencyScore(hasActivity bool, daysSince float64) float64 {
	if !hasActivity {
		return s.weights.NoActivity
	}
	switch {
	case daysSince <= 1:
		return s.weights.RecencyDay1
	case daysSince <= 3:
		return s.weights.RecencyDay3
	case daysSince <= 7:
		return s.weights.RecencyDay7
	case daysSince <= 14:
		return s.weights.RecencyDay14
	default:
		return s.weights.RecencyOlder
	}
}

// churnRisk grades disengagement. A customer with no recorded activity
// at all is only high risk when they also stopped ordering.
func churnRisk(hasActivity bool, daysSince float64, orderCount30d int) string {
	if !hasActivity {
		if orderCount30d == 0 {
			return ChurnHigh
		}
		return ChurnLow
	}
	switch {
	case daysSince > 21 && orderCount30d == 0:
		return ChurnHigh
	case daysSince > 14:
		return ChurnMedium
	default:
		return ChurnLow
	}
}

func nextBestAction(intent CustomerIntent) string {
	switch {
	case intent.Segment == SegmentHot && intent.CartAmount > 0:
		return "push a fast quote toward the open cart"
	case intent.Segment == SegmentHot:
		return "schedule same-day outreach"
	case intent.Segment == SegmentWarm:
		return "surface substitute or complementary offers"
	case intent.ChurnRisk == ChurnHigh:
		return "run a win-back campaign"
	default:
		return "standard follow-up"
	}
}
