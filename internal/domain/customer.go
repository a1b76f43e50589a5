package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is a read-only account snapshot. Sub-accounts carry a
// ParentID and roll up to their top-level parent for scoring.
type Customer struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Code     string             `bson:"code"`
	Name     string             `bson:"name"`
	ParentID string             `bson:"parentId,omitempty"`
	Active   bool               `bson:"active"`
}

// CustomerID returns the stable identifier used for attribution.
func (c *Customer) CustomerID() string {
	return c.ID.Hex()
}

// TopLevelID returns the identifier scores are attributed to: the
// parent for sub-accounts, the customer itself otherwise.
func (c *Customer) TopLevelID() string {
	if c.ParentID != "" {
		return c.ParentID
	}
	return c.ID.Hex()
}

// ActivityType classifies customer behavior events.
type ActivityType string

const (
	ActivityPageView    ActivityType = "page_view"
	ActivityProductView ActivityType = "product_view"
	ActivityCartAdd     ActivityType = "cart_add"
	ActivityCartUpdate  ActivityType = "cart_update"
	ActivitySearch      ActivityType = "search"
	ActivityActive      ActivityType = "active"
)

// CustomerActivityEvent is one entry of the append-only behavior log.
type CustomerActivityEvent struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	CustomerID      string             `bson:"customerId"`
	Type            ActivityType       `bson:"type"`
	Timestamp       time.Time          `bson:"timestamp"`
	DurationSeconds float64            `bson:"durationSeconds,omitempty"`
	ClickCount      int                `bson:"clickCount,omitempty"`
}

// CartLine is one line of a customer's open cart.
type CartLine struct {
	ProductCode string  `bson:"productCode"`
	Quantity    float64 `bson:"quantity"`
	Amount      float64 `bson:"amount"`
}

// Cart is the stored open cart for a customer.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	CustomerID string             `bson:"customerId"`
	Lines      []CartLine         `bson:"lines"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// CartSnapshot is the derived current cart position for a top-level customer.
type CartSnapshot struct {
	Quantity float64 `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// CommerceSnapshot is the derived trailing-window order position for a
// top-level customer.
type CommerceSnapshot struct {
	OrderCount  int     `json:"orderCount"`
	OrderAmount float64 `json:"orderAmount"`
}

// SalesOrder is a committed order used for trailing-window commerce
// attribution. Distinct from PendingOrder, which tracks fulfillment.
type SalesOrder struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	CustomerID string             `bson:"customerId"`
	Status     string             `bson:"status"`
	Amount     float64            `bson:"amount"`
	OrderDate  time.Time          `bson:"orderDate"`
}

// CreditPosition is a customer's aged receivable balances from the ERP.
// Absence of a position is a risk signal, not zero exposure.
type CreditPosition struct {
	CustomerID     string   `json:"customerId"`
	PastDueBalance float64  `json:"pastDueBalance"`
	NotDueBalance  float64  `json:"notDueBalance"`
	TotalBalance   float64  `json:"totalBalance"`
	Classification string   `json:"classification,omitempty"`
	ManualScore    *float64 `json:"manualScore,omitempty"`
}
