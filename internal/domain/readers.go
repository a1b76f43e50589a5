package domain

import (
	"context"
	"time"
)

// OrderReader provides read access to open-order snapshots
type OrderReader interface {
	// OpenOrders retrieves open orders, optionally filtered by series,
	// sorted by order date then order id, capped at limit
	OpenOrders(ctx context.Context, seriesFilter string, limit int) ([]PendingOrder, error)

	// AllOpenOrders retrieves every open order in the system regardless
	// of series or paging. Reservation accounting must see all active
	// claims, so this is never windowed.
	AllOpenOrders(ctx context.Context) ([]PendingOrder, error)

	// PendingApprovalOrders retrieves orders awaiting approval, oldest
	// first, capped at limit
	PendingApprovalOrders(ctx context.Context, limit int) ([]PendingOrder, error)
}

// CatalogReader provides read access to the product catalog
type CatalogReader interface {
	// AllProducts retrieves the full catalog including inactive products
	AllProducts(ctx context.Context) ([]Product, error)

	// ActiveProducts retrieves only products available for sale
	ActiveProducts(ctx context.Context) ([]Product, error)
}

// ShelfReader provides read access to shelf-location records
type ShelfReader interface {
	// AllLocations retrieves every shelf-location record
	AllLocations(ctx context.Context) ([]ShelfLocation, error)
}

// WorkflowReader provides read access to per-order fulfillment state
type WorkflowReader interface {
	// StatesByOrderIDs retrieves workflow states keyed by order id.
	// Orders without a stored state are simply absent from the map.
	StatesByOrderIDs(ctx context.Context, orderIDs []string) (map[string]WorkflowState, error)
}

// CustomerReader provides read access to customer accounts
type CustomerReader interface {
	// ActiveCustomers retrieves all active customer accounts,
	// including sub-accounts
	ActiveCustomers(ctx context.Context) ([]Customer, error)
}

// ActivityReader provides read access to the customer behavior log
type ActivityReader interface {
	// EventsSince retrieves all activity events at or after the given time
	EventsSince(ctx context.Context, since time.Time) ([]CustomerActivityEvent, error)

	// LastActivityByCustomer retrieves the most recent activity
	// timestamp per customer id, across the whole log
	LastActivityByCustomer(ctx context.Context) (map[string]time.Time, error)
}

// CommerceReader provides read access to carts and committed orders
type CommerceReader interface {
	// OpenCarts retrieves every customer's current cart
	OpenCarts(ctx context.Context) ([]Cart, error)

	// OrdersSince retrieves approved-or-pending sales orders placed at
	// or after the given time
	OrdersSince(ctx context.Context, since time.Time) ([]SalesOrder, error)
}

// CreditReader provides read access to customer credit positions
type CreditReader interface {
	// PositionsByCustomerIDs retrieves credit positions keyed by
	// customer id. Customers with no position are absent from the map.
	PositionsByCustomerIDs(ctx context.Context, customerIDs []string) (map[string]CreditPosition, error)
}
