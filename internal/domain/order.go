package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RawOrderLine is the stored per-order line payload. Upstream intake
// writes these with varying completeness, so every field is optional.
type RawOrderLine struct {
	ProductCode          *string  `bson:"productCode,omitempty"`
	ProductName          *string  `bson:"productName,omitempty"`
	Unit                 *string  `bson:"unit,omitempty"`
	RemainingQty         *float64 `bson:"remainingQty,omitempty"`
	ReservedQty          *float64 `bson:"reservedQty,omitempty"`
	ReservedDeliveredQty *float64 `bson:"reservedDeliveredQty,omitempty"`
	WarehouseID          *string  `bson:"warehouseId,omitempty"`
}

// OrderLine is the canonical line record produced by normalization.
type OrderLine struct {
	ProductCode          string  `json:"productCode"`
	ProductName          string  `json:"productName"`
	Unit                 string  `json:"unit"`
	RemainingQty         float64 `json:"remainingQty"`
	ReservedQty          float64 `json:"reservedQty"`
	ReservedDeliveredQty float64 `json:"reservedDeliveredQty"`
	WarehouseID          string  `json:"warehouseId,omitempty"`
}

// OwnReservedQty returns the line's active claim: the reserved quantity
// not yet shipped against it. Never negative.
func (l OrderLine) OwnReservedQty() float64 {
	own := l.ReservedQty - l.ReservedDeliveredQty
	if own < 0 {
		return 0
	}
	return own
}

// PendingOrder is an immutable open-order snapshot created by order
// intake. The engines only ever read it.
type PendingOrder struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	OrderID      string             `bson:"orderId"`
	Series       string             `bson:"series"`
	CustomerID   string             `bson:"customerId"`
	CustomerCode string             `bson:"customerCode"`
	CustomerName string             `bson:"customerName"`
	Status       string             `bson:"status"`
	OrderDate    time.Time          `bson:"orderDate"`
	DeliveryDate *time.Time         `bson:"deliveryDate,omitempty"`
	TotalAmount  float64            `bson:"totalAmount"`
	RawLines     []RawOrderLine     `bson:"lines"`
}

// Order approval states as stored by order intake.
const (
	OrderStatusPendingApproval = "pending_approval"
	OrderStatusApproved        = "approved"
)
