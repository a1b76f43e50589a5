package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a read-only catalog snapshot synced from the upstream ERP.
type Product struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Code                string             `bson:"code"`
	Name                string             `bson:"name"`
	Unit                string             `bson:"unit"`
	CategoryID          string             `bson:"categoryId"`
	CategoryName        string             `bson:"categoryName"`
	BrandCode           string             `bson:"brandCode"`
	VATRate             float64            `bson:"vatRate"`
	SecondaryUnitFactor float64            `bson:"secondaryUnitFactor"`
	HasImage            bool               `bson:"hasImage"`
	Active              bool               `bson:"active"`
	StockByWarehouse    map[string]float64 `bson:"stockByWarehouse"`
}

// TotalStock returns the on-hand quantity summed across all warehouses.
func (p *Product) TotalStock() float64 {
	var total float64
	for _, qty := range p.StockByWarehouse {
		if qty > 0 {
			total += qty
		}
	}
	return total
}

// StockIn returns the on-hand quantity for one warehouse, or the total
// across all warehouses when no warehouse is given.
func (p *Product) StockIn(warehouseID string) float64 {
	if warehouseID == "" {
		return p.TotalStock()
	}
	qty := p.StockByWarehouse[warehouseID]
	if qty < 0 {
		return 0
	}
	return qty
}

// ShelfLocation maps a product code to a physical shelf.
type ShelfLocation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ProductCode string             `bson:"productCode"`
	ShelfCode   string             `bson:"shelfCode"`
	WarehouseID string             `bson:"warehouseId"`
}
