package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateVariantRequest entrada para crear una variante. Stock y costo no se reciben:
// nacen en cero y solo cambian con movimientos.
type CreateVariantRequest struct {
	SKU            string          `json:"sku" validate:"required,min=1,max=100"`
	Name           string          `json:"name" validate:"required,min=1,max=200"`
	RetailPrice    decimal.Decimal `json:"retail_price" validate:"gte=0"`
	WholesalePrice decimal.Decimal `json:"wholesale_price" validate:"gte=0"`
	ReorderLevel   int             `json:"reorder_level" validate:"min=0"`
	Enabled        *bool           `json:"enabled"`
}

// CreateProductRequest entrada para crear un producto con sus variantes.
type CreateProductRequest struct {
	Name         string                 `json:"name" validate:"required,min=1,max=200"`
	Category     string                 `json:"category" validate:"max=100"`
	Brand        string                 `json:"brand" validate:"max=100"`
	Notes        string                 `json:"notes"`
	Measurements json.RawMessage        `json:"measurements"`
	Variants     []CreateVariantRequest `json:"variants" validate:"dive"`
}

// UpdateVariantRequest cambios de catálogo de una variante (nunca stock ni costo).
type UpdateVariantRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	RetailPrice    *decimal.Decimal `json:"retail_price" validate:"omitempty,gte=0"`
	WholesalePrice *decimal.Decimal `json:"wholesale_price" validate:"omitempty,gte=0"`
	ReorderLevel   *int             `json:"reorder_level" validate:"omitempty,min=0"`
	Enabled        *bool            `json:"enabled"`
}

// VariantResponse salida de una variante con stock y costo vigentes.
type VariantResponse struct {
	ID                    string          `json:"id"`
	ProductID             string          `json:"product_id"`
	SKU                   string          `json:"sku"`
	Name                  string          `json:"name"`
	StockByWarehouse      map[string]int  `json:"stock_by_warehouse"`
	TotalQuantity         int             `json:"total_quantity"`
	UnitCost              decimal.Decimal `json:"unit_cost"`
	RetailPrice           decimal.Decimal `json:"retail_price"`
	WholesalePrice        decimal.Decimal `json:"wholesale_price"`
	ReorderLevel          int             `json:"reorder_level"`
	Enabled               bool            `json:"enabled"`
	MainAllocationQty     int             `json:"main_allocation_qty"`
	WarrantyAllocationQty int             `json:"warranty_allocation_qty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Category     string            `json:"category"`
	Brand        string            `json:"brand"`
	Notes        string            `json:"notes"`
	Measurements json.RawMessage   `json:"measurements,omitempty"`
	Variants     []VariantResponse `json:"variants"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
