package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseStockDTO bodega con las unidades y el valor (a costo promedio) que contiene.
type WarehouseStockDTO struct {
	WarehouseResponse
	Units int             `json:"units"`
	Value decimal.Decimal `json:"value"`
}

// WarehouseListResponse bodegas ordenadas por ID.
type WarehouseListResponse struct {
	Items      []WarehouseStockDTO `json:"items"`
	TotalUnits int                 `json:"total_units"`
	TotalValue decimal.Decimal     `json:"total_value"`
}
