package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product agrupa variantes (composición: una variante no sobrevive a su producto).
type Product struct {
	ID           string
	Name         string
	Category     string
	Brand        string
	Notes        string
	Measurements json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Variants     []Variant
}

// Variant es la unidad que controla el kardex.
// StockByWarehouse, UnitCost y las asignaciones principal/garantía se derivan de los
// movimientos; el resto son atributos de catálogo.
type Variant struct {
	ID                    string
	ProductID             string
	SKU                   string
	Name                  string
	StockByWarehouse      map[string]int
	UnitCost              decimal.Decimal // costo promedio ponderado (inicia en 0)
	RetailPrice           decimal.Decimal
	WholesalePrice        decimal.Decimal
	ReorderLevel          int
	Enabled               bool
	MainAllocationQty     int
	WarrantyAllocationQty int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TotalQuantity suma el stock de todas las bodegas.
func (v Variant) TotalQuantity() int {
	total := 0
	for _, q := range v.StockByWarehouse {
		total += q
	}
	return total
}
