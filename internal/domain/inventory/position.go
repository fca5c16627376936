package inventory

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex/internal/domain"
)

// Position es el estado derivado de una variante tras aplicar sus movimientos:
// cantidades por bodega, asignaciones principal/garantía y costo promedio.
// Una Position publicada en la proyección nunca se modifica; los folds devuelven copias.
type Position struct {
	VariantID      string
	Stock          map[string]int
	MainQty        int
	WarrantyQty    int
	UnitCost       decimal.Decimal
	LastMovementID int64
	LastMovementAt time.Time
}

// NewPosition estado inicial (sin inicializar): cero en todas las bodegas.
func NewPosition(variantID string) Position {
	return Position{VariantID: variantID, Stock: map[string]int{}, UnitCost: decimal.Zero}
}

// Quantity cantidad en una bodega.
func (p Position) Quantity(warehouseID string) int { return p.Stock[warehouseID] }

// TotalQuantity suma de todas las bodegas.
func (p Position) TotalQuantity() int {
	total := 0
	for _, q := range p.Stock {
		total += q
	}
	return total
}

// Clone copia profunda (el mapa de stock no se comparte).
func (p Position) Clone() Position {
	c := p
	c.Stock = make(map[string]int, len(p.Stock))
	for w, q := range p.Stock {
		c.Stock[w] = q
	}
	return c
}

// Diff compara dos posiciones y devuelve los campos distintos. Una bodega ausente equivale a 0.
func (p Position) Diff(other Position) []domain.Drift {
	var drifts []domain.Drift
	add := func(field, live, replayed string) {
		drifts = append(drifts, domain.Drift{VariantID: p.VariantID, Field: field, Live: live, Replayed: replayed})
	}

	warehouses := make(map[string]struct{}, len(p.Stock)+len(other.Stock))
	for w := range p.Stock {
		warehouses[w] = struct{}{}
	}
	for w := range other.Stock {
		warehouses[w] = struct{}{}
	}
	ids := make([]string, 0, len(warehouses))
	for w := range warehouses {
		ids = append(ids, w)
	}
	sort.Strings(ids)
	for _, w := range ids {
		if p.Stock[w] != other.Stock[w] {
			add("stock["+w+"]", strconv.Itoa(p.Stock[w]), strconv.Itoa(other.Stock[w]))
		}
	}
	if p.MainQty != other.MainQty {
		add("main_qty", strconv.Itoa(p.MainQty), strconv.Itoa(other.MainQty))
	}
	if p.WarrantyQty != other.WarrantyQty {
		add("warranty_qty", strconv.Itoa(p.WarrantyQty), strconv.Itoa(other.WarrantyQty))
	}
	if !p.UnitCost.Equal(other.UnitCost) {
		add("unit_cost", p.UnitCost.String(), other.UnitCost.String())
	}
	if p.LastMovementID != other.LastMovementID {
		add("last_movement_id", strconv.FormatInt(p.LastMovementID, 10), strconv.FormatInt(other.LastMovementID, 10))
	}
	return drifts
}
