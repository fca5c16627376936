package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/entity"
)

// StockProjection aplica las reglas de fold de cantidades. Es una función pura
// (estado previo, movimiento) → nuevo estado; nunca deja una bodega ni una asignación en negativo.
type StockProjection struct{}

// Apply devuelve la nueva posición o el error de negocio que impide el movimiento.
func (StockProjection) Apply(p Position, m entity.Movement) (Position, error) {
	if m.Body == nil {
		return p, domain.InvalidMovement("movimiento sin cuerpo")
	}
	if m.Body.Quantity() <= 0 {
		return p, domain.InvalidMovement("qty debe ser mayor a 0")
	}

	next := p.Clone()
	switch b := m.Body.(type) {
	case entity.In:
		if err := next.checkRoom(b.Qty); err != nil {
			return p, err
		}
		next.Stock[b.To] += b.Qty
		next.MainQty += b.Qty

	case entity.Out:
		if err := next.take(b.From, b.Qty); err != nil {
			return p, err
		}
		if b.FromWarranty {
			if next.WarrantyQty < b.Qty {
				return p, &domain.InsufficientAllocationError{
					VariantID: p.VariantID, Allocation: "warranty", Requested: b.Qty, Available: next.WarrantyQty,
				}
			}
			next.WarrantyQty -= b.Qty
		} else if err := next.takeMain(b.Qty); err != nil {
			return p, err
		}

	case entity.Adjust:
		switch b.Mode {
		case entity.AdjustIncrease:
			if err := next.checkRoom(b.Qty); err != nil {
				return p, err
			}
			next.Stock[b.Warehouse] += b.Qty
			next.MainQty += b.Qty
		case entity.AdjustDecrease:
			if err := next.take(b.Warehouse, b.Qty); err != nil {
				return p, err
			}
			if err := next.takeMain(b.Qty); err != nil {
				return p, err
			}
		default:
			return p, domain.InvalidMovement("ajuste sin resolver (modo %q)", b.Mode)
		}

	case entity.Transfer:
		if b.From == b.To {
			return p, domain.InvalidMovement("traslado con origen y destino iguales")
		}
		if err := next.take(b.From, b.Qty); err != nil {
			return p, err
		}
		next.Stock[b.To] += b.Qty

	case entity.Warranty:
		if err := next.takeMain(b.Qty); err != nil {
			return p, err
		}
		next.WarrantyQty += b.Qty

	default:
		return p, domain.InvalidMovement("tipo de movimiento desconocido %T", m.Body)
	}
	return next, nil
}

// checkRoom rechaza entradas que llevarían el total de la variante sobre entity.MaxQuantity.
// Los traslados no cambian el total, así que ninguna bodega puede superarlo.
func (p *Position) checkRoom(qty int) error {
	if qty > entity.MaxQuantity || p.TotalQuantity() > entity.MaxQuantity-qty {
		return domain.InvalidMovement("el stock de la variante excedería %d unidades", entity.MaxQuantity)
	}
	return nil
}

// take descuenta qty de una bodega validando no-negatividad.
func (p *Position) take(warehouseID string, qty int) error {
	available := p.Stock[warehouseID]
	if available < qty {
		return &domain.InsufficientStockError{
			VariantID: p.VariantID, WarehouseID: warehouseID, Requested: qty, Available: available,
		}
	}
	p.Stock[warehouseID] = available - qty
	return nil
}

func (p *Position) takeMain(qty int) error {
	if p.MainQty < qty {
		return &domain.InsufficientAllocationError{
			VariantID: p.VariantID, Allocation: "main", Requested: qty, Available: p.MainQty,
		}
	}
	p.MainQty -= qty
	return nil
}

// CostingEngine mantiene el costo promedio ponderado. Solo las entradas y los ajustes
// positivos con costo lo modifican; salidas, traslados y garantías lo dejan igual.
type CostingEngine struct {
	Scale int32
}

// ApplyCostBearing calcula el nuevo costo sobre el total previo al movimiento.
func (c CostingEngine) ApplyCostBearing(oldTotalQty int, oldCost decimal.Decimal, qtyIn int, unitCostIn decimal.Decimal) decimal.Decimal {
	return CostCalculator(oldTotalQty, oldCost, qtyIn, unitCostIn).Round(c.Scale)
}

// Apply devuelve la posición con el costo actualizado (las cantidades no cambian).
func (c CostingEngine) Apply(p Position, m entity.Movement) Position {
	switch b := m.Body.(type) {
	case entity.In:
		p.UnitCost = c.ApplyCostBearing(p.TotalQuantity(), p.UnitCost, b.Qty, b.UnitCost)
	case entity.Adjust:
		if b.CostBearing() {
			p.UnitCost = c.ApplyCostBearing(p.TotalQuantity(), p.UnitCost, b.Qty, *b.UnitCost)
		}
	}
	return p
}

// Folder combina StockProjection y CostingEngine en un único paso atómico por movimiento.
type Folder struct {
	Stock StockProjection
	Cost  CostingEngine
}

// NewFolder construye el folder con la escala de costo indicada (0 usa DefaultCostScale).
func NewFolder(costScale int32) Folder {
	if costScale <= 0 {
		costScale = DefaultCostScale
	}
	return Folder{Cost: CostingEngine{Scale: costScale}}
}

// Fold aplica el movimiento: primero el costo (sobre el total previo), luego las cantidades.
func (f Folder) Fold(p Position, m entity.Movement) (Position, error) {
	costed := f.Cost.Apply(p, m)
	next, err := f.Stock.Apply(costed, m)
	if err != nil {
		return p, err
	}
	next.LastMovementID = m.ID
	next.LastMovementAt = m.Timestamp
	return next, nil
}
