package dto

import (
	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/inventory"
)

// FromVariant convierte una variante (ya combinada con su posición) a respuesta.
func FromVariant(v entity.Variant) VariantResponse {
	stock := make(map[string]int, len(v.StockByWarehouse))
	for w, q := range v.StockByWarehouse {
		stock[w] = q
	}
	return VariantResponse{
		ID:                    v.ID,
		ProductID:             v.ProductID,
		SKU:                   v.SKU,
		Name:                  v.Name,
		StockByWarehouse:      stock,
		TotalQuantity:         v.TotalQuantity(),
		UnitCost:              v.UnitCost,
		RetailPrice:           v.RetailPrice,
		WholesalePrice:        v.WholesalePrice,
		ReorderLevel:          v.ReorderLevel,
		Enabled:               v.Enabled,
		MainAllocationQty:     v.MainAllocationQty,
		WarrantyAllocationQty: v.WarrantyAllocationQty,
		CreatedAt:             v.CreatedAt,
		UpdatedAt:             v.UpdatedAt,
	}
}

// FromProduct convierte un producto con sus variantes.
func FromProduct(p entity.Product) ProductResponse {
	variants := make([]VariantResponse, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, FromVariant(v))
	}
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		Brand:        p.Brand,
		Notes:        p.Notes,
		Measurements: p.Measurements,
		Variants:     variants,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// FromWarehouse convierte una bodega.
func FromWarehouse(w entity.Warehouse) WarehouseResponse {
	return WarehouseResponse{ID: w.ID, Name: w.Name, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt}
}

// FromMovement aplana un movimiento del kardex.
func FromMovement(m entity.Movement) MovementResponse {
	r := m.ToRecord()
	return MovementResponse{
		ID:              r.ID,
		TransactionID:   r.TransactionID,
		Timestamp:       r.Timestamp,
		VariantID:       r.VariantID,
		SKU:             r.SKU,
		Type:            string(r.Type),
		Quantity:        r.Qty,
		FromWarehouseID: r.FromWarehouse,
		ToWarehouseID:   r.ToWarehouse,
		AdjustMode:      string(r.AdjustMode),
		UnitCost:        r.UnitCost,
		FromWarranty:    r.FromWarranty,
		Note:            r.Note,
	}
}

// FromEvent convierte un evento de commit.
func FromEvent(e ledger.MovementCommitted) MovementEventDTO {
	return MovementEventDTO{Movement: FromMovement(e.Movement), Variant: FromVariant(e.Variant)}
}

// FromSnapshot convierte el snapshot del ledger.
func FromSnapshot(s *ledger.Snapshot) SnapshotResponse {
	out := SnapshotResponse{
		Products:       make([]ProductResponse, 0, len(s.Products)),
		Warehouses:     make([]WarehouseResponse, 0, len(s.Warehouses)),
		LastMovementID: s.LastMovementID,
	}
	for _, p := range s.Products {
		out.Products = append(out.Products, FromProduct(p))
	}
	for _, w := range s.Warehouses {
		out.Warehouses = append(out.Warehouses, FromWarehouse(w))
	}
	return out
}

func fromValuationItem(i inventory.ValuationItem) ValuationItemDTO {
	return ValuationItemDTO{
		VariantID:    i.VariantID,
		ProductID:    i.ProductID,
		SKU:          i.SKU,
		Name:         i.Name,
		Quantity:     i.Quantity,
		UnitCost:     i.UnitCost,
		Value:        i.Value,
		ReorderLevel: i.ReorderLevel,
		Enabled:      i.Enabled,
	}
}

// FromValuation convierte el reporte de valorización.
func FromValuation(r *inventory.ValuationReport) ValuationResponse {
	out := ValuationResponse{
		TotalValue:            r.TotalValue,
		TotalUnits:            r.TotalUnits,
		AverageCost:           r.AverageCost,
		EnabledVariants:       r.EnabledVariants,
		PercentBelowThreshold: r.PercentBelowThreshold,
		ReorderAlerts:         make([]ValuationItemDTO, 0, len(r.ReorderAlerts)),
		ByWarehouse:           make([]WarehouseValuationDTO, 0, len(r.ByWarehouse)),
		Items:                 make([]ValuationItemDTO, 0, len(r.Items)),
	}
	for _, a := range r.ReorderAlerts {
		out.ReorderAlerts = append(out.ReorderAlerts, fromValuationItem(a))
	}
	for _, w := range r.ByWarehouse {
		out.ByWarehouse = append(out.ByWarehouse, WarehouseValuationDTO{WarehouseID: w.WarehouseID, Units: w.Units, Value: w.Value})
	}
	for _, i := range r.Items {
		out.Items = append(out.Items, fromValuationItem(i))
	}
	return out
}

// FromKardexEntry convierte un renglón del kardex.
func FromKardexEntry(e ledger.KardexEntry) KardexEntryDTO {
	return KardexEntryDTO{
		Movement:           FromMovement(e.Movement),
		Delta:              e.Delta,
		Balance:            e.Balance,
		BalanceByWarehouse: e.BalanceByWarehouse,
		MainQty:            e.MainQty,
		WarrantyQty:        e.WarrantyQty,
		UnitCost:           e.UnitCost,
		BalanceValue:       e.BalanceValue,
	}
}

// FromDrifts convierte las diferencias de una reconstrucción.
func FromDrifts(drifts []domain.Drift) []DriftDTO {
	out := make([]DriftDTO, 0, len(drifts))
	for _, d := range drifts {
		out = append(out, DriftDTO{VariantID: d.VariantID, Field: d.Field, Live: d.Live, Replayed: d.Replayed})
	}
	return out
}

// FromRebuild convierte el reporte de reconstrucción.
func FromRebuild(r *ledger.RebuildReport) RebuildResponse {
	return RebuildResponse{
		Variants:  r.Variants,
		Movements: r.Movements,
		Replaced:  r.Replaced,
		Drifts:    FromDrifts(r.Drifts),
	}
}
