package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex/internal/domain/entity"
)

// ValuationItem valorización de una variante.
type ValuationItem struct {
	VariantID    string
	ProductID    string
	SKU          string
	Name         string
	Quantity     int
	UnitCost     decimal.Decimal
	Value        decimal.Decimal
	ReorderLevel int
	Enabled      bool
}

// WarehouseValuation unidades y valor por bodega.
type WarehouseValuation struct {
	WarehouseID string
	Units       int
	Value       decimal.Decimal
}

// ValuationReport KPIs del portafolio: valor total, unidades, costo promedio y alertas de reorden.
type ValuationReport struct {
	TotalValue            decimal.Decimal
	TotalUnits            int
	AverageCost           decimal.Decimal
	EnabledVariants       int
	ReorderAlerts         []ValuationItem
	PercentBelowThreshold decimal.Decimal // |alertas| / |variantes habilitadas|, 0..1
	ByWarehouse           []WarehouseValuation
	Items                 []ValuationItem
}

// Valuate agrega stock × costo. Es una función pura y determinista (orden por SKU):
// dos llamadas sobre el mismo estado devuelven el mismo reporte.
func Valuate(variants []entity.Variant, costScale int32) ValuationReport {
	if costScale <= 0 {
		costScale = DefaultCostScale
	}
	sorted := make([]entity.Variant, len(variants))
	copy(sorted, variants)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].SKU != sorted[j].SKU {
			return sorted[i].SKU < sorted[j].SKU
		}
		return sorted[i].ID < sorted[j].ID
	})

	report := ValuationReport{
		TotalValue:            decimal.Zero,
		AverageCost:           decimal.Zero,
		PercentBelowThreshold: decimal.Zero,
		ReorderAlerts:         []ValuationItem{},
		Items:                 make([]ValuationItem, 0, len(sorted)),
	}
	byWarehouse := map[string]*WarehouseValuation{}

	for _, v := range sorted {
		qty := v.TotalQuantity()
		value := decimal.NewFromInt(int64(qty)).Mul(v.UnitCost)
		item := ValuationItem{
			VariantID:    v.ID,
			ProductID:    v.ProductID,
			SKU:          v.SKU,
			Name:         v.Name,
			Quantity:     qty,
			UnitCost:     v.UnitCost,
			Value:        value,
			ReorderLevel: v.ReorderLevel,
			Enabled:      v.Enabled,
		}
		report.Items = append(report.Items, item)
		report.TotalUnits += qty
		report.TotalValue = report.TotalValue.Add(value)

		for wh, q := range v.StockByWarehouse {
			wv := byWarehouse[wh]
			if wv == nil {
				wv = &WarehouseValuation{WarehouseID: wh, Value: decimal.Zero}
				byWarehouse[wh] = wv
			}
			wv.Units += q
			wv.Value = wv.Value.Add(decimal.NewFromInt(int64(q)).Mul(v.UnitCost))
		}

		if !v.Enabled {
			continue
		}
		report.EnabledVariants++
		if qty <= v.ReorderLevel {
			report.ReorderAlerts = append(report.ReorderAlerts, item)
		}
	}

	if report.TotalUnits > 0 {
		report.AverageCost = report.TotalValue.Div(decimal.NewFromInt(int64(report.TotalUnits))).Round(costScale)
	}
	if report.EnabledVariants > 0 {
		report.PercentBelowThreshold = decimal.NewFromInt(int64(len(report.ReorderAlerts))).
			Div(decimal.NewFromInt(int64(report.EnabledVariants))).Round(4)
	}

	report.ByWarehouse = make([]WarehouseValuation, 0, len(byWarehouse))
	for _, wv := range byWarehouse {
		report.ByWarehouse = append(report.ByWarehouse, *wv)
	}
	sort.Slice(report.ByWarehouse, func(i, j int) bool {
		return report.ByWarehouse[i].WarehouseID < report.ByWarehouse[j].WarehouseID
	})
	return report
}
