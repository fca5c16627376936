package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex/internal/application/dto"
	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/inventory"
)

// ReplenishmentUseCase genera la lista de reposición a partir de las alertas de reorden.
type ReplenishmentUseCase struct {
	ledger    Ledger
	costScale int32
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(ledger Ledger, costScale int32) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{ledger: ledger, costScale: costScale}
}

// GenerateReplenishmentList devuelve las variantes en alerta de reorden con la cantidad
// sugerida de pedido, priorizadas por mayor déficit relativo bajo el nivel de reorden.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	variants, err := uc.ledger.Variants(ctx)
	if err != nil {
		return nil, err
	}
	report := inventory.Valuate(variants, uc.costScale)
	if len(report.ReorderAlerts) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	byID := make(map[string]entity.Variant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}

	hundred := decimal.NewFromInt(100)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(report.ReorderAlerts))
	for _, alert := range report.ReorderAlerts {
		v := byID[alert.VariantID]
		idealStock := int(decimal.NewFromInt(int64(alert.ReorderLevel)).Mul(decimal.NewFromFloat(1.5)).Ceil().IntPart())
		suggestedQty := idealStock - alert.Quantity
		if suggestedQty < 0 {
			suggestedQty = 0
		}

		var grossMarginPct decimal.Decimal
		if v.RetailPrice.GreaterThan(decimal.Zero) {
			grossMarginPct = v.RetailPrice.Sub(alert.UnitCost).Div(v.RetailPrice).Mul(hundred).Round(2)
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			VariantID:          alert.VariantID,
			ProductID:          alert.ProductID,
			SKU:                alert.SKU,
			Name:               alert.Name,
			CurrentStock:       alert.Quantity,
			ReorderLevel:       alert.ReorderLevel,
			IdealStock:         idealStock,
			SuggestedOrderQty:  suggestedQty,
			UnitCost:           alert.UnitCost,
			EstimatedOrderCost: decimal.NewFromInt(int64(suggestedQty)).Mul(alert.UnitCost),
			GrossMarginPct:     grossMarginPct,
		})
	}

	// Orden: mayor déficit relativo (1 - stock/reorden), luego mayor margen, luego SKU.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		da, db := deficitRatio(a), deficitRatio(b)
		if !da.Equal(db) {
			return da.GreaterThan(db)
		}
		if !a.GrossMarginPct.Equal(b.GrossMarginPct) {
			return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
		}
		return a.SKU < b.SKU
	})

	// Prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

func deficitRatio(s dto.ReplenishmentSuggestionDTO) decimal.Decimal {
	if s.ReorderLevel <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.ReorderLevel - s.CurrentStock)).Div(decimal.NewFromInt(int64(s.ReorderLevel)))
}
