package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/inventory"
	"github.com/jhoicas/kardex/internal/domain/repository"
)

// KardexFilter acota el reporte de kardex. Limit > 0 conserva las últimas Limit entradas.
type KardexFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// KardexEntry un renglón del kardex con el saldo resultante.
type KardexEntry struct {
	Movement           entity.Movement
	Delta              int // cambio neto del total de la variante
	Balance            int
	BalanceByWarehouse map[string]int
	MainQty            int
	WarrantyQty        int
	UnitCost           decimal.Decimal
	BalanceValue       decimal.Decimal
}

// Kardex reproduce los movimientos de la variante calculando saldo y costo tras cada uno.
// Lee el log, no la proyección: es una vista de auditoría, fuera del camino caliente.
func (s *Service) Kardex(ctx context.Context, variantID string, filter KardexFilter) ([]KardexEntry, error) {
	v, err := s.products.GetVariant(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("obtener variante: %w", err)
	}
	if v == nil {
		return nil, domain.UnknownEntity("variante", variantID)
	}

	folder := s.projection.Folder()
	pos := inventory.NewPosition(variantID)
	entries := []KardexEntry{}
	for m, err := range s.log.Replay(ctx, repository.ReplayFilter{VariantID: variantID}) {
		if err != nil {
			return nil, fmt.Errorf("reproducir kardex: %w", err)
		}
		before := pos.TotalQuantity()
		next, err := folder.Fold(pos, m)
		if err != nil {
			return nil, fmt.Errorf("movimiento %d no aplica en reproducción: %w", m.ID, err)
		}
		pos = next

		if filter.From != nil && m.Timestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.Timestamp.After(*filter.To) {
			continue
		}
		total := pos.TotalQuantity()
		entries = append(entries, KardexEntry{
			Movement:           m,
			Delta:              total - before,
			Balance:            total,
			BalanceByWarehouse: pos.Clone().Stock,
			MainQty:            pos.MainQty,
			WarrantyQty:        pos.WarrantyQty,
			UnitCost:           pos.UnitCost,
			BalanceValue:       decimal.NewFromInt(int64(total)).Mul(pos.UnitCost),
		})
	}
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[len(entries)-filter.Limit:]
	}
	return entries, nil
}
