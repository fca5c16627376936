package inventory

import (
	"context"

	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/inventory"
)

// Ledger operaciones del kardex que consumen los casos de uso (implementado por ledger.Service).
type Ledger interface {
	Submit(ctx context.Context, draft ledger.MovementDraft) (*entity.Variant, error)
	Variant(ctx context.Context, id string) (*entity.Variant, error)
	Variants(ctx context.Context) ([]entity.Variant, error)
	Snapshot(ctx context.Context) (*ledger.Snapshot, error)
	Valuation(ctx context.Context) (*inventory.ValuationReport, error)
	Kardex(ctx context.Context, variantID string, filter ledger.KardexFilter) ([]ledger.KardexEntry, error)
	RebuildFromLog(ctx context.Context, variantID string, opts ledger.RebuildOptions) (*ledger.RebuildReport, error)
}

// KardexPDFGenerator genera el reporte PDF del kardex de una variante.
type KardexPDFGenerator interface {
	Generate(variant entity.Variant, entries []ledger.KardexEntry) ([]byte, error)
}
