package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex/internal/application/dto"
	"github.com/jhoicas/kardex/internal/application/inventory"
	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/entity"
)

type fakePDF struct {
	variant entity.Variant
	entries int
}

func (f *fakePDF) Generate(variant entity.Variant, entries []ledger.KardexEntry) ([]byte, error) {
	f.variant = variant
	f.entries = len(entries)
	return []byte("%PDF-fake"), nil
}

func TestReportUseCase_Kardex(t *testing.T) {
	ctx := context.Background()
	svc := newLedger(t, seedVariant{id: "v1", sku: "A", retail: "100", reorder: 1, enabled: true, qty: 10, cost: "1000"})
	_, err := inventory.NewRegisterMovementUseCase(svc).RegisterMovement(ctx, dto.RegisterMovementRequest{
		VariantID: "v1", Type: "out", Quantity: 4, WarehouseID: "W1",
	})
	require.NoError(t, err)

	uc := inventory.NewReportUseCase(svc, nil)
	out, err := uc.Kardex(ctx, "v1", dto.KardexQuery{})
	require.NoError(t, err)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, 6, out.Entries[1].Balance)
	assert.Equal(t, -4, out.Entries[1].Delta)
	assert.Equal(t, 6, out.Variant.TotalQuantity)

	out, err = uc.Kardex(ctx, "v1", dto.KardexQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "out", out.Entries[0].Movement.Type)

	out, err = uc.Kardex(ctx, "v1", dto.KardexQuery{From: "2000-01-01", To: "2000-01-31"})
	require.NoError(t, err)
	assert.Empty(t, out.Entries)

	_, err = uc.Kardex(ctx, "v1", dto.KardexQuery{From: "01/02/2024"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Kardex(ctx, "nope", dto.KardexQuery{})
	assert.Error(t, err)
}

func TestReportUseCase_KardexPDF(t *testing.T) {
	ctx := context.Background()
	svc := newLedger(t, seedVariant{id: "v1", sku: "A", retail: "100", reorder: 1, enabled: true, qty: 3, cost: "10"})

	_, err := inventory.NewReportUseCase(svc, nil).KardexPDF(ctx, "v1", dto.KardexQuery{})
	assert.ErrorIs(t, err, domain.ErrNotFound, "sin generador configurado")

	gen := &fakePDF{}
	pdf, err := inventory.NewReportUseCase(svc, gen).KardexPDF(ctx, "v1", dto.KardexQuery{})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Equal(t, "A", gen.variant.SKU)
	assert.Equal(t, 1, gen.entries)
}

func TestReportUseCase_SnapshotYValuation(t *testing.T) {
	ctx := context.Background()
	svc := newLedger(t,
		seedVariant{id: "v1", sku: "A", retail: "100", reorder: 1, enabled: true, qty: 10, cost: "1000"},
		seedVariant{id: "v2", sku: "B", retail: "100", reorder: 5, enabled: true, qty: 2, cost: "500"},
	)
	uc := inventory.NewReportUseCase(svc, nil)

	snap, err := uc.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)
	assert.Len(t, snap.Products[0].Variants, 2)
	assert.Equal(t, int64(2), snap.LastMovementID)

	val, err := uc.Valuation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "11000", val.TotalValue.String())
	assert.Equal(t, 12, val.TotalUnits)
	require.Len(t, val.ReorderAlerts, 1)
	assert.Equal(t, "B", val.ReorderAlerts[0].SKU)

	v, err := uc.Variant(ctx, "v2")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"W1": 2}, v.StockByWarehouse)
}

func TestReportUseCase_Rebuild(t *testing.T) {
	svc := newLedger(t, seedVariant{id: "v1", sku: "A", retail: "100", reorder: 1, enabled: true, qty: 3, cost: "10"})
	out, err := inventory.NewReportUseCase(svc, nil).Rebuild(context.Background(), dto.RebuildRequest{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Variants)
	assert.Equal(t, 1, out.Movements)
	assert.False(t, out.Replaced)
	assert.Empty(t, out.Drifts)
}
