package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex/internal/domain/entity"
)

func TestSnapshot(t *testing.T) {
	f := newFixture(t, fixtureOpts{}, "v1", "v2")
	f.submit(t, "v1", entity.In{To: w1, Qty: 10, UnitCost: d("1000")})
	f.submit(t, "v2", entity.In{To: w2, Qty: 2, UnitCost: d("50")})

	snap, err := f.svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.LastMovementID)
	require.Len(t, snap.Warehouses, 2)
	assert.Equal(t, w1, snap.Warehouses[0].ID)
	require.Len(t, snap.Products, 1)
	require.Len(t, snap.Products[0].Variants, 2)

	byID := map[string]entity.Variant{}
	for _, v := range snap.Products[0].Variants {
		byID[v.ID] = v
	}
	assert.Equal(t, 10, byID["v1"].StockByWarehouse[w1])
	assert.True(t, byID["v2"].UnitCost.Equal(d("50")))
	assert.False(t, snap.Products[0].UpdatedAt.IsZero(), "el producto refleja el último movimiento")
}

func TestValuation_LecturasIdempotentes(t *testing.T) {
	f := newFixture(t, fixtureOpts{}, "v1", "v2")
	f.submit(t, "v1", entity.In{To: w1, Qty: 10, UnitCost: d("1000")})
	f.submit(t, "v2", entity.In{To: w1, Qty: 1, UnitCost: d("10")})

	first, err := f.svc.Valuation(context.Background())
	require.NoError(t, err)
	second, err := f.svc.Valuation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, 11, first.TotalUnits)
	assert.True(t, first.TotalValue.Equal(d("10010")))
	require.Len(t, first.ReorderAlerts, 1)
	assert.Equal(t, "SKU-v2", first.ReorderAlerts[0].SKU)
}

func TestHead(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	head, err := f.svc.Head(context.Background())
	require.NoError(t, err)
	assert.Zero(t, head)

	f.submit(t, "v1", entity.In{To: w1, Qty: 1, UnitCost: d("1")})
	head, err = f.svc.Head(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), head)
}
