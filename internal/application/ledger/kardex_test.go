package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/entity"
)

func TestKardex_SaldoAcumulado(t *testing.T) {
	f := newFixture(t, fixtureOpts{}, "v1", "v2")
	f.submit(t, "v1", entity.In{To: w1, Qty: 10, UnitCost: d("1000")})
	f.submit(t, "v2", entity.In{To: w1, Qty: 99, UnitCost: d("1")})
	f.submit(t, "v1", entity.In{To: w1, Qty: 5, UnitCost: d("1600")})
	f.submit(t, "v1", entity.Transfer{From: w1, To: w2, Qty: 5})
	f.submit(t, "v1", entity.Out{From: w2, Qty: 3})

	entries, err := f.svc.Kardex(context.Background(), "v1", ledger.KardexFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 4, "solo los movimientos de la variante")

	assert.Equal(t, []int{10, 5, 0, -3}, []int{entries[0].Delta, entries[1].Delta, entries[2].Delta, entries[3].Delta})
	last := entries[3]
	assert.Equal(t, 12, last.Balance)
	assert.Equal(t, map[string]int{w1: 10, w2: 2}, last.BalanceByWarehouse)
	assert.True(t, last.UnitCost.Equal(d("1200")))
	assert.True(t, last.BalanceValue.Equal(d("14400")))

	limited, err := f.svc.Kardex(context.Background(), "v1", ledger.KardexFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, entries[2].Movement.ID, limited[0].Movement.ID, "el límite conserva los últimos")
}

func TestKardex_FiltroPorFecha(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.submit(t, "v1", entity.In{To: w1, Qty: 1, UnitCost: d("1")})

	future := time.Now().Add(time.Hour)
	entries, err := f.svc.Kardex(context.Background(), "v1", ledger.KardexFilter{From: &future})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestKardex_VarianteInexistente(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	_, err := f.svc.Kardex(context.Background(), "nope", ledger.KardexFilter{})
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)
}
