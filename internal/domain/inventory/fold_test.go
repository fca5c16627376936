package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/inventory"
)

const (
	w1 = "W1"
	w2 = "W2"
)

func mv(id int64, body entity.MovementBody) entity.Movement {
	return entity.Movement{ID: id, VariantID: "v1", SKU: "SKU-1", Body: body}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// foldAll aplica la secuencia y falla el test ante el primer rechazo.
func foldAll(t *testing.T, f inventory.Folder, ms ...entity.Movement) inventory.Position {
	t.Helper()
	p := inventory.NewPosition("v1")
	for _, m := range ms {
		var err error
		p, err = f.Fold(p, m)
		require.NoError(t, err, "movimiento %d", m.ID)
	}
	return p
}

// ──────────────────────────────────────────────────────────────────────────────
// Secuencia de referencia: dos entradas, salida rechazada, traslado y garantía.
// ──────────────────────────────────────────────────────────────────────────────
func TestFold_SecuenciaDeReferencia(t *testing.T) {
	f := inventory.NewFolder(0)

	p := foldAll(t, f, mv(1, entity.In{To: w1, Qty: 10, UnitCost: d("1000")}))
	assert.Equal(t, 10, p.Quantity(w1))
	assert.True(t, p.UnitCost.Equal(d("1000")))

	p = foldAll(t, f, mv(1, entity.In{To: w1, Qty: 10, UnitCost: d("1000")}), mv(2, entity.In{To: w1, Qty: 5, UnitCost: d("1600")}))
	assert.Equal(t, 15, p.Quantity(w1))
	assert.True(t, p.UnitCost.Equal(d("1200")), "costo: %s", p.UnitCost)

	got, err := f.Fold(p, mv(3, entity.Out{From: w1, Qty: 20}))
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 20, stockErr.Requested)
	assert.Equal(t, 15, stockErr.Available)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, p, got, "un rechazo no modifica el estado")

	p, err = f.Fold(p, mv(4, entity.Transfer{From: w1, To: w2, Qty: 5}))
	require.NoError(t, err)
	assert.Equal(t, 10, p.Quantity(w1))
	assert.Equal(t, 5, p.Quantity(w2))
	assert.True(t, p.UnitCost.Equal(d("1200")))

	p, err = f.Fold(p, mv(5, entity.Warranty{Qty: 2}))
	require.NoError(t, err)
	assert.Equal(t, 13, p.MainQty)
	assert.Equal(t, 2, p.WarrantyQty)
	assert.Equal(t, 15, p.TotalQuantity())
	assert.Equal(t, int64(5), p.LastMovementID)
}

func TestFold_NoModificaLaPosicionOriginal(t *testing.T) {
	f := inventory.NewFolder(0)
	p := foldAll(t, f, mv(1, entity.In{To: w1, Qty: 3, UnitCost: d("10")}))

	next, err := f.Fold(p, mv(2, entity.Out{From: w1, Qty: 1}))
	require.NoError(t, err)
	assert.Equal(t, 3, p.Quantity(w1))
	assert.Equal(t, 2, next.Quantity(w1))
}

func TestFold_AsignacionesSumanElTotal(t *testing.T) {
	f := inventory.NewFolder(0)
	p := foldAll(t, f,
		mv(1, entity.In{To: w1, Qty: 8, UnitCost: d("50")}),
		mv(2, entity.Warranty{Qty: 3}),
		mv(3, entity.Out{From: w1, Qty: 2, FromWarranty: true}),
		mv(4, entity.Out{From: w1, Qty: 1}),
		mv(5, entity.Adjust{Warehouse: w2, Mode: entity.AdjustIncrease, Qty: 4}),
		mv(6, entity.Adjust{Warehouse: w1, Mode: entity.AdjustDecrease, Qty: 1}),
	)
	assert.Equal(t, 8, p.TotalQuantity())
	assert.Equal(t, 7, p.MainQty)
	assert.Equal(t, 1, p.WarrantyQty)
	assert.Equal(t, p.TotalQuantity(), p.MainQty+p.WarrantyQty)
}

func TestFold_Rechazos(t *testing.T) {
	f := inventory.NewFolder(0)
	base := foldAll(t, f,
		mv(1, entity.In{To: w1, Qty: 4, UnitCost: d("10")}),
		mv(2, entity.Warranty{Qty: 3}),
	)

	tests := []struct {
		name   string
		body   entity.MovementBody
		target error
	}{
		{"cantidad cero", entity.Out{From: w1, Qty: 0}, domain.ErrInvalidMovement},
		{"bodega vacía", entity.Out{From: w2, Qty: 1}, domain.ErrInsufficientStock},
		{"principal insuficiente en salida", entity.Out{From: w1, Qty: 2}, domain.ErrInsufficientMainAllocation},
		{"garantía insuficiente", entity.Out{From: w1, Qty: 4, FromWarranty: true}, domain.ErrInsufficientMainAllocation},
		{"principal insuficiente en garantía", entity.Warranty{Qty: 2}, domain.ErrInsufficientMainAllocation},
		{"traslado a sí misma", entity.Transfer{From: w1, To: w1, Qty: 1}, domain.ErrInvalidMovement},
		{"traslado sin stock", entity.Transfer{From: w1, To: w2, Qty: 5}, domain.ErrInsufficientStock},
		{"ajuste sin resolver", entity.Adjust{Warehouse: w1, Mode: entity.AdjustSet, Qty: 1}, domain.ErrInvalidMovement},
		{"ajuste negativo sin stock", entity.Adjust{Warehouse: w1, Mode: entity.AdjustDecrease, Qty: 5}, domain.ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Fold(base, mv(9, tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, base, got)
		})
	}
}

func TestFold_TopeDeStock(t *testing.T) {
	f := inventory.NewFolder(0)
	full := foldAll(t, f,
		mv(1, entity.In{To: w1, Qty: entity.MaxQuantity - 1, UnitCost: d("1")}),
		mv(2, entity.In{To: w2, Qty: 1, UnitCost: d("1")}),
	)
	require.Equal(t, entity.MaxQuantity, full.TotalQuantity())

	for _, body := range []entity.MovementBody{
		entity.In{To: w1, Qty: 1, UnitCost: d("1")},
		entity.Adjust{Warehouse: w2, Mode: entity.AdjustIncrease, Qty: 1},
	} {
		got, err := f.Fold(full, mv(3, body))
		assert.ErrorIs(t, err, domain.ErrInvalidMovement)
		assert.Equal(t, full, got)
	}

	// Traslados y garantía no cambian el total: siguen permitidos en el tope.
	p, err := f.Fold(full, mv(3, entity.Transfer{From: w1, To: w2, Qty: 10}))
	require.NoError(t, err)
	assert.Equal(t, 11, p.Quantity(w2))
	p, err = f.Fold(p, mv(4, entity.Warranty{Qty: 1}))
	require.NoError(t, err)
	assert.Equal(t, entity.MaxQuantity, p.TotalQuantity())
}

func TestFold_CostoSoloConEntradasYAjustesPositivosConCosto(t *testing.T) {
	f := inventory.NewFolder(0)
	cost := d("40")
	p := foldAll(t, f,
		mv(1, entity.In{To: w1, Qty: 10, UnitCost: d("10")}),
		mv(2, entity.Adjust{Warehouse: w1, Mode: entity.AdjustIncrease, Qty: 10}),
	)
	assert.True(t, p.UnitCost.Equal(d("10")), "ajuste sin costo no mueve el promedio")

	p = foldAll(t, f,
		mv(1, entity.In{To: w1, Qty: 10, UnitCost: d("10")}),
		mv(2, entity.Adjust{Warehouse: w1, Mode: entity.AdjustIncrease, Qty: 10, UnitCost: &cost}),
		mv(3, entity.Out{From: w1, Qty: 5}),
		mv(4, entity.Transfer{From: w1, To: w2, Qty: 5}),
	)
	assert.True(t, p.UnitCost.Equal(d("25")), "costo: %s", p.UnitCost)
}

func TestFold_CostoConStockAgotadoTomaElDeLaEntrada(t *testing.T) {
	f := inventory.NewFolder(0)
	p := foldAll(t, f,
		mv(1, entity.In{To: w1, Qty: 2, UnitCost: d("100")}),
		mv(2, entity.Out{From: w1, Qty: 2}),
		mv(3, entity.In{To: w1, Qty: 1, UnitCost: d("70")}),
	)
	assert.True(t, p.UnitCost.Equal(d("70")))
}

func TestFold_RedondeoDelCosto(t *testing.T) {
	p := foldAll(t, inventory.NewFolder(2),
		mv(1, entity.In{To: w1, Qty: 3, UnitCost: d("1")}),
		mv(2, entity.In{To: w1, Qty: 3, UnitCost: d("2")}),
		mv(3, entity.In{To: w1, Qty: 1, UnitCost: d("2")}),
	)
	// (6*1.5 + 1*2)/7 = 1.571428...
	assert.Equal(t, "1.57", p.UnitCost.String())
}

func TestPosition_Diff(t *testing.T) {
	a := inventory.NewPosition("v1")
	a.Stock[w1] = 3
	b := a.Clone()
	assert.Empty(t, a.Diff(b))

	b.Stock[w1] = 2
	b.Stock[w2] = 0
	b.UnitCost = d("5")
	drifts := a.Diff(b)
	require.Len(t, drifts, 2)
	assert.Equal(t, "stock[W1]", drifts[0].Field)
	assert.Equal(t, "3", drifts[0].Live)
	assert.Equal(t, "2", drifts[0].Replayed)
	assert.Equal(t, "unit_cost", drifts[1].Field)
}
