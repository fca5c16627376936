package ledger_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de referencia: entradas con promedio ponderado, salida rechazada,
// traslado sin efecto en el costo y separación para garantía.
// ──────────────────────────────────────────────────────────────────────────────
func TestSubmit_EscenariosDeReferencia(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	v := f.submit(t, "v1", entity.In{To: w1, Qty: 10, UnitCost: d("1000")})
	assert.Equal(t, 10, v.StockByWarehouse[w1])
	assert.True(t, v.UnitCost.Equal(d("1000")))

	v = f.submit(t, "v1", entity.In{To: w1, Qty: 5, UnitCost: d("1600")})
	assert.Equal(t, 15, v.StockByWarehouse[w1])
	assert.True(t, v.UnitCost.Equal(d("1200")), "costo %s", v.UnitCost)

	_, err := f.svc.Submit(context.Background(), draft("v1", entity.Out{From: w1, Qty: 20}))
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 20, stockErr.Requested)
	assert.Equal(t, 15, stockErr.Available)
	assert.Equal(t, 15, f.svc.Projection().Quantity("v1", w1), "sin cambios tras el rechazo")
	assert.Equal(t, 2, f.log.Len(), "el rechazo no llega al kardex")

	v = f.submit(t, "v1", entity.Transfer{From: w1, To: w2, Qty: 5})
	assert.Equal(t, 10, v.StockByWarehouse[w1])
	assert.Equal(t, 5, v.StockByWarehouse[w2])
	assert.True(t, v.UnitCost.Equal(d("1200")))

	v = f.submit(t, "v1", entity.Warranty{Qty: 2})
	assert.Equal(t, 13, v.MainAllocationQty)
	assert.Equal(t, 2, v.WarrantyAllocationQty)
	assert.Equal(t, 15, v.TotalQuantity())
}

func TestSubmit_SalidasConcurrentesSobreElMismoStock(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.submit(t, "v1", entity.In{To: w1, Qty: 10, UnitCost: d("1000")})

	var ok, rejected atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Submit(context.Background(), draft("v1", entity.Out{From: w1, Qty: 10}))
			switch {
			case err == nil:
				ok.Add(1)
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				rejected.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(1), rejected.Load())
	assert.Equal(t, 0, f.svc.Projection().Quantity("v1", w1))
}

func TestSubmit_NoNegatividadBajoCarga(t *testing.T) {
	f := newFixture(t, fixtureOpts{}, "v1", "v2")
	f.submit(t, "v1", entity.In{To: w1, Qty: 30, UnitCost: d("10")})
	f.submit(t, "v2", entity.In{To: w2, Qty: 30, UnitCost: d("20")})

	bodies := []entity.MovementBody{
		entity.Out{From: w1, Qty: 3},
		entity.Transfer{From: w1, To: w2, Qty: 2},
		entity.Transfer{From: w2, To: w1, Qty: 2},
		entity.In{To: w2, Qty: 1, UnitCost: d("15")},
		entity.Warranty{Qty: 1},
		entity.Out{From: w2, Qty: 4},
	}
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			variant := []string{"v1", "v2"}[i%2]
			_, _ = f.svc.Submit(context.Background(), draft(variant, bodies[i%len(bodies)]))
		}(i)
	}
	wg.Wait()

	for _, id := range []string{"v1", "v2"} {
		pos := f.svc.Projection().Position(id)
		for wh, q := range pos.Stock {
			assert.GreaterOrEqual(t, q, 0, "%s/%s", id, wh)
		}
		assert.GreaterOrEqual(t, pos.MainQty, 0)
		assert.Equal(t, pos.TotalQuantity(), pos.MainQty+pos.WarrantyQty)
	}

	report, err := f.svc.Verify(context.Background(), "")
	require.NoError(t, err, "la proyección coincide con el kardex tras cualquier intercalado")
	assert.Empty(t, report.Drifts)
}

func TestSubmit_TrasladoConservaElTotal(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.submit(t, "v1", entity.In{To: w1, Qty: 7, UnitCost: d("3")})
	before := f.svc.Projection().TotalQuantity("v1")
	f.submit(t, "v1", entity.Transfer{From: w1, To: w2, Qty: 4})
	assert.Equal(t, before, f.svc.Projection().TotalQuantity("v1"))
}

func TestSubmit_ValidacionPrevia(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	tests := []struct {
		name   string
		draft  func() (string, entity.MovementBody)
		target error
	}{
		{"sin cuerpo", func() (string, entity.MovementBody) { return "v1", nil }, domain.ErrInvalidMovement},
		{"qty cero", func() (string, entity.MovementBody) { return "v1", entity.In{To: w1, Qty: 0} }, domain.ErrInvalidMovement},
		{"costo negativo", func() (string, entity.MovementBody) { return "v1", entity.In{To: w1, Qty: 1, UnitCost: d("-1")} }, domain.ErrInvalidMovement},
		{"salida sin bodega", func() (string, entity.MovementBody) { return "v1", entity.Out{Qty: 1} }, domain.ErrInvalidMovement},
		{"traslado a sí misma", func() (string, entity.MovementBody) { return "v1", entity.Transfer{From: w1, To: w1, Qty: 1} }, domain.ErrInvalidMovement},
		{"modo de ajuste", func() (string, entity.MovementBody) { return "v1", entity.Adjust{Warehouse: w1, Mode: "x", Qty: 1} }, domain.ErrInvalidMovement},
		{"variante inexistente", func() (string, entity.MovementBody) { return "nope", entity.In{To: w1, Qty: 1} }, domain.ErrUnknownEntity},
		{"bodega inexistente", func() (string, entity.MovementBody) { return "v1", entity.In{To: "W9", Qty: 1} }, domain.ErrUnknownEntity},
		{"traslado a bodega inexistente", func() (string, entity.MovementBody) { return "v1", entity.Transfer{From: w1, To: "W9", Qty: 1} }, domain.ErrUnknownEntity},
		{"qty sobre el máximo", func() (string, entity.MovementBody) {
			return "v1", entity.In{To: w1, Qty: entity.MaxQuantity + 1, UnitCost: d("1")}
		}, domain.ErrInvalidMovement},
		{"garantía sobre el máximo", func() (string, entity.MovementBody) { return "v1", entity.Warranty{Qty: entity.MaxQuantity + 1} }, domain.ErrInvalidMovement},
		{"costo con 13 decimales", func() (string, entity.MovementBody) {
			return "v1", entity.In{To: w1, Qty: 1, UnitCost: d("0.1234567890123")}
		}, domain.ErrInvalidMovement},
		{"costo sobre el máximo", func() (string, entity.MovementBody) {
			return "v1", entity.In{To: w1, Qty: 1, UnitCost: d("1000000000000000000")}
		}, domain.ErrInvalidMovement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, body := tt.draft()
			_, err := f.svc.Submit(context.Background(), draft(id, body))
			assert.ErrorIs(t, err, tt.target)
		})
	}
	assert.Equal(t, 0, f.log.Len())
}

func TestSubmit_AjustePorConteoFisico(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.submit(t, "v1", entity.In{To: w1, Qty: 10, UnitCost: d("100")})

	cost := d("400")
	v := f.submit(t, "v1", entity.Adjust{Warehouse: w1, Mode: entity.AdjustSet, Qty: 12, UnitCost: &cost})
	assert.Equal(t, 12, v.StockByWarehouse[w1])
	assert.True(t, v.UnitCost.Equal(d("150")), "costo %s", v.UnitCost)

	v = f.submit(t, "v1", entity.Adjust{Warehouse: w1, Mode: entity.AdjustSet, Qty: 4})
	assert.Equal(t, 4, v.StockByWarehouse[w1])
	assert.True(t, v.UnitCost.Equal(d("150")))

	var last entity.Movement
	for m, err := range f.log.Replay(context.Background(), repositoryAll()) {
		require.NoError(t, err)
		last = m
	}
	adj, ok := last.Body.(entity.Adjust)
	require.True(t, ok)
	assert.Equal(t, entity.AdjustDecrease, adj.Mode, "el kardex guarda el delta resuelto")
	assert.Equal(t, 8, adj.Qty)

	_, err := f.svc.Submit(context.Background(), draft("v1", entity.Adjust{Warehouse: w1, Mode: entity.AdjustSet, Qty: 4}))
	assert.ErrorIs(t, err, domain.ErrInvalidMovement, "un conteo sin diferencia no genera movimiento")
}

func TestSubmit_FalloDelKardexNoTocaLaProyeccion(t *testing.T) {
	log := &failingLog{MovementLog: newMemoryLog()}
	f := newFixture(t, fixtureOpts{log: log})
	f.submit(t, "v1", entity.In{To: w1, Qty: 5, UnitCost: d("10")})

	log.setFail(true)
	_, err := f.svc.Submit(context.Background(), draft("v1", entity.In{To: w1, Qty: 5, UnitCost: d("30")}))
	require.ErrorIs(t, err, domain.ErrLogAppend)
	var appendErr *domain.LogAppendError
	require.ErrorAs(t, err, &appendErr)

	pos := f.svc.Projection().Position("v1")
	assert.Equal(t, 5, pos.Quantity(w1))
	assert.True(t, pos.UnitCost.Equal(d("10")))

	log.setFail(false)
	v := f.submit(t, "v1", entity.In{To: w1, Qty: 5, UnitCost: d("30")})
	assert.Equal(t, 10, v.StockByWarehouse[w1], "reintentar es seguro")
	assert.True(t, v.UnitCost.Equal(d("20")))
}

func TestSubmit_TimeoutDeLock(t *testing.T) {
	log := newBlockingLog()
	f := newFixture(t, fixtureOpts{log: log, lockTimeout: 50 * time.Millisecond})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(context.Background(), draft("v1", entity.In{To: w1, Qty: 1, UnitCost: d("1")}))
		done <- err
	}()
	<-log.entered

	_, err := f.svc.Submit(context.Background(), draft("v1", entity.In{To: w1, Qty: 1, UnitCost: d("1")}))
	assert.ErrorIs(t, err, domain.ErrConcurrencyTimeout)

	close(log.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.svc.Projection().TotalQuantity("v1"), "el movimiento que expiró no se aplicó")
}

func TestSubmit_VariantesDistintasNoSeBloquean(t *testing.T) {
	log := newBlockingLog()
	f := newFixture(t, fixtureOpts{log: log, lockTimeout: time.Second}, "v1", "v2")

	go func() {
		_, _ = f.svc.Submit(context.Background(), draft("v1", entity.In{To: w1, Qty: 1, UnitCost: d("1")}))
	}()
	<-log.entered

	// v2 llega al Append mientras v1 sigue dentro de su sección crítica.
	go func() {
		_, _ = f.svc.Submit(context.Background(), draft("v2", entity.In{To: w1, Qty: 1, UnitCost: d("1")}))
	}()
	select {
	case <-log.entered:
	case <-time.After(time.Second):
		t.Fatal("v2 quedó bloqueada por v1")
	}
	close(log.release)
}

func TestSubmit_PublicaEnElSinkYNoFallaSiElSinkFalla(t *testing.T) {
	sink := &recordingSink{err: assert.AnError}
	f := newFixture(t, fixtureOpts{sink: sink})

	v := f.submit(t, "v1", entity.In{To: w1, Qty: 2, UnitCost: d("5")})
	assert.Equal(t, 2, v.TotalQuantity())
	assert.Equal(t, 1, sink.count())
}

func TestSubmit_TransactionIDGeneradoOPropagado(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	sub := f.svc.Subscribe(4)
	defer sub.Close()

	f.submit(t, "v1", entity.In{To: w1, Qty: 1, UnitCost: d("1")})
	ev := <-sub.C
	assert.Len(t, ev.Movement.TransactionID, 36)

	_, err := f.svc.Submit(context.Background(), entityDraftWithTx("v1", "1b4e28ba-2fa1-11d2-883f-0016d3cca427"))
	require.NoError(t, err)
	ev = <-sub.C
	assert.Equal(t, "1b4e28ba-2fa1-11d2-883f-0016d3cca427", ev.Movement.TransactionID)
	assert.Equal(t, "SKU-v1", ev.Movement.SKU)
	assert.Equal(t, int64(2), ev.Movement.ID)
}

func TestDeleteVariant(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.submit(t, "v1", entity.In{To: w1, Qty: 1, UnitCost: d("1")})

	err := f.svc.DeleteVariant(context.Background(), "v1")
	assert.ErrorIs(t, err, domain.ErrVariantHasStock)

	f.submit(t, "v1", entity.Out{From: w1, Qty: 1})
	require.NoError(t, f.svc.DeleteVariant(context.Background(), "v1"))

	_, err = f.svc.Variant(context.Background(), "v1")
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)
	assert.Equal(t, 2, f.log.Len(), "los movimientos permanecen en el kardex")

	report, err := f.svc.Verify(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Variants)
}

func TestSubmit_TopeDeStockPorVariante(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.submit(t, "v1", entity.In{To: w1, Qty: entity.MaxQuantity, UnitCost: d("1")})

	_, err := f.svc.Submit(context.Background(), draft("v1", entity.In{To: w2, Qty: 1, UnitCost: d("1")}))
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
	_, err = f.svc.Submit(context.Background(), draft("v1", entity.Adjust{Warehouse: w1, Mode: entity.AdjustIncrease, Qty: 1}))
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)

	assert.Equal(t, entity.MaxQuantity, f.svc.Projection().TotalQuantity("v1"))
	assert.Equal(t, 1, f.log.Len())
}

func TestSubmit_CostoEnLaEscalaDelKardex(t *testing.T) {
	log := &roundingLog{MovementLog: newMemoryLog()}
	f := newFixture(t, fixtureOpts{log: log})
	f.log = log.MovementLog

	f.submit(t, "v1", entity.In{To: w1, Qty: 3, UnitCost: d("0.123456789012")})
	f.submit(t, "v1", entity.In{To: w1, Qty: 7, UnitCost: d("999999999999999999.999999999999")})
	cost := d("12.000000000001")
	f.submit(t, "v1", entity.Adjust{Warehouse: w1, Mode: entity.AdjustIncrease, Qty: 2, UnitCost: &cost})

	_, err := f.svc.Submit(context.Background(), draft("v1", entity.In{To: w1, Qty: 1, UnitCost: d("0.0000000000001")}))
	require.ErrorIs(t, err, domain.ErrInvalidMovement)

	report, err := f.svc.Verify(context.Background(), "")
	require.NoError(t, err, "el kardex guardado reproduce el estado vivo")
	assert.Empty(t, report.Drifts)
	assert.Equal(t, f.svc.Projection().Position("v1"), restart(t, f).Projection().Position("v1"))
}

func TestSubmit_VarianteEliminadaMientrasEsperaElLock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{})
	products := &pausingProducts{ProductRepo: f.products, variantID: "v1", paused: make(chan struct{}), resume: make(chan struct{})}
	svc := ledger.NewService(ledger.Deps{
		Log:        f.log,
		Products:   products,
		Warehouses: f.warehouses,
		Logger:     zerolog.Nop(),
	}, ledger.Config{})
	require.NoError(t, svc.Start(ctx))

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, draft("v1", entity.In{To: w1, Qty: 4, UnitCost: d("10")}))
		done <- err
	}()
	<-products.paused

	require.NoError(t, svc.DeleteVariant(ctx, "v1"))
	close(products.resume)

	err := <-done
	require.ErrorIs(t, err, domain.ErrUnknownEntity)
	assert.Equal(t, 0, f.log.Len(), "nada llega al kardex de una variante eliminada")
	assert.Equal(t, 0, svc.Projection().TotalQuantity("v1"))

	val, err := svc.Valuation(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, val.TotalUnits)
}
